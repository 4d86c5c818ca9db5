// Package checkout sequences one donation checkout end to end: tokenize
// the card, resolve the donor, charge, build recurring schedules, and
// persist the records.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"strings"
	"time"

	errs "donare/internal/errors"
	"donare/internal/models"
	"donare/internal/repositories"
	"donare/internal/services/frequency"
	"donare/internal/services/processor"
	"donare/internal/services/schedule"

	"github.com/google/uuid"
)

type Service struct {
	gateway    processor.Gateway
	donors     DonorStore
	store      TransactionStore
	reconciler Reconciler
	notifier   Notifier
	cfg        Config
	now        func() time.Time
}

// NewService wires the checkout orchestrator. The gateway selects the
// payment provider explicitly at construction; nothing is inferred from
// request values.
func NewService(
	gateway processor.Gateway,
	donors DonorStore,
	store TransactionStore,
	reconciler Reconciler,
	notifier Notifier,
	cfg Config,
) *Service {
	return &Service{
		gateway:    gateway,
		donors:     donors,
		store:      store,
		reconciler: reconciler,
		notifier:   notifier,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Process runs the checkout sequence. Each step is gated on the previous;
// there is no automatic retry. Failures before the charge leave no local
// side effects; failures after a captured charge surface as
// PERSISTENCE_FAILED with an ops alert and no compensation, so the
// processor dashboard stays the authoritative record until an operator
// reconciles.
func (s *Service) Process(ctx context.Context, req *models.CheckoutRequest) (*Result, error) {
	lines, err := models.BindCartLines(req.Cart)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, errs.ErrEmptyCart
	}

	classes := make([]frequency.Class, len(lines))
	for i, line := range lines {
		class, err := frequency.Classify(line.DonationType)
		if err != nil {
			return nil, err
		}
		classes[i] = class
	}

	summary := summarize(lines, classes)
	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "USD"
	}

	fourDigit := req.Card.Number
	if len(fourDigit) > 4 {
		fourDigit = fourDigit[len(fourDigit)-4:]
	}
	invoiceID := fmt.Sprintf("%s-%s", s.cfg.InvoicePrefix, uuid.NewString())
	orderNo := s.now().Format("01022006150405") + strconv.Itoa(rand.Intn(11))

	surcharge := 0.0
	if req.ApplyCardFee {
		surcharge = Round2(summary.total * s.cfg.CardFeeRate)
	}

	paymentMethodID, err := s.gateway.CreatePaymentMethod(ctx,
		processor.CardDetails{
			Number:   req.Card.Number,
			ExpMonth: req.Card.ExpMonth,
			ExpYear:  req.Card.ExpYear,
			CVC:      req.Card.CVV,
		},
		processor.BillingDetails{
			Name:  fullName(req.Billing),
			Email: req.Billing.Email,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrPaymentMethodRejected, err)
	}

	donor, err := s.resolveDonor(ctx, req.Billing, paymentMethodID, fourDigit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDonorResolutionFailed, err)
	}

	charge, err := s.gateway.CreateCharge(ctx, processor.ChargeRequest{
		AmountMinor:     ToMinorUnits(summary.total) + ToMinorUnits(surcharge),
		Currency:        strings.ToLower(currency),
		PaymentMethodID: paymentMethodID,
		CustomerID:      donor.CustomerRef,
		Description:     fmt.Sprintf("%s Charge for OrderNo = %s", strconv.FormatFloat(summary.total, 'f', -1, 64), orderNo),
		Metadata:        summary.chargeMeta,
		ReturnURL:       s.cfg.ReturnURL,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrChargeDeclined, err)
	}

	switch charge.Status {
	case processor.ChargeSucceeded:
	case processor.ChargeRequiresAction, processor.ChargeRequiresSourceAction:
		// The processor finalizes the charge after the challenge; records
		// for this attempt are written once its webhooks land, not here.
		return &Result{
			ChargeID:    charge.ID,
			OrderNo:     orderNo,
			InvoiceID:   invoiceID,
			RedirectURL: charge.RedirectURL,
		}, nil
	default:
		return nil, fmt.Errorf("%w: charge status %s", errs.ErrChargeDeclined, charge.Status)
	}

	var decisions []*schedule.Decision
	var subRefs map[frequency.Code]string
	if summary.isRecurring {
		for i, line := range lines {
			if !classes[i].Recurring() {
				continue
			}
			d, err := s.reconciler.Reconcile(ctx, line)
			if err != nil {
				s.alert(ctx, orderNo, err)
				if errors.Is(err, errs.ErrScheduleDetailNotFound) {
					return nil, err
				}
				return nil, fmt.Errorf("%w: %v", errs.ErrPersistenceFailed, err)
			}
			decisions = append(decisions, d)
		}

		refs, err := s.buildPlans(ctx, decisions, summary, strings.ToLower(currency), req.ApplyCardFee)
		if err != nil {
			return nil, err
		}
		subRefs, err = s.buildSchedules(ctx, refs, donor.CustomerRef, paymentMethodID, summary)
		if err != nil {
			return nil, err
		}
	}

	if err := s.persist(ctx, req, lines, classes, decisions, subRefs, donor, charge, persistIDs{
		orderNo:   orderNo,
		invoiceID: invoiceID,
		fourDigit: fourDigit,
		surcharge: surcharge,
		total:     summary.total,
		currency:  currency,
	}); err != nil {
		s.alert(ctx, orderNo, err)
		return nil, fmt.Errorf("%w: %v", errs.ErrPersistenceFailed, err)
	}

	return &Result{
		ChargeID:  charge.ID,
		OrderNo:   orderNo,
		InvoiceID: invoiceID,
	}, nil
}

// resolveDonor looks the donor up by (email, last name), creating the row
// or patching in a processor customer reference as needed, and attaches
// the payment method to the customer.
func (s *Service) resolveDonor(ctx context.Context, billing models.BillingInfo, paymentMethodID, fourDigit string) (*models.Donor, error) {
	name := fullName(billing)

	donor, err := s.donors.FindByEmailAndLastName(ctx, billing.Email, billing.LastName)
	if errors.Is(err, repositories.ErrDonorNotFound) {
		customerID, err := s.gateway.CreateCustomer(ctx, name, billing.Email, paymentMethodID)
		if err != nil {
			return nil, err
		}
		donor = &models.Donor{
			CustomerRef:  customerID,
			FourDigit:    fourDigit,
			Email:        billing.Email,
			FirstName:    billing.FirstName,
			LastName:     billing.LastName,
			Organization: billing.Organization,
			Street:       billing.Street,
			City:         billing.City,
			State:        billing.State,
			Zip:          billing.Zip,
			Country:      billing.Country,
			Phone:        billing.Phone,
		}
		if err := s.donors.Create(ctx, donor); err != nil {
			return nil, err
		}
		return donor, nil
	}
	if err != nil {
		return nil, err
	}

	if donor.CustomerRef == "" || donor.CustomerRef == "0" {
		customerID, err := s.gateway.CreateCustomer(ctx, name, billing.Email, paymentMethodID)
		if err != nil {
			return nil, err
		}
		if err := s.donors.UpdateCustomerRef(ctx, donor.ID, customerID, fourDigit); err != nil {
			return nil, err
		}
		donor.CustomerRef = customerID
		donor.FourDigit = fourDigit
	}

	if err := s.gateway.AttachPaymentMethod(ctx, donor.CustomerRef, paymentMethodID); err != nil {
		return nil, err
	}
	return donor, nil
}

type persistIDs struct {
	orderNo   string
	invoiceID string
	fourDigit string
	surcharge float64
	total     float64
	currency  string
}

// persist writes the header, per-line details, card suffix, and optional
// employer match. Detail rows are created only for single lines and
// first-cycle recurring lines; continuation lines decrement their matched
// row instead.
func (s *Service) persist(
	ctx context.Context,
	req *models.CheckoutRequest,
	lines []models.CartLine,
	classes []frequency.Class,
	decisions []*schedule.Decision,
	subRefs map[frequency.Code]string,
	donor *models.Donor,
	charge *processor.ChargeResult,
	ids persistIDs,
) error {
	status := models.TransactionStatusDeclined
	reason := models.TransactionReasonDeclined
	if strings.EqualFold(charge.Status, "succeeded") || strings.EqualFold(charge.Status, "success") {
		status = models.TransactionStatusCompleted
		reason = models.TransactionReasonApproved
	}

	transactionID, err := s.store.InsertTransaction(ctx, &models.Transaction{
		DonorID:         donor.ID,
		InvoiceID:       ids.invoiceID,
		OrderNo:         ids.orderNo,
		ChargeID:        charge.ID,
		CardFee:         ids.surcharge,
		TotalAmount:     Round2(ids.total + ids.surcharge),
		CartAmount:      ids.total,
		ProcessorStatus: charge.Status,
		Reason:          reason,
		Comments:        req.Billing.OrderComments,
		PaymentType:     req.PaymentType,
		Status:          status,
		Currency:        ids.currency,
	})
	if err != nil {
		return err
	}

	next := 0
	for i, line := range lines {
		amountID, handlerID := line.EffectiveIDs()

		if !classes[i].Recurring() {
			if _, err := s.store.InsertDetail(ctx, &models.ScheduleDetail{
				TransactionID: transactionID,
				AppealID:      line.AppealID,
				AmountID:      amountID,
				HandlerID:     handlerID,
				Amount:        line.Amount,
				Quantity:      line.Quantity,
				FrequencyCode: int(frequency.None),
				StartDate:     line.StartDate,
				Currency:      ids.currency,
			}); err != nil {
				return err
			}
			continue
		}

		d := decisions[next]
		next++

		if !d.FirstCycle {
			if err := s.store.DecrementRemaining(ctx, d.DetailID); err != nil {
				return err
			}
			continue
		}

		if _, err := s.store.InsertDetail(ctx, &models.ScheduleDetail{
			TransactionID:       transactionID,
			AppealID:            line.AppealID,
			AmountID:            amountID,
			HandlerID:           handlerID,
			SubscriptionRef:     subRefs[d.Class.Code],
			Amount:              line.Amount,
			Quantity:            line.Quantity,
			FrequencyCode:       int(d.Class.Code),
			StartDate:           line.StartDate,
			TotalIterations:     d.TotalIterations,
			RemainingIterations: d.RemainingIterations,
			Currency:            ids.currency,
		}); err != nil {
			return err
		}
	}

	if err := s.store.InsertCard(ctx, &models.CardRecord{
		TransactionID: transactionID,
		DonorID:       donor.ID,
		InvoiceID:     ids.invoiceID,
		OrderNo:       ids.orderNo,
		FourDigit:     ids.fourDigit,
		ExpMonth:      req.Card.ExpMonth,
		ExpYear:       req.Card.ExpYear,
	}); err != nil {
		return err
	}

	if req.Billing.EmployerName != "" {
		if err := s.store.InsertEmployerMatch(ctx, &models.EmployerMatch{
			DonorID:       donor.ID,
			EmployerName:  req.Billing.EmployerName,
			EmployerEmail: req.Billing.EmployerEmail,
		}); err != nil {
			return err
		}
	}

	return nil
}

// alert notifies operations about a post-charge failure. Send failures are
// logged and swallowed; the surfaced error is the original one.
func (s *Service) alert(ctx context.Context, orderNo string, cause error) {
	if s.notifier == nil {
		return
	}
	subject := fmt.Sprintf("Checkout failure for order %s", orderNo)
	if err := s.notifier.Alert(ctx, subject, cause.Error()); err != nil {
		log.Printf("failed to send ops alert for order %s: %v", orderNo, err)
	}
}

func fullName(b models.BillingInfo) string {
	return strings.TrimSpace(b.FirstName + " " + b.LastName)
}
