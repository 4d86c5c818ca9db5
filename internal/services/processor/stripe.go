package processor

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
)

// StripeGateway implements Gateway against the Stripe API. One instance is
// built at startup from the configured secret key; no package-level key is
// set.
type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(secretKey string) *StripeGateway {
	return &StripeGateway{api: client.New(secretKey, nil)}
}

func (g *StripeGateway) CreatePaymentMethod(ctx context.Context, card CardDetails, billing BillingDetails) (string, error) {
	params := &stripe.PaymentMethodParams{
		Type: stripe.String("card"),
		Card: &stripe.PaymentMethodCardParams{
			Number:   stripe.String(card.Number),
			ExpMonth: stripe.String(card.ExpMonth),
			ExpYear:  stripe.String(card.ExpYear),
			CVC:      stripe.String(card.CVC),
		},
		BillingDetails: &stripe.BillingDetailsParams{
			Email: stripe.String(billing.Email),
			Name:  stripe.String(billing.Name),
		},
	}
	params.Context = ctx

	pm, err := g.api.PaymentMethods.New(params)
	if err != nil {
		return "", fmt.Errorf("payment method creation failed: %s", stripeMsg(err))
	}
	return pm.ID, nil
}

func (g *StripeGateway) CreateCustomer(ctx context.Context, name, email, paymentMethodID string) (string, error) {
	params := &stripe.CustomerParams{
		Description:   stripe.String(fmt.Sprintf("Customer = %s", name)),
		Name:          stripe.String(name),
		Email:         stripe.String(email),
		PaymentMethod: stripe.String(paymentMethodID),
		InvoiceSettings: &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(paymentMethodID),
		},
	}
	params.Context = ctx

	cus, err := g.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("customer creation failed: %s", stripeMsg(err))
	}
	return cus.ID, nil
}

func (g *StripeGateway) AttachPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error {
	params := &stripe.PaymentMethodAttachParams{
		Customer: stripe.String(customerID),
	}
	params.Context = ctx

	if _, err := g.api.PaymentMethods.Attach(paymentMethodID, params); err != nil {
		return fmt.Errorf("payment method attachment failed: %s", stripeMsg(err))
	}
	return nil
}

func (g *StripeGateway) CreateCharge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:           stripe.Int64(req.AmountMinor),
		Currency:         stripe.String(req.Currency),
		PaymentMethod:    stripe.String(req.PaymentMethodID),
		Customer:         stripe.String(req.CustomerID),
		Description:      stripe.String(req.Description),
		Confirm:          stripe.Bool(true),
		SetupFutureUsage: stripe.String(string(stripe.PaymentIntentSetupFutureUsageOffSession)),
		ReturnURL:        stripe.String(req.ReturnURL),
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("charge creation failed: %s", stripeMsg(err))
	}

	result := &ChargeResult{
		ID:     pi.ID,
		Status: string(pi.Status),
	}
	if pi.NextAction != nil && pi.NextAction.RedirectToURL != nil {
		result.RedirectURL = pi.NextAction.RedirectToURL.URL
	}
	return result, nil
}

func (g *StripeGateway) CreatePlan(ctx context.Context, req PlanRequest) (string, error) {
	params := &stripe.PlanParams{
		Amount:        stripe.Int64(req.AmountMinor),
		Currency:      stripe.String(req.Currency),
		Interval:      stripe.String(req.IntervalUnit),
		IntervalCount: stripe.Int64(req.IntervalCount),
		Product: &stripe.PlanProductParams{
			Name: stripe.String(req.ProductName),
		},
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	plan, err := g.api.Plans.New(params)
	if err != nil {
		return "", fmt.Errorf("plan creation failed: %s", stripeMsg(err))
	}
	return plan.ID, nil
}

func (g *StripeGateway) CreateSubscriptionSchedule(ctx context.Context, req ScheduleRequest) (string, error) {
	items := make([]*stripe.SubscriptionSchedulePhaseItemParams, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, &stripe.SubscriptionSchedulePhaseItemParams{
			Price:    stripe.String(item.PlanID),
			Quantity: stripe.Int64(item.Quantity),
		})
	}

	params := &stripe.SubscriptionScheduleParams{
		Customer:    stripe.String(req.CustomerID),
		StartDate:   stripe.Int64(req.StartDate.Unix()),
		EndBehavior: stripe.String("release"),
		Phases: []*stripe.SubscriptionSchedulePhaseParams{{
			Items:                items,
			Iterations:           stripe.Int64(req.Iterations),
			ProrationBehavior:    stripe.String("none"),
			DefaultPaymentMethod: stripe.String(req.PaymentMethodID),
		}},
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	schedule, err := g.api.SubscriptionSchedules.New(params)
	if err != nil {
		return "", fmt.Errorf("subscription creation failed: %s", stripeMsg(err))
	}
	return schedule.ID, nil
}

// stripeMsg extracts the human-readable message from a stripe error.
func stripeMsg(err error) string {
	if stripeErr, ok := err.(*stripe.Error); ok && stripeErr.Msg != "" {
		return stripeErr.Msg
	}
	return err.Error()
}
