package checkout

import (
	"context"
	"fmt"
	"testing"

	errs "donare/internal/errors"
	"donare/internal/models"
	"donare/internal/repositories"
	"donare/internal/services/frequency"
	"donare/internal/services/processor"
	"donare/internal/services/schedule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreatePaymentMethod(ctx context.Context, card processor.CardDetails, billing processor.BillingDetails) (string, error) {
	args := m.Called(ctx, card, billing)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) CreateCustomer(ctx context.Context, name, email, paymentMethodID string) (string, error) {
	args := m.Called(ctx, name, email, paymentMethodID)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) AttachPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error {
	args := m.Called(ctx, customerID, paymentMethodID)
	return args.Error(0)
}

func (m *MockGateway) CreateCharge(ctx context.Context, req processor.ChargeRequest) (*processor.ChargeResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*processor.ChargeResult), args.Error(1)
}

func (m *MockGateway) CreatePlan(ctx context.Context, req processor.PlanRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) CreateSubscriptionSchedule(ctx context.Context, req processor.ScheduleRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type MockDonorStore struct {
	mock.Mock
}

func (m *MockDonorStore) FindByEmailAndLastName(ctx context.Context, email, lastName string) (*models.Donor, error) {
	args := m.Called(ctx, email, lastName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Donor), args.Error(1)
}

func (m *MockDonorStore) Create(ctx context.Context, donor *models.Donor) error {
	args := m.Called(ctx, donor)
	donor.ID = 9
	return args.Error(0)
}

func (m *MockDonorStore) UpdateCustomerRef(ctx context.Context, donorID uint, customerRef, fourDigit string) error {
	args := m.Called(ctx, donorID, customerRef, fourDigit)
	return args.Error(0)
}

type MockTransactionStore struct {
	mock.Mock
}

func (m *MockTransactionStore) InsertTransaction(ctx context.Context, tx *models.Transaction) (uint, error) {
	args := m.Called(ctx, tx)
	return args.Get(0).(uint), args.Error(1)
}

func (m *MockTransactionStore) InsertDetail(ctx context.Context, detail *models.ScheduleDetail) (uint, error) {
	args := m.Called(ctx, detail)
	return args.Get(0).(uint), args.Error(1)
}

func (m *MockTransactionStore) InsertCard(ctx context.Context, card *models.CardRecord) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockTransactionStore) InsertEmployerMatch(ctx context.Context, match *models.EmployerMatch) error {
	args := m.Called(ctx, match)
	return args.Error(0)
}

func (m *MockTransactionStore) DecrementRemaining(ctx context.Context, detailID uint) error {
	args := m.Called(ctx, detailID)
	return args.Error(0)
}

type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) Reconcile(ctx context.Context, line models.CartLine) (*schedule.Decision, error) {
	args := m.Called(ctx, line)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schedule.Decision), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Alert(ctx context.Context, subject, body string) error {
	args := m.Called(ctx, subject, body)
	return args.Error(0)
}

type testDeps struct {
	gateway    *MockGateway
	donors     *MockDonorStore
	store      *MockTransactionStore
	reconciler *MockReconciler
	notifier   *MockNotifier
	service    *Service
}

func newTestService() testDeps {
	d := testDeps{
		gateway:    new(MockGateway),
		donors:     new(MockDonorStore),
		store:      new(MockTransactionStore),
		reconciler: new(MockReconciler),
		notifier:   new(MockNotifier),
	}
	d.service = NewService(d.gateway, d.donors, d.store, d.reconciler, d.notifier, Config{
		CardFeeRate:   0.03,
		ReturnURL:     "https://donate.example.org/thank-you/",
		InvoicePrefix: "donare",
	})
	return d
}

func checkoutRequest(donationTypes []string, amounts []float64) *models.CheckoutRequest {
	n := len(amounts)
	appealIDs := make([]string, n)
	names := make([]string, n)
	quantities := make([]int, n)
	startDates := make([]string, n)
	amountIDs := make([]string, n)
	for i := 0; i < n; i++ {
		appealIDs[i] = fmt.Sprintf("A%d", i+1)
		names[i] = fmt.Sprintf("Appeal %d", i+1)
		quantities[i] = 1
		startDates[i] = "2026-08-15"
		amountIDs[i] = fmt.Sprintf("30%d", i+1)
	}

	return &models.CheckoutRequest{
		PaymentType: models.PaymentTypeCreditCard,
		Currency:    "usd",
		Cart: models.CartPayload{
			AppealIDs:     appealIDs,
			AppealNames:   names,
			Amounts:       amounts,
			Quantities:    quantities,
			DonationTypes: donationTypes,
			StartDates:    startDates,
			AmountIDs:     amountIDs,
		},
		Billing: models.BillingInfo{
			FirstName: "Amina",
			LastName:  "Rahman",
			Email:     "amina@example.org",
		},
		Card: models.CardInfo{
			Number:   "4242424242424242",
			ExpMonth: "12",
			ExpYear:  "2030",
			CVV:      "123",
		},
	}
}

func (d testDeps) expectHappyPathUpToCharge(amountMinor int64, status, redirectURL string) {
	d.gateway.On("CreatePaymentMethod", mock.Anything, mock.Anything, mock.Anything).
		Return("pm_1", nil)
	d.donors.On("FindByEmailAndLastName", mock.Anything, "amina@example.org", "Rahman").
		Return(&models.Donor{ID: 7, CustomerRef: "cus_1"}, nil)
	d.gateway.On("AttachPaymentMethod", mock.Anything, "cus_1", "pm_1").
		Return(nil)
	d.gateway.On("CreateCharge", mock.Anything, mock.MatchedBy(func(req processor.ChargeRequest) bool {
		return req.AmountMinor == amountMinor && req.Currency == "usd" && req.CustomerID == "cus_1"
	})).Return(&processor.ChargeResult{ID: "pi_1", Status: status, RedirectURL: redirectURL}, nil)
}

func TestProcessEmptyCart(t *testing.T) {
	d := newTestService()

	_, err := d.service.Process(context.Background(), checkoutRequest(nil, nil))
	assert.ErrorIs(t, err, errs.ErrEmptyCart)

	d.gateway.AssertNotCalled(t, "CreatePaymentMethod", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessCartShapeMismatch(t *testing.T) {
	d := newTestService()
	req := checkoutRequest([]string{"single"}, []float64{50})
	req.Cart.Amounts = []float64{50, 20}

	_, err := d.service.Process(context.Background(), req)
	assert.ErrorIs(t, err, models.ErrCartShape)
}

func TestProcessUnsupportedFrequency(t *testing.T) {
	d := newTestService()

	_, err := d.service.Process(context.Background(), checkoutRequest([]string{"fortnightly"}, []float64{50}))
	assert.ErrorIs(t, err, errs.ErrUnsupportedFrequency)

	// Classification runs before any processor or database call.
	d.gateway.AssertNotCalled(t, "CreatePaymentMethod", mock.Anything, mock.Anything, mock.Anything)
	d.donors.AssertNotCalled(t, "FindByEmailAndLastName", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessSingleLine(t *testing.T) {
	d := newTestService()
	d.expectHappyPathUpToCharge(5000, processor.ChargeSucceeded, "")

	d.store.On("InsertTransaction", mock.Anything, mock.MatchedBy(func(tx *models.Transaction) bool {
		return tx.DonorID == 7 && tx.CartAmount == 50.0 && tx.TotalAmount == 50.0 &&
			tx.Status == models.TransactionStatusCompleted
	})).Return(uint(11), nil)
	d.store.On("InsertDetail", mock.Anything, mock.MatchedBy(func(detail *models.ScheduleDetail) bool {
		return detail.TransactionID == 11 && detail.FrequencyCode == 0 && detail.Amount == 50.0
	})).Return(uint(21), nil)
	d.store.On("InsertCard", mock.Anything, mock.MatchedBy(func(card *models.CardRecord) bool {
		return card.TransactionID == 11 && card.FourDigit == "4242"
	})).Return(nil)

	result, err := d.service.Process(context.Background(), checkoutRequest([]string{"single"}, []float64{50}))
	require.NoError(t, err)

	assert.Equal(t, "pi_1", result.ChargeID)
	assert.Empty(t, result.RedirectURL)
	assert.Regexp(t, `^donare-`, result.InvoiceID)
	assert.Regexp(t, `^\d{15,16}$`, result.OrderNo)

	d.gateway.AssertNotCalled(t, "CreatePlan", mock.Anything, mock.Anything)
	d.gateway.AssertNotCalled(t, "CreateSubscriptionSchedule", mock.Anything, mock.Anything)
	d.store.AssertNumberOfCalls(t, "InsertDetail", 1)
	d.store.AssertExpectations(t)
}

func TestProcessSingleLineWithCardFee(t *testing.T) {
	d := newTestService()
	// 3% of $50 is $1.50, so the charge is 5150 minor units.
	d.expectHappyPathUpToCharge(5150, processor.ChargeSucceeded, "")

	d.store.On("InsertTransaction", mock.Anything, mock.MatchedBy(func(tx *models.Transaction) bool {
		return tx.CardFee == 1.5 && tx.TotalAmount == 51.5 && tx.CartAmount == 50.0
	})).Return(uint(11), nil)
	d.store.On("InsertDetail", mock.Anything, mock.Anything).Return(uint(21), nil)
	d.store.On("InsertCard", mock.Anything, mock.Anything).Return(nil)

	req := checkoutRequest([]string{"single"}, []float64{50})
	req.ApplyCardFee = true

	_, err := d.service.Process(context.Background(), req)
	require.NoError(t, err)
	d.store.AssertExpectations(t)
}

func TestProcessMonthlyFirstCycle(t *testing.T) {
	d := newTestService()
	d.expectHappyPathUpToCharge(2000, processor.ChargeSucceeded, "")

	monthly := frequency.ClassFor(frequency.Monthly)
	d.reconciler.On("Reconcile", mock.Anything, mock.MatchedBy(func(line models.CartLine) bool {
		return line.AppealID == "A1" && line.Amount == 20.0
	})).Return(&schedule.Decision{
		Line:                models.CartLine{AppealID: "A1", Amount: 20, Quantity: 1},
		Class:               monthly,
		FirstCycle:          true,
		TotalIterations:     60,
		RemainingIterations: 59,
	}, nil)

	d.gateway.On("CreatePlan", mock.Anything, mock.MatchedBy(func(req processor.PlanRequest) bool {
		return req.AmountMinor == 2000 && req.IntervalUnit == "month" && req.IntervalCount == 1
	})).Return("plan_1", nil)
	d.gateway.On("CreateSubscriptionSchedule", mock.Anything, mock.MatchedBy(func(req processor.ScheduleRequest) bool {
		return req.Iterations == 60 && len(req.Items) == 1 && req.Items[0].PlanID == "plan_1" &&
			req.CustomerID == "cus_1" && req.PaymentMethodID == "pm_1"
	})).Return("sub_1", nil)

	d.store.On("InsertTransaction", mock.Anything, mock.Anything).Return(uint(11), nil)
	d.store.On("InsertDetail", mock.Anything, mock.MatchedBy(func(detail *models.ScheduleDetail) bool {
		return detail.FrequencyCode == 1 && detail.TotalIterations == 60 &&
			detail.RemainingIterations == 59 && detail.SubscriptionRef == "sub_1"
	})).Return(uint(22), nil)
	d.store.On("InsertCard", mock.Anything, mock.Anything).Return(nil)

	_, err := d.service.Process(context.Background(), checkoutRequest([]string{"monthly"}, []float64{20}))
	require.NoError(t, err)

	d.gateway.AssertNumberOfCalls(t, "CreatePlan", 1)
	d.gateway.AssertNumberOfCalls(t, "CreateSubscriptionSchedule", 1)
	d.store.AssertExpectations(t)
}

func TestProcessGroupsSchedulesByFrequencyClass(t *testing.T) {
	d := newTestService()
	// $20 monthly + $100 yearly + $5 weekly, with two weekly lines.
	d.expectHappyPathUpToCharge(13000, processor.ChargeSucceeded, "")

	types := []string{"monthly", "yearly", "weekly", "weekly"}
	amounts := []float64{20, 100, 5, 5}
	req := checkoutRequest(types, amounts)

	for i, typ := range types {
		class, err := frequency.Classify(typ)
		require.NoError(t, err)
		appealID := fmt.Sprintf("A%d", i+1)
		d.reconciler.On("Reconcile", mock.Anything, mock.MatchedBy(func(line models.CartLine) bool {
			return line.AppealID == appealID
		})).Return(&schedule.Decision{
			Line:                models.CartLine{AppealID: appealID, Amount: amounts[i], Quantity: 1},
			Class:               class,
			FirstCycle:          true,
			TotalIterations:     class.Ceiling,
			RemainingIterations: class.Ceiling - 1,
		}, nil).Once()
	}

	d.gateway.On("CreatePlan", mock.Anything, mock.Anything).Return("plan_x", nil)
	d.gateway.On("CreateSubscriptionSchedule", mock.Anything, mock.Anything).
		Return("sub_x", nil)

	d.store.On("InsertTransaction", mock.Anything, mock.Anything).Return(uint(11), nil)
	d.store.On("InsertDetail", mock.Anything, mock.Anything).Return(uint(21), nil)
	d.store.On("InsertCard", mock.Anything, mock.Anything).Return(nil)

	_, err := d.service.Process(context.Background(), req)
	require.NoError(t, err)

	// Four plans, but only three distinct frequency classes.
	d.gateway.AssertNumberOfCalls(t, "CreatePlan", 4)
	d.gateway.AssertNumberOfCalls(t, "CreateSubscriptionSchedule", 3)
	d.store.AssertNumberOfCalls(t, "InsertDetail", 4)
}

func TestProcessRequiresAction(t *testing.T) {
	d := newTestService()
	d.expectHappyPathUpToCharge(2000, processor.ChargeRequiresAction, "https://processor.example.com/3ds")

	result, err := d.service.Process(context.Background(), checkoutRequest([]string{"monthly"}, []float64{20}))
	require.NoError(t, err)

	assert.Equal(t, "https://processor.example.com/3ds", result.RedirectURL)

	// The charge finalizes asynchronously; nothing downstream runs.
	d.reconciler.AssertNotCalled(t, "Reconcile", mock.Anything, mock.Anything)
	d.gateway.AssertNotCalled(t, "CreatePlan", mock.Anything, mock.Anything)
	d.store.AssertNotCalled(t, "InsertTransaction", mock.Anything, mock.Anything)
}

func TestProcessChargeDeclined(t *testing.T) {
	d := newTestService()
	d.expectHappyPathUpToCharge(5000, "requires_payment_method", "")

	_, err := d.service.Process(context.Background(), checkoutRequest([]string{"single"}, []float64{50}))
	assert.ErrorIs(t, err, errs.ErrChargeDeclined)

	d.gateway.AssertNotCalled(t, "CreatePlan", mock.Anything, mock.Anything)
	d.store.AssertNotCalled(t, "InsertTransaction", mock.Anything, mock.Anything)
}

func TestProcessContinuationGap(t *testing.T) {
	d := newTestService()
	d.expectHappyPathUpToCharge(2000, processor.ChargeSucceeded, "")

	d.reconciler.On("Reconcile", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: appeal A1", errs.ErrScheduleDetailNotFound))
	d.notifier.On("Alert", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := d.service.Process(context.Background(), checkoutRequest([]string{"monthly"}, []float64{20}))
	assert.ErrorIs(t, err, errs.ErrScheduleDetailNotFound)

	// No duplicate schedule is created and operations hears about the gap.
	d.gateway.AssertNotCalled(t, "CreatePlan", mock.Anything, mock.Anything)
	d.gateway.AssertNotCalled(t, "CreateSubscriptionSchedule", mock.Anything, mock.Anything)
	d.store.AssertNotCalled(t, "InsertTransaction", mock.Anything, mock.Anything)
	d.notifier.AssertNumberOfCalls(t, "Alert", 1)
}

func TestProcessContinuationDecrements(t *testing.T) {
	d := newTestService()
	d.expectHappyPathUpToCharge(2000, processor.ChargeSucceeded, "")

	d.reconciler.On("Reconcile", mock.Anything, mock.Anything).
		Return(&schedule.Decision{
			Line:                models.CartLine{AppealID: "A1", Amount: 20, Quantity: 1},
			Class:               frequency.ClassFor(frequency.Monthly),
			FirstCycle:          false,
			DetailID:            42,
			TotalIterations:     60,
			RemainingIterations: 57,
		}, nil)
	d.gateway.On("CreatePlan", mock.Anything, mock.Anything).Return("plan_1", nil)
	d.gateway.On("CreateSubscriptionSchedule", mock.Anything, mock.Anything).Return("sub_1", nil)

	d.store.On("InsertTransaction", mock.Anything, mock.Anything).Return(uint(11), nil)
	d.store.On("DecrementRemaining", mock.Anything, uint(42)).Return(nil)
	d.store.On("InsertCard", mock.Anything, mock.Anything).Return(nil)

	_, err := d.service.Process(context.Background(), checkoutRequest([]string{"monthly"}, []float64{20}))
	require.NoError(t, err)

	// A continuation cycle reuses the stored row instead of creating one.
	d.store.AssertNotCalled(t, "InsertDetail", mock.Anything, mock.Anything)
	d.store.AssertExpectations(t)
}

func TestProcessNewDonor(t *testing.T) {
	d := newTestService()

	d.gateway.On("CreatePaymentMethod", mock.Anything, mock.Anything, mock.Anything).
		Return("pm_1", nil)
	d.donors.On("FindByEmailAndLastName", mock.Anything, "amina@example.org", "Rahman").
		Return(nil, repositories.ErrDonorNotFound)
	d.gateway.On("CreateCustomer", mock.Anything, "Amina Rahman", "amina@example.org", "pm_1").
		Return("cus_new", nil)
	d.donors.On("Create", mock.Anything, mock.MatchedBy(func(donor *models.Donor) bool {
		return donor.CustomerRef == "cus_new" && donor.FourDigit == "4242"
	})).Return(nil)
	d.gateway.On("CreateCharge", mock.Anything, mock.MatchedBy(func(req processor.ChargeRequest) bool {
		return req.CustomerID == "cus_new"
	})).Return(&processor.ChargeResult{ID: "pi_1", Status: processor.ChargeSucceeded}, nil)

	d.store.On("InsertTransaction", mock.Anything, mock.Anything).Return(uint(11), nil)
	d.store.On("InsertDetail", mock.Anything, mock.Anything).Return(uint(21), nil)
	d.store.On("InsertCard", mock.Anything, mock.Anything).Return(nil)

	_, err := d.service.Process(context.Background(), checkoutRequest([]string{"single"}, []float64{50}))
	require.NoError(t, err)

	// Creating the customer with the payment method already attaches it.
	d.gateway.AssertNotCalled(t, "AttachPaymentMethod", mock.Anything, mock.Anything, mock.Anything)
	d.donors.AssertExpectations(t)
}

func TestProcessExistingDonorWithoutCustomerRef(t *testing.T) {
	d := newTestService()

	d.gateway.On("CreatePaymentMethod", mock.Anything, mock.Anything, mock.Anything).
		Return("pm_1", nil)
	d.donors.On("FindByEmailAndLastName", mock.Anything, "amina@example.org", "Rahman").
		Return(&models.Donor{ID: 7, CustomerRef: "0"}, nil)
	d.gateway.On("CreateCustomer", mock.Anything, "Amina Rahman", "amina@example.org", "pm_1").
		Return("cus_new", nil)
	d.donors.On("UpdateCustomerRef", mock.Anything, uint(7), "cus_new", "4242").
		Return(nil)
	d.gateway.On("AttachPaymentMethod", mock.Anything, "cus_new", "pm_1").
		Return(nil)
	d.gateway.On("CreateCharge", mock.Anything, mock.Anything).
		Return(&processor.ChargeResult{ID: "pi_1", Status: processor.ChargeSucceeded}, nil)

	d.store.On("InsertTransaction", mock.Anything, mock.Anything).Return(uint(11), nil)
	d.store.On("InsertDetail", mock.Anything, mock.Anything).Return(uint(21), nil)
	d.store.On("InsertCard", mock.Anything, mock.Anything).Return(nil)

	_, err := d.service.Process(context.Background(), checkoutRequest([]string{"single"}, []float64{50}))
	require.NoError(t, err)
	d.donors.AssertExpectations(t)
	d.gateway.AssertExpectations(t)
}

func TestProcessPaymentMethodRejected(t *testing.T) {
	d := newTestService()
	d.gateway.On("CreatePaymentMethod", mock.Anything, mock.Anything, mock.Anything).
		Return("", assert.AnError)

	_, err := d.service.Process(context.Background(), checkoutRequest([]string{"single"}, []float64{50}))
	assert.ErrorIs(t, err, errs.ErrPaymentMethodRejected)

	d.donors.AssertNotCalled(t, "FindByEmailAndLastName", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessPersistenceFailureAlerts(t *testing.T) {
	d := newTestService()
	d.expectHappyPathUpToCharge(5000, processor.ChargeSucceeded, "")

	d.store.On("InsertTransaction", mock.Anything, mock.Anything).
		Return(uint(0), assert.AnError)
	d.notifier.On("Alert", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := d.service.Process(context.Background(), checkoutRequest([]string{"single"}, []float64{50}))
	assert.ErrorIs(t, err, errs.ErrPersistenceFailed)
	d.notifier.AssertNumberOfCalls(t, "Alert", 1)
}

func TestProcessEmployerMatch(t *testing.T) {
	d := newTestService()
	d.expectHappyPathUpToCharge(5000, processor.ChargeSucceeded, "")

	d.store.On("InsertTransaction", mock.Anything, mock.Anything).Return(uint(11), nil)
	d.store.On("InsertDetail", mock.Anything, mock.Anything).Return(uint(21), nil)
	d.store.On("InsertCard", mock.Anything, mock.Anything).Return(nil)
	d.store.On("InsertEmployerMatch", mock.Anything, mock.MatchedBy(func(match *models.EmployerMatch) bool {
		return match.DonorID == 7 && match.EmployerName == "Acme Corp"
	})).Return(nil)

	req := checkoutRequest([]string{"single"}, []float64{50})
	req.Billing.EmployerName = "Acme Corp"
	req.Billing.EmployerEmail = "match@acme.example"

	_, err := d.service.Process(context.Background(), req)
	require.NoError(t, err)
	d.store.AssertExpectations(t)
}
