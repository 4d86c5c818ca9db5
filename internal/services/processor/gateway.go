// Package processor wraps the payment processor behind a narrow gateway
// interface so the checkout flow can be exercised without network calls.
package processor

import (
	"context"
	"time"
)

// Charge result states the orchestrator branches on.
const (
	ChargeSucceeded            = "succeeded"
	ChargeRequiresAction       = "requires_action"
	ChargeRequiresSourceAction = "requires_source_action"
)

// CardDetails carries the raw card fields forwarded to the processor.
type CardDetails struct {
	Number   string
	ExpMonth string
	ExpYear  string
	CVC      string
}

// BillingDetails identifies the cardholder on the payment method.
type BillingDetails struct {
	Name  string
	Email string
}

// ChargeRequest describes one confirmed payment intent.
type ChargeRequest struct {
	AmountMinor     int64
	Currency        string
	PaymentMethodID string
	CustomerID      string
	Description     string
	Metadata        map[string]string
	ReturnURL       string
}

// ChargeResult is the processor's answer to a charge request.
type ChargeResult struct {
	ID          string
	Status      string
	RedirectURL string
}

// PlanRequest describes one recurring price object.
type PlanRequest struct {
	AmountMinor   int64
	Currency      string
	IntervalUnit  string
	IntervalCount int64
	ProductName   string
	Metadata      map[string]string
}

// ScheduleItem is one plan within a subscription schedule phase.
type ScheduleItem struct {
	PlanID   string
	Quantity int64
}

// ScheduleRequest describes one subscription schedule grouping all plans
// of a frequency class.
type ScheduleRequest struct {
	CustomerID      string
	PaymentMethodID string
	StartDate       time.Time
	Iterations      int64
	Items           []ScheduleItem
	Metadata        map[string]string
}

// Gateway is the processor surface the checkout orchestrator consumes.
type Gateway interface {
	CreatePaymentMethod(ctx context.Context, card CardDetails, billing BillingDetails) (string, error)
	CreateCustomer(ctx context.Context, name, email, paymentMethodID string) (string, error)
	AttachPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error
	CreateCharge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	CreatePlan(ctx context.Context, req PlanRequest) (string, error)
	CreateSubscriptionSchedule(ctx context.Context, req ScheduleRequest) (string, error)
}
