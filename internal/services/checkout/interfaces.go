package checkout

import (
	"context"

	"donare/internal/models"
	"donare/internal/services/schedule"
)

// DonorStore resolves and mutates donor records.
type DonorStore interface {
	FindByEmailAndLastName(ctx context.Context, email, lastName string) (*models.Donor, error)
	Create(ctx context.Context, donor *models.Donor) error
	UpdateCustomerRef(ctx context.Context, donorID uint, customerRef, fourDigit string) error
}

// TransactionStore persists the checkout's records.
type TransactionStore interface {
	InsertTransaction(ctx context.Context, tx *models.Transaction) (uint, error)
	InsertDetail(ctx context.Context, detail *models.ScheduleDetail) (uint, error)
	InsertCard(ctx context.Context, card *models.CardRecord) error
	InsertEmployerMatch(ctx context.Context, match *models.EmployerMatch) error
	DecrementRemaining(ctx context.Context, detailID uint) error
}

// Reconciler decides first-cycle versus continuation per recurring line.
type Reconciler interface {
	Reconcile(ctx context.Context, line models.CartLine) (*schedule.Decision, error)
}

// Notifier delivers best-effort operations alerts.
type Notifier interface {
	Alert(ctx context.Context, subject, body string) error
}
