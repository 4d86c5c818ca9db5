// Package schedule decides how each recurring cart line relates to
// previously recorded billing schedules.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	errs "donare/internal/errors"
	"donare/internal/models"
	"donare/internal/repositories"
	"donare/internal/services/frequency"
)

const dateLayout = "2006-01-02"

// Decision is the reconciliation outcome for one recurring cart line.
type Decision struct {
	Line  models.CartLine
	Class frequency.Class

	// FirstCycle is true when the line's start date is today and a new
	// detail row must be created.
	FirstCycle bool

	// DetailID identifies the matched row on continuation cycles.
	DetailID uint

	TotalIterations     int
	RemainingIterations int
	NextChargeDate      time.Time
}

// DetailFinder locates previously recorded schedule detail rows.
type DetailFinder interface {
	FindMatch(ctx context.Context, amount float64, quantity, frequencyCode int, amountID, appealID string) (*models.ScheduleDetail, error)
}

// Reconciler matches recurring cart lines against recorded schedules so a
// retried or continued cycle never creates a duplicate detail row.
type Reconciler struct {
	details DetailFinder
	now     func() time.Time
}

func NewReconciler(details DetailFinder) *Reconciler {
	return &Reconciler{
		details: details,
		now:     time.Now,
	}
}

// Reconcile classifies one recurring line as a first charge or a
// continuation of an existing schedule.
//
// First charge (start date == today): a fresh detail row is due, with the
// class ceiling as total iterations and one iteration consumed by the
// charge that is about to land. Continuation: the stored row matching
// (amount, quantity, frequency, amount id, appeal id) is reused; a missing
// row is a reconciliation gap and fails the line rather than silently
// duplicating the schedule.
func (r *Reconciler) Reconcile(ctx context.Context, line models.CartLine) (*Decision, error) {
	class, err := frequency.Classify(line.DonationType)
	if err != nil {
		return nil, err
	}
	if !class.Recurring() {
		return nil, fmt.Errorf("%w: single lines have no schedule", errs.ErrUnsupportedFrequency)
	}

	start, err := time.Parse(dateLayout, line.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", line.StartDate, err)
	}

	today := r.now().Format(dateLayout)
	if line.StartDate == today {
		return &Decision{
			Line:                line,
			Class:               class,
			FirstCycle:          true,
			TotalIterations:     class.Ceiling,
			RemainingIterations: class.Ceiling - 1,
			NextChargeDate:      class.NextDate(start),
		}, nil
	}

	amountID, _ := line.EffectiveIDs()
	detail, err := r.details.FindMatch(ctx, line.Amount, line.Quantity, int(class.Code), amountID, line.AppealID)
	if err != nil {
		if errors.Is(err, repositories.ErrDetailNotFound) {
			return nil, fmt.Errorf("%w: appeal %s", errs.ErrScheduleDetailNotFound, line.AppealID)
		}
		return nil, fmt.Errorf("schedule reconciliation failed: %w", err)
	}

	return &Decision{
		Line:                line,
		Class:               class,
		FirstCycle:          false,
		DetailID:            detail.ID,
		TotalIterations:     detail.TotalIterations,
		RemainingIterations: detail.RemainingIterations - 1,
		NextChargeDate:      class.NextDate(r.now()),
	}, nil
}
