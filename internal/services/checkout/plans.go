package checkout

import (
	"context"
	"fmt"

	errs "donare/internal/errors"
	"donare/internal/services/frequency"
	"donare/internal/services/processor"
	"donare/internal/services/schedule"
)

// Subscription schedules are built in a fixed class order so retries hit
// the processor identically.
var classOrder = []frequency.Code{
	frequency.Monthly,
	frequency.Yearly,
	frequency.Daily,
	frequency.Weekly,
	frequency.Quarterly,
}

// buildPlans requests one processor plan per recurring line, sized from
// the line amount plus the per-line card surcharge. Any rejection aborts
// the whole batch; partial subscriptions are never built.
func (s *Service) buildPlans(ctx context.Context, decisions []*schedule.Decision, summary cartSummary, currency string, applyFee bool) ([]planRef, error) {
	refs := make([]planRef, 0, len(decisions))
	for _, d := range decisions {
		amount := d.Line.Amount
		if applyFee {
			amount = Round2(amount + Round2(amount*s.cfg.CardFeeRate))
		}

		planID, err := s.gateway.CreatePlan(ctx, processor.PlanRequest{
			AmountMinor:   ToMinorUnits(amount),
			Currency:      currency,
			IntervalUnit:  d.Class.Unit,
			IntervalCount: d.Class.UnitCount,
			ProductName:   summary.planName,
			Metadata:      summary.scheduleMeta,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrPlanCreationFailed, err)
		}

		refs = append(refs, planRef{
			planID:   planID,
			code:     d.Class.Code,
			quantity: int64(d.Line.Quantity),
		})
	}
	return refs, nil
}

// buildSchedules groups the built plans by frequency class and requests
// one subscription schedule per non-empty class. Each schedule starts one
// cycle from now, runs for the class ceiling, and releases itself after
// the last iteration.
func (s *Service) buildSchedules(ctx context.Context, refs []planRef, customerID, paymentMethodID string, summary cartSummary) (map[frequency.Code]string, error) {
	subs := make(map[frequency.Code]string)
	for _, code := range classOrder {
		items := make([]processor.ScheduleItem, 0, len(refs))
		for _, ref := range refs {
			if ref.code == code {
				items = append(items, processor.ScheduleItem{
					PlanID:   ref.planID,
					Quantity: ref.quantity,
				})
			}
		}
		if len(items) == 0 {
			continue
		}

		class := frequency.ClassFor(code)
		subID, err := s.gateway.CreateSubscriptionSchedule(ctx, processor.ScheduleRequest{
			CustomerID:      customerID,
			PaymentMethodID: paymentMethodID,
			StartDate:       class.NextDate(s.now()),
			Iterations:      int64(class.Ceiling),
			Items:           items,
			Metadata:        summary.scheduleMeta,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrPlanCreationFailed, err)
		}
		subs[code] = subID
	}
	return subs, nil
}
