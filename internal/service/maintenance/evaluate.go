package maintenance

import (
	"github.com/mkravets/gearlog-backend/internal/domain"
)

// EvaluateStatuses computes the status of every plan for one part.
//
// The baseline of a plan is the usage snapshot captured by the most recent
// service event that matches it (an event with no plan reference matches all
// plans). With no matching event the baseline is zero, so wear counts from
// the very first credited activity. A one-time plan with any matching event
// is satisfied permanently; a recurring plan is due once usage since the
// baseline reaches the threshold.
//
// events must be ordered most recent first, the order ListEventsByPart
// returns them in.
func EvaluateStatuses(plans []*domain.ServicePlan, events []*domain.ServiceEvent, snapshot domain.UsageSnapshot) []domain.ServiceStatus {
	statuses := make([]domain.ServiceStatus, 0, len(plans))

	for _, plan := range plans {
		var last *domain.ServiceEvent
		for _, e := range events {
			if e.Matches(plan.ID) {
				last = e
				break
			}
		}

		baseline := domain.UsageSnapshot{}
		if last != nil {
			baseline = last.Baseline
		}

		since := snapshot.MetricValue(plan.Metric) - baseline.MetricValue(plan.Metric)

		state := domain.ServiceStateOk
		switch {
		case !plan.Recurring && last != nil:
			state = domain.ServiceStateSatisfied
		case since >= plan.Threshold:
			state = domain.ServiceStateDue
		}

		status := domain.ServiceStatus{
			Plan:          *plan,
			State:         state,
			SinceBaseline: since,
			Margin:        plan.Threshold - since,
		}
		if last != nil {
			performedAt := last.PerformedAt
			status.LastServicedAt = &performedAt
		}
		statuses = append(statuses, status)
	}

	return statuses
}
