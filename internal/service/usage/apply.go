package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkravets/gearlog-backend/internal/domain"
)

// DeltasFor computes the per-part usage deltas of a single activity. The
// result applied through ApplyDeltas equals what a full recompute would
// produce, because each delta is rounded once at attribution time and
// integer addition commutes.
func (s *Service) DeltasFor(ctx context.Context, act *domain.Activity) ([]domain.UsageDelta, error) {
	return s.attributeActivity(ctx, act)
}

// ApplyDeltas folds usage deltas into the cached aggregates, one part at a
// time under the optimistic version check. Negated deltas reverse a
// previously applied activity.
func (s *Service) ApplyDeltas(ctx context.Context, deltas []domain.UsageDelta) error {
	for _, d := range deltas {
		if err := s.applyDelta(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) applyDelta(ctx context.Context, d domain.UsageDelta) error {
	for attempt := 0; attempt < s.cfg.RecomputeRetries; attempt++ {
		expected := int64(0)
		base := domain.Metrics{}
		var baseCount int64

		current, err := s.aggregates.Get(ctx, d.PartID)
		switch {
		case err == nil:
			expected = current.Version
			base = current.Metrics
			baseCount = current.ActivityCount
		case errors.Is(err, domain.ErrNotFound):
		default:
			return fmt.Errorf("get aggregate: %w", err)
		}

		agg := &domain.UsageAggregate{
			PartID:        d.PartID,
			Metrics:       base.Add(d.Metrics),
			ActivityCount: baseCount + d.ActivityCount,
			Version:       expected + 1,
			RecomputedAt:  time.Now().UTC().Truncate(time.Microsecond),
		}

		err = s.aggregates.Save(ctx, agg, expected)
		if errors.Is(err, domain.ErrStaleVersion) {
			continue
		}
		if err != nil {
			return fmt.Errorf("save aggregate: %w", err)
		}
		return nil
	}

	return fmt.Errorf("apply delta for part %s: retries exhausted: %w", d.PartID, domain.ErrConflict)
}

// NegateDeltas returns the inverse delta set, used to back out an activity's
// contribution before re-crediting an edited version.
func NegateDeltas(deltas []domain.UsageDelta) []domain.UsageDelta {
	out := make([]domain.UsageDelta, len(deltas))
	for i, d := range deltas {
		out[i] = domain.UsageDelta{
			PartID:        d.PartID,
			Metrics:       d.Metrics.Neg(),
			ActivityCount: -d.ActivityCount,
		}
	}
	return out
}

// AffectedParts returns the distinct part IDs credited by a delta set.
func AffectedParts(deltas []domain.UsageDelta) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(deltas))
	seen := make(map[uuid.UUID]bool)
	for _, d := range deltas {
		if seen[d.PartID] {
			continue
		}
		seen[d.PartID] = true
		ids = append(ids, d.PartID)
	}
	return ids
}
