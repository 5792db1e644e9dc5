package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkravets/gearlog-backend/internal/auth"
	"github.com/mkravets/gearlog-backend/internal/domain"
	"github.com/mkravets/gearlog-backend/internal/service/usage/attribution"
)

// Recompute rebuilds a part's aggregate from its timeline, on demand. This is
// the authenticated entry point behind the reconciliation endpoint; mutation
// flows call RecomputePart directly inside their own transaction.
func (s *Service) Recompute(ctx context.Context, partID uuid.UUID) (*domain.UsageAggregate, error) {
	part, err := s.parts.GetByID(ctx, partID)
	if err != nil {
		return nil, fmt.Errorf("get part: %w", err)
	}
	if err := auth.Authorize(ctx, part.OwnerID); err != nil {
		return nil, err
	}

	var agg *domain.UsageAggregate
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var rErr error
		agg, rErr = s.RecomputePart(txCtx, partID)
		return rErr
	})
	if txErr != nil {
		return nil, txErr
	}

	return agg, nil
}

// RecomputePart rebuilds the aggregate from attachments and activities and
// writes it under the optimistic version check, retrying on concurrent
// writers. After the retry budget it gives up with ErrConflict.
func (s *Service) RecomputePart(ctx context.Context, partID uuid.UUID) (*domain.UsageAggregate, error) {
	for attempt := 0; attempt < s.cfg.RecomputeRetries; attempt++ {
		expected := int64(0)
		current, err := s.aggregates.Get(ctx, partID)
		switch {
		case err == nil:
			expected = current.Version
		case errors.Is(err, domain.ErrNotFound):
			// First write for this part.
		default:
			return nil, fmt.Errorf("get aggregate: %w", err)
		}

		metrics, count, err := s.rebuild(ctx, partID)
		if err != nil {
			return nil, err
		}

		agg := &domain.UsageAggregate{
			PartID:        partID,
			Metrics:       metrics,
			ActivityCount: count,
			Version:       expected + 1,
			RecomputedAt:  time.Now().UTC().Truncate(time.Microsecond),
		}

		err = s.aggregates.Save(ctx, agg, expected)
		if errors.Is(err, domain.ErrStaleVersion) {
			s.log.Debug("aggregate version raced, retrying", "part_id", partID, "attempt", attempt+1)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("save aggregate: %w", err)
		}

		return agg, nil
	}

	return nil, fmt.Errorf("recompute part %s: retries exhausted: %w", partID, domain.ErrConflict)
}

// rebuild computes the part's true cumulative usage by replaying every
// activity that overlaps one of its attachment intervals through the
// attribution engine.
func (s *Service) rebuild(ctx context.Context, partID uuid.UUID) (domain.Metrics, int64, error) {
	stints, err := s.attachments.ListByPart(ctx, partID)
	if err != nil {
		return domain.Metrics{}, 0, fmt.Errorf("list attachments: %w", err)
	}

	var (
		total domain.Metrics
		count int64
	)
	seen := make(map[uuid.UUID]bool)

	for _, stint := range stints {
		to := farFuture
		if stint.EndAt != nil {
			to = *stint.EndAt
		}

		activities, err := s.activities.ListOverlappingForGear(ctx, stint.GearID, stint.StartAt, to)
		if err != nil {
			return domain.Metrics{}, 0, fmt.Errorf("list activities: %w", err)
		}

		for _, act := range activities {
			if seen[act.ID] {
				continue
			}
			seen[act.ID] = true

			deltas, err := s.attributeActivity(ctx, act)
			if err != nil {
				return domain.Metrics{}, 0, err
			}
			for _, d := range deltas {
				if d.PartID != partID {
					continue
				}
				total = total.Add(d.Metrics)
				count += d.ActivityCount
			}
		}
	}

	return total, count, nil
}

// attributeActivity runs one activity through the attribution engine against
// the full attachment set of its gear during its window.
func (s *Service) attributeActivity(ctx context.Context, act *domain.Activity) ([]domain.UsageDelta, error) {
	gearAtts, err := s.attachments.ListForGearOverlapping(ctx, act.GearID, act.StartAt, act.EndAt())
	if err != nil {
		return nil, fmt.Errorf("list gear attachments: %w", err)
	}
	return attribution.SumByPart(attribution.Attribute(act, gearAtts)), nil
}
