package activities

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mkravets/gearlog-backend/internal/auth"
	"github.com/mkravets/gearlog-backend/internal/domain"
	"github.com/mkravets/gearlog-backend/internal/service/usage"
)

// Edit rewrites an activity's window, gear, or metrics. The old attribution
// is backed out and the new one applied in the same transaction, so parts
// credited under either version end up exactly as if the activity had been
// recorded with the new values from the start.
func (s *Service) Edit(ctx context.Context, id uuid.UUID, input ActivityInput) (*domain.Activity, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	current, err := s.activities.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}
	if err := auth.Authorize(ctx, current.OwnerID); err != nil {
		return nil, err
	}

	if input.GearID != current.GearID {
		gear, gErr := s.gears.GetByID(ctx, input.GearID)
		if gErr != nil {
			return nil, fmt.Errorf("get gear: %w", gErr)
		}
		if gear.OwnerID != current.OwnerID {
			return nil, fmt.Errorf("activity and gear belong to different owners: %w", domain.ErrForbidden)
		}
	}

	updated := *current
	updated.GearID = input.GearID
	updated.Name = input.Name
	updated.StartAt = input.StartAt.UTC()
	updated.Duration = input.Duration
	updated.Metrics = input.metrics()

	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		oldDeltas, dErr := s.usage.DeltasFor(txCtx, current)
		if dErr != nil {
			return fmt.Errorf("attribute old version: %w", dErr)
		}

		if err := s.activities.Update(txCtx, &updated); err != nil {
			return fmt.Errorf("update activity: %w", err)
		}

		newDeltas, dErr := s.usage.DeltasFor(txCtx, &updated)
		if dErr != nil {
			return fmt.Errorf("attribute new version: %w", dErr)
		}

		if err := s.usage.ApplyDeltas(txCtx, usage.NegateDeltas(oldDeltas)); err != nil {
			return fmt.Errorf("back out old usage: %w", err)
		}
		if err := s.usage.ApplyDeltas(txCtx, newDeltas); err != nil {
			return fmt.Errorf("apply new usage: %w", err)
		}

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.log.Info("activity edited", "activity_id", id)

	return &updated, nil
}
