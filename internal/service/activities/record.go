package activities

import (
	"context"
	"fmt"

	"github.com/mkravets/gearlog-backend/internal/auth"
	"github.com/mkravets/gearlog-backend/internal/domain"
	"github.com/mkravets/gearlog-backend/pkg/ctxutil"
)

// Record appends an activity to the ledger and credits the parts mounted on
// its gear during its window, incrementally. The activity row and the
// aggregate updates commit together.
func (s *Service) Record(ctx context.Context, input ActivityInput) (*domain.Activity, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	gear, err := s.gears.GetByID(ctx, input.GearID)
	if err != nil {
		return nil, fmt.Errorf("get gear: %w", err)
	}
	if err := auth.Authorize(ctx, gear.OwnerID); err != nil {
		return nil, err
	}

	var created *domain.Activity
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var createErr error
		created, createErr = s.activities.Create(txCtx, &domain.Activity{
			OwnerID:  userID,
			GearID:   gear.ID,
			Name:     input.Name,
			StartAt:  input.StartAt.UTC(),
			Duration: input.Duration,
			Metrics:  input.metrics(),
		})
		if createErr != nil {
			return fmt.Errorf("create activity: %w", createErr)
		}

		deltas, dErr := s.usage.DeltasFor(txCtx, created)
		if dErr != nil {
			return fmt.Errorf("attribute activity: %w", dErr)
		}
		if err := s.usage.ApplyDeltas(txCtx, deltas); err != nil {
			return fmt.Errorf("apply usage deltas: %w", err)
		}

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.log.Info("activity recorded",
		"activity_id", created.ID,
		"gear_id", created.GearID,
		"distance_m", created.Metrics.DistanceM,
	)

	return created, nil
}
