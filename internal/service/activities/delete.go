package activities

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mkravets/gearlog-backend/internal/auth"
	"github.com/mkravets/gearlog-backend/internal/service/usage"
)

// Delete removes an activity from the ledger and backs its credit out of
// every part's aggregate in the same transaction.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	current, err := s.activities.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get activity: %w", err)
	}
	if err := auth.Authorize(ctx, current.OwnerID); err != nil {
		return err
	}

	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		deltas, dErr := s.usage.DeltasFor(txCtx, current)
		if dErr != nil {
			return fmt.Errorf("attribute activity: %w", dErr)
		}

		if err := s.activities.Delete(txCtx, id); err != nil {
			return fmt.Errorf("delete activity: %w", err)
		}

		if err := s.usage.ApplyDeltas(txCtx, usage.NegateDeltas(deltas)); err != nil {
			return fmt.Errorf("back out usage: %w", err)
		}

		return nil
	})
	if txErr != nil {
		return txErr
	}

	s.log.Info("activity deleted", "activity_id", id)

	return nil
}
