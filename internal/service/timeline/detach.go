package timeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkravets/gearlog-backend/internal/auth"
	"github.com/mkravets/gearlog-backend/internal/domain"
)

// Detach closes an open attachment at the given instant. Usage credit the
// part would have earned after that instant is removed by the recompute in
// the same transaction. Detaching an already-closed attachment is a conflict.
func (s *Service) Detach(ctx context.Context, attachmentID uuid.UUID, at time.Time) (*domain.Attachment, error) {
	if at.IsZero() {
		return nil, domain.NewValidationError("at", "required")
	}
	at = at.UTC()

	a, err := s.attachments.GetByID(ctx, attachmentID)
	if err != nil {
		return nil, fmt.Errorf("get attachment: %w", err)
	}

	part, err := s.parts.GetByID(ctx, a.PartID)
	if err != nil {
		return nil, fmt.Errorf("get part: %w", err)
	}
	if err := auth.Authorize(ctx, part.OwnerID); err != nil {
		return nil, err
	}

	if !a.IsOpen() {
		return nil, fmt.Errorf("attachment %s is already closed: %w", a.ID, domain.ErrConflict)
	}
	if at.Before(a.StartAt) {
		return nil, fmt.Errorf("detach before attach: %w", domain.ErrInvalidRange)
	}

	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.attachments.SetInterval(txCtx, a.ID, a.StartAt, &at); err != nil {
			return fmt.Errorf("close attachment: %w", err)
		}
		if _, err := s.usage.RecomputePart(txCtx, a.PartID); err != nil {
			return fmt.Errorf("recompute usage for part %s: %w", a.PartID, err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	a.EndAt = &at

	s.log.Info("part detached",
		"attachment_id", a.ID,
		"part_id", a.PartID,
		"gear_id", a.GearID,
		"at", at,
	)

	return a, nil
}
