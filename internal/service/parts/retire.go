package parts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkravets/gearlog-backend/internal/auth"
	"github.com/mkravets/gearlog-backend/internal/domain"
)

// Retire soft-retires a part. A mounted part must be detached first; its
// usage history and aggregates remain readable afterwards.
func (s *Service) Retire(ctx context.Context, id uuid.UUID) (*domain.Part, error) {
	part, err := s.parts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get part: %w", err)
	}
	if err := auth.Authorize(ctx, part.OwnerID); err != nil {
		return nil, err
	}

	open, err := s.attachments.OpenByPart(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check open attachment: %w", err)
	}
	if open != nil {
		return nil, fmt.Errorf("part %s is mounted on gear %s: %w", id, open.GearID, domain.ErrConflict)
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	if err := s.parts.Retire(ctx, id, now); err != nil {
		return nil, fmt.Errorf("retire part: %w", err)
	}

	part.RetiredAt = &now

	s.log.Info("part retired", "part_id", id)

	return part, nil
}
