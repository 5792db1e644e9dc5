package timeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mkravets/gearlog-backend/internal/auth"
	"github.com/mkravets/gearlog-backend/internal/domain"
)

// PartHistory returns every attachment of a part, oldest first.
func (s *Service) PartHistory(ctx context.Context, partID uuid.UUID) ([]*domain.Attachment, error) {
	part, err := s.parts.GetByID(ctx, partID)
	if err != nil {
		return nil, fmt.Errorf("get part: %w", err)
	}
	if err := auth.Authorize(ctx, part.OwnerID); err != nil {
		return nil, err
	}

	return s.attachments.ListByPart(ctx, partID)
}

// PositionHistory returns the occupancy history of one gear position,
// oldest first.
func (s *Service) PositionHistory(ctx context.Context, gearID uuid.UUID, position string) ([]*domain.Attachment, error) {
	pos := domain.NormalizePosition(position)
	if pos == "" {
		return nil, domain.NewValidationError("position", "required")
	}

	gear, err := s.gears.GetByID(ctx, gearID)
	if err != nil {
		return nil, fmt.Errorf("get gear: %w", err)
	}
	if err := auth.Authorize(ctx, gear.OwnerID); err != nil {
		return nil, err
	}

	return s.attachments.ListByPosition(ctx, gearID, pos)
}
