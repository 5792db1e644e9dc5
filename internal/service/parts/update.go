package parts

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mkravets/gearlog-backend/internal/auth"
	"github.com/mkravets/gearlog-backend/internal/domain"
)

// Update changes a part's name or category. Category changes take effect on
// the next service status evaluation; usage history is untouched.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input PartInput) (*domain.Part, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	part, err := s.parts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get part: %w", err)
	}
	if err := auth.Authorize(ctx, part.OwnerID); err != nil {
		return nil, err
	}
	if part.IsRetired() {
		return nil, fmt.Errorf("part %s is retired: %w", id, domain.ErrConflict)
	}

	name := strings.TrimSpace(input.Name)
	if err := s.parts.Update(ctx, id, name, input.Category); err != nil {
		return nil, fmt.Errorf("update part: %w", err)
	}

	part.Name = name
	part.Category = input.Category

	s.log.Info("part updated", "part_id", id)

	return part, nil
}
