package usage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mkravets/gearlog-backend/internal/auth"
	"github.com/mkravets/gearlog-backend/internal/domain"
)

// GetUsage returns the part's cached usage aggregate. A part that has never
// been credited reads as the zero aggregate at version 0.
func (s *Service) GetUsage(ctx context.Context, partID uuid.UUID) (*domain.UsageAggregate, error) {
	part, err := s.parts.GetByID(ctx, partID)
	if err != nil {
		return nil, fmt.Errorf("get part: %w", err)
	}
	if err := auth.Authorize(ctx, part.OwnerID); err != nil {
		return nil, err
	}

	agg, err := s.aggregates.Get(ctx, partID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.UsageAggregate{PartID: partID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get aggregate: %w", err)
	}

	return agg, nil
}
