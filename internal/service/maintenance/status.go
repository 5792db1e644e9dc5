package maintenance

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mkravets/gearlog-backend/internal/auth"
	"github.com/mkravets/gearlog-backend/internal/domain"
)

// PartStatus evaluates every plan covering a part against its current usage
// aggregate. Both direct plans and category-wide plans apply.
func (s *Service) PartStatus(ctx context.Context, partID uuid.UUID) ([]domain.ServiceStatus, error) {
	part, err := s.parts.GetByID(ctx, partID)
	if err != nil {
		return nil, fmt.Errorf("get part: %w", err)
	}
	if err := auth.Authorize(ctx, part.OwnerID); err != nil {
		return nil, err
	}

	plans, err := s.plans.ListPlansForPart(ctx, part.ID, part.Category)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	if len(plans) == 0 {
		return []domain.ServiceStatus{}, nil
	}

	events, err := s.plans.ListEventsByPart(ctx, part.ID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	agg, err := s.usage.GetUsage(ctx, part.ID)
	if err != nil {
		return nil, fmt.Errorf("get usage: %w", err)
	}

	return EvaluateStatuses(plans, events, agg.Snapshot()), nil
}
