package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkravets/gearlog-backend/internal/auth"
	"github.com/mkravets/gearlog-backend/internal/domain"
)

// EventInput records a maintenance action on a part. A nil PlanID resets
// every plan covering the part.
type EventInput struct {
	PartID      uuid.UUID
	PlanID      *uuid.UUID
	PerformedAt time.Time
	Note        string
}

// RecordService records a service event and freezes the part's current
// aggregate as the event's baseline. Recurring plans measure wear from this
// snapshot onward; evaluation stays lazy, nothing else is written.
func (s *Service) RecordService(ctx context.Context, input EventInput) (*domain.ServiceEvent, error) {
	if input.PartID == uuid.Nil {
		return nil, domain.NewValidationError("part_id", "required")
	}
	if input.PerformedAt.IsZero() {
		return nil, domain.NewValidationError("performed_at", "required")
	}

	part, err := s.parts.GetByID(ctx, input.PartID)
	if err != nil {
		return nil, fmt.Errorf("get part: %w", err)
	}
	if err := auth.Authorize(ctx, part.OwnerID); err != nil {
		return nil, err
	}

	if input.PlanID != nil {
		plan, pErr := s.plans.GetPlan(ctx, *input.PlanID)
		if pErr != nil {
			return nil, fmt.Errorf("get plan: %w", pErr)
		}
		if !plan.AppliesTo(part) {
			return nil, fmt.Errorf("plan %s does not cover part %s: %w", plan.ID, part.ID, domain.ErrValidation)
		}
	}

	agg, err := s.usage.GetUsage(ctx, input.PartID)
	if err != nil {
		return nil, fmt.Errorf("get usage: %w", err)
	}

	created, err := s.plans.CreateEvent(ctx, &domain.ServiceEvent{
		PartID:      part.ID,
		PlanID:      input.PlanID,
		PerformedAt: input.PerformedAt.UTC(),
		Note:        input.Note,
		Baseline:    agg.Snapshot(),
	})
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.log.Info("service recorded", "event_id", created.ID, "part_id", part.ID)

	return created, nil
}

// ListEvents returns the part's service history, most recent first.
func (s *Service) ListEvents(ctx context.Context, partID uuid.UUID) ([]*domain.ServiceEvent, error) {
	part, err := s.parts.GetByID(ctx, partID)
	if err != nil {
		return nil, fmt.Errorf("get part: %w", err)
	}
	if err := auth.Authorize(ctx, part.OwnerID); err != nil {
		return nil, err
	}

	return s.plans.ListEventsByPart(ctx, partID)
}
