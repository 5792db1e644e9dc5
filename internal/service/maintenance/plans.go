package maintenance

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mkravets/gearlog-backend/internal/auth"
	"github.com/mkravets/gearlog-backend/internal/domain"
	"github.com/mkravets/gearlog-backend/pkg/ctxutil"
)

// PlanInput describes a new service plan. Exactly one of PartID and Category
// must be set.
type PlanInput struct {
	PartID    *uuid.UUID
	Category  *domain.PartCategory
	Name      string
	Metric    domain.MetricKind
	Threshold int64
	Recurring bool
}

// Validate checks field-level constraints.
func (in PlanInput) Validate() error {
	var fields []domain.FieldError
	if (in.PartID == nil) == (in.Category == nil) {
		fields = append(fields, domain.FieldError{Field: "target", Message: "exactly one of part_id and category must be set"})
	}
	if in.Category != nil && !in.Category.IsValid() {
		fields = append(fields, domain.FieldError{Field: "category", Message: "unknown category"})
	}
	if !in.Metric.IsValid() {
		fields = append(fields, domain.FieldError{Field: "metric", Message: "unknown metric"})
	}
	if in.Threshold <= 0 {
		fields = append(fields, domain.FieldError{Field: "threshold", Message: "must be positive"})
	}
	if len(fields) > 0 {
		return domain.NewValidationErrors(fields)
	}
	return nil
}

// CreatePlan creates a service plan for the caller. A part-targeted plan must
// reference a part the caller owns.
func (s *Service) CreatePlan(ctx context.Context, input PlanInput) (*domain.ServicePlan, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	if input.PartID != nil {
		part, err := s.parts.GetByID(ctx, *input.PartID)
		if err != nil {
			return nil, fmt.Errorf("get part: %w", err)
		}
		if err := auth.Authorize(ctx, part.OwnerID); err != nil {
			return nil, err
		}
	}

	created, err := s.plans.CreatePlan(ctx, &domain.ServicePlan{
		OwnerID:   userID,
		PartID:    input.PartID,
		Category:  input.Category,
		Name:      input.Name,
		Metric:    input.Metric,
		Threshold: input.Threshold,
		Recurring: input.Recurring,
	})
	if err != nil {
		return nil, fmt.Errorf("create plan: %w", err)
	}

	s.log.Info("service plan created", "plan_id", created.ID, "metric", created.Metric.String())

	return created, nil
}

// DeletePlan removes one of the caller's plans. Recorded events keep their
// plan reference; only future evaluations stop considering the plan.
func (s *Service) DeletePlan(ctx context.Context, id uuid.UUID) error {
	plan, err := s.plans.GetPlan(ctx, id)
	if err != nil {
		return fmt.Errorf("get plan: %w", err)
	}
	if err := auth.Authorize(ctx, plan.OwnerID); err != nil {
		return err
	}

	return s.plans.DeletePlan(ctx, id)
}

// ListPlans returns the caller's service plans, newest first.
func (s *Service) ListPlans(ctx context.Context) ([]*domain.ServicePlan, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return s.plans.ListPlansByOwner(ctx, userID)
}
