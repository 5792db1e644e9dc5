package gears

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mkravets/gearlog-backend/internal/auth"
	"github.com/mkravets/gearlog-backend/internal/domain"
	"github.com/mkravets/gearlog-backend/pkg/ctxutil"
)

// GearInput carries the mutable fields of a gear.
type GearInput struct {
	Name string
	Kind domain.GearKind
}

// Validate checks field-level constraints.
func (in GearInput) Validate() error {
	var fields []domain.FieldError
	if strings.TrimSpace(in.Name) == "" {
		fields = append(fields, domain.FieldError{Field: "name", Message: "required"})
	}
	if !in.Kind.IsValid() {
		fields = append(fields, domain.FieldError{Field: "kind", Message: "unknown kind"})
	}
	if len(fields) > 0 {
		return domain.NewValidationErrors(fields)
	}
	return nil
}

// Create adds a gear for the caller.
func (s *Service) Create(ctx context.Context, input GearInput) (*domain.Gear, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	gear, err := s.gears.Create(ctx, userID, strings.TrimSpace(input.Name), input.Kind)
	if err != nil {
		return nil, fmt.Errorf("create gear: %w", err)
	}

	s.log.Info("gear created", "gear_id", gear.ID, "kind", gear.Kind.String())

	return gear, nil
}

// Update changes a gear's name or kind.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input GearInput) (*domain.Gear, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	gear, err := s.gears.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get gear: %w", err)
	}
	if err := auth.Authorize(ctx, gear.OwnerID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if err := s.gears.Update(ctx, id, name, input.Kind); err != nil {
		return nil, fmt.Errorf("update gear: %w", err)
	}

	gear.Name = name
	gear.Kind = input.Kind

	s.log.Info("gear updated", "gear_id", id)

	return gear, nil
}

// Get returns a single gear the caller owns.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Gear, error) {
	gear, err := s.gears.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get gear: %w", err)
	}
	if err := auth.Authorize(ctx, gear.OwnerID); err != nil {
		return nil, err
	}
	return gear, nil
}

// List returns the caller's gear, newest first.
func (s *Service) List(ctx context.Context) ([]*domain.Gear, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return s.gears.ListByOwner(ctx, userID)
}
