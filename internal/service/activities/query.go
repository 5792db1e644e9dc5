package activities

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mkravets/gearlog-backend/internal/auth"
	"github.com/mkravets/gearlog-backend/internal/domain"
	"github.com/mkravets/gearlog-backend/pkg/ctxutil"
)

// Get returns a single activity.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Activity, error) {
	act, err := s.activities.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}
	if err := auth.Authorize(ctx, act.OwnerID); err != nil {
		return nil, err
	}
	return act, nil
}

// List returns the caller's activities matching the filter, newest first,
// plus the total match count.
func (s *Service) List(ctx context.Context, filter domain.ActivityFilter) ([]*domain.Activity, int, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, 0, domain.ErrUnauthorized
	}

	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, 0, domain.ErrInvalidRange
	}

	return s.activities.List(ctx, userID, filter)
}
