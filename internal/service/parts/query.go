package parts

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mkravets/gearlog-backend/internal/auth"
	"github.com/mkravets/gearlog-backend/internal/domain"
	"github.com/mkravets/gearlog-backend/pkg/ctxutil"
)

// Get returns a single part the caller owns.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Part, error) {
	part, err := s.parts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get part: %w", err)
	}
	if err := auth.Authorize(ctx, part.OwnerID); err != nil {
		return nil, err
	}
	return part, nil
}

// List returns the caller's parts, newest first. Retired parts are excluded
// unless includeRetired is set.
func (s *Service) List(ctx context.Context, category *domain.PartCategory, includeRetired bool) ([]*domain.Part, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if category != nil && !category.IsValid() {
		return nil, domain.NewValidationError("category", "unknown category")
	}

	return s.parts.ListByOwner(ctx, userID, category, includeRetired)
}
