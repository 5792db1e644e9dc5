package parts

import (
	"context"
	"fmt"
	"strings"

	"github.com/mkravets/gearlog-backend/internal/domain"
	"github.com/mkravets/gearlog-backend/pkg/ctxutil"
)

// PartInput carries the mutable fields of a part.
type PartInput struct {
	Name     string
	Category domain.PartCategory
}

// Validate checks field-level constraints.
func (in PartInput) Validate() error {
	var fields []domain.FieldError
	if strings.TrimSpace(in.Name) == "" {
		fields = append(fields, domain.FieldError{Field: "name", Message: "required"})
	}
	if !in.Category.IsValid() {
		fields = append(fields, domain.FieldError{Field: "category", Message: "unknown category"})
	}
	if len(fields) > 0 {
		return domain.NewValidationErrors(fields)
	}
	return nil
}

// Create adds a part to the caller's catalog.
func (s *Service) Create(ctx context.Context, input PartInput) (*domain.Part, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	part, err := s.parts.Create(ctx, userID, strings.TrimSpace(input.Name), input.Category)
	if err != nil {
		return nil, fmt.Errorf("create part: %w", err)
	}

	s.log.Info("part created", "part_id", part.ID, "category", part.Category.String())

	return part, nil
}
