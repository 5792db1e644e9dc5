package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mkravets/gearlog-backend/internal/domain"
)

func TestMapError_Nil(t *testing.T) {
	t.Parallel()

	if got := MapError(nil, "part", uuid.New()); got != nil {
		t.Errorf("MapError(nil) = %v, want nil", got)
	}
}

func TestMapError_NoRows(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	got := MapError(pgx.ErrNoRows, "part", id)

	if !errors.Is(got, domain.ErrNotFound) {
		t.Errorf("MapError(ErrNoRows) does not wrap domain.ErrNotFound: %v", got)
	}
	if want := fmt.Sprintf("part %s: not found", id); got.Error() != want {
		t.Errorf("MapError(ErrNoRows).Error() = %q, want %q", got.Error(), want)
	}
}

func TestMapError_WrappedNoRows(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("scan row: %w", pgx.ErrNoRows)
	if got := MapError(wrapped, "activity", uuid.New()); !errors.Is(got, domain.ErrNotFound) {
		t.Errorf("MapError(wrapped ErrNoRows) does not wrap domain.ErrNotFound: %v", got)
	}
}

func TestMapError_UniqueViolation(t *testing.T) {
	t.Parallel()

	pgErr := &pgconn.PgError{Code: "23505", Message: "duplicate key"}
	if got := MapError(pgErr, "gear", uuid.New()); !errors.Is(got, domain.ErrAlreadyExists) {
		t.Errorf("MapError(23505) does not wrap domain.ErrAlreadyExists: %v", got)
	}
}

func TestMapError_OpenAttachmentUniqueViolation(t *testing.T) {
	t.Parallel()

	tests := []string{
		"attachments_one_open_per_part",
		"attachments_one_open_per_position",
	}
	for _, constraint := range tests {
		pgErr := &pgconn.PgError{Code: "23505", ConstraintName: constraint}
		if got := MapError(pgErr, "attachment", uuid.New()); !errors.Is(got, domain.ErrConflict) {
			t.Errorf("MapError(23505 %s) does not wrap domain.ErrConflict: %v", constraint, got)
		}
	}
}

func TestMapError_ExclusionViolation(t *testing.T) {
	t.Parallel()

	pgErr := &pgconn.PgError{Code: "23P01", Message: "conflicting key value"}
	if got := MapError(pgErr, "attachment", uuid.New()); !errors.Is(got, domain.ErrConflict) {
		t.Errorf("MapError(23P01) does not wrap domain.ErrConflict: %v", got)
	}
}

func TestMapError_ContextErrorsPassThrough(t *testing.T) {
	t.Parallel()

	got := MapError(context.DeadlineExceeded, "part", uuid.New())
	if !errors.Is(got, context.DeadlineExceeded) {
		t.Errorf("MapError(DeadlineExceeded) lost the context error: %v", got)
	}
	if errors.Is(got, domain.ErrNotFound) {
		t.Errorf("MapError(DeadlineExceeded) must not map to domain errors: %v", got)
	}
}
