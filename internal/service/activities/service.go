// Package activities implements the activity ledger business logic. Every
// mutation keeps the cached usage aggregates of affected parts in step with
// the ledger, inside one transaction.
package activities

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mkravets/gearlog-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type activityRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Activity, error)
	Create(ctx context.Context, a *domain.Activity) (*domain.Activity, error)
	Update(ctx context.Context, a *domain.Activity) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, ownerID uuid.UUID, filter domain.ActivityFilter) ([]*domain.Activity, int, error)
}

type gearRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Gear, error)
}

type usageService interface {
	DeltasFor(ctx context.Context, act *domain.Activity) ([]domain.UsageDelta, error)
	ApplyDeltas(ctx context.Context, deltas []domain.UsageDelta) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the activity ledger business logic.
type Service struct {
	log        *slog.Logger
	activities activityRepo
	gears      gearRepo
	usage      usageService
	tx         txManager
}

// NewService creates a new Activities service.
func NewService(
	logger *slog.Logger,
	activities activityRepo,
	gears gearRepo,
	usage usageService,
	tx txManager,
) *Service {
	return &Service{
		log:        logger.With("service", "activities"),
		activities: activities,
		gears:      gears,
		usage:      usage,
		tx:         tx,
	}
}

// ActivityInput carries the mutable fields of an activity.
type ActivityInput struct {
	GearID     uuid.UUID
	Name       string
	StartAt    time.Time
	Duration   time.Duration
	DistanceM  int64
	ElevationM int64
	MovingTime time.Duration
}

// Validate checks field-level constraints. Zero duration is legal: such an
// activity exists in the ledger but earns no part any credit.
func (in ActivityInput) Validate() error {
	var fields []domain.FieldError
	if in.GearID == uuid.Nil {
		fields = append(fields, domain.FieldError{Field: "gear_id", Message: "required"})
	}
	if in.StartAt.IsZero() {
		fields = append(fields, domain.FieldError{Field: "start_at", Message: "required"})
	}
	if in.Duration < 0 {
		fields = append(fields, domain.FieldError{Field: "duration", Message: "must be non-negative"})
	}
	if in.DistanceM < 0 {
		fields = append(fields, domain.FieldError{Field: "distance_m", Message: "must be non-negative"})
	}
	if in.ElevationM < 0 {
		fields = append(fields, domain.FieldError{Field: "elevation_m", Message: "must be non-negative"})
	}
	if in.MovingTime < 0 {
		fields = append(fields, domain.FieldError{Field: "moving_time", Message: "must be non-negative"})
	}
	if len(fields) > 0 {
		return domain.NewValidationErrors(fields)
	}
	return nil
}

func (in ActivityInput) metrics() domain.Metrics {
	return domain.Metrics{
		DistanceM:  in.DistanceM,
		ElevationM: in.ElevationM,
		MovingTime: in.MovingTime,
	}
}
