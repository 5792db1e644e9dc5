// Package usage implements per-part usage accounting: cached aggregates,
// incremental delta application, and full recomputation from the timeline.
package usage

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mkravets/gearlog-backend/internal/config"
	"github.com/mkravets/gearlog-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type aggregateRepo interface {
	Get(ctx context.Context, partID uuid.UUID) (*domain.UsageAggregate, error)
	Save(ctx context.Context, agg *domain.UsageAggregate, expectedVersion int64) error
}

type attachmentRepo interface {
	ListByPart(ctx context.Context, partID uuid.UUID) ([]*domain.Attachment, error)
	ListForGearOverlapping(ctx context.Context, gearID uuid.UUID, from, to time.Time) ([]*domain.Attachment, error)
}

type activityRepo interface {
	ListOverlappingForGear(ctx context.Context, gearID uuid.UUID, from, to time.Time) ([]*domain.Activity, error)
}

type partRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Part, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the usage accounting business logic.
type Service struct {
	log         *slog.Logger
	aggregates  aggregateRepo
	attachments attachmentRepo
	activities  activityRepo
	parts       partRepo
	tx          txManager
	cfg         config.UsageConfig
}

// NewService creates a new Usage service.
func NewService(
	logger *slog.Logger,
	aggregates aggregateRepo,
	attachments attachmentRepo,
	activities activityRepo,
	parts partRepo,
	tx txManager,
	cfg config.UsageConfig,
) *Service {
	return &Service{
		log:         logger.With("service", "usage"),
		aggregates:  aggregates,
		attachments: attachments,
		activities:  activities,
		parts:       parts,
		tx:          tx,
		cfg:         cfg,
	}
}

// farFuture bounds window queries for open attachments. Activities may be
// recorded with future start times, so "now" is not a safe upper bound.
var farFuture = time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)
