// Package timeline implements attachment timeline mutations: mounting and
// unmounting parts, including retroactive inserts that truncate history.
package timeline

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

type partRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Part, error)
}

type gearRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Gear, error)
}

type attachmentRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Attachment, error)
	Create(ctx context.Context, a *domain.Attachment) (*domain.Attachment, error)
	SetInterval(ctx context.Context, id uuid.UUID, start time.Time, end *time.Time) error
	ListByPart(ctx context.Context, partID uuid.UUID) ([]*domain.Attachment, error)
	ListByPosition(ctx context.Context, gearID uuid.UUID, pos domain.Position) ([]*domain.Attachment, error)
}

type usageRecomputer interface {
	RecomputePart(ctx context.Context, partID uuid.UUID) (*domain.UsageAggregate, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the timeline business logic.
type Service struct {
	log         *slog.Logger
	parts       partRepo
	gears       gearRepo
	attachments attachmentRepo
	usage       usageRecomputer
	tx          txManager
}

// NewService creates a new Timeline service.
func NewService(
	logger *slog.Logger,
	parts partRepo,
	gears gearRepo,
	attachments attachmentRepo,
	usage usageRecomputer,
	tx txManager,
) *Service {
	return &Service{
		log:         logger.With("service", "timeline"),
		parts:       parts,
		gears:       gears,
		attachments: attachments,
		usage:       usage,
		tx:          tx,
	}
}
