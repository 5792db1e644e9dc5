// Package maintenance implements service plans, service events, and the lazy
// evaluation of a part's service status against its cumulative usage.
package maintenance

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mkravets/gearlog-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type planRepo interface {
	GetPlan(ctx context.Context, id uuid.UUID) (*domain.ServicePlan, error)
	ListPlansByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.ServicePlan, error)
	ListPlansForPart(ctx context.Context, partID uuid.UUID, category domain.PartCategory) ([]*domain.ServicePlan, error)
	CreatePlan(ctx context.Context, p *domain.ServicePlan) (*domain.ServicePlan, error)
	DeletePlan(ctx context.Context, id uuid.UUID) error
	CreateEvent(ctx context.Context, e *domain.ServiceEvent) (*domain.ServiceEvent, error)
	ListEventsByPart(ctx context.Context, partID uuid.UUID) ([]*domain.ServiceEvent, error)
}

type partRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Part, error)
}

type usageReader interface {
	GetUsage(ctx context.Context, partID uuid.UUID) (*domain.UsageAggregate, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the maintenance business logic. Statuses are never
// stored: they are evaluated on read from plans, events, and the current
// usage aggregate.
type Service struct {
	log   *slog.Logger
	plans planRepo
	parts partRepo
	usage usageReader
}

// NewService creates a new Maintenance service.
func NewService(logger *slog.Logger, plans planRepo, parts partRepo, usage usageReader) *Service {
	return &Service{
		log:   logger.With("service", "maintenance"),
		plans: plans,
		parts: parts,
		usage: usage,
	}
}
