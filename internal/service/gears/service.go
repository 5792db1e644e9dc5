// Package gears implements gear management: the host assemblies that parts
// mount onto and activities are ridden on.
package gears

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mkravets/gearlog-backend/internal/domain"
)

type gearRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Gear, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Gear, error)
	Create(ctx context.Context, ownerID uuid.UUID, name string, kind domain.GearKind) (*domain.Gear, error)
	Update(ctx context.Context, id uuid.UUID, name string, kind domain.GearKind) error
}

// Service manages gear.
type Service struct {
	log   *slog.Logger
	gears gearRepo
}

// NewService creates a gear service.
func NewService(logger *slog.Logger, gears gearRepo) *Service {
	return &Service{
		log:   logger.With("service", "gears"),
		gears: gears,
	}
}
