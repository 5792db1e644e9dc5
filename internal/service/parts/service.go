// Package parts implements part catalog management: creating, updating and
// soft-retiring trackable components.
package parts

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mkravets/gearlog-backend/internal/domain"
)

type partRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Part, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, category *domain.PartCategory, includeRetired bool) ([]*domain.Part, error)
	Create(ctx context.Context, ownerID uuid.UUID, name string, category domain.PartCategory) (*domain.Part, error)
	Update(ctx context.Context, id uuid.UUID, name string, category domain.PartCategory) error
	Retire(ctx context.Context, id uuid.UUID, at time.Time) error
}

type attachmentRepo interface {
	OpenByPart(ctx context.Context, partID uuid.UUID) (*domain.Attachment, error)
}

// Service manages the part catalog.
type Service struct {
	log         *slog.Logger
	parts       partRepo
	attachments attachmentRepo
}

// NewService creates a part service.
func NewService(logger *slog.Logger, parts partRepo, attachments attachmentRepo) *Service {
	return &Service{
		log:         logger.With("service", "parts"),
		parts:       parts,
		attachments: attachments,
	}
}
