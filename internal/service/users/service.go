// Package users implements account registration and login.
package users

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mkravets/gearlog-backend/internal/config"
	"github.com/mkravets/gearlog-backend/internal/domain"
)

type userRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
}

type tokenIssuer interface {
	GenerateAccessToken(userID uuid.UUID, admin bool) (string, error)
}

// Service manages user accounts and credentials.
type Service struct {
	log    *slog.Logger
	users  userRepo
	tokens tokenIssuer
	cfg    config.AuthConfig
}

// NewService creates a user service.
func NewService(logger *slog.Logger, users userRepo, tokens tokenIssuer, cfg config.AuthConfig) *Service {
	return &Service{
		log:    logger.With("service", "users"),
		users:  users,
		tokens: tokens,
		cfg:    cfg,
	}
}
