package users

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mkravets/gearlog-backend/internal/domain"
)

const minPasswordLength = 8

// RegisterInput carries the fields for a new account.
type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

// Validate checks field-level constraints.
func (in RegisterInput) Validate() error {
	var fields []domain.FieldError
	if _, err := mail.ParseAddress(in.Email); err != nil {
		fields = append(fields, domain.FieldError{Field: "email", Message: "invalid email address"})
	}
	if strings.TrimSpace(in.Name) == "" {
		fields = append(fields, domain.FieldError{Field: "name", Message: "required"})
	}
	if len(in.Password) < minPasswordLength {
		fields = append(fields, domain.FieldError{Field: "password", Message: fmt.Sprintf("must be at least %d characters", minPasswordLength)})
	}
	if len(fields) > 0 {
		return domain.NewValidationErrors(fields)
	}
	return nil
}

// Register creates an account. Emails are unique and stored lowercased.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, &domain.User{
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("user registered", "user_id", user.ID)

	return user, nil
}
