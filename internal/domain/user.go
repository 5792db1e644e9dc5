package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an account that owns gear, parts and activities.
type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
