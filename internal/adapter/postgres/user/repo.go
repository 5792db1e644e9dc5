// Package user implements the User repository using PostgreSQL.
package user

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/mkravets/gearlog-backend/internal/adapter/postgres"
	"github.com/mkravets/gearlog-backend/internal/domain"
)

// Repo provides user persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new user repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const userColumns = `id, email, name, password_hash, is_admin, created_at, updated_at`

const getUserSQL = `
SELECT ` + userColumns + `
FROM users
WHERE id = $1`

const getUserByEmailSQL = `
SELECT ` + userColumns + `
FROM users
WHERE email = $1`

const insertUserSQL = `
INSERT INTO users (id, email, name, password_hash, is_admin, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

// GetByID returns a user by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	u, err := scanUser(q.QueryRow(ctx, getUserSQL, id))
	if err != nil {
		return nil, postgres.MapError(err, "user", id)
	}
	return u, nil
}

// GetByEmail returns a user by email.
func (r *Repo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	u, err := scanUser(q.QueryRow(ctx, getUserByEmailSQL, email))
	if err != nil {
		return nil, postgres.MapError(err, "user", uuid.Nil)
	}
	return u, nil
}

// Create inserts a new user. Returns domain.ErrAlreadyExists when the email
// is taken.
func (r *Repo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	stored := *u
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	now := time.Now().UTC().Truncate(time.Microsecond)
	stored.CreatedAt = now
	stored.UpdatedAt = now

	_, err := q.Exec(ctx, insertUserSQL,
		stored.ID, stored.Email, stored.Name, stored.PasswordHash,
		stored.IsAdmin, stored.CreatedAt, stored.UpdatedAt)
	if err != nil {
		return nil, postgres.MapError(err, "user", stored.ID)
	}

	return &stored, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.IsAdmin,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
