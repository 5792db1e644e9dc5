// Package gear implements the Gear repository using PostgreSQL.
package gear

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/mkravets/gearlog-backend/internal/adapter/postgres"
	"github.com/mkravets/gearlog-backend/internal/domain"
)

// Repo provides gear persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new gear repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const gearColumns = `id, owner_id, name, kind, created_at, updated_at`

const getGearSQL = `
SELECT ` + gearColumns + `
FROM gears
WHERE id = $1`

const listGearsSQL = `
SELECT ` + gearColumns + `
FROM gears
WHERE owner_id = $1
ORDER BY created_at DESC`

const insertGearSQL = `
INSERT INTO gears (id, owner_id, name, kind, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`

const updateGearSQL = `
UPDATE gears
SET name = $2, kind = $3, updated_at = $4
WHERE id = $1`

// GetByID returns a gear by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Gear, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	g, err := scanGear(q.QueryRow(ctx, getGearSQL, id))
	if err != nil {
		return nil, postgres.MapError(err, "gear", id)
	}
	return g, nil
}

// ListByOwner returns the owner's gears, newest first.
func (r *Repo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Gear, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, listGearsSQL, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list gears: %w", err)
	}
	defer rows.Close()

	gears := []*domain.Gear{}
	for rows.Next() {
		g, err := scanGear(rows)
		if err != nil {
			return nil, fmt.Errorf("scan gear: %w", err)
		}
		gears = append(gears, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gears: %w", err)
	}

	return gears, nil
}

// Create inserts a new gear and returns it.
func (r *Repo) Create(ctx context.Context, ownerID uuid.UUID, name string, kind domain.GearKind) (*domain.Gear, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	g := &domain.Gear{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      name,
		Kind:      kind,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := q.Exec(ctx, insertGearSQL, g.ID, g.OwnerID, g.Name, g.Kind.String(), g.CreatedAt, g.UpdatedAt); err != nil {
		return nil, postgres.MapError(err, "gear", g.ID)
	}

	return g, nil
}

// Update changes the gear's mutable metadata.
// Returns domain.ErrNotFound if the gear does not exist.
func (r *Repo) Update(ctx context.Context, id uuid.UUID, name string, kind domain.GearKind) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	tag, err := q.Exec(ctx, updateGearSQL, id, name, kind.String(), now)
	if err != nil {
		return postgres.MapError(err, "gear", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("gear %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

func scanGear(row pgx.Row) (*domain.Gear, error) {
	var (
		g    domain.Gear
		kind string
	)
	if err := row.Scan(&g.ID, &g.OwnerID, &g.Name, &kind, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	g.Kind = domain.GearKind(kind)
	return &g, nil
}
