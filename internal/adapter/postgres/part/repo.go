// Package part implements the Part repository using PostgreSQL.
package part

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

// Repo provides part persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new part repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const partColumns = `id, owner_id, name, category, created_at, updated_at, retired_at`

const getPartSQL = `
SELECT ` + partColumns + `
FROM parts
WHERE id = $1`

const listPartsSQL = `
SELECT ` + partColumns + `
FROM parts
WHERE owner_id = $1
  AND ($2::text IS NULL OR category = $2)
  AND ($3::boolean OR retired_at IS NULL)
ORDER BY created_at DESC`

const insertPartSQL = `
INSERT INTO parts (id, owner_id, name, category, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`

const updatePartSQL = `
UPDATE parts
SET name = $2, category = $3, updated_at = $4
WHERE id = $1`

const retirePartSQL = `
UPDATE parts
SET retired_at = $2, updated_at = $3
WHERE id = $1 AND retired_at IS NULL`

// GetByID returns a part by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Part, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	p, err := scanPart(q.QueryRow(ctx, getPartSQL, id))
	if err != nil {
		return nil, postgres.MapError(err, "part", id)
	}
	return p, nil
}

// ListByOwner returns the owner's parts, newest first. Category narrows to a
// single category; includeRetired keeps soft-retired parts in the result.
func (r *Repo) ListByOwner(ctx context.Context, ownerID uuid.UUID, category *domain.PartCategory, includeRetired bool) ([]*domain.Part, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var cat *string
	if category != nil {
		s := category.String()
		cat = &s
	}

	rows, err := q.Query(ctx, listPartsSQL, ownerID, cat, includeRetired)
	if err != nil {
		return nil, fmt.Errorf("list parts: %w", err)
	}
	defer rows.Close()

	parts := []*domain.Part{}
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, fmt.Errorf("scan part: %w", err)
		}
		parts = append(parts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate parts: %w", err)
	}

	return parts, nil
}

const listPartIDsSQL = `
SELECT id
FROM parts
ORDER BY created_at`

// ListAllIDs returns the IDs of every part, retired ones included. Used by
// the offline reconciliation job.
func (r *Repo) ListAllIDs(ctx context.Context) ([]uuid.UUID, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, listPartIDsSQL)
	if err != nil {
		return nil, fmt.Errorf("list part ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan part id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate part ids: %w", err)
	}

	return ids, nil
}

// Create inserts a new part and returns it.
func (r *Repo) Create(ctx context.Context, ownerID uuid.UUID, name string, category domain.PartCategory) (*domain.Part, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	p := &domain.Part{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      name,
		Category:  category,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := q.Exec(ctx, insertPartSQL, p.ID, p.OwnerID, p.Name, p.Category.String(), p.CreatedAt, p.UpdatedAt); err != nil {
		return nil, postgres.MapError(err, "part", p.ID)
	}

	return p, nil
}

// Update changes the part's mutable metadata.
// Returns domain.ErrNotFound if the part does not exist.
func (r *Repo) Update(ctx context.Context, id uuid.UUID, name string, category domain.PartCategory) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	tag, err := q.Exec(ctx, updatePartSQL, id, name, category.String(), now)
	if err != nil {
		return postgres.MapError(err, "part", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("part %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// Retire soft-retires a part. Retiring an already retired part returns
// domain.ErrConflict.
func (r *Repo) Retire(ctx context.Context, id uuid.UUID, at time.Time) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	tag, err := q.Exec(ctx, retirePartSQL, id, at, now)
	if err != nil {
		return postgres.MapError(err, "part", id)
	}
	if tag.RowsAffected() == 0 {
		// Either absent or already retired; disambiguate for the caller.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("part %s already retired: %w", id, domain.ErrConflict)
	}

	return nil
}

func scanPart(row pgx.Row) (*domain.Part, error) {
	var (
		p        domain.Part
		category string
	)
	if err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &category, &p.CreatedAt, &p.UpdatedAt, &p.RetiredAt); err != nil {
		return nil, err
	}
	p.Category = domain.PartCategory(category)
	return &p, nil
}
