// Package attachment implements the attachment interval store using
// PostgreSQL. Rows are inserted, closed or truncated, never deleted, so the
// full mount history of every part stays reconstructible.
package attachment

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

// Repo provides attachment persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new attachment repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const attachmentColumns = `id, part_id, gear_id, position, start_at, end_at, created_at`

const getAttachmentSQL = `
SELECT ` + attachmentColumns + `
FROM attachments
WHERE id = $1`

const insertAttachmentSQL = `
INSERT INTO attachments (id, part_id, gear_id, position, start_at, end_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

const setIntervalSQL = `
UPDATE attachments
SET start_at = $2, end_at = $3
WHERE id = $1`

const openByPartSQL = `
SELECT ` + attachmentColumns + `
FROM attachments
WHERE part_id = $1 AND end_at IS NULL`

const openByPositionSQL = `
SELECT ` + attachmentColumns + `
FROM attachments
WHERE gear_id = $1 AND position = $2 AND end_at IS NULL`

const listByPositionSQL = `
SELECT ` + attachmentColumns + `
FROM attachments
WHERE gear_id = $1 AND position = $2
ORDER BY start_at`

const listByPartSQL = `
SELECT ` + attachmentColumns + `
FROM attachments
WHERE part_id = $1
ORDER BY start_at`

const listForGearOverlappingSQL = `
SELECT ` + attachmentColumns + `
FROM attachments
WHERE gear_id = $1
  AND start_at <= $3
  AND (end_at IS NULL OR end_at >= $2)
ORDER BY position, start_at`

// GetByID returns an attachment by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Attachment, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	a, err := scanAttachment(q.QueryRow(ctx, getAttachmentSQL, id))
	if err != nil {
		return nil, postgres.MapError(err, "attachment", id)
	}
	return a, nil
}

// Create inserts a new attachment interval.
func (r *Repo) Create(ctx context.Context, a *domain.Attachment) (*domain.Attachment, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	stored := *a
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	stored.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)

	_, err := q.Exec(ctx, insertAttachmentSQL,
		stored.ID, stored.PartID, stored.GearID, stored.Position.String(),
		stored.StartAt, stored.EndAt, stored.CreatedAt)
	if err != nil {
		return nil, postgres.MapError(err, "attachment", stored.ID)
	}

	return &stored, nil
}

// SetInterval rewrites an attachment's interval. Used to close an open
// attachment on detach and to truncate intervals displaced by a retroactive
// insert. Returns domain.ErrNotFound if the attachment does not exist.
func (r *Repo) SetInterval(ctx context.Context, id uuid.UUID, start time.Time, end *time.Time) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, setIntervalSQL, id, start, end)
	if err != nil {
		return postgres.MapError(err, "attachment", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("attachment %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// OpenByPart returns the part's open attachment, or domain.ErrNotFound when
// the part is not mounted anywhere.
func (r *Repo) OpenByPart(ctx context.Context, partID uuid.UUID) (*domain.Attachment, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	a, err := scanAttachment(q.QueryRow(ctx, openByPartSQL, partID))
	if err != nil {
		return nil, postgres.MapError(err, "attachment", partID)
	}
	return a, nil
}

// OpenByPosition returns the open attachment occupying a gear position, or
// domain.ErrNotFound when the position is empty.
func (r *Repo) OpenByPosition(ctx context.Context, gearID uuid.UUID, pos domain.Position) (*domain.Attachment, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	a, err := scanAttachment(q.QueryRow(ctx, openByPositionSQL, gearID, pos.String()))
	if err != nil {
		return nil, postgres.MapError(err, "attachment", gearID)
	}
	return a, nil
}

// ListByPosition returns the full interval history of one gear position,
// ordered by start time.
func (r *Repo) ListByPosition(ctx context.Context, gearID uuid.UUID, pos domain.Position) ([]*domain.Attachment, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, listByPositionSQL, gearID, pos.String())
	if err != nil {
		return nil, fmt.Errorf("list attachments by position: %w", err)
	}
	defer rows.Close()

	return scanAttachments(rows)
}

// ListByPart returns every attachment of a part, ordered by start time.
func (r *Repo) ListByPart(ctx context.Context, partID uuid.UUID) ([]*domain.Attachment, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, listByPartSQL, partID)
	if err != nil {
		return nil, fmt.Errorf("list attachments by part: %w", err)
	}
	defer rows.Close()

	return scanAttachments(rows)
}

// ListForGearOverlapping returns every attachment of a gear whose interval
// intersects the closed window [from, to]. This is the attribution engine's
// input query.
func (r *Repo) ListForGearOverlapping(ctx context.Context, gearID uuid.UUID, from, to time.Time) ([]*domain.Attachment, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, listForGearOverlappingSQL, gearID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list attachments overlapping window: %w", err)
	}
	defer rows.Close()

	return scanAttachments(rows)
}

func scanAttachments(rows pgx.Rows) ([]*domain.Attachment, error) {
	attachments := []*domain.Attachment{}
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		attachments = append(attachments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attachments: %w", err)
	}
	return attachments, nil
}

func scanAttachment(row pgx.Row) (*domain.Attachment, error) {
	var (
		a   domain.Attachment
		pos string
	)
	if err := row.Scan(&a.ID, &a.PartID, &a.GearID, &pos, &a.StartAt, &a.EndAt, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Position = domain.Position(pos)
	return &a, nil
}
