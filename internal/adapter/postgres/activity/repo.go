// Package activity implements the activity ledger using PostgreSQL.
// Point lookups use raw SQL; the dynamic list filter is built with squirrel.
package activity

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/mkravets/gearlog-backend/internal/adapter/postgres"
	"github.com/mkravets/gearlog-backend/internal/domain"
)

// Repo provides activity persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new activity repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const activityColumns = `id, owner_id, gear_id, name, start_at, duration_s, distance_m, elevation_m, moving_time_s, created_at, updated_at`

const getActivitySQL = `
SELECT ` + activityColumns + `
FROM activities
WHERE id = $1`

const insertActivitySQL = `
INSERT INTO activities (id, owner_id, gear_id, name, start_at, duration_s, distance_m, elevation_m, moving_time_s, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

const updateActivitySQL = `
UPDATE activities
SET gear_id = $2, name = $3, start_at = $4, duration_s = $5,
    distance_m = $6, elevation_m = $7, moving_time_s = $8, updated_at = $9
WHERE id = $1`

const deleteActivitySQL = `
DELETE FROM activities
WHERE id = $1`

const listOverlappingForGearSQL = `
SELECT ` + activityColumns + `
FROM activities
WHERE gear_id = $1
  AND start_at <= $3
  AND start_at + make_interval(secs => duration_s) >= $2
ORDER BY start_at`

// GetByID returns an activity by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Activity, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	a, err := scanActivity(q.QueryRow(ctx, getActivitySQL, id))
	if err != nil {
		return nil, postgres.MapError(err, "activity", id)
	}
	return a, nil
}

// Create inserts a new activity and returns it.
func (r *Repo) Create(ctx context.Context, a *domain.Activity) (*domain.Activity, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	stored := *a
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	now := time.Now().UTC().Truncate(time.Microsecond)
	stored.CreatedAt = now
	stored.UpdatedAt = now

	_, err := q.Exec(ctx, insertActivitySQL,
		stored.ID, stored.OwnerID, stored.GearID, stored.Name, stored.StartAt,
		int64(stored.Duration/time.Second),
		stored.Metrics.DistanceM, stored.Metrics.ElevationM,
		int64(stored.Metrics.MovingTime/time.Second),
		stored.CreatedAt, stored.UpdatedAt)
	if err != nil {
		return nil, postgres.MapError(err, "activity", stored.ID)
	}

	return &stored, nil
}

// Update rewrites an activity's mutable fields.
// Returns domain.ErrNotFound if the activity does not exist.
func (r *Repo) Update(ctx context.Context, a *domain.Activity) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	tag, err := q.Exec(ctx, updateActivitySQL,
		a.ID, a.GearID, a.Name, a.StartAt,
		int64(a.Duration/time.Second),
		a.Metrics.DistanceM, a.Metrics.ElevationM,
		int64(a.Metrics.MovingTime/time.Second),
		now)
	if err != nil {
		return postgres.MapError(err, "activity", a.ID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("activity %s: %w", a.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes an activity. The activity is the only entity physically
// deleted: its usage contribution is reversed by the caller's recompute.
// Returns domain.ErrNotFound if the activity does not exist.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, deleteActivitySQL, id)
	if err != nil {
		return postgres.MapError(err, "activity", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("activity %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListOverlappingForGear returns activities of a gear whose window
// intersects the closed window [from, to], ordered by start time. Used by
// the usage recomputer to find attribution candidates.
func (r *Repo) ListOverlappingForGear(ctx context.Context, gearID uuid.UUID, from, to time.Time) ([]*domain.Activity, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, listOverlappingForGearSQL, gearID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list activities overlapping window: %w", err)
	}
	defer rows.Close()

	return scanActivities(rows)
}

// List returns the owner's activities matching the filter, newest first,
// plus the total match count for pagination.
func (r *Repo) List(ctx context.Context, ownerID uuid.UUID, filter domain.ActivityFilter) ([]*domain.Activity, int, error) {
	filter.Normalize()
	q := postgres.QuerierFromCtx(ctx, r.pool)

	where := sq.And{sq.Eq{"owner_id": ownerID}}
	if filter.GearID != nil {
		where = append(where, sq.Eq{"gear_id": *filter.GearID})
	}
	if filter.From != nil {
		where = append(where, sq.Expr("start_at + make_interval(secs => duration_s) >= ?", *filter.From))
	}
	if filter.To != nil {
		where = append(where, sq.LtOrEq{"start_at": *filter.To})
	}

	countSQL, countArgs, err := psql.Select("count(*)").From("activities").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count activities: %w", err)
	}

	listSQL, listArgs, err := psql.Select(activityColumns).
		From("activities").
		Where(where).
		OrderBy("start_at DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}

	rows, err := q.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	activities, err := scanActivities(rows)
	if err != nil {
		return nil, 0, err
	}

	return activities, total, nil
}

func scanActivities(rows pgx.Rows) ([]*domain.Activity, error) {
	activities := []*domain.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activities: %w", err)
	}
	return activities, nil
}

func scanActivity(row pgx.Row) (*domain.Activity, error) {
	var (
		a           domain.Activity
		durationS   int64
		movingTimeS int64
	)
	if err := row.Scan(&a.ID, &a.OwnerID, &a.GearID, &a.Name, &a.StartAt,
		&durationS, &a.Metrics.DistanceM, &a.Metrics.ElevationM, &movingTimeS,
		&a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Duration = time.Duration(durationS) * time.Second
	a.Metrics.MovingTime = time.Duration(movingTimeS) * time.Second
	return &a, nil
}
