// Package usage implements the per-part usage aggregate cache using
// PostgreSQL, with an optimistic version check on every write.
package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/mkravets/gearlog-backend/internal/adapter/postgres"
	"github.com/mkravets/gearlog-backend/internal/domain"
)

// Repo provides usage aggregate persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new usage aggregate repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const getAggregateSQL = `
SELECT part_id, distance_m, elevation_m, moving_time_s, activity_count, version, recomputed_at
FROM usage_aggregates
WHERE part_id = $1`

const insertAggregateSQL = `
INSERT INTO usage_aggregates (part_id, distance_m, elevation_m, moving_time_s, activity_count, version, recomputed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (part_id) DO NOTHING`

const updateAggregateSQL = `
UPDATE usage_aggregates
SET distance_m = $2, elevation_m = $3, moving_time_s = $4,
    activity_count = $5, version = $6, recomputed_at = $7
WHERE part_id = $1 AND version = $8`

// Get returns the cached aggregate for a part. A part with no cached row has
// simply never been written: callers treat domain.ErrNotFound as the
// zero-valued aggregate at version 0.
func (r *Repo) Get(ctx context.Context, partID uuid.UUID) (*domain.UsageAggregate, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var (
		agg         domain.UsageAggregate
		movingTimeS int64
	)
	err := q.QueryRow(ctx, getAggregateSQL, partID).Scan(
		&agg.PartID, &agg.Metrics.DistanceM, &agg.Metrics.ElevationM,
		&movingTimeS, &agg.ActivityCount, &agg.Version, &agg.RecomputedAt)
	if err != nil {
		return nil, postgres.MapError(err, "usage aggregate", partID)
	}
	agg.Metrics.MovingTime = time.Duration(movingTimeS) * time.Second

	return &agg, nil
}

// Save writes an aggregate guarded by the optimistic version check:
// expectedVersion is the version the caller read (0 for a part that had no
// row yet), and agg.Version must already be expectedVersion+1. A concurrent
// writer advancing the version first makes Save fail with
// domain.ErrStaleVersion; the caller re-reads and recomputes.
func (r *Repo) Save(ctx context.Context, agg *domain.UsageAggregate, expectedVersion int64) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	movingTimeS := int64(agg.Metrics.MovingTime / time.Second)

	if expectedVersion == 0 {
		tag, err := q.Exec(ctx, insertAggregateSQL,
			agg.PartID, agg.Metrics.DistanceM, agg.Metrics.ElevationM,
			movingTimeS, agg.ActivityCount, agg.Version, agg.RecomputedAt)
		if err != nil {
			return postgres.MapError(err, "usage aggregate", agg.PartID)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("usage aggregate %s: %w", agg.PartID, domain.ErrStaleVersion)
		}
		return nil
	}

	tag, err := q.Exec(ctx, updateAggregateSQL,
		agg.PartID, agg.Metrics.DistanceM, agg.Metrics.ElevationM,
		movingTimeS, agg.ActivityCount, agg.Version, agg.RecomputedAt,
		expectedVersion)
	if err != nil {
		return postgres.MapError(err, "usage aggregate", agg.PartID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("usage aggregate %s: %w", agg.PartID, domain.ErrStaleVersion)
	}

	return nil
}
