// Package service implements service plan and service event persistence
// using PostgreSQL.
package service

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

// Repo provides service plan and event persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new service repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const planColumns = `id, owner_id, part_id, category, name, metric, threshold, recurring, created_at`

const getPlanSQL = `
SELECT ` + planColumns + `
FROM service_plans
WHERE id = $1`

const listPlansByOwnerSQL = `
SELECT ` + planColumns + `
FROM service_plans
WHERE owner_id = $1
ORDER BY created_at DESC`

const listPlansForPartSQL = `
SELECT ` + planColumns + `
FROM service_plans
WHERE part_id = $1 OR category = $2
ORDER BY created_at`

const insertPlanSQL = `
INSERT INTO service_plans (id, owner_id, part_id, category, name, metric, threshold, recurring, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

const deletePlanSQL = `
DELETE FROM service_plans
WHERE id = $1`

const eventColumns = `id, part_id, plan_id, performed_at, note, distance_m, elevation_m, moving_time_s, activity_count, created_at`

const insertEventSQL = `
INSERT INTO service_events (id, part_id, plan_id, performed_at, note, distance_m, elevation_m, moving_time_s, activity_count, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

const listEventsByPartSQL = `
SELECT ` + eventColumns + `
FROM service_events
WHERE part_id = $1
ORDER BY performed_at DESC, created_at DESC`

// GetPlan returns a service plan by primary key.
func (r *Repo) GetPlan(ctx context.Context, id uuid.UUID) (*domain.ServicePlan, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	p, err := scanPlan(q.QueryRow(ctx, getPlanSQL, id))
	if err != nil {
		return nil, postgres.MapError(err, "service plan", id)
	}
	return p, nil
}

// ListPlansByOwner returns the owner's service plans, newest first.
func (r *Repo) ListPlansByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.ServicePlan, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, listPlansByOwnerSQL, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list service plans: %w", err)
	}
	defer rows.Close()

	return scanPlans(rows)
}

// ListPlansForPart returns every plan covering a part: plans targeting it
// directly plus plans targeting its category.
func (r *Repo) ListPlansForPart(ctx context.Context, partID uuid.UUID, category domain.PartCategory) ([]*domain.ServicePlan, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, listPlansForPartSQL, partID, category.String())
	if err != nil {
		return nil, fmt.Errorf("list service plans for part: %w", err)
	}
	defer rows.Close()

	return scanPlans(rows)
}

// CreatePlan inserts a new service plan.
func (r *Repo) CreatePlan(ctx context.Context, p *domain.ServicePlan) (*domain.ServicePlan, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	stored := *p
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	stored.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)

	var category *string
	if stored.Category != nil {
		s := stored.Category.String()
		category = &s
	}

	_, err := q.Exec(ctx, insertPlanSQL,
		stored.ID, stored.OwnerID, stored.PartID, category,
		stored.Name, stored.Metric.String(), stored.Threshold, stored.Recurring,
		stored.CreatedAt)
	if err != nil {
		return nil, postgres.MapError(err, "service plan", stored.ID)
	}

	return &stored, nil
}

// DeletePlan removes a service plan. Events that referenced it keep their
// plan_id, so history stays intact.
// Returns domain.ErrNotFound if the plan does not exist.
func (r *Repo) DeletePlan(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, deletePlanSQL, id)
	if err != nil {
		return postgres.MapError(err, "service plan", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("service plan %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// CreateEvent inserts a new service event with its baseline snapshot.
func (r *Repo) CreateEvent(ctx context.Context, e *domain.ServiceEvent) (*domain.ServiceEvent, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	stored := *e
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	stored.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)

	_, err := q.Exec(ctx, insertEventSQL,
		stored.ID, stored.PartID, stored.PlanID, stored.PerformedAt, stored.Note,
		stored.Baseline.Metrics.DistanceM, stored.Baseline.Metrics.ElevationM,
		int64(stored.Baseline.Metrics.MovingTime/time.Second),
		stored.Baseline.ActivityCount,
		stored.CreatedAt)
	if err != nil {
		return nil, postgres.MapError(err, "service event", stored.ID)
	}

	return &stored, nil
}

// ListEventsByPart returns the part's service history, most recent first.
func (r *Repo) ListEventsByPart(ctx context.Context, partID uuid.UUID) ([]*domain.ServiceEvent, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, listEventsByPartSQL, partID)
	if err != nil {
		return nil, fmt.Errorf("list service events: %w", err)
	}
	defer rows.Close()

	events := []*domain.ServiceEvent{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate service events: %w", err)
	}

	return events, nil
}

func scanPlans(rows pgx.Rows) ([]*domain.ServicePlan, error) {
	plans := []*domain.ServicePlan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service plan: %w", err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate service plans: %w", err)
	}
	return plans, nil
}

func scanPlan(row pgx.Row) (*domain.ServicePlan, error) {
	var (
		p        domain.ServicePlan
		category *string
		metric   string
	)
	if err := row.Scan(&p.ID, &p.OwnerID, &p.PartID, &category, &p.Name,
		&metric, &p.Threshold, &p.Recurring, &p.CreatedAt); err != nil {
		return nil, err
	}
	if category != nil {
		c := domain.PartCategory(*category)
		p.Category = &c
	}
	p.Metric = domain.MetricKind(metric)
	return &p, nil
}

func scanEvent(row pgx.Row) (*domain.ServiceEvent, error) {
	var (
		e           domain.ServiceEvent
		movingTimeS int64
	)
	if err := row.Scan(&e.ID, &e.PartID, &e.PlanID, &e.PerformedAt, &e.Note,
		&e.Baseline.Metrics.DistanceM, &e.Baseline.Metrics.ElevationM,
		&movingTimeS, &e.Baseline.ActivityCount, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Baseline.Metrics.MovingTime = time.Duration(movingTimeS) * time.Second
	return &e, nil
}
