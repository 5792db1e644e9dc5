package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkravets/gearlog-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedUser creates a user with a unique email. Returns a filled domain.User.
func SeedUser(t *testing.T, pool *pgxpool.Pool) domain.User {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	user := domain.User{
		ID:           uuid.New(),
		Email:        "rider-" + suffix + "@example.com",
		Name:         "Rider " + suffix,
		PasswordHash: "$2a$10$test.hash." + suffix,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO users (id, email, name, password_hash, is_admin, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Email, user.Name, user.PasswordHash, user.IsAdmin, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedUser insert user: %v", err)
	}

	return user
}

// SeedGear creates a bike owned by the user. Returns a filled domain.Gear.
func SeedGear(t *testing.T, pool *pgxpool.Pool, ownerID uuid.UUID) domain.Gear {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	gear := domain.Gear{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      "Bike " + suffix,
		Kind:      domain.GearKindBike,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO gears (id, owner_id, name, kind, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		gear.ID, gear.OwnerID, gear.Name, gear.Kind.String(), gear.CreatedAt, gear.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedGear insert gear: %v", err)
	}

	return gear
}

// SeedPart creates a part of the given category owned by the user.
// Returns a filled domain.Part.
func SeedPart(t *testing.T, pool *pgxpool.Pool, ownerID uuid.UUID, category domain.PartCategory) domain.Part {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	part := domain.Part{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      "Part " + suffix,
		Category:  category,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO parts (id, owner_id, name, category, created_at, updated_at, retired_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		part.ID, part.OwnerID, part.Name, part.Category.String(), part.CreatedAt, part.UpdatedAt, part.RetiredAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedPart insert part: %v", err)
	}

	return part
}

// SeedAttachment creates an attachment interval directly, bypassing timeline
// validation. end nil leaves the attachment open.
func SeedAttachment(t *testing.T, pool *pgxpool.Pool, partID, gearID uuid.UUID, pos domain.Position, start time.Time, end *time.Time) domain.Attachment {
	t.Helper()
	ctx := context.Background()

	a := domain.Attachment{
		ID:        uuid.New(),
		PartID:    partID,
		GearID:    gearID,
		Position:  pos,
		StartAt:   start,
		EndAt:     end,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO attachments (id, part_id, gear_id, position, start_at, end_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.PartID, a.GearID, a.Position.String(), a.StartAt, a.EndAt, a.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedAttachment insert attachment: %v", err)
	}

	return a
}

// SeedActivity creates an activity on a gear with the given window and
// metrics. Returns a filled domain.Activity.
func SeedActivity(t *testing.T, pool *pgxpool.Pool, ownerID, gearID uuid.UUID, start time.Time, duration time.Duration, metrics domain.Metrics) domain.Activity {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	a := domain.Activity{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		GearID:    gearID,
		Name:      "Ride " + suffix,
		StartAt:   start,
		Duration:  duration,
		Metrics:   metrics,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO activities (id, owner_id, gear_id, name, start_at, duration_s, distance_m, elevation_m, moving_time_s, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.OwnerID, a.GearID, a.Name, a.StartAt,
		int64(a.Duration/time.Second),
		a.Metrics.DistanceM, a.Metrics.ElevationM,
		int64(a.Metrics.MovingTime/time.Second),
		a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedActivity insert activity: %v", err)
	}

	return a
}
