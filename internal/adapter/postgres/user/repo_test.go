package user_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/mkravets/gearlog-backend/internal/adapter/postgres/testhelper"
	"github.com/mkravets/gearlog-backend/internal/adapter/postgres/user"
	"github.com/mkravets/gearlog-backend/internal/domain"
)

func TestUserCreateAndGet(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := user.New(pool)
	ctx := context.Background()

	email := "create-" + uuid.New().String()[:8] + "@example.com"
	created, err := repo.Create(ctx, &domain.User{
		Email:        email,
		Name:         "Test Rider",
		PasswordHash: "$2a$10$fakehash",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatal("Create did not assign an ID")
	}

	byID, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if byID.Email != email || byID.Name != "Test Rider" {
		t.Errorf("got %q / %q", byID.Email, byID.Name)
	}
	if byID.IsAdmin {
		t.Error("new user must not be admin")
	}

	byEmail, err := repo.GetByEmail(ctx, email)
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Errorf("GetByEmail returned %s, want %s", byEmail.ID, created.ID)
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := user.New(pool)
	ctx := context.Background()

	seeded := testhelper.SeedUser(t, pool)

	_, err := repo.Create(ctx, &domain.User{
		Email:        seeded.Email,
		Name:         "Impostor",
		PasswordHash: "$2a$10$fakehash",
	})
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestUserGet_NotFound(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := user.New(pool)
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, uuid.New()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetByID: err = %v, want ErrNotFound", err)
	}
	if _, err := repo.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetByEmail: err = %v, want ErrNotFound", err)
	}
}
