package activities

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkravets/gearlog-backend/internal/domain"
	"github.com/mkravets/gearlog-backend/pkg/ctxutil"
)

// ===========================================================================
// Manual mocks (moq-style with func fields)
// ===========================================================================

type mockActivityRepo struct {
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*domain.Activity, error)
	CreateFunc  func(ctx context.Context, a *domain.Activity) (*domain.Activity, error)
	UpdateFunc  func(ctx context.Context, a *domain.Activity) error
	DeleteFunc  func(ctx context.Context, id uuid.UUID) error
	ListFunc    func(ctx context.Context, ownerID uuid.UUID, filter domain.ActivityFilter) ([]*domain.Activity, int, error)
}

func (m *mockActivityRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Activity, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockActivityRepo) Create(ctx context.Context, a *domain.Activity) (*domain.Activity, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, a)
	}
	stored := *a
	stored.ID = uuid.New()
	return &stored, nil
}

func (m *mockActivityRepo) Update(ctx context.Context, a *domain.Activity) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, a)
	}
	return nil
}

func (m *mockActivityRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *mockActivityRepo) List(ctx context.Context, ownerID uuid.UUID, filter domain.ActivityFilter) ([]*domain.Activity, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, ownerID, filter)
	}
	return nil, 0, nil
}

type mockGearRepo struct {
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*domain.Gear, error)
}

func (m *mockGearRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Gear, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

type mockUsageService struct {
	DeltasForFunc func(ctx context.Context, act *domain.Activity) ([]domain.UsageDelta, error)

	applied [][]domain.UsageDelta
}

func (m *mockUsageService) DeltasFor(ctx context.Context, act *domain.Activity) ([]domain.UsageDelta, error) {
	if m.DeltasForFunc != nil {
		return m.DeltasForFunc(ctx, act)
	}
	return nil, nil
}

func (m *mockUsageService) ApplyDeltas(ctx context.Context, deltas []domain.UsageDelta) error {
	m.applied = append(m.applied, deltas)
	return nil
}

type mockTxManager struct{}

func (mockTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ===========================================================================
// Fixtures
// ===========================================================================

var epoch = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	ownerID uuid.UUID
	gear    *domain.Gear
	acts    *mockActivityRepo
	gears   *mockGearRepo
	usage   *mockUsageService
}

func newFixture() *fixture {
	ownerID := uuid.New()
	gear := &domain.Gear{ID: uuid.New(), OwnerID: ownerID, Name: "Road bike", Kind: domain.GearKindBike}

	f := &fixture{
		ownerID: ownerID,
		gear:    gear,
		acts:    &mockActivityRepo{},
		usage:   &mockUsageService{},
	}
	f.gears = &mockGearRepo{GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Gear, error) {
		if id == gear.ID {
			g := *gear
			return &g, nil
		}
		return nil, domain.ErrNotFound
	}}
	return f
}

func (f *fixture) service() *Service {
	return NewService(testLogger(), f.acts, f.gears, f.usage, mockTxManager{})
}

func (f *fixture) ctx() context.Context {
	return ctxutil.WithUserID(context.Background(), f.ownerID)
}

func validInput(gearID uuid.UUID) ActivityInput {
	return ActivityInput{
		GearID:     gearID,
		Name:       "Morning ride",
		StartAt:    epoch,
		Duration:   2 * time.Hour,
		DistanceM:  40000,
		ElevationM: 300,
		MovingTime: 110 * time.Minute,
	}
}

// ===========================================================================
// Record
// ===========================================================================

func TestRecord_CreatesAndCredits(t *testing.T) {
	t.Parallel()

	f := newFixture()
	partID := uuid.New()
	f.usage.DeltasForFunc = func(ctx context.Context, act *domain.Activity) ([]domain.UsageDelta, error) {
		return []domain.UsageDelta{{PartID: partID, Metrics: act.Metrics, ActivityCount: 1}}, nil
	}

	got, err := f.service().Record(f.ctx(), validInput(f.gear.ID))
	require.NoError(t, err)
	assert.Equal(t, f.ownerID, got.OwnerID)
	assert.Equal(t, int64(40000), got.Metrics.DistanceM)

	require.Len(t, f.usage.applied, 1)
	require.Len(t, f.usage.applied[0], 1)
	assert.Equal(t, partID, f.usage.applied[0][0].PartID)
	assert.Equal(t, int64(1), f.usage.applied[0][0].ActivityCount)
}

func TestRecord_Unauthorized(t *testing.T) {
	t.Parallel()

	f := newFixture()

	_, err := f.service().Record(context.Background(), validInput(f.gear.ID))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRecord_StrangersGearForbidden(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.gear.OwnerID = uuid.New()

	_, err := f.service().Record(f.ctx(), validInput(f.gear.ID))
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestRecord_NegativeDistanceValidation(t *testing.T) {
	t.Parallel()

	f := newFixture()
	input := validInput(f.gear.ID)
	input.DistanceM = -1

	_, err := f.service().Record(f.ctx(), input)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRecord_ZeroDurationIsLegal(t *testing.T) {
	t.Parallel()

	f := newFixture()
	input := validInput(f.gear.ID)
	input.Duration = 0

	_, err := f.service().Record(f.ctx(), input)
	assert.NoError(t, err)
}

// ===========================================================================
// Edit
// ===========================================================================

func TestEdit_BacksOutOldAndAppliesNew(t *testing.T) {
	t.Parallel()

	f := newFixture()
	partID := uuid.New()
	existing := &domain.Activity{
		ID:       uuid.New(),
		OwnerID:  f.ownerID,
		GearID:   f.gear.ID,
		StartAt:  epoch,
		Duration: time.Hour,
		Metrics:  domain.Metrics{DistanceM: 10000},
	}
	f.acts.GetByIDFunc = func(ctx context.Context, id uuid.UUID) (*domain.Activity, error) {
		a := *existing
		return &a, nil
	}
	f.usage.DeltasForFunc = func(ctx context.Context, act *domain.Activity) ([]domain.UsageDelta, error) {
		return []domain.UsageDelta{{PartID: partID, Metrics: act.Metrics, ActivityCount: 1}}, nil
	}

	input := validInput(f.gear.ID)
	input.DistanceM = 25000

	got, err := f.service().Edit(f.ctx(), existing.ID, input)
	require.NoError(t, err)
	assert.Equal(t, int64(25000), got.Metrics.DistanceM)

	// First the negated old deltas, then the new ones.
	require.Len(t, f.usage.applied, 2)
	assert.Equal(t, int64(-10000), f.usage.applied[0][0].Metrics.DistanceM)
	assert.Equal(t, int64(-1), f.usage.applied[0][0].ActivityCount)
	assert.Equal(t, int64(25000), f.usage.applied[1][0].Metrics.DistanceM)
}

func TestEdit_NotFound(t *testing.T) {
	t.Parallel()

	f := newFixture()

	_, err := f.service().Edit(f.ctx(), uuid.New(), validInput(f.gear.ID))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEdit_ForbiddenForStranger(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.acts.GetByIDFunc = func(ctx context.Context, id uuid.UUID) (*domain.Activity, error) {
		return &domain.Activity{ID: id, OwnerID: uuid.New(), GearID: f.gear.ID}, nil
	}

	_, err := f.service().Edit(f.ctx(), uuid.New(), validInput(f.gear.ID))
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ===========================================================================
// Delete
// ===========================================================================

func TestDelete_BacksOutCredit(t *testing.T) {
	t.Parallel()

	f := newFixture()
	partID := uuid.New()
	existing := &domain.Activity{
		ID:      uuid.New(),
		OwnerID: f.ownerID,
		GearID:  f.gear.ID,
		Metrics: domain.Metrics{DistanceM: 10000},
	}
	f.acts.GetByIDFunc = func(ctx context.Context, id uuid.UUID) (*domain.Activity, error) {
		a := *existing
		return &a, nil
	}
	f.usage.DeltasForFunc = func(ctx context.Context, act *domain.Activity) ([]domain.UsageDelta, error) {
		return []domain.UsageDelta{{PartID: partID, Metrics: act.Metrics, ActivityCount: 1}}, nil
	}

	var deleted bool
	f.acts.DeleteFunc = func(ctx context.Context, id uuid.UUID) error {
		deleted = true
		return nil
	}

	require.NoError(t, f.service().Delete(f.ctx(), existing.ID))
	assert.True(t, deleted)

	require.Len(t, f.usage.applied, 1)
	assert.Equal(t, int64(-10000), f.usage.applied[0][0].Metrics.DistanceM)
	assert.Equal(t, int64(-1), f.usage.applied[0][0].ActivityCount)
}

// ===========================================================================
// List
// ===========================================================================

func TestList_InvalidRange(t *testing.T) {
	t.Parallel()

	f := newFixture()
	from := epoch
	to := epoch.Add(-time.Hour)

	_, _, err := f.service().List(f.ctx(), domain.ActivityFilter{From: &from, To: &to})
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
}

func TestList_Unauthorized(t *testing.T) {
	t.Parallel()

	f := newFixture()

	_, _, err := f.service().List(context.Background(), domain.ActivityFilter{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
