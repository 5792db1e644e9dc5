package timeline

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

type mockPartRepo struct {
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*domain.Part, error)
}

func (m *mockPartRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Part, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
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

type mockAttachmentRepo struct {
	GetByIDFunc        func(ctx context.Context, id uuid.UUID) (*domain.Attachment, error)
	CreateFunc         func(ctx context.Context, a *domain.Attachment) (*domain.Attachment, error)
	SetIntervalFunc    func(ctx context.Context, id uuid.UUID, start time.Time, end *time.Time) error
	ListByPartFunc     func(ctx context.Context, partID uuid.UUID) ([]*domain.Attachment, error)
	ListByPositionFunc func(ctx context.Context, gearID uuid.UUID, pos domain.Position) ([]*domain.Attachment, error)
}

func (m *mockAttachmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Attachment, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockAttachmentRepo) Create(ctx context.Context, a *domain.Attachment) (*domain.Attachment, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, a)
	}
	stored := *a
	stored.ID = uuid.New()
	return &stored, nil
}

func (m *mockAttachmentRepo) SetInterval(ctx context.Context, id uuid.UUID, start time.Time, end *time.Time) error {
	if m.SetIntervalFunc != nil {
		return m.SetIntervalFunc(ctx, id, start, end)
	}
	return nil
}

func (m *mockAttachmentRepo) ListByPart(ctx context.Context, partID uuid.UUID) ([]*domain.Attachment, error) {
	if m.ListByPartFunc != nil {
		return m.ListByPartFunc(ctx, partID)
	}
	return nil, nil
}

func (m *mockAttachmentRepo) ListByPosition(ctx context.Context, gearID uuid.UUID, pos domain.Position) ([]*domain.Attachment, error) {
	if m.ListByPositionFunc != nil {
		return m.ListByPositionFunc(ctx, gearID, pos)
	}
	return nil, nil
}

type mockRecomputer struct {
	RecomputePartFunc func(ctx context.Context, partID uuid.UUID) (*domain.UsageAggregate, error)
}

func (m *mockRecomputer) RecomputePart(ctx context.Context, partID uuid.UUID) (*domain.UsageAggregate, error) {
	if m.RecomputePartFunc != nil {
		return m.RecomputePartFunc(ctx, partID)
	}
	return &domain.UsageAggregate{PartID: partID}, nil
}

type mockTxManager struct{}

func (mockTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ===========================================================================
// Fixtures
// ===========================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	ownerID uuid.UUID
	part    *domain.Part
	gear    *domain.Gear
	parts   *mockPartRepo
	gears   *mockGearRepo
	atts    *mockAttachmentRepo
	usage   *mockRecomputer
}

func newFixture() *fixture {
	ownerID := uuid.New()
	part := &domain.Part{ID: uuid.New(), OwnerID: ownerID, Name: "KMC X12", Category: domain.PartCategoryChain}
	gear := &domain.Gear{ID: uuid.New(), OwnerID: ownerID, Name: "Gravel bike", Kind: domain.GearKindBike}

	f := &fixture{
		ownerID: ownerID,
		part:    part,
		gear:    gear,
		atts:    &mockAttachmentRepo{},
		usage:   &mockRecomputer{},
	}
	f.parts = &mockPartRepo{GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Part, error) {
		if id == part.ID {
			p := *part
			return &p, nil
		}
		return nil, domain.ErrNotFound
	}}
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
	return NewService(testLogger(), f.parts, f.gears, f.atts, f.usage, mockTxManager{})
}

func (f *fixture) ctx() context.Context {
	return ctxutil.WithUserID(context.Background(), f.ownerID)
}

// ===========================================================================
// Attach
// ===========================================================================

func TestAttach_OpenMount(t *testing.T) {
	t.Parallel()

	f := newFixture()
	var recomputed []uuid.UUID
	f.usage.RecomputePartFunc = func(ctx context.Context, partID uuid.UUID) (*domain.UsageAggregate, error) {
		recomputed = append(recomputed, partID)
		return &domain.UsageAggregate{PartID: partID}, nil
	}

	got, err := f.service().Attach(f.ctx(), AttachInput{
		PartID:   f.part.ID,
		GearID:   f.gear.ID,
		Position: "Chain",
		StartAt:  day(0),
	})
	require.NoError(t, err)
	assert.Equal(t, f.part.ID, got.PartID)
	assert.Equal(t, domain.Position("chain"), got.Position)
	assert.True(t, got.IsOpen())
	assert.Equal(t, []uuid.UUID{f.part.ID}, recomputed)
}

func TestAttach_RetroactiveInsertTruncatesAndRecomputesBoth(t *testing.T) {
	t.Parallel()

	f := newFixture()
	priorPartID := uuid.New()
	prior := &domain.Attachment{
		ID:       uuid.New(),
		PartID:   priorPartID,
		GearID:   f.gear.ID,
		Position: "chain",
		StartAt:  day(0),
		EndAt:    dayPtr(10),
	}
	f.atts.ListByPositionFunc = func(ctx context.Context, gearID uuid.UUID, pos domain.Position) ([]*domain.Attachment, error) {
		return []*domain.Attachment{prior}, nil
	}

	var truncatedTo *time.Time
	f.atts.SetIntervalFunc = func(ctx context.Context, id uuid.UUID, start time.Time, end *time.Time) error {
		require.Equal(t, prior.ID, id)
		truncatedTo = end
		return nil
	}

	recomputed := map[uuid.UUID]bool{}
	f.usage.RecomputePartFunc = func(ctx context.Context, partID uuid.UUID) (*domain.UsageAggregate, error) {
		recomputed[partID] = true
		return &domain.UsageAggregate{PartID: partID}, nil
	}

	_, err := f.service().Attach(f.ctx(), AttachInput{
		PartID:   f.part.ID,
		GearID:   f.gear.ID,
		Position: "chain",
		StartAt:  day(5),
		EndAt:    dayPtr(10),
	})
	require.NoError(t, err)

	require.NotNil(t, truncatedTo)
	assert.True(t, truncatedTo.Equal(day(5)))
	assert.True(t, recomputed[f.part.ID], "new part must be recomputed")
	assert.True(t, recomputed[priorPartID], "truncated part must be recomputed")
}

func TestAttach_PositionOccupiedConflict(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.atts.ListByPositionFunc = func(ctx context.Context, gearID uuid.UUID, pos domain.Position) ([]*domain.Attachment, error) {
		return []*domain.Attachment{{
			ID: uuid.New(), PartID: uuid.New(), GearID: gearID, Position: pos, StartAt: day(0),
		}}, nil
	}

	_, err := f.service().Attach(f.ctx(), AttachInput{
		PartID:   f.part.ID,
		GearID:   f.gear.ID,
		Position: "chain",
		StartAt:  day(5),
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestAttach_PartMountedElsewhereConflict(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.atts.ListByPartFunc = func(ctx context.Context, partID uuid.UUID) ([]*domain.Attachment, error) {
		return []*domain.Attachment{{
			ID: uuid.New(), PartID: partID, GearID: uuid.New(), Position: "chain", StartAt: day(0),
		}}, nil
	}

	_, err := f.service().Attach(f.ctx(), AttachInput{
		PartID:   f.part.ID,
		GearID:   f.gear.ID,
		Position: "chain",
		StartAt:  day(5),
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestAttach_RetiredPartConflict(t *testing.T) {
	t.Parallel()

	f := newFixture()
	retired := day(0)
	f.part.RetiredAt = &retired

	_, err := f.service().Attach(f.ctx(), AttachInput{
		PartID:   f.part.ID,
		GearID:   f.gear.ID,
		Position: "chain",
		StartAt:  day(5),
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestAttach_EndBeforeStart(t *testing.T) {
	t.Parallel()

	f := newFixture()

	_, err := f.service().Attach(f.ctx(), AttachInput{
		PartID:   f.part.ID,
		GearID:   f.gear.ID,
		Position: "chain",
		StartAt:  day(5),
		EndAt:    dayPtr(3),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
}

func TestAttach_EmptyPositionValidation(t *testing.T) {
	t.Parallel()

	f := newFixture()

	_, err := f.service().Attach(f.ctx(), AttachInput{
		PartID:   f.part.ID,
		GearID:   f.gear.ID,
		Position: "  - ",
		StartAt:  day(5),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAttach_CrossOwnerForbidden(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.gear.OwnerID = uuid.New()

	_, err := f.service().Attach(f.ctx(), AttachInput{
		PartID:   f.part.ID,
		GearID:   f.gear.ID,
		Position: "chain",
		StartAt:  day(5),
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ===========================================================================
// Detach
// ===========================================================================

func TestDetach_ClosesOpenAttachment(t *testing.T) {
	t.Parallel()

	f := newFixture()
	open := &domain.Attachment{
		ID: uuid.New(), PartID: f.part.ID, GearID: f.gear.ID, Position: "chain", StartAt: day(0),
	}
	f.atts.GetByIDFunc = func(ctx context.Context, id uuid.UUID) (*domain.Attachment, error) {
		a := *open
		return &a, nil
	}

	var closedAt *time.Time
	f.atts.SetIntervalFunc = func(ctx context.Context, id uuid.UUID, start time.Time, end *time.Time) error {
		closedAt = end
		return nil
	}

	var recomputed uuid.UUID
	f.usage.RecomputePartFunc = func(ctx context.Context, partID uuid.UUID) (*domain.UsageAggregate, error) {
		recomputed = partID
		return &domain.UsageAggregate{PartID: partID}, nil
	}

	got, err := f.service().Detach(f.ctx(), open.ID, day(7))
	require.NoError(t, err)
	require.NotNil(t, closedAt)
	assert.True(t, closedAt.Equal(day(7)))
	assert.False(t, got.IsOpen())
	assert.Equal(t, f.part.ID, recomputed)
}

func TestDetach_AlreadyClosedConflict(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.atts.GetByIDFunc = func(ctx context.Context, id uuid.UUID) (*domain.Attachment, error) {
		return &domain.Attachment{
			ID: id, PartID: f.part.ID, GearID: f.gear.ID, Position: "chain",
			StartAt: day(0), EndAt: dayPtr(5),
		}, nil
	}

	_, err := f.service().Detach(f.ctx(), uuid.New(), day(7))
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestDetach_BeforeStartInvalidRange(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.atts.GetByIDFunc = func(ctx context.Context, id uuid.UUID) (*domain.Attachment, error) {
		return &domain.Attachment{
			ID: id, PartID: f.part.ID, GearID: f.gear.ID, Position: "chain", StartAt: day(5),
		}, nil
	}

	_, err := f.service().Detach(f.ctx(), uuid.New(), day(3))
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
}

func TestDetach_ForbiddenForStranger(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.atts.GetByIDFunc = func(ctx context.Context, id uuid.UUID) (*domain.Attachment, error) {
		return &domain.Attachment{
			ID: id, PartID: f.part.ID, GearID: f.gear.ID, Position: "chain", StartAt: day(0),
		}, nil
	}

	strangerCtx := ctxutil.WithUserID(context.Background(), uuid.New())
	_, err := f.service().Detach(strangerCtx, uuid.New(), day(7))
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
