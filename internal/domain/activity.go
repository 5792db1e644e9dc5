package domain

import (
	"time"

	"github.com/google/uuid"
)

// Activity is a usage-generating event (e.g. a ride) with a time window and
// raw metrics. It is immutable once attributed, except for corrective edits
// and deletes, which trigger re-attribution of every affected part.
type Activity struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	GearID    uuid.UUID
	Name      string
	StartAt   time.Time
	Duration  time.Duration
	Metrics   Metrics
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EndAt returns the end of the activity window.
func (a *Activity) EndAt() time.Time {
	return a.StartAt.Add(a.Duration)
}

// Window returns the activity's closed time window as an interval.
func (a *Activity) Window() Interval {
	end := a.EndAt()
	return Interval{Start: a.StartAt, End: &end}
}

// ActivityFilter narrows an activity listing.
type ActivityFilter struct {
	// GearID narrows to activities of a single gear.
	GearID *uuid.UUID

	// From/To narrow to activities whose window intersects [From, To].
	From *time.Time
	To   *time.Time

	// Limit caps the page size. Zero means the default of 50; the hard
	// maximum is 200.
	Limit int

	// Offset is the number of activities to skip.
	Offset int
}

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200
)

// Normalize applies defaults and clamps values.
func (f *ActivityFilter) Normalize() {
	if f.Limit <= 0 {
		f.Limit = defaultActivityLimit
	}
	if f.Limit > maxActivityLimit {
		f.Limit = maxActivityLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}
