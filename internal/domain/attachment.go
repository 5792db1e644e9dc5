package domain

import (
	"time"

	"github.com/google/uuid"
)

// Attachment is a time interval during which a part occupies a gear's
// position. Attachments are closed (EndAt set), never physically deleted, so
// historical attribution stays reconstructible.
//
// Invariants, per (gear, position): intervals are pairwise non-overlapping;
// at most one may be open. Per part: at most one open attachment overall,
// since a part cannot be mounted in two places at once.
type Attachment struct {
	ID        uuid.UUID
	PartID    uuid.UUID
	GearID    uuid.UUID
	Position  Position
	StartAt   time.Time
	EndAt     *time.Time
	CreatedAt time.Time
}

// IsOpen reports whether the attachment is still mounted.
func (a *Attachment) IsOpen() bool { return a.EndAt == nil }

// Interval returns the attachment's time interval.
func (a *Attachment) Interval() Interval {
	return Interval{Start: a.StartAt, End: a.EndAt}
}

// PlacementOverlap describes where a part was mounted during a queried
// window, clamped to that window.
type PlacementOverlap struct {
	AttachmentID uuid.UUID
	GearID       uuid.UUID
	Position     Position
	OverlapStart time.Time
	OverlapEnd   time.Time
}
