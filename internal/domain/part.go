package domain

import (
	"time"

	"github.com/google/uuid"
)

// Part is a trackable physical component with its own usage history.
// Identity is immutable; metadata may change. A part is never deleted while
// attachments reference it; it is soft-retired instead.
type Part struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Name      string
	Category  PartCategory
	CreatedAt time.Time
	UpdatedAt time.Time
	RetiredAt *time.Time
}

// IsRetired reports whether the part has been soft-retired.
func (p *Part) IsRetired() bool { return p.RetiredAt != nil }

// Gear is a host assembly (e.g. a bicycle) with named mount positions.
type Gear struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Name      string
	Kind      GearKind
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Position names a mount point on a gear, e.g. "chain" or "front_wheel".
// Positions are free-form but normalized to lower snake case so that
// "Front Wheel" and "front_wheel" refer to the same mount point.
type Position string

func (p Position) String() string { return string(p) }
