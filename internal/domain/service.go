package domain

import (
	"time"

	"github.com/google/uuid"
)

// ServicePlan is a maintenance threshold rule. It targets either a single
// part or a whole part category (exactly one of PartID/Category is set).
// A recurring plan re-arms after every matching service event; a one-time
// plan is satisfied permanently by the first one.
type ServicePlan struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	PartID    *uuid.UUID
	Category  *PartCategory
	Name      string
	Metric    MetricKind
	Threshold int64
	Recurring bool
	CreatedAt time.Time
}

// AppliesTo reports whether the plan covers the given part.
func (p *ServicePlan) AppliesTo(part *Part) bool {
	if p.PartID != nil {
		return *p.PartID == part.ID
	}
	return p.Category != nil && *p.Category == part.Category
}

// ServiceEvent is a recorded maintenance action on a part. Baseline captures
// the part's aggregate at the moment of service; recurring plans measure wear
// from that snapshot onward. PlanID nil means the event applies to every plan
// covering the part.
type ServiceEvent struct {
	ID          uuid.UUID
	PartID      uuid.UUID
	PlanID      *uuid.UUID
	PerformedAt time.Time
	Note        string
	Baseline    UsageSnapshot
	CreatedAt   time.Time
}

// Matches reports whether the event resets the given plan.
func (e *ServiceEvent) Matches(planID uuid.UUID) bool {
	return e.PlanID == nil || *e.PlanID == planID
}

// ServiceStatus is the evaluated state of one plan for one part.
// Margin is Threshold - SinceBaseline and goes negative once overdue.
type ServiceStatus struct {
	Plan           ServicePlan
	State          ServiceState
	SinceBaseline  int64
	Margin         int64
	LastServicedAt *time.Time
}
