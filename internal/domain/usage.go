package domain

import (
	"time"

	"github.com/google/uuid"
)

// UsageAggregate is the cached cumulative usage of a part. It is derived,
// never authoritative: it can always be rebuilt from the attachment and
// activity records. Version increases monotonically on every write and backs
// the optimistic concurrency check.
type UsageAggregate struct {
	PartID        uuid.UUID
	Metrics       Metrics
	ActivityCount int64
	Version       int64
	RecomputedAt  time.Time
}

// Snapshot freezes the aggregate's metric values, e.g. as a service event
// baseline.
func (u UsageAggregate) Snapshot() UsageSnapshot {
	return UsageSnapshot{
		Metrics:       u.Metrics,
		ActivityCount: u.ActivityCount,
	}
}

// MetricValue returns the value of a single metric kind.
func (u UsageAggregate) MetricValue(kind MetricKind) int64 {
	return u.Snapshot().MetricValue(kind)
}

// UsageSnapshot is a point-in-time copy of a part's cumulative metrics.
type UsageSnapshot struct {
	Metrics       Metrics
	ActivityCount int64
}

// MetricValue returns the value of a single metric kind. Moving time is
// reported in whole seconds.
func (s UsageSnapshot) MetricValue(kind MetricKind) int64 {
	switch kind {
	case MetricDistance:
		return s.Metrics.DistanceM
	case MetricMovingTime:
		return int64(s.Metrics.MovingTime / time.Second)
	case MetricElevation:
		return s.Metrics.ElevationM
	case MetricActivities:
		return s.ActivityCount
	}
	return 0
}

// UsageDelta is one part's share of a single activity, as computed by the
// attribution engine. Applying the delta set of every attributed activity, in
// any order, yields the same aggregate as a full recompute.
type UsageDelta struct {
	PartID        uuid.UUID
	Metrics       Metrics
	ActivityCount int64
}
