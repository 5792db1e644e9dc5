package domain

import (
	"math"
	"time"
)

// Metrics holds the raw wear metrics of a single activity, or a per-part
// cumulative sum of such metrics.
//
// All metrics are integers (meters and seconds). Integer addition is exactly
// commutative and associative, so a per-part aggregate rebuilt from scratch
// is bit-for-bit equal to the same set of deltas applied in any order; the
// primary correctness invariant of the usage accounting engine. Float
// accumulation cannot give that guarantee.
type Metrics struct {
	// DistanceM is distance in meters.
	DistanceM int64
	// ElevationM is elevation gain in meters.
	ElevationM int64
	// MovingTime is duration in motion.
	MovingTime time.Duration
}

// Add returns m + other.
func (m Metrics) Add(other Metrics) Metrics {
	return Metrics{
		DistanceM:  m.DistanceM + other.DistanceM,
		ElevationM: m.ElevationM + other.ElevationM,
		MovingTime: m.MovingTime + other.MovingTime,
	}
}

// Sub returns m - other.
func (m Metrics) Sub(other Metrics) Metrics {
	return Metrics{
		DistanceM:  m.DistanceM - other.DistanceM,
		ElevationM: m.ElevationM - other.ElevationM,
		MovingTime: m.MovingTime - other.MovingTime,
	}
}

// Neg returns -m.
func (m Metrics) Neg() Metrics {
	return Metrics{
		DistanceM:  -m.DistanceM,
		ElevationM: -m.ElevationM,
		MovingTime: -m.MovingTime,
	}
}

// Scale returns m scaled by the given fraction, rounding each metric
// half-away-from-zero. Moving time is rounded at whole-second granularity,
// the resolution it is persisted at, so a scaled value survives a storage
// round trip unchanged. Scaling is done once per (activity, part) during
// attribution, so the rounded values themselves are what both incremental
// deltas and full recomputes sum, keeping the two paths identical.
func (m Metrics) Scale(fraction float64) Metrics {
	if fraction == 1 {
		return m
	}
	if fraction == 0 {
		return Metrics{}
	}
	return Metrics{
		DistanceM:  scaleInt(m.DistanceM, fraction),
		ElevationM: scaleInt(m.ElevationM, fraction),
		MovingTime: time.Duration(scaleInt(int64(m.MovingTime/time.Second), fraction)) * time.Second,
	}
}

// IsZero reports whether every metric is zero.
func (m Metrics) IsZero() bool {
	return m.DistanceM == 0 && m.ElevationM == 0 && m.MovingTime == 0
}

// Validate checks that no metric is negative.
func (m Metrics) Validate() error {
	var errs []FieldError
	if m.DistanceM < 0 {
		errs = append(errs, FieldError{Field: "distance_m", Message: "must be >= 0"})
	}
	if m.ElevationM < 0 {
		errs = append(errs, FieldError{Field: "elevation_m", Message: "must be >= 0"})
	}
	if m.MovingTime < 0 {
		errs = append(errs, FieldError{Field: "moving_time", Message: "must be >= 0"})
	}
	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}

func scaleInt(v int64, fraction float64) int64 {
	return int64(math.Round(float64(v) * fraction))
}
