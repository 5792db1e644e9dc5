package domain

import "time"

// Interval is a time interval with an optional open end.
// An open interval (End == nil) extends to the indefinite future.
type Interval struct {
	Start time.Time
	End   *time.Time
}

// NewInterval builds a closed interval.
func NewInterval(start, end time.Time) Interval {
	return Interval{Start: start, End: &end}
}

// OpenInterval builds an open-ended interval.
func OpenInterval(start time.Time) Interval {
	return Interval{Start: start}
}

// IsOpen reports whether the interval has no end.
func (iv Interval) IsOpen() bool { return iv.End == nil }

// Validate returns ErrInvalidRange if End precedes Start.
func (iv Interval) Validate() error {
	if iv.End != nil && iv.End.Before(iv.Start) {
		return ErrInvalidRange
	}
	return nil
}

// ActiveAt reports whether t lies within the interval, with both boundaries
// inclusive: an attachment detached at exactly t is still considered active
// at t. Zero-duration boundary ties are resolved by the attribution engine.
func (iv Interval) ActiveAt(t time.Time) bool {
	if t.Before(iv.Start) {
		return false
	}
	return iv.End == nil || !iv.End.Before(t)
}

// Overlap clamps the interval to the closed window [from, to] and reports
// whether the two intersect. For an open interval the end clamps to the
// window end.
func (iv Interval) Overlap(from, to time.Time) (time.Time, time.Time, bool) {
	start := iv.Start
	if start.Before(from) {
		start = from
	}
	end := to
	if iv.End != nil && iv.End.Before(to) {
		end = *iv.End
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// Intersects reports whether the interval shares at least an instant with
// the closed window [from, to].
func (iv Interval) Intersects(from, to time.Time) bool {
	_, _, ok := iv.Overlap(from, to)
	return ok
}

// Contains reports whether other lies fully inside the interval.
func (iv Interval) Contains(other Interval) bool {
	if other.Start.Before(iv.Start) {
		return false
	}
	if iv.End == nil {
		return true
	}
	if other.End == nil {
		return false
	}
	return !other.End.After(*iv.End)
}
