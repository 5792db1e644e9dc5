package timeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkravets/gearlog-backend/internal/domain"
)

// Truncation shortens one existing attachment so a new interval fits.
type Truncation struct {
	AttachmentID uuid.UUID
	PartID       uuid.UUID
	Start        time.Time
	NewEnd       time.Time
}

// PlanInsert decides how existing attachment intervals must change to admit a
// new one. Intervals are half-open for occupancy: an attachment ending exactly
// when the new one starts does not collide.
//
// The only permitted adjustment is head truncation: a closed interval that
// started earlier and overlaps the new one is cut back to the new start. Any
// overlap that would require splitting or swallowing an interval, and any
// overlap with a still-open attachment, is a conflict the caller must resolve
// explicitly (detach first, or correct the existing record).
func PlanInsert(newIv domain.Interval, existing []*domain.Attachment) ([]Truncation, error) {
	var truncations []Truncation
	seen := make(map[uuid.UUID]bool)

	for _, a := range existing {
		if seen[a.ID] {
			continue
		}
		seen[a.ID] = true

		if !overlapsHalfOpen(newIv, a) {
			continue
		}

		if a.IsOpen() {
			return nil, fmt.Errorf("attachment %s is still open: %w", a.ID, domain.ErrConflict)
		}
		if !a.StartAt.Before(newIv.Start) {
			return nil, fmt.Errorf("attachment %s would be displaced entirely: %w", a.ID, domain.ErrConflict)
		}
		if newIv.End != nil && a.EndAt.After(*newIv.End) {
			return nil, fmt.Errorf("attachment %s surrounds the new interval: %w", a.ID, domain.ErrConflict)
		}

		truncations = append(truncations, Truncation{
			AttachmentID: a.ID,
			PartID:       a.PartID,
			Start:        a.StartAt,
			NewEnd:       newIv.Start,
		})
	}

	return truncations, nil
}

// overlapsHalfOpen reports whether the new interval and an existing attachment
// share more than a touching boundary.
func overlapsHalfOpen(newIv domain.Interval, a *domain.Attachment) bool {
	if newIv.End != nil && !a.StartAt.Before(*newIv.End) {
		return false
	}
	if a.EndAt != nil && !a.EndAt.After(newIv.Start) {
		return false
	}
	return true
}
