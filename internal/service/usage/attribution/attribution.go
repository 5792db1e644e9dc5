// Package attribution computes which parts are credited with an activity's
// metrics, and by what fraction.
//
// The policy: metrics are never split across positions: a part mounted on
// the front wheel receives full distance credit, not a share of the bike's
// total. Only temporal overlap within a single position is fractional, which
// matters when a part is swapped mid-activity.
//
// Boundary rule: credit is anchored at the activity's start instant. The
// attachment active at the start (an attachment detached exactly at the start
// still counts; a tie between it and a successor attached at that same
// instant resolves to the earlier, outgoing attachment) owns the position
// from the window start. Ownership changes only at attachment boundaries
// strictly inside the window. An activity recorded at the very instant a part
// is swapped therefore credits the outgoing part in full.
package attribution

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mkravets/gearlog-backend/internal/domain"
)

// Credit is one part's share of one activity at one position.
type Credit struct {
	PartID   uuid.UUID
	Position domain.Position
	Fraction float64
	Metrics  domain.Metrics
}

// Attribute computes the credit set for an activity given the attachments of
// its gear that intersect the activity window. Attachments of other gears are
// ignored. Positions with no attachment during the window simply produce no
// credit. A zero-duration activity contributes no usage at all.
func Attribute(activity *domain.Activity, attachments []*domain.Attachment) []Credit {
	if activity.Duration <= 0 {
		return nil
	}

	wStart := activity.StartAt
	wEnd := activity.EndAt()

	byPosition := make(map[domain.Position][]*domain.Attachment)
	for _, a := range attachments {
		if a.GearID != activity.GearID {
			continue
		}
		if !a.Interval().Intersects(wStart, wEnd) {
			continue
		}
		byPosition[a.Position] = append(byPosition[a.Position], a)
	}

	var credits []Credit
	for pos, group := range byPosition {
		credits = append(credits, attributePosition(activity, pos, group)...)
	}

	// Map iteration order is random; callers and tests want stable output.
	sort.Slice(credits, func(i, j int) bool {
		if credits[i].Position != credits[j].Position {
			return credits[i].Position < credits[j].Position
		}
		return credits[i].PartID.String() < credits[j].PartID.String()
	})

	return credits
}

// SumByPart folds credits into per-part usage deltas. A part swapped between
// positions mid-activity accumulates the fractions of both placements but is
// counted as a single attributed activity.
func SumByPart(credits []Credit) []domain.UsageDelta {
	index := make(map[uuid.UUID]int)
	var deltas []domain.UsageDelta
	for _, c := range credits {
		if c.Fraction == 0 {
			continue
		}
		i, ok := index[c.PartID]
		if !ok {
			i = len(deltas)
			index[c.PartID] = i
			deltas = append(deltas, domain.UsageDelta{PartID: c.PartID, ActivityCount: 1})
		}
		deltas[i].Metrics = deltas[i].Metrics.Add(c.Metrics)
	}
	return deltas
}

// attributePosition splits the activity window among the successive occupants
// of a single position.
func attributePosition(activity *domain.Activity, pos domain.Position, group []*domain.Attachment) []Credit {
	wStart := activity.StartAt
	wEnd := activity.EndAt()
	total := activity.Duration

	anchor := startAnchor(group, wStart)

	// Handover points: attachment boundaries strictly inside the window.
	points := []time.Time{wStart}
	for _, a := range group {
		if a.StartAt.After(wStart) && a.StartAt.Before(wEnd) {
			points = append(points, a.StartAt)
		}
		if a.EndAt != nil && a.EndAt.After(wStart) && a.EndAt.Before(wEnd) {
			points = append(points, *a.EndAt)
		}
	}
	points = append(points, wEnd)
	sort.Slice(points, func(i, j int) bool { return points[i].Before(points[j]) })

	owned := make(map[uuid.UUID]time.Duration)
	for i := 0; i < len(points)-1; i++ {
		segStart, segEnd := points[i], points[i+1]
		if !segEnd.After(segStart) {
			continue // duplicate boundary
		}

		var owner *domain.Attachment
		if i == 0 && anchor != nil {
			owner = anchor
		} else {
			owner = occupantAt(group, midpoint(segStart, segEnd))
		}
		if owner == nil {
			continue // position empty during this segment
		}
		owned[owner.PartID] += segEnd.Sub(segStart)
	}

	var credits []Credit
	for partID, d := range owned {
		fraction := float64(d) / float64(total)
		credits = append(credits, Credit{
			PartID:   partID,
			Position: pos,
			Fraction: fraction,
			Metrics:  activity.Metrics.Scale(fraction),
		})
	}
	return credits
}

// startAnchor picks the attachment that owns the position at the window
// start. Closed-end semantics: an attachment whose end equals the start is
// still active there. When both the outgoing and the incoming attachment
// touch the start instant, the earlier start wins, meaning the outgoing part.
func startAnchor(group []*domain.Attachment, wStart time.Time) *domain.Attachment {
	var anchor *domain.Attachment
	for _, a := range group {
		if a.StartAt.After(wStart) || !a.Interval().ActiveAt(wStart) {
			continue
		}
		if anchor == nil || a.StartAt.Before(anchor.StartAt) {
			anchor = a
		}
	}
	return anchor
}

// occupantAt finds the attachment covering the given instant, half-open:
// the instant of a handover belongs to the incoming attachment. The instant
// is always a segment midpoint, never a boundary, so at most one attachment
// matches.
func occupantAt(group []*domain.Attachment, t time.Time) *domain.Attachment {
	for _, a := range group {
		if a.StartAt.After(t) {
			continue
		}
		if a.EndAt == nil || a.EndAt.After(t) {
			return a
		}
	}
	return nil
}

func midpoint(a, b time.Time) time.Time {
	return a.Add(b.Sub(a) / 2)
}
