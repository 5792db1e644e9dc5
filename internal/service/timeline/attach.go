package timeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkravets/gearlog-backend/internal/auth"
	"github.com/mkravets/gearlog-backend/internal/domain"
)

// AttachInput describes a new mount of a part on a gear position.
// A nil EndAt opens the attachment; a set EndAt records a past stint.
type AttachInput struct {
	PartID   uuid.UUID
	GearID   uuid.UUID
	Position string
	StartAt  time.Time
	EndAt    *time.Time
}

// Validate checks field-level constraints.
func (in AttachInput) Validate() error {
	var fields []domain.FieldError
	if in.PartID == uuid.Nil {
		fields = append(fields, domain.FieldError{Field: "part_id", Message: "required"})
	}
	if in.GearID == uuid.Nil {
		fields = append(fields, domain.FieldError{Field: "gear_id", Message: "required"})
	}
	if domain.NormalizePosition(in.Position) == "" {
		fields = append(fields, domain.FieldError{Field: "position", Message: "required"})
	}
	if in.StartAt.IsZero() {
		fields = append(fields, domain.FieldError{Field: "start_at", Message: "required"})
	}
	if len(fields) > 0 {
		return domain.NewValidationErrors(fields)
	}
	return domain.Interval{Start: in.StartAt, End: in.EndAt}.Validate()
}

// Attach mounts a part on a gear position. A retroactive insert truncates
// closed intervals it displaces; collisions with open attachments or intervals
// that would need splitting are conflicts. Usage aggregates of every part
// whose history changed are recomputed in the same transaction.
func (s *Service) Attach(ctx context.Context, input AttachInput) (*domain.Attachment, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	part, err := s.parts.GetByID(ctx, input.PartID)
	if err != nil {
		return nil, fmt.Errorf("get part: %w", err)
	}
	if err := auth.Authorize(ctx, part.OwnerID); err != nil {
		return nil, err
	}
	if part.IsRetired() {
		return nil, fmt.Errorf("part %s is retired: %w", part.ID, domain.ErrConflict)
	}

	gear, err := s.gears.GetByID(ctx, input.GearID)
	if err != nil {
		return nil, fmt.Errorf("get gear: %w", err)
	}
	if gear.OwnerID != part.OwnerID {
		return nil, fmt.Errorf("part and gear belong to different owners: %w", domain.ErrForbidden)
	}

	pos := domain.NormalizePosition(input.Position)
	newIv := domain.Interval{Start: input.StartAt.UTC(), End: normalizeEnd(input.EndAt)}

	var created *domain.Attachment
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		positionHistory, err := s.attachments.ListByPosition(txCtx, gear.ID, pos)
		if err != nil {
			return fmt.Errorf("list position history: %w", err)
		}
		partHistory, err := s.attachments.ListByPart(txCtx, part.ID)
		if err != nil {
			return fmt.Errorf("list part history: %w", err)
		}

		truncations, err := PlanInsert(newIv, append(positionHistory, partHistory...))
		if err != nil {
			return err
		}

		affected := map[uuid.UUID]bool{part.ID: true}
		for _, tr := range truncations {
			if err := s.attachments.SetInterval(txCtx, tr.AttachmentID, tr.Start, &tr.NewEnd); err != nil {
				return fmt.Errorf("truncate attachment %s: %w", tr.AttachmentID, err)
			}
			affected[tr.PartID] = true
		}

		created, err = s.attachments.Create(txCtx, &domain.Attachment{
			PartID:   part.ID,
			GearID:   gear.ID,
			Position: pos,
			StartAt:  newIv.Start,
			EndAt:    newIv.End,
		})
		if err != nil {
			return fmt.Errorf("create attachment: %w", err)
		}

		for partID := range affected {
			if _, err := s.usage.RecomputePart(txCtx, partID); err != nil {
				return fmt.Errorf("recompute usage for part %s: %w", partID, err)
			}
		}

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.log.Info("part attached",
		"attachment_id", created.ID,
		"part_id", part.ID,
		"gear_id", gear.ID,
		"position", pos.String(),
	)

	return created, nil
}

func normalizeEnd(end *time.Time) *time.Time {
	if end == nil {
		return nil
	}
	u := end.UTC()
	return &u
}
