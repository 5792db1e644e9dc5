package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mkravets/gearlog-backend/internal/domain"
	"github.com/mkravets/gearlog-backend/internal/service/timeline"
)

type timelineService interface {
	Attach(ctx context.Context, input timeline.AttachInput) (*domain.Attachment, error)
	Detach(ctx context.Context, attachmentID uuid.UUID, at time.Time) (*domain.Attachment, error)
	PartHistory(ctx context.Context, partID uuid.UUID) ([]*domain.Attachment, error)
	PositionHistory(ctx context.Context, gearID uuid.UUID, position string) ([]*domain.Attachment, error)
}

// AttachmentHandler serves attachment timeline endpoints.
type AttachmentHandler struct {
	svc timelineService
	log *slog.Logger
}

// NewAttachmentHandler creates an AttachmentHandler.
func NewAttachmentHandler(svc timelineService, logger *slog.Logger) *AttachmentHandler {
	return &AttachmentHandler{svc: svc, log: logger.With("handler", "attachments")}
}

type attachRequest struct {
	PartID   string     `json:"partId"`
	GearID   string     `json:"gearId"`
	Position string     `json:"position"`
	StartAt  time.Time  `json:"startAt"`
	EndAt    *time.Time `json:"endAt,omitempty"`
}

type detachRequest struct {
	At time.Time `json:"at"`
}

type attachmentResponse struct {
	ID       string     `json:"id"`
	PartID   string     `json:"partId"`
	GearID   string     `json:"gearId"`
	Position string     `json:"position"`
	StartAt  time.Time  `json:"startAt"`
	EndAt    *time.Time `json:"endAt,omitempty"`
}

func toAttachmentResponse(a *domain.Attachment) attachmentResponse {
	return attachmentResponse{
		ID:       a.ID.String(),
		PartID:   a.PartID.String(),
		GearID:   a.GearID.String(),
		Position: a.Position.String(),
		StartAt:  a.StartAt,
		EndAt:    a.EndAt,
	}
}

func toAttachmentResponses(items []*domain.Attachment) []attachmentResponse {
	out := make([]attachmentResponse, 0, len(items))
	for _, a := range items {
		out = append(out, toAttachmentResponse(a))
	}
	return out
}

// Attach handles POST /attachments.
func (h *AttachmentHandler) Attach(w http.ResponseWriter, r *http.Request) {
	var req attachRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	partID, err := uuid.Parse(req.PartID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid partId")
		return
	}
	gearID, err := uuid.Parse(req.GearID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid gearId")
		return
	}

	att, err := h.svc.Attach(r.Context(), timeline.AttachInput{
		PartID:   partID,
		GearID:   gearID,
		Position: req.Position,
		StartAt:  req.StartAt,
		EndAt:    req.EndAt,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAttachmentResponse(att))
}

// Detach handles POST /attachments/{id}/detach.
func (h *AttachmentHandler) Detach(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req detachRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	att, err := h.svc.Detach(r.Context(), id, req.At)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toAttachmentResponse(att))
}

// PartHistory handles GET /parts/{id}/attachments.
func (h *AttachmentHandler) PartHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	items, err := h.svc.PartHistory(r.Context(), id)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toAttachmentResponses(items))
}

// PositionHistory handles GET /gears/{id}/attachments?position=chain.
func (h *AttachmentHandler) PositionHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	items, err := h.svc.PositionHistory(r.Context(), id, r.URL.Query().Get("position"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toAttachmentResponses(items))
}
