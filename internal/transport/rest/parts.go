package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mkravets/gearlog-backend/internal/domain"
	"github.com/mkravets/gearlog-backend/internal/service/parts"
)

type partService interface {
	Create(ctx context.Context, input parts.PartInput) (*domain.Part, error)
	Update(ctx context.Context, id uuid.UUID, input parts.PartInput) (*domain.Part, error)
	Retire(ctx context.Context, id uuid.UUID) (*domain.Part, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Part, error)
	List(ctx context.Context, category *domain.PartCategory, includeRetired bool) ([]*domain.Part, error)
}

// PartHandler serves part catalog endpoints.
type PartHandler struct {
	svc partService
	log *slog.Logger
}

// NewPartHandler creates a PartHandler.
func NewPartHandler(svc partService, logger *slog.Logger) *PartHandler {
	return &PartHandler{svc: svc, log: logger.With("handler", "parts")}
}

type partRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

type partResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Category  string     `json:"category"`
	CreatedAt time.Time  `json:"createdAt"`
	RetiredAt *time.Time `json:"retiredAt,omitempty"`
}

func toPartResponse(p *domain.Part) partResponse {
	return partResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		Category:  p.Category.String(),
		CreatedAt: p.CreatedAt,
		RetiredAt: p.RetiredAt,
	}
}

// Create handles POST /parts.
func (h *PartHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req partRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	part, err := h.svc.Create(r.Context(), parts.PartInput{
		Name:     req.Name,
		Category: domain.PartCategory(req.Category),
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, toPartResponse(part))
}

// Update handles PATCH /parts/{id}.
func (h *PartHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req partRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	part, err := h.svc.Update(r.Context(), id, parts.PartInput{
		Name:     req.Name,
		Category: domain.PartCategory(req.Category),
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toPartResponse(part))
}

// Retire handles POST /parts/{id}/retire.
func (h *PartHandler) Retire(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	part, err := h.svc.Retire(r.Context(), id)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toPartResponse(part))
}

// Get handles GET /parts/{id}.
func (h *PartHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	part, err := h.svc.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toPartResponse(part))
}

// List handles GET /parts?category=CHAIN&includeRetired=true.
func (h *PartHandler) List(w http.ResponseWriter, r *http.Request) {
	var category *domain.PartCategory
	if v := r.URL.Query().Get("category"); v != "" {
		c := domain.PartCategory(v)
		category = &c
	}
	includeRetired := r.URL.Query().Get("includeRetired") == "true"

	items, err := h.svc.List(r.Context(), category, includeRetired)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	out := make([]partResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toPartResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}
