package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mkravets/gearlog-backend/internal/domain"
	"github.com/mkravets/gearlog-backend/internal/service/gears"
)

type gearService interface {
	Create(ctx context.Context, input gears.GearInput) (*domain.Gear, error)
	Update(ctx context.Context, id uuid.UUID, input gears.GearInput) (*domain.Gear, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Gear, error)
	List(ctx context.Context) ([]*domain.Gear, error)
}

// GearHandler serves gear endpoints.
type GearHandler struct {
	svc gearService
	log *slog.Logger
}

// NewGearHandler creates a GearHandler.
func NewGearHandler(svc gearService, logger *slog.Logger) *GearHandler {
	return &GearHandler{svc: svc, log: logger.With("handler", "gears")}
}

type gearRequest struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

type gearResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"createdAt"`
}

func toGearResponse(g *domain.Gear) gearResponse {
	return gearResponse{
		ID:        g.ID.String(),
		Name:      g.Name,
		Kind:      g.Kind.String(),
		CreatedAt: g.CreatedAt,
	}
}

// Create handles POST /gears.
func (h *GearHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req gearRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	gear, err := h.svc.Create(r.Context(), gears.GearInput{
		Name: req.Name,
		Kind: domain.GearKind(req.Kind),
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, toGearResponse(gear))
}

// Update handles PATCH /gears/{id}.
func (h *GearHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req gearRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	gear, err := h.svc.Update(r.Context(), id, gears.GearInput{
		Name: req.Name,
		Kind: domain.GearKind(req.Kind),
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toGearResponse(gear))
}

// Get handles GET /gears/{id}.
func (h *GearHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	gear, err := h.svc.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toGearResponse(gear))
}

// List handles GET /gears.
func (h *GearHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	out := make([]gearResponse, 0, len(items))
	for _, g := range items {
		out = append(out, toGearResponse(g))
	}
	writeJSON(w, http.StatusOK, out)
}
