package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mkravets/gearlog-backend/internal/domain"
)

type usageService interface {
	GetUsage(ctx context.Context, partID uuid.UUID) (*domain.UsageAggregate, error)
	Recompute(ctx context.Context, partID uuid.UUID) (*domain.UsageAggregate, error)
}

// UsageHandler serves usage aggregate endpoints.
type UsageHandler struct {
	svc usageService
	log *slog.Logger
}

// NewUsageHandler creates a UsageHandler.
func NewUsageHandler(svc usageService, logger *slog.Logger) *UsageHandler {
	return &UsageHandler{svc: svc, log: logger.With("handler", "usage")}
}

type usageResponse struct {
	PartID        string    `json:"partId"`
	DistanceM     int64     `json:"distanceM"`
	ElevationM    int64     `json:"elevationM"`
	MovingTimeS   int64     `json:"movingTimeS"`
	ActivityCount int64     `json:"activityCount"`
	RecomputedAt  time.Time `json:"recomputedAt"`
}

func toUsageResponse(u *domain.UsageAggregate) usageResponse {
	return usageResponse{
		PartID:        u.PartID.String(),
		DistanceM:     u.Metrics.DistanceM,
		ElevationM:    u.Metrics.ElevationM,
		MovingTimeS:   int64(u.Metrics.MovingTime / time.Second),
		ActivityCount: u.ActivityCount,
		RecomputedAt:  u.RecomputedAt,
	}
}

// Get handles GET /parts/{id}/usage.
func (h *UsageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	agg, err := h.svc.GetUsage(r.Context(), id)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toUsageResponse(agg))
}

// Recompute handles POST /parts/{id}/usage/recompute. It rebuilds the part's
// aggregate from scratch, reconciling any drift.
func (h *UsageHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	agg, err := h.svc.Recompute(r.Context(), id)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toUsageResponse(agg))
}
