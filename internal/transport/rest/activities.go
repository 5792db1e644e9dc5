package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/mkravets/gearlog-backend/internal/domain"
	"github.com/mkravets/gearlog-backend/internal/service/activities"
)

type activityService interface {
	Record(ctx context.Context, input activities.ActivityInput) (*domain.Activity, error)
	Edit(ctx context.Context, id uuid.UUID, input activities.ActivityInput) (*domain.Activity, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Activity, error)
	List(ctx context.Context, filter domain.ActivityFilter) ([]*domain.Activity, int, error)
}

// ActivityHandler serves activity ledger endpoints.
type ActivityHandler struct {
	svc activityService
	log *slog.Logger
}

// NewActivityHandler creates an ActivityHandler.
func NewActivityHandler(svc activityService, logger *slog.Logger) *ActivityHandler {
	return &ActivityHandler{svc: svc, log: logger.With("handler", "activities")}
}

// activityRequest carries durations as whole seconds on the wire.
type activityRequest struct {
	GearID      string    `json:"gearId"`
	Name        string    `json:"name"`
	StartAt     time.Time `json:"startAt"`
	DurationS   int64     `json:"durationS"`
	DistanceM   int64     `json:"distanceM"`
	ElevationM  int64     `json:"elevationM"`
	MovingTimeS int64     `json:"movingTimeS"`
}

type activityResponse struct {
	ID          string    `json:"id"`
	GearID      string    `json:"gearId"`
	Name        string    `json:"name"`
	StartAt     time.Time `json:"startAt"`
	DurationS   int64     `json:"durationS"`
	DistanceM   int64     `json:"distanceM"`
	ElevationM  int64     `json:"elevationM"`
	MovingTimeS int64     `json:"movingTimeS"`
	CreatedAt   time.Time `json:"createdAt"`
}

type activityListResponse struct {
	Items []activityResponse `json:"items"`
	Total int                `json:"total"`
}

func toActivityResponse(a *domain.Activity) activityResponse {
	return activityResponse{
		ID:          a.ID.String(),
		GearID:      a.GearID.String(),
		Name:        a.Name,
		StartAt:     a.StartAt,
		DurationS:   int64(a.Duration / time.Second),
		DistanceM:   a.Metrics.DistanceM,
		ElevationM:  a.Metrics.ElevationM,
		MovingTimeS: int64(a.Metrics.MovingTime / time.Second),
		CreatedAt:   a.CreatedAt,
	}
}

func (req activityRequest) toInput() (activities.ActivityInput, error) {
	gearID, err := uuid.Parse(req.GearID)
	if err != nil {
		return activities.ActivityInput{}, err
	}
	return activities.ActivityInput{
		GearID:     gearID,
		Name:       req.Name,
		StartAt:    req.StartAt,
		Duration:   time.Duration(req.DurationS) * time.Second,
		DistanceM:  req.DistanceM,
		ElevationM: req.ElevationM,
		MovingTime: time.Duration(req.MovingTimeS) * time.Second,
	}, nil
}

// Record handles POST /activities.
func (h *ActivityHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req activityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	input, err := req.toInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid gearId")
		return
	}

	act, err := h.svc.Record(r.Context(), input)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, toActivityResponse(act))
}

// Edit handles PATCH /activities/{id}.
func (h *ActivityHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req activityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	input, err := req.toInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid gearId")
		return
	}

	act, err := h.svc.Edit(r.Context(), id, input)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toActivityResponse(act))
}

// Delete handles DELETE /activities/{id}.
func (h *ActivityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		handleError(w, r, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Get handles GET /activities/{id}.
func (h *ActivityHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	act, err := h.svc.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toActivityResponse(act))
}

// List handles GET /activities?gearId=...&from=...&to=...&limit=50&offset=0.
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseActivityFilter(w, r)
	if !ok {
		return
	}

	items, total, err := h.svc.List(r.Context(), filter)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	out := make([]activityResponse, 0, len(items))
	for _, a := range items {
		out = append(out, toActivityResponse(a))
	}
	writeJSON(w, http.StatusOK, activityListResponse{Items: out, Total: total})
}

func parseActivityFilter(w http.ResponseWriter, r *http.Request) (domain.ActivityFilter, bool) {
	var filter domain.ActivityFilter
	q := r.URL.Query()

	if v := q.Get("gearId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid gearId")
			return filter, false
		}
		filter.GearID = &id
	}
	for name, dst := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		if v := q.Get(name); v != "" {
			ts, err := time.Parse(time.RFC3339, v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid "+name)
				return filter, false
			}
			*dst = &ts
		}
	}
	if v := q.Get("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v)
	}
	if v := q.Get("offset"); v != "" {
		filter.Offset, _ = strconv.Atoi(v)
	}

	return filter, true
}
