package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mkravets/gearlog-backend/internal/domain"
	"github.com/mkravets/gearlog-backend/internal/service/maintenance"
)

type maintenanceService interface {
	CreatePlan(ctx context.Context, input maintenance.PlanInput) (*domain.ServicePlan, error)
	DeletePlan(ctx context.Context, id uuid.UUID) error
	ListPlans(ctx context.Context) ([]*domain.ServicePlan, error)
	RecordService(ctx context.Context, input maintenance.EventInput) (*domain.ServiceEvent, error)
	ListEvents(ctx context.Context, partID uuid.UUID) ([]*domain.ServiceEvent, error)
	PartStatus(ctx context.Context, partID uuid.UUID) ([]domain.ServiceStatus, error)
}

// MaintenanceHandler serves service plan, event and status endpoints.
type MaintenanceHandler struct {
	svc maintenanceService
	log *slog.Logger
}

// NewMaintenanceHandler creates a MaintenanceHandler.
func NewMaintenanceHandler(svc maintenanceService, logger *slog.Logger) *MaintenanceHandler {
	return &MaintenanceHandler{svc: svc, log: logger.With("handler", "maintenance")}
}

type planRequest struct {
	PartID    *string `json:"partId,omitempty"`
	Category  *string `json:"category,omitempty"`
	Name      string  `json:"name"`
	Metric    string  `json:"metric"`
	Threshold int64   `json:"threshold"`
	Recurring bool    `json:"recurring"`
}

type planResponse struct {
	ID        string    `json:"id"`
	PartID    *string   `json:"partId,omitempty"`
	Category  *string   `json:"category,omitempty"`
	Name      string    `json:"name"`
	Metric    string    `json:"metric"`
	Threshold int64     `json:"threshold"`
	Recurring bool      `json:"recurring"`
	CreatedAt time.Time `json:"createdAt"`
}

type eventRequest struct {
	PlanID      *string   `json:"planId,omitempty"`
	PerformedAt time.Time `json:"performedAt"`
	Note        string    `json:"note"`
}

type eventResponse struct {
	ID          string    `json:"id"`
	PartID      string    `json:"partId"`
	PlanID      *string   `json:"planId,omitempty"`
	PerformedAt time.Time `json:"performedAt"`
	Note        string    `json:"note,omitempty"`
}

type statusResponse struct {
	Plan           planResponse `json:"plan"`
	State          string       `json:"state"`
	SinceBaseline  int64        `json:"sinceBaseline"`
	Margin         int64        `json:"margin"`
	LastServicedAt *time.Time   `json:"lastServicedAt,omitempty"`
}

func toPlanResponse(p *domain.ServicePlan) planResponse {
	resp := planResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		Metric:    p.Metric.String(),
		Threshold: p.Threshold,
		Recurring: p.Recurring,
		CreatedAt: p.CreatedAt,
	}
	if p.PartID != nil {
		s := p.PartID.String()
		resp.PartID = &s
	}
	if p.Category != nil {
		s := p.Category.String()
		resp.Category = &s
	}
	return resp
}

func toEventResponse(e *domain.ServiceEvent) eventResponse {
	resp := eventResponse{
		ID:          e.ID.String(),
		PartID:      e.PartID.String(),
		PerformedAt: e.PerformedAt,
		Note:        e.Note,
	}
	if e.PlanID != nil {
		s := e.PlanID.String()
		resp.PlanID = &s
	}
	return resp
}

// CreatePlan handles POST /service/plans.
func (h *MaintenanceHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input := maintenance.PlanInput{
		Name:      req.Name,
		Metric:    domain.MetricKind(req.Metric),
		Threshold: req.Threshold,
		Recurring: req.Recurring,
	}
	if req.PartID != nil {
		id, err := uuid.Parse(*req.PartID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid partId")
			return
		}
		input.PartID = &id
	}
	if req.Category != nil {
		c := domain.PartCategory(*req.Category)
		input.Category = &c
	}

	plan, err := h.svc.CreatePlan(r.Context(), input)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, toPlanResponse(plan))
}

// DeletePlan handles DELETE /service/plans/{id}.
func (h *MaintenanceHandler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.DeletePlan(r.Context(), id); err != nil {
		handleError(w, r, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListPlans handles GET /service/plans.
func (h *MaintenanceHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.svc.ListPlans(r.Context())
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	out := make([]planResponse, 0, len(plans))
	for _, p := range plans {
		out = append(out, toPlanResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

// RecordService handles POST /parts/{id}/service.
func (h *MaintenanceHandler) RecordService(w http.ResponseWriter, r *http.Request) {
	partID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req eventRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input := maintenance.EventInput{
		PartID:      partID,
		PerformedAt: req.PerformedAt,
		Note:        req.Note,
	}
	if req.PlanID != nil {
		id, err := uuid.Parse(*req.PlanID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid planId")
			return
		}
		input.PlanID = &id
	}

	event, err := h.svc.RecordService(r.Context(), input)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, toEventResponse(event))
}

// ListEvents handles GET /parts/{id}/service.
func (h *MaintenanceHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	partID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	events, err := h.svc.ListEvents(r.Context(), partID)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

// PartStatus handles GET /parts/{id}/service/status.
func (h *MaintenanceHandler) PartStatus(w http.ResponseWriter, r *http.Request) {
	partID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	statuses, err := h.svc.PartStatus(r.Context(), partID)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	out := make([]statusResponse, 0, len(statuses))
	for _, s := range statuses {
		plan := s.Plan
		out = append(out, statusResponse{
			Plan:           toPlanResponse(&plan),
			State:          s.State.String(),
			SinceBaseline:  s.SinceBaseline,
			Margin:         s.Margin,
			LastServicedAt: s.LastServicedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
