package rest

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mkravets/gearlog-backend/internal/config"
	"github.com/mkravets/gearlog-backend/internal/transport/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth        *AuthHandler
	Gears       *GearHandler
	Parts       *PartHandler
	Attachments *AttachmentHandler
	Activities  *ActivityHandler
	Usage       *UsageHandler
	Maintenance *MaintenanceHandler
	Health      *HealthHandler
}

type tokenValidator interface {
	ValidateAccessToken(token string) (uuid.UUID, bool, error)
}

// RouterDeps carries the cross-cutting pieces the router needs besides the
// endpoint handlers.
type RouterDeps struct {
	TokenValidator tokenValidator
	CORS           config.CORSConfig
	Metrics        *middleware.HTTPMetrics
	Registry       prometheus.Gatherer
	Logger         *slog.Logger
	RateLimiter    *middleware.RateLimiter
	MaxPerMinute   int
}

// NewRouter builds the full HTTP handler: routes plus middleware chain.
func NewRouter(h Handlers, deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	// Probes and metrics stay outside auth.
	mux.HandleFunc("GET /health", h.Health.Health)
	mux.HandleFunc("GET /health/live", h.Health.Live)
	mux.HandleFunc("GET /health/ready", h.Health.Ready)
	mux.Handle("GET /metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("POST /auth/register", h.Auth.Register)
	mux.HandleFunc("POST /auth/login", h.Auth.Login)
	mux.HandleFunc("GET /me", h.Auth.Me)

	mux.HandleFunc("POST /gears", h.Gears.Create)
	mux.HandleFunc("GET /gears", h.Gears.List)
	mux.HandleFunc("GET /gears/{id}", h.Gears.Get)
	mux.HandleFunc("PATCH /gears/{id}", h.Gears.Update)
	mux.HandleFunc("GET /gears/{id}/attachments", h.Attachments.PositionHistory)

	mux.HandleFunc("POST /parts", h.Parts.Create)
	mux.HandleFunc("GET /parts", h.Parts.List)
	mux.HandleFunc("GET /parts/{id}", h.Parts.Get)
	mux.HandleFunc("PATCH /parts/{id}", h.Parts.Update)
	mux.HandleFunc("POST /parts/{id}/retire", h.Parts.Retire)
	mux.HandleFunc("GET /parts/{id}/attachments", h.Attachments.PartHistory)
	mux.HandleFunc("GET /parts/{id}/usage", h.Usage.Get)
	mux.HandleFunc("POST /parts/{id}/usage/recompute", h.Usage.Recompute)
	mux.HandleFunc("POST /parts/{id}/service", h.Maintenance.RecordService)
	mux.HandleFunc("GET /parts/{id}/service", h.Maintenance.ListEvents)
	mux.HandleFunc("GET /parts/{id}/service/status", h.Maintenance.PartStatus)

	mux.HandleFunc("POST /attachments", h.Attachments.Attach)
	mux.HandleFunc("POST /attachments/{id}/detach", h.Attachments.Detach)

	mux.HandleFunc("POST /activities", h.Activities.Record)
	mux.HandleFunc("GET /activities", h.Activities.List)
	mux.HandleFunc("GET /activities/{id}", h.Activities.Get)
	mux.HandleFunc("PATCH /activities/{id}", h.Activities.Edit)
	mux.HandleFunc("DELETE /activities/{id}", h.Activities.Delete)

	mux.HandleFunc("POST /service/plans", h.Maintenance.CreatePlan)
	mux.HandleFunc("GET /service/plans", h.Maintenance.ListPlans)
	mux.HandleFunc("DELETE /service/plans/{id}", h.Maintenance.DeletePlan)

	mws := []middleware.Middleware{
		middleware.Recovery(deps.Logger),
		middleware.RequestID,
		middleware.CORS(deps.CORS),
		middleware.Logger(deps.Logger),
		middleware.Auth(deps.TokenValidator),
	}
	if deps.RateLimiter != nil && deps.MaxPerMinute > 0 {
		mws = append(mws, deps.RateLimiter.Limit(deps.MaxPerMinute))
	}
	if deps.Metrics != nil {
		// Innermost so the mux route pattern is visible on the request.
		mws = append(mws, deps.Metrics.Instrument())
	}

	return middleware.Chain(mws...)(mux)
}
