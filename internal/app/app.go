// Package app wires configuration, storage, services and the HTTP transport
// into a runnable server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	postgres "github.com/mkravets/gearlog-backend/internal/adapter/postgres"
	activityrepo "github.com/mkravets/gearlog-backend/internal/adapter/postgres/activity"
	attachmentrepo "github.com/mkravets/gearlog-backend/internal/adapter/postgres/attachment"
	gearrepo "github.com/mkravets/gearlog-backend/internal/adapter/postgres/gear"
	partrepo "github.com/mkravets/gearlog-backend/internal/adapter/postgres/part"
	servicerepo "github.com/mkravets/gearlog-backend/internal/adapter/postgres/service"
	usagerepo "github.com/mkravets/gearlog-backend/internal/adapter/postgres/usage"
	userrepo "github.com/mkravets/gearlog-backend/internal/adapter/postgres/user"
	"github.com/mkravets/gearlog-backend/internal/auth"
	"github.com/mkravets/gearlog-backend/internal/config"
	"github.com/mkravets/gearlog-backend/internal/service/activities"
	"github.com/mkravets/gearlog-backend/internal/service/gears"
	"github.com/mkravets/gearlog-backend/internal/service/maintenance"
	"github.com/mkravets/gearlog-backend/internal/service/parts"
	"github.com/mkravets/gearlog-backend/internal/service/timeline"
	"github.com/mkravets/gearlog-backend/internal/service/usage"
	"github.com/mkravets/gearlog-backend/internal/service/users"
	"github.com/mkravets/gearlog-backend/internal/transport/middleware"
	"github.com/mkravets/gearlog-backend/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, connects to
// the database, wires services and serves HTTP until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	tx := postgres.NewTxManager(pool)

	userRepo := userrepo.New(pool)
	gearRepo := gearrepo.New(pool)
	partRepo := partrepo.New(pool)
	attachmentRepo := attachmentrepo.New(pool)
	activityRepo := activityrepo.New(pool)
	aggregateRepo := usagerepo.New(pool)
	planRepo := servicerepo.New(pool)

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)

	userSvc := users.NewService(logger, userRepo, jwtManager, cfg.Auth)
	gearSvc := gears.NewService(logger, gearRepo)
	partSvc := parts.NewService(logger, partRepo, attachmentRepo)
	usageSvc := usage.NewService(logger, aggregateRepo, attachmentRepo, activityRepo, partRepo, tx, cfg.Usage)
	timelineSvc := timeline.NewService(logger, partRepo, gearRepo, attachmentRepo, usageSvc, tx)
	activitySvc := activities.NewService(logger, activityRepo, gearRepo, usageSvc, tx)
	maintenanceSvc := maintenance.NewService(logger, planRepo, partRepo, usageSvc)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewHTTPMetrics(registry)

	rateLimiter := middleware.NewRateLimiter(time.Minute)
	defer rateLimiter.Stop()

	handler := rest.NewRouter(rest.Handlers{
		Auth:        rest.NewAuthHandler(userSvc, logger),
		Gears:       rest.NewGearHandler(gearSvc, logger),
		Parts:       rest.NewPartHandler(partSvc, logger),
		Attachments: rest.NewAttachmentHandler(timelineSvc, logger),
		Activities:  rest.NewActivityHandler(activitySvc, logger),
		Usage:       rest.NewUsageHandler(usageSvc, logger),
		Maintenance: rest.NewMaintenanceHandler(maintenanceSvc, logger),
		Health:      rest.NewHealthHandler(pool, BuildVersion()),
	}, rest.RouterDeps{
		TokenValidator: jwtManager,
		CORS:           cfg.CORS,
		Metrics:        metrics,
		Registry:       registry,
		Logger:         logger,
		RateLimiter:    rateLimiter,
		MaxPerMinute:   600,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}
