// Command recompute rebuilds the usage aggregate of every part from the
// attachment and activity records. Aggregates are derived data; this job
// reconciles any drift and is intended to be invoked by an external cron
// job, not as an in-process goroutine.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	postgres "github.com/mkravets/gearlog-backend/internal/adapter/postgres"
	activityrepo "github.com/mkravets/gearlog-backend/internal/adapter/postgres/activity"
	attachmentrepo "github.com/mkravets/gearlog-backend/internal/adapter/postgres/attachment"
	partrepo "github.com/mkravets/gearlog-backend/internal/adapter/postgres/part"
	usagerepo "github.com/mkravets/gearlog-backend/internal/adapter/postgres/usage"
	"github.com/mkravets/gearlog-backend/internal/app"
	"github.com/mkravets/gearlog-backend/internal/config"
	"github.com/mkravets/gearlog-backend/internal/service/usage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	partRepo := partrepo.New(pool)
	usageSvc := usage.NewService(
		logger,
		usagerepo.New(pool),
		attachmentrepo.New(pool),
		activityrepo.New(pool),
		partRepo,
		postgres.NewTxManager(pool),
		cfg.Usage,
	)

	ids, err := partRepo.ListAllIDs(ctx)
	if err != nil {
		logger.Error("list parts", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var failed int
	for _, id := range ids {
		if _, err := usageSvc.RecomputePart(ctx, id); err != nil {
			failed++
			logger.Error("recompute part",
				slog.String("part_id", id.String()),
				slog.String("error", err.Error()),
			)
		}
	}

	logger.Info("recompute completed",
		slog.Int("parts", len(ids)),
		slog.Int("failed", failed),
	)

	if failed > 0 {
		os.Exit(1)
	}
}
