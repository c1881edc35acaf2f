package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/pharmalytics/pharmalytics/internal/app"
	"github.com/pharmalytics/pharmalytics/internal/jobs"
	"github.com/pharmalytics/pharmalytics/internal/platform/cache"
	"github.com/pharmalytics/pharmalytics/internal/platform/db"
	"github.com/pharmalytics/pharmalytics/internal/reports"
	"github.com/pharmalytics/pharmalytics/internal/store"
	"github.com/pharmalytics/pharmalytics/internal/store/pg"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	repo := pg.NewRepository(pool)
	snap, err := repo.Load(ctx)
	if err != nil {
		logger.Error("load snapshot", slog.Any("error", err))
		os.Exit(1)
	}
	st, err := store.Restore(snap)
	if err != nil {
		logger.Error("restore store", slog.Any("error", err))
		os.Exit(1)
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	service := reports.NewService(st, reportCache)
	refreshJob := jobs.NewReportsRefreshJob(service, reportCache, logger)
	refreshJob.Metrics = jobs.NewMetrics(nil)

	refreshTask, err := jobs.NewReportsRefreshTask(jobs.ReportsRefreshPayload{Reason: "scheduled"})
	if err != nil {
		logger.Error("build refresh task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskReportsRefresh, Handler: refreshJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.ReportRefreshCron, Task: refreshTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
