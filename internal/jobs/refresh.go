package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/pharmalytics/pharmalytics/internal/reports"
)

// ReportsRefreshJob bumps the cache version and recomputes every report so
// the next dashboard request is served warm.
type ReportsRefreshJob struct {
	Reports *reports.Service
	Cache   *reports.Cache
	Logger  *slog.Logger
	Metrics *Metrics
	clock   func() time.Time
}

// NewReportsRefreshJob wires dependencies for the refresh handler.
func NewReportsRefreshJob(svc *reports.Service, cache *reports.Cache, logger *slog.Logger) *ReportsRefreshJob {
	return &ReportsRefreshJob{
		Reports: svc,
		Cache:   cache,
		Logger:  logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes TaskReportsRefresh tasks.
func (j *ReportsRefreshJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("reports refresh: handler not configured")
	}
	var payload ReportsRefreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Reason == "" {
		payload.Reason = "scheduled"
	}

	logger := j.logger().With(slog.String("reason", payload.Reason))
	logger.Info("starting reports refresh")
	started := j.now()
	tracker := j.Metrics.Track(TaskReportsRefresh)

	if err := j.Cache.Bump(ctx); err != nil {
		logger.Error("bump report cache", slog.Any("error", err))
		return tracker.End(err)
	}
	if err := j.Reports.Warm(ctx); err != nil {
		logger.Error("warm report cache", slog.Any("error", err))
		return tracker.End(err)
	}

	logger.Info("completed reports refresh", slog.Duration("duration", time.Since(started)))
	return tracker.End(nil)
}

func (j *ReportsRefreshJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReportsRefresh))
	}
	return slog.Default().With(slog.String("job", TaskReportsRefresh))
}

func (j *ReportsRefreshJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
