package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/govbilling/billdash/internal/jobs"
	"github.com/govbilling/billdash/internal/nursery"
	"github.com/govbilling/billdash/internal/records"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

const warmTimeout = 20 * time.Second

// Source is the billing API surface the warm jobs read through.
type Source interface {
	Invalidate(ctx context.Context) error
	FetchBillingItems(ctx context.Context) ([]*records.Record, error)
	ListNurseryEntries(ctx context.Context, q nursery.ListQuery) ([]*nursery.Entry, error)
}

// WarmJob pre-populates the upstream list cache.
type WarmJob struct {
	Source  Source
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewWarmJob wires dependencies for the warm handlers.
func NewWarmJob(source Source, logger *slog.Logger, metrics *jobmetrics.Metrics) *WarmJob {
	return &WarmJob{Source: source, Logger: logger, Metrics: metrics}
}

// HandleBilling processes TaskWarmBilling.
func (j *WarmJob) HandleBilling(ctx context.Context, t *asynq.Task) error {
	return j.run(ctx, t, TaskWarmBilling, func(ctx context.Context) (int, error) {
		items, err := j.Source.FetchBillingItems(ctx)
		return len(items), err
	})
}

// HandleNursery processes TaskWarmNursery.
func (j *WarmJob) HandleNursery(ctx context.Context, t *asynq.Task) error {
	return j.run(ctx, t, TaskWarmNursery, func(ctx context.Context) (int, error) {
		entries, err := j.Source.ListNurseryEntries(ctx, nursery.ListQuery{})
		return len(entries), err
	})
}

func (j *WarmJob) run(ctx context.Context, t *asynq.Task, job string, fetch func(context.Context) (int, error)) (resultErr error) {
	if j == nil || j.Source == nil {
		return errors.New("cache warm: handler not configured")
	}
	var payload WarmPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}

	tracker := j.metrics().Track(job)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("job", job), slog.Bool("invalidate", payload.Invalidate))
	start := time.Now()

	runCtx, cancel := context.WithTimeout(ctx, warmTimeout)
	defer cancel()

	if payload.Invalidate {
		if err := j.Source.Invalidate(runCtx); err != nil {
			logger.Error("bump cache version", slog.Any("error", err))
			return err
		}
	}
	n, err := fetch(runCtx)
	if err != nil {
		logger.Error("warm cache", slog.Any("error", err))
		return err
	}
	j.metrics().AddRecords(job, n)
	logger.Info("cache warmed", slog.Int("records", n), slog.Duration("duration", time.Since(start)))
	return nil
}

func (j *WarmJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *WarmJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
