package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/govbilling/billdash/internal/app"
	jobmetrics "github.com/govbilling/billdash/internal/jobs"
	"github.com/govbilling/billdash/internal/platform/cache"
	"github.com/govbilling/billdash/internal/upstream"
	"github.com/govbilling/billdash/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Default().Warn("load .env", slog.Any("error", err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

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

	client := upstream.NewClient(upstream.Config{
		BaseURL:     cfg.UpstreamBaseURL,
		Token:       cfg.UpstreamToken,
		Timeout:     cfg.UpstreamTimeout,
		ItemsPath:   cfg.UpstreamItemsPath,
		UpdatePath:  cfg.UpstreamUpdatePath,
		NurseryPath: cfg.UpstreamNurseryPath,
	}, logger).WithCache(cache.NewCache(redisClient, cfg.CacheTTL))

	warmJob := jobs.NewWarmJob(client, logger, jobmetrics.NewMetrics(nil))

	billingTask, err := jobs.NewWarmTask(jobs.TaskWarmBilling, true)
	if err != nil {
		logger.Error("build billing warm task", slog.Any("error", err))
		os.Exit(1)
	}
	nurseryTask, err := jobs.NewWarmTask(jobs.TaskWarmNursery, false)
	if err != nil {
		logger.Error("build nursery warm task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskWarmBilling, Handler: warmJob.HandleBilling},
			{Type: jobs.TaskWarmNursery, Handler: warmJob.HandleNursery},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.WarmCron, Task: billingTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: cfg.WarmCron, Task: nurseryTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
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
