package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/govbilling/billdash/internal/app"
	"github.com/govbilling/billdash/internal/billing"
	"github.com/govbilling/billdash/internal/dashboard"
	"github.com/govbilling/billdash/internal/graph"
	"github.com/govbilling/billdash/internal/nursery"
	"github.com/govbilling/billdash/internal/observability"
	"github.com/govbilling/billdash/internal/platform/cache"
	"github.com/govbilling/billdash/internal/records"
	"github.com/govbilling/billdash/internal/store"
	"github.com/govbilling/billdash/internal/upstream"
	"github.com/govbilling/billdash/jobs"
	"github.com/govbilling/billdash/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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
	metrics := observability.NewMetrics()

	var listCache *cache.Cache
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, upstream lists will not be cached", slog.Any("error", err))
	} else {
		listCache = cache.NewCache(redisClient, cfg.CacheTTL)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	client := upstream.NewClient(upstream.Config{
		BaseURL:     cfg.UpstreamBaseURL,
		Token:       cfg.UpstreamToken,
		Timeout:     cfg.UpstreamTimeout,
		ItemsPath:   cfg.UpstreamItemsPath,
		UpdatePath:  cfg.UpstreamUpdatePath,
		NurseryPath: cfg.UpstreamNurseryPath,
	}, logger).WithCache(listCache).WithObserver(metrics)

	billingStore := store.New(records.Key)
	billingStore.OnReplace(func(n int) { metrics.SetDatasetSize("billing", n) })

	billingService, err := billing.NewService(client, billingStore, billing.Config{
		FallbackUserID: cfg.FallbackUserID,
		PageSize:       cfg.PageSize,
		Strict:         cfg.FilterStrict,
	}, logger)
	if err != nil {
		logger.Error("init billing page", slog.Any("error", err))
		os.Exit(1)
	}

	graphPage, err := dashboard.NewPage("graph", billingStore, records.GraphDimensions(), dashboard.Options{
		Strict: cfg.FilterStrict,
		Logger: logger,
	})
	if err != nil {
		logger.Error("init graph page", slog.Any("error", err))
		os.Exit(1)
	}
	graphService := graph.NewService(graphPage)

	nurseryService, err := nursery.NewService(client, cfg.PageSize, cfg.FilterStrict, logger)
	if err != nil {
		logger.Error("init nursery page", slog.Any("error", err))
		os.Exit(1)
	}
	nurseryService.Page().Store().OnReplace(func(n int) { metrics.SetDatasetSize("nursery", n) })

	var warm errgroup.Group
	warm.Go(func() error { return billingService.Refresh(ctx) })
	warm.Go(func() error { return nurseryService.Refresh(ctx, nursery.ListQuery{}) })
	if err := warm.Wait(); err != nil {
		logger.Warn("initial load incomplete, pages will retry on demand", slog.Any("error", err))
	}

	if err := listCache.ListenForInvalidation(ctx, func(version int64) {
		refreshCtx, cancel := context.WithTimeout(ctx, cfg.UpstreamTimeout)
		defer cancel()
		logger.Info("cache invalidated, reloading", slog.Int64("version", version))
		if err := billingService.Refresh(refreshCtx); err != nil {
			logger.Warn("reload billing after invalidation", slog.Any("error", err))
		}
		if err := nurseryService.Reload(refreshCtx); err != nil {
			logger.Warn("reload nursery after invalidation", slog.Any("error", err))
		}
	}); err != nil {
		logger.Warn("subscribe to cache invalidation", slog.Any("error", err))
	}

	reportClient := report.NewClient(cfg.GotenbergURL)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		Metrics:        metrics,
		BillingHandler: billing.NewHandler(billingService, reportClient, logger),
		GraphHandler:   graph.NewHandler(graphService, logger),
		NurseryHandler: nursery.NewHandler(nurseryService, reportClient, logger),
		JobHandler:     jobs.NewHandler(inspector, jobClient, logger),
		ReportHandler:  report.NewHandler(reportClient, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
