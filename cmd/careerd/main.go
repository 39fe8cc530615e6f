package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/career-profile/internal/async"
	"github.com/joseph-ayodele/career-profile/internal/common"
	"github.com/joseph-ayodele/career-profile/internal/server"
)

func main() {
	cfg := common.LoadConfig()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := os.MkdirAll(cfg.Ingest.InboxDir, 0o755); err != nil {
		logger.Error("failed to create inbox", "inbox", cfg.Ingest.InboxDir, "error", err)
		os.Exit(1)
	}

	probes := map[string]server.Probe{
		"database": func(ctx context.Context) error { return app.DB.HealthCheck(ctx, 0) },
	}

	var (
		queue      *async.ProcessorQueue
		redisQueue *async.RedisQueue
	)
	if cfg.Queue.Backend == "redis" {
		client, err := server.ConnectRedis(ctx, cfg.Queue, logger)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := client.Close(); err != nil {
				logger.Error("redis close failed", "error", err)
			}
		}()
		probes["redis"] = server.RedisProbe(client)

		queue = async.NewProcessorQueue(app.Processor, logger,
			async.WithWorkers(cfg.Queue.Workers),
			async.WithQueueSize(cfg.Queue.Size),
			async.WithProcessTimeout(3*time.Minute),
			async.WithRebuild(app.Builder, app.Profile.ID, 2*time.Second),
		)
		redisQueue = async.NewRedisQueue(client, cfg.Queue.Key, logger)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return ignoreCanceled(app.Watcher().Watch(gctx, cfg.Ingest.InboxDir, cfg.Ingest.WatchInterval))
	})

	if redisQueue != nil {
		g.Go(func() error {
			err := redisQueue.Consume(gctx, queue.Enqueue)
			sctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			queue.Shutdown(sctx)
			return ignoreCanceled(err)
		})
	}

	health := server.NewHealthServer(probes, 15*time.Second, logger)
	g.Go(func() error {
		return health.Serve(gctx, cfg.Server.HealthAddr)
	})

	logger.Info("careerd started",
		"inbox", cfg.Ingest.InboxDir,
		"interval", cfg.Ingest.WatchInterval.String(),
		"queue", cfg.Queue.Backend,
		"health_addr", cfg.Server.HealthAddr,
	)

	if err := g.Wait(); err != nil {
		logger.Error("careerd stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("careerd stopped")
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
