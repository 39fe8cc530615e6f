package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joseph-ayodele/career-profile/internal/common"
)

// ConnectRedis opens a client for the queue and pings it. A redis:// URL in REDIS_ADDR is
// parsed as a URL; anything else is a host:port.
func ConnectRedis(ctx context.Context, cfg common.QueueConfig, logger *slog.Logger) (*redis.Client, error) {
	var opts *redis.Options
	if u, err := redis.ParseURL(cfg.RedisAddr); err == nil {
		opts = u
	} else {
		opts = &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	}
	client := redis.NewClient(opts)

	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		logger.Error("redis ping failed", "addr", opts.Addr, "error", err)
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	logger.Info("redis connected", "addr", opts.Addr, "db", opts.DB)
	return client, nil
}

// RedisProbe adapts a client to a health Probe.
func RedisProbe(client *redis.Client) Probe {
	return func(ctx context.Context) error { return client.Ping(ctx).Err() }
}
