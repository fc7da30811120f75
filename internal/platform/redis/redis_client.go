// Package redis constructs the shared Redis client.
package redis

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"bluemind_backend/internal/config"
)

// NewClient connects to Redis using the supplied configuration.
// Callers treat a nil client as "Redis unavailable" and fall back to SQL.
func NewClient(cfg config.Redis) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       0,
	})

	// 接続確認
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		slog.Error("Redis connection failed", "address", cfg.Addr, "error", err)
		return nil, err
	}

	slog.Info("Redis connection successful", "address", cfg.Addr)
	return rdb, nil
}
