// Package redisclient builds the Redis client handle for the selected host and
// holds it behind an initialise-once accessor.
package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/eugenenazirov/redis-bootstrap/internal/config"
)

// Option configures New.
type Option func(*clientConfig)

type clientConfig struct {
	pingTimeout time.Duration
	tune        func(*redis.Options)
}

// WithPing verifies the connection with a single PING bounded by timeout.
func WithPing(timeout time.Duration) Option {
	return func(cfg *clientConfig) {
		cfg.pingTimeout = timeout
	}
}

// WithOptions adjusts the go-redis options before the client is created.
func WithOptions(fn func(*redis.Options)) Option {
	return func(cfg *clientConfig) {
		cfg.tune = fn
	}
}

// Options maps a host entry onto go-redis client options.
func Options(h config.Host) *redis.Options {
	return &redis.Options{
		Addr:     h.Addr(),
		Username: h.Username,
		Password: h.Password,
		DB:       h.DB,
	}
}

// New creates a client bound to h. With WithPing, an unreachable server is an error
// and the client is closed before returning.
func New(ctx context.Context, h config.Host, logger *zap.Logger, opts ...Option) (*redis.Client, error) {
	var cfg clientConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	options := Options(h)
	if cfg.tune != nil {
		cfg.tune(options)
	}
	client := redis.NewClient(options)

	if cfg.pingTimeout > 0 {
		pingCtx, cancel := context.WithTimeout(ctx, cfg.pingTimeout)
		defer cancel()

		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("ping redis at %s: %w", options.Addr, err)
		}
	}

	logger.Info("redis client ready",
		zap.String("addr", options.Addr),
		zap.Int("db", options.DB),
		zap.Bool("pinged", cfg.pingTimeout > 0),
	)
	return client, nil
}
