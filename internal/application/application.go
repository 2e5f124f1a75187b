package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/eugenenazirov/redis-bootstrap/internal/api"
	"github.com/eugenenazirov/redis-bootstrap/internal/config"
	"github.com/eugenenazirov/redis-bootstrap/internal/redisclient"
)

// App encapsulates the Redis handle and the status HTTP server.
type App struct {
	cfg    config.Config
	handle *redisclient.Handle
	router http.Handler
	logger *zap.Logger
	server *http.Server
}

// New connects to the configured Redis host and builds the status server.
// Extra client options are applied after the host mapping.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, opts ...redisclient.Option) (*App, error) {
	handle := &redisclient.Handle{}
	clientOpts := append([]redisclient.Option{redisclient.WithPing(cfg.PingTimeout)}, opts...)
	err := handle.Init(func() (*redis.Client, error) {
		return redisclient.New(ctx, cfg.Redis, logger, clientOpts...)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis client: %w", err)
	}

	app := &App{
		cfg:    cfg,
		handle: handle,
		logger: logger,
	}

	handler := api.NewHandler(app, TargetFor(cfg), api.WithPingTimeout(cfg.PingTimeout))
	app.router = api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)
	app.server = NewServer(cfg, app.router)

	return app, nil
}

// TargetFor summarises the selected host for the status endpoint.
func TargetFor(cfg config.Config) api.Target {
	return api.Target{
		Environment: cfg.Environment.Name,
		Root:        cfg.Environment.Root,
		ConfigFile:  cfg.Environment.File,
		Addr:        cfg.Redis.Addr(),
		DB:          cfg.Redis.DB,
	}
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Client returns the process-wide Redis client.
func (a *App) Client() (*redis.Client, error) {
	return a.handle.Client()
}

// Ping checks the held client against its server.
func (a *App) Ping(ctx context.Context) error {
	client, err := a.handle.Client()
	if err != nil {
		return err
	}
	return client.Ping(ctx).Err()
}

// Check pings the server within the configured ping timeout.
func (a *App) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.PingTimeout)
	defer cancel()

	if err := a.Ping(ctx); err != nil {
		return fmt.Errorf("redis at %s: %w", a.cfg.Redis.Addr(), err)
	}
	return nil
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening",
			zap.String("addr", a.server.Addr),
			zap.String("environment", a.cfg.Environment.Name),
		)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// Close releases the Redis client.
func (a *App) Close() error {
	return a.handle.Close()
}
