package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/redis-bootstrap/internal/application"
	"github.com/eugenenazirov/redis-bootstrap/internal/config"
	"github.com/eugenenazirov/redis-bootstrap/internal/logging"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("redis-bootstrap", "Resolves the Redis host for the current environment and builds its client")
	root := kingpinApp.Flag("root", "Application root (overrides RAILS_ROOT)").String()
	env := kingpinApp.Flag("env", "Environment name (overrides RAILS_ENV)").String()
	file := kingpinApp.Flag("file", "Path to the Redis host table (default <root>/config/redis.yml)").String()
	pingTimeout := kingpinApp.Flag("ping-timeout", "Timeout for the connection check").Duration()
	logLevel := kingpinApp.Flag("log-level", "Log level: debug, info, warn, error").Default("info").Enum("debug", "info", "warn", "error")
	noDotenv := kingpinApp.Flag("no-dotenv", "Do not load ./.env before resolving the environment").Bool()

	checkCmd := kingpinApp.Command("check", "Connect to the selected Redis host and PING it").Default()
	showCmd := kingpinApp.Command("show", "Print the selected Redis host without connecting")
	serveCmd := kingpinApp.Command("serve", "Expose the Redis handle status over HTTP")
	port := serveCmd.Flag("port", "HTTP port exposed by the status server").String()
	rateLimitRPSFlag := serveCmd.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := serveCmd.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()

	command := kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	if !*noDotenv {
		if err := config.LoadDotenv(".env"); err != nil {
			panic(fmt.Sprintf("failed to load .env: %v", err))
		}
	}

	overrides := &config.CLIOverrides{
		Root: root,
		Env:  env,
		File: file,
	}

	if *pingTimeout > 0 {
		overrides.PingTimeout = pingTimeout
	}

	if *port != "" {
		overrides.Port = port
	}

	if *rateLimitRPSFlag >= 0 {
		overrides.RateLimitRPS = rateLimitRPSFlag
	}

	if *rateLimitBurstFlag >= 0 {
		overrides.RateLimitBurst = rateLimitBurstFlag
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Debug("environment resolved",
		zap.String("root", cfg.Environment.Root),
		zap.String("environment", cfg.Environment.Name),
		zap.String("config_file", cfg.Environment.File),
	)

	switch command {
	case showCmd.FullCommand():
		if err := show(os.Stdout, cfg); err != nil {
			logger.Fatal("failed to print redis target", zap.Error(err))
		}
		return
	case checkCmd.FullCommand():
		if err := check(cfg, logger); err != nil {
			logger.Fatal("redis check failed", zap.Error(err))
		}
		return
	}

	app, err := application.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		_ = app.Close()
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), app, cfg.ShutdownGracePeriod, logger)
}

func show(w io.Writer, cfg config.Config) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(application.TargetFor(cfg))
}

func check(cfg config.Config, logger *zap.Logger) error {
	app, err := application.New(context.Background(), cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = app.Close()
	}()

	if err := app.Check(context.Background()); err != nil {
		return err
	}
	logger.Info("redis reachable",
		zap.String("environment", cfg.Environment.Name),
		zap.String("addr", cfg.Redis.Addr()),
	)
	return nil
}

// shutdown waits for a termination signal, stops the server, then closes the Redis handle.
func shutdown(server *http.Server, handle io.Closer, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}

	if err := handle.Close(); err != nil {
		logger.Warn("closing redis client failed", zap.Error(err))
		return
	}
	logger.Info("redis client closed")
}
