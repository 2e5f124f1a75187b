package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPort           = "8080"
	defaultPingTimeout    = 3 * time.Second
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > Environment variables > Defaults
type Config struct {
	Environment Environment
	Redis       Host
	PingTimeout time.Duration

	Port                 string
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	Root           *string
	Env            *string
	File           *string
	Port           *string
	PingTimeout    *time.Duration
	RateLimitRPS   *float64
	RateLimitBurst *int

	// Anchor replaces the executable path when deriving the default root.
	Anchor string
}

// Load resolves the environment, reads its host table and selects the Redis host.
// A missing file, malformed YAML or absent environment key is returned as an error.
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	env, err := ResolveEnvironment(overrides)
	if err != nil {
		return Config{}, fmt.Errorf("resolve environment: %w", err)
	}
	cfg.Environment = env

	hosts, err := LoadHosts(env.File)
	if err != nil {
		return Config{}, fmt.Errorf("load redis config: %w", err)
	}

	host, err := hosts.Lookup(env.Name)
	if err != nil {
		return Config{}, fmt.Errorf("select redis host from %s: %w", env.File, err)
	}
	cfg.Redis = host

	applyEnvConfig(&cfg)

	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		PingTimeout:          defaultPingTimeout,
		Port:                 defaultPort,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
	}
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(cfg *Config) {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Port = port
	}

	if timeout := strings.TrimSpace(os.Getenv("REDIS_PING_TIMEOUT")); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.PingTimeout = d
		}
	}

	if rps := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}

	if overrides.PingTimeout != nil && *overrides.PingTimeout > 0 {
		cfg.PingTimeout = *overrides.PingTimeout
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	if cfg.PingTimeout <= 0 {
		return fmt.Errorf("ping timeout must be positive")
	}
	return nil
}
