package redisclient

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/redis-bootstrap/internal/config"
)

func hostFor(t *testing.T, srv *miniredis.Miniredis) config.Host {
	t.Helper()
	port, err := strconv.Atoi(srv.Port())
	if err != nil {
		t.Fatalf("parse miniredis port: %v", err)
	}
	return config.Host{Host: srv.Host(), Port: port}
}

func TestOptionsMapsHost(t *testing.T) {
	t.Parallel()

	opts := Options(config.Host{Host: "cache.internal", Username: "app", Password: "pw", DB: 3})
	if opts.Addr != "cache.internal:6379" {
		t.Fatalf("expected default port, got %s", opts.Addr)
	}
	if opts.Username != "app" || opts.Password != "pw" || opts.DB != 3 {
		t.Fatalf("unexpected options: %+v", opts)
	}
}

func TestNewPingsServer(t *testing.T) {
	srv := miniredis.RunT(t)
	logger := zaptest.NewLogger(t)

	client, err := New(context.Background(), hostFor(t, srv), logger, WithPing(time.Second))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if got := client.Options().Addr; got != srv.Addr() {
		t.Fatalf("expected client bound to %s, got %s", srv.Addr(), got)
	}
	if err := client.Set(context.Background(), "k", "v", 0).Err(); err != nil {
		t.Fatalf("SET failed: %v", err)
	}
	if got, _ := srv.Get("k"); got != "v" {
		t.Fatalf("expected value to reach server, got %q", got)
	}
}

func TestNewFailsWhenServerUnreachable(t *testing.T) {
	srv := miniredis.RunT(t)
	host := hostFor(t, srv)
	srv.Close()

	_, err := New(context.Background(), host, zaptest.NewLogger(t),
		WithPing(200*time.Millisecond),
		WithOptions(func(o *redis.Options) { o.MaxRetries = -1 }),
	)
	if err == nil {
		t.Fatalf("expected ping error for closed server")
	}
}

func TestNewWithoutPingIsLazy(t *testing.T) {
	t.Parallel()

	client, err := New(context.Background(), config.Host{Host: "127.0.0.1", Port: 1}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New without ping should not dial, got %v", err)
	}
	_ = client.Close()
}
