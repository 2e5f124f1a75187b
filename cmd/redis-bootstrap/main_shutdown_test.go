package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	osSignal "os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/redis-bootstrap/internal/application"
	"github.com/eugenenazirov/redis-bootstrap/internal/config"
	"github.com/eugenenazirov/redis-bootstrap/internal/redisclient"
)

type recordingCloser struct {
	closed atomic.Bool
}

func (c *recordingCloser) Close() error {
	c.closed.Store(true)
	return nil
}

func TestShutdownStopsServerAndClosesRedis(t *testing.T) {
	t.Cleanup(func() {
		signalNotify = osSignal.Notify
	})

	signalNotify = func(ch chan<- os.Signal, _ ...os.Signal) {
		go func() {
			ch <- syscall.SIGTERM
		}()
	}

	var serverDown atomic.Bool
	server := &http.Server{}
	server.RegisterOnShutdown(func() {
		serverDown.Store(true)
	})
	handle := &recordingCloser{}

	shutdown(server, handle, time.Second, zaptest.NewLogger(t))

	if !handle.closed.Load() {
		t.Fatalf("expected redis handle to be closed on shutdown")
	}
	deadline := time.Now().Add(time.Second)
	for !serverDown.Load() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if !serverDown.Load() {
		t.Fatalf("expected server shutdown callback to execute")
	}
}

func TestShutdownReleasesApplicationHandle(t *testing.T) {
	t.Cleanup(func() {
		signalNotify = osSignal.Notify
	})
	signalNotify = func(ch chan<- os.Signal, _ ...os.Signal) {
		go func() {
			ch <- syscall.SIGINT
		}()
	}

	srv := miniredis.RunT(t)
	port, err := strconv.Atoi(srv.Port())
	if err != nil {
		t.Fatalf("parse port: %v", err)
	}
	cfg := config.Config{
		Environment: config.Environment{Name: "test"},
		Redis:       config.Host{Host: srv.Host(), Port: port},
		PingTimeout: time.Second,
		Port:        ":0",
	}

	logger := zaptest.NewLogger(t)
	app, err := application.New(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("application.New returned error: %v", err)
	}

	shutdown(app.Server(), app, 100*time.Millisecond, logger)

	if _, err := app.Client(); !errors.Is(err, redisclient.ErrClosed) {
		t.Fatalf("expected ErrClosed after shutdown, got %v", err)
	}
}
