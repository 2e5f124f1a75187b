package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const defaultPingTimeout = 2 * time.Second

// Pinger reports whether the Redis handle can reach its server.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Target describes the resolved Redis selection exposed by the status endpoint.
type Target struct {
	Environment string `json:"environment"`
	Root        string `json:"root"`
	ConfigFile  string `json:"configFile"`
	Addr        string `json:"addr"`
	DB          int    `json:"db"`
}

// Handler serves the status endpoints for the Redis handle.
type Handler struct {
	pinger      Pinger
	target      Target
	pingTimeout time.Duration

	clock func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithPingTimeout bounds the PING issued by the health endpoint.
func WithPingTimeout(timeout time.Duration) HandlerOption {
	return func(h *Handler) {
		if timeout > 0 {
			h.pingTimeout = timeout
		}
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(pinger Pinger, target Target, opts ...HandlerOption) *Handler {
	h := &Handler{
		pinger:      pinger,
		target:      target,
		pingTimeout: defaultPingTimeout,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.pingTimeout)
	defer cancel()

	start := h.clock()
	if err := h.pinger.Ping(ctx); err != nil {
		writeError(w, http.StatusServiceUnavailable, "Redis unavailable", err.Error())
		return
	}

	resp := healthResponse{
		Status:    "ok",
		Addr:      h.target.Addr,
		LatencyMs: h.clock().Sub(start).Milliseconds(),
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleTarget(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.target)
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type healthResponse struct {
	Status    string    `json:"status"`
	Addr      string    `json:"addr"`
	LatencyMs int64     `json:"latencyMs"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, errorResponse{
		Error:   message,
		Details: details,
	})
}
