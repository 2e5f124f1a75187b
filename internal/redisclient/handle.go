package redisclient

import (
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrNotInitialized is returned by Client before Init has run.
	ErrNotInitialized = errors.New("redis handle not initialized")
	// ErrClosed is returned by Client after Close.
	ErrClosed = errors.New("redis handle closed")
)

// Handle holds the process-wide client. Init runs its constructor at most once;
// every later call observes the first outcome. After a successful Init the
// handle is read-only until Close.
type Handle struct {
	mu     sync.RWMutex
	done   bool
	client *redis.Client
	err    error
}

// Init constructs the client on first use and returns the construction error, if any.
func (h *Handle) Init(build func() (*redis.Client, error)) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.done {
		return h.err
	}

	h.client, h.err = build()
	h.done = true
	return h.err
}

// Client returns the held client.
func (h *Handle) Client() (*redis.Client, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.done {
		return nil, ErrNotInitialized
	}
	if h.err != nil {
		return nil, h.err
	}
	return h.client, nil
}

// Close releases the held client. It is safe to call more than once.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.client == nil {
		return nil
	}
	err := h.client.Close()
	h.client = nil
	h.err = ErrClosed
	return err
}
