package shutdown

import (
	"context"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// Handler handles graceful shutdown.
type Handler struct {
	timeout time.Duration
	hooks   []func(context.Context) error
	mu      sync.Mutex
	done    chan struct{}

	ctx        context.Context
	cancel     context.CancelFunc
	stopSignal context.CancelFunc
}

// NewHandler creates a new shutdown handler listening for SIGINT and SIGTERM.
func NewHandler(timeout time.Duration) *Handler {
	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithCancel(sigCtx)
	return &Handler{
		timeout:    timeout,
		hooks:      make([]func(context.Context) error, 0),
		done:       make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
		stopSignal: stop,
	}
}

// OnShutdown registers a shutdown hook.
// Hooks are called in reverse order of registration.
func (h *Handler) OnShutdown(hook func(context.Context) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, hook)
}

// Context returns a context cancelled when shutdown begins.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// Trigger begins shutdown without a signal.
func (h *Handler) Trigger() {
	h.cancel()
}

// Wait waits for a shutdown signal or Trigger and executes hooks.
// It returns the last hook error.
func (h *Handler) Wait() error {
	<-h.ctx.Done()
	// A second signal now kills the process.
	h.stopSignal()

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	h.mu.Lock()
	hooks := make([]func(context.Context) error, len(h.hooks))
	copy(hooks, h.hooks)
	h.mu.Unlock()

	var lastErr error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i](ctx); err != nil {
			lastErr = err
		}
	}

	close(h.done)
	return lastErr
}

// Done returns a channel that closes when shutdown is complete.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}
