package shutdown

import (
	"context"
	"errors"
	"slices"
	"sync"
	"syscall"
	"testing"
	"time"
)

// recorder registers named hooks and records the order they run in.
type recorder struct {
	mu    sync.Mutex
	order []string
}

func (r *recorder) hook(name string, err error) func(context.Context) error {
	return func(context.Context) error {
		r.mu.Lock()
		r.order = append(r.order, name)
		r.mu.Unlock()
		return err
	}
}

func (r *recorder) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.order)
}

func waitAsync(h *Handler) <-chan error {
	errCh := make(chan error, 1)
	go func() { errCh <- h.Wait() }()
	return errCh
}

func TestNewHandler(t *testing.T) {
	h := NewHandler(5 * time.Second)
	if h.timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", h.timeout)
	}
	if h.Context().Err() != nil {
		t.Error("Context should not be cancelled before shutdown")
	}
	select {
	case <-h.Done():
		t.Error("Done should not be closed before shutdown")
	default:
	}
}

func TestHandler_SignalRunsHooksInReverse(t *testing.T) {
	for _, sig := range []syscall.Signal{syscall.SIGINT, syscall.SIGTERM} {
		t.Run(sig.String(), func(t *testing.T) {
			h := NewHandler(5 * time.Second)
			rec := &recorder{}
			// Registration order used by discount-server.
			for _, name := range []string{"watcher", "storage", "metrics", "tcp"} {
				h.OnShutdown(rec.hook(name, nil))
			}

			errCh := waitAsync(h)
			if err := syscall.Kill(syscall.Getpid(), sig); err != nil {
				t.Fatalf("kill: %v", err)
			}

			select {
			case err := <-errCh:
				if err != nil {
					t.Errorf("Wait() = %v", err)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("Wait() did not complete after signal")
			}

			want := []string{"tcp", "metrics", "storage", "watcher"}
			if got := rec.calls(); !slices.Equal(got, want) {
				t.Errorf("hook order = %v, want %v", got, want)
			}
			select {
			case <-h.Done():
			default:
				t.Error("Done should be closed after Wait")
			}
		})
	}
}

func TestHandler_HookErrorDoesNotStopOthers(t *testing.T) {
	h := NewHandler(5 * time.Second)
	rec := &recorder{}
	drainErr := errors.New("final snapshot write failed")

	h.OnShutdown(rec.hook("watcher", nil))
	h.OnShutdown(rec.hook("storage", drainErr))
	h.OnShutdown(rec.hook("tcp", nil))

	h.Trigger()
	if err := h.Wait(); !errors.Is(err, drainErr) {
		t.Errorf("Wait() = %v, want %v", err, drainErr)
	}
	if got := rec.calls(); len(got) != 3 {
		t.Errorf("hooks run = %v, want all three", got)
	}
}

func TestHandler_Trigger(t *testing.T) {
	h := NewHandler(5 * time.Second)

	var hasDeadline bool
	h.OnShutdown(func(ctx context.Context) error {
		_, hasDeadline = ctx.Deadline()
		return nil
	})

	errCh := waitAsync(h)
	h.Trigger()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Wait() = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait() did not complete after Trigger")
	}

	if !hasDeadline {
		t.Error("hook context should carry the shutdown timeout")
	}
	if h.Context().Err() == nil {
		t.Error("Context should be cancelled after Trigger")
	}
}

func TestHandler_HookTimeout(t *testing.T) {
	h := NewHandler(20 * time.Millisecond)
	h.OnShutdown(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	h.Trigger()
	if err := h.Wait(); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() = %v, want DeadlineExceeded", err)
	}
}

func TestHandler_ConcurrentOnShutdown(t *testing.T) {
	h := NewHandler(5 * time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.OnShutdown(func(context.Context) error { return nil })
		}()
	}
	wg.Wait()

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.hooks) != 10 {
		t.Errorf("hooks = %d, want 10", len(h.hooks))
	}
}
