package storage

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/yndnr/discountd/internal/core/domain"
	"github.com/yndnr/discountd/internal/telemetry/metric"
)

// Default retry pacing for failed snapshot writes.
const (
	DefaultRetryInitial = 100 * time.Millisecond
	DefaultRetryMax     = 10 * time.Second
)

// QueueConfig configures a PersistQueue.
type QueueConfig struct {
	// RetryInitial is the first delay after a failed write.
	RetryInitial time.Duration
	// RetryMax caps the exponential backoff.
	RetryMax time.Duration

	Logger  *slog.Logger
	Metrics *metric.Registry
}

// PersistQueue is an unbounded multi-producer single-consumer signal queue.
//
// Signals carry no payload. Each pending signal costs one call to the save
// function on the consumer goroutine.
type PersistQueue struct {
	save    func() error
	cfg     QueueConfig
	logger  *slog.Logger
	metrics *metric.Registry
	retry   *backoff.ExponentialBackOff // consumer goroutine only

	mu      sync.Mutex
	pending int
	closed  bool
	changed chan struct{} // closed and replaced whenever pending decreases

	wake      chan struct{}
	stopCh    chan struct{}
	doneCh    chan struct{}
	closeOnce sync.Once

	degraded atomic.Bool
	dropped  atomic.Uint64
	finalErr error // set by the consumer before doneCh closes
}

// NewPersistQueue creates the queue and starts its consumer.
func NewPersistQueue(save func() error, cfg QueueConfig) *PersistQueue {
	if cfg.RetryInitial <= 0 {
		cfg.RetryInitial = DefaultRetryInitial
	}
	if cfg.RetryMax < cfg.RetryInitial {
		cfg.RetryMax = DefaultRetryMax
		if cfg.RetryMax < cfg.RetryInitial {
			cfg.RetryMax = cfg.RetryInitial
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metric.NewRegistry()
	}

	q := &PersistQueue{
		save:    save,
		cfg:     cfg,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		retry:   newRetryBackOff(cfg),
		changed: make(chan struct{}),
		wake:    make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	go q.run()
	return q
}

// Signal enqueues one persistence request without blocking.
// It returns false if the queue is already closed.
func (q *PersistQueue) Signal() bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.dropped.Add(1)
		q.metrics.SignalsDropped.Inc()
		return false
	}
	q.pending++
	q.metrics.PersistPending.Set(float64(q.pending))
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return true
}

// Pending returns the number of signals not yet written.
func (q *PersistQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending
}

// Degraded reports whether the last write attempt failed.
func (q *PersistQueue) Degraded() bool {
	return q.degraded.Load()
}

// Dropped returns the number of signals rejected after Close.
func (q *PersistQueue) Dropped() uint64 {
	return q.dropped.Load()
}

// WaitIdle blocks until every signal enqueued so far has been written.
func (q *PersistQueue) WaitIdle(ctx context.Context) error {
	q.mu.Lock()
	for q.pending > 0 {
		ch := q.changed
		q.mu.Unlock()
		select {
		case <-ch:
		case <-q.doneCh:
			q.mu.Lock()
			n := q.pending
			q.mu.Unlock()
			if n > 0 {
				return domain.ErrQueueClosed.WithDetails("signals left unwritten")
			}
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
		q.mu.Lock()
	}
	q.mu.Unlock()
	return nil
}

// Close stops accepting signals, drains the pending ones and stops the consumer.
//
// It returns the error of a failed final write, or ctx.Err() if the context
// expires before the drain completes. Calling Close again waits for the same
// outcome.
func (q *PersistQueue) Close(ctx context.Context) error {
	q.closeOnce.Do(func() {
		q.mu.Lock()
		q.closed = true
		q.mu.Unlock()
		close(q.stopCh)
	})

	select {
	case <-q.doneCh:
		return q.finalErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// newRetryBackOff doubles the delay from RetryInitial up to RetryMax and
// never gives up; the queue stays degraded until a write succeeds.
func newRetryBackOff(cfg QueueConfig) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.RetryInitial
	b.MaxInterval = cfg.RetryMax
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

func (q *PersistQueue) run() {
	defer close(q.doneCh)

	for {
		select {
		case <-q.wake:
		case <-q.stopCh:
			q.finalErr = q.drain()
			return
		}

		for q.Pending() > 0 {
			if err := q.writeOne(); err != nil {
				wait := q.retry.NextBackOff()
				q.logger.Warn("snapshot write failed, retrying",
					"error", err,
					"retry_in", wait,
					"pending", q.Pending())

				timer := time.NewTimer(wait)
				select {
				case <-timer.C:
				case <-q.stopCh:
					timer.Stop()
					q.finalErr = q.drain()
					return
				}
				continue
			}
			q.retry.Reset()
		}
	}
}

// drain writes every pending signal, stopping at the first failure.
func (q *PersistQueue) drain() error {
	n := q.Pending()
	if n > 0 {
		q.logger.Info("draining persistence queue", "pending", n)
	}
	for q.Pending() > 0 {
		if err := q.writeOne(); err != nil {
			q.logger.Error("final snapshot write failed",
				"error", err,
				"pending", q.Pending())
			return err
		}
	}
	return nil
}

// writeOne performs one save and, on success, consumes one signal.
func (q *PersistQueue) writeOne() error {
	if err := q.save(); err != nil {
		if !q.degraded.Swap(true) {
			q.logger.Error("persistence degraded", "error", err)
		}
		q.metrics.PersistDegraded.Set(1)
		return err
	}

	if q.degraded.Swap(false) {
		q.logger.Info("persistence recovered")
	}
	q.metrics.PersistDegraded.Set(0)

	q.mu.Lock()
	q.pending--
	q.metrics.PersistPending.Set(float64(q.pending))
	close(q.changed)
	q.changed = make(chan struct{})
	q.mu.Unlock()
	return nil
}
