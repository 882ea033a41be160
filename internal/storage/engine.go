// Package storage provides the storage engine for the discount service.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yndnr/discountd/internal/core/domain"
	"github.com/yndnr/discountd/internal/storage/memory"
	"github.com/yndnr/discountd/internal/storage/snapshot"
	"github.com/yndnr/discountd/internal/telemetry/metric"
)

// Config configures the storage engine.
type Config struct {
	// File is the snapshot file.
	File string

	// Shards is the number of code table shards (power of 2).
	Shards int

	// Queue configures retry pacing of the persistence queue.
	Queue QueueConfig

	// Logger is the structured logger.
	Logger *slog.Logger

	// Metrics receives storage metrics. A private registry is used if nil.
	Metrics *metric.Registry
}

// DefaultConfig returns the default storage configuration.
func DefaultConfig(file string) Config {
	return Config{
		File: file,
		Queue: QueueConfig{
			RetryInitial: DefaultRetryInitial,
			RetryMax:     DefaultRetryMax,
		},
		Logger: slog.Default(),
	}
}

// Engine owns the code table, the snapshot file and the persistence queue.
type Engine struct {
	cfg Config

	store    *memory.Store
	snapshot *snapshot.Manager
	queue    *PersistQueue

	logger  *slog.Logger
	metrics *metric.Registry
}

// Open loads the snapshot into a fresh code table and starts persistence.
//
// A missing snapshot file is created as an empty list. A malformed one is
// returned as an error wrapping domain.ErrSnapshotMalformed; callers must
// treat it as fatal.
func Open(cfg Config) (*Engine, error) {
	if cfg.File == "" {
		return nil, fmt.Errorf("storage: file is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metric.NewRegistry()
	}

	snapMgr, err := snapshot.NewManager(snapshot.DefaultConfig(cfg.File))
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	var storeOpts []memory.Option
	if cfg.Shards > 0 {
		storeOpts = append(storeOpts, memory.WithShards(cfg.Shards))
	}

	e := &Engine{
		cfg:      cfg,
		store:    memory.New(storeOpts...),
		snapshot: snapMgr,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
	}

	if err := e.recover(); err != nil {
		return nil, err
	}

	queueCfg := cfg.Queue
	if queueCfg.Logger == nil {
		queueCfg.Logger = cfg.Logger
	}
	queueCfg.Metrics = cfg.Metrics
	e.queue = NewPersistQueue(e.writeSnapshot, queueCfg)

	return e, nil
}

// recover rebuilds the code table from the snapshot file.
func (e *Engine) recover() error {
	startTime := time.Now()

	created, err := e.snapshot.EnsureExists()
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if created {
		e.logger.Info("no snapshot found, created empty snapshot", "path", e.snapshot.Path())
		return nil
	}

	entries, info, err := e.snapshot.Load()
	if err != nil {
		return fmt.Errorf("storage: load snapshot: %w", err)
	}

	duplicates := 0
	for _, entry := range entries {
		if !e.store.Restore(entry) {
			duplicates++
		}
		e.logger.Debug("code restored", "code", entry.Code, "used", entry.Used)
	}
	if duplicates > 0 {
		e.logger.Warn("snapshot contains duplicate codes, first occurrence kept",
			"duplicates", duplicates)
	}

	total, used := e.Stats()
	e.logger.Info("snapshot loaded",
		"path", info.Path,
		"codes", total,
		"used", used,
		"size_bytes", info.Size,
		"elapsed", time.Since(startTime))
	return nil
}

// writeSnapshot dumps the current table. It runs on the queue consumer only.
func (e *Engine) writeSnapshot() error {
	start := time.Now()
	info, err := e.snapshot.Save(e.store.Entries())
	e.metrics.SnapshotDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		e.metrics.SnapshotFailures.Inc()
		return err
	}
	e.metrics.SnapshotWrites.Inc()
	e.logger.Debug("snapshot written",
		"codes", info.Count,
		"size_bytes", info.Size,
		"elapsed", time.Since(start))
	return nil
}

// Insert adds code as unused. It returns false on collision.
func (e *Engine) Insert(code string) bool {
	return e.store.Insert(code)
}

// Redeem flips code from unused to used.
func (e *Engine) Redeem(code string) domain.UseResult {
	return e.store.Redeem(code)
}

// MarkDirty signals the persistence queue. It never blocks.
func (e *Engine) MarkDirty() {
	if !e.queue.Signal() {
		e.logger.Warn("persistence signal dropped, queue closed")
	}
}

// Lookup returns the used flag of code.
func (e *Engine) Lookup(code string) (used bool, ok bool) {
	return e.store.Lookup(code)
}

// Count returns the number of stored codes.
func (e *Engine) Count() int {
	return e.store.Count()
}

// Stats returns the number of stored and used codes.
func (e *Engine) Stats() (total, used int) {
	return e.store.Stats()
}

// Entries returns all entries sorted by code.
func (e *Engine) Entries() []domain.CodeEntry {
	return e.store.Entries()
}

// Flush signals the queue and waits until the snapshot on disk reflects
// every mutation made before the call.
func (e *Engine) Flush(ctx context.Context) error {
	e.MarkDirty()
	return e.queue.WaitIdle(ctx)
}

// Degraded reports whether snapshot writes are currently failing.
func (e *Engine) Degraded() bool {
	return e.queue.Degraded()
}

// SnapshotPath returns the snapshot file path.
func (e *Engine) SnapshotPath() string {
	return e.snapshot.Path()
}

// Close drains the persistence queue and stops its consumer.
func (e *Engine) Close(ctx context.Context) error {
	e.logger.Info("shutting down storage engine", "pending", e.queue.Pending())

	if err := e.queue.Close(ctx); err != nil {
		e.logger.Error("persistence queue did not drain", "error", err)
		return fmt.Errorf("storage: close: %w", err)
	}

	e.logger.Info("storage engine shutdown complete")
	return nil
}
