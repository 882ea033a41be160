// Package storage provides the storage engine of the discount service.
//
// The engine combines the in-memory code table with an asynchronous
// persistence path:
//
//   - Memory Store: authoritative code table on sharded concurrent maps
//   - PersistQueue: unbounded signal queue drained by one consumer goroutine
//   - Snapshot: full JSON dump of the table, rewritten on every signal
//
// Mutations never wait for disk. Every mutation signals the queue; the
// consumer re-reads the whole current table for each signal, so the last
// write before shutdown always reflects the last signaled mutation.
//
// The consumer is the only goroutine doing file I/O. When a write fails the
// queue logs it, reports itself degraded and retries with backoff instead of
// dropping the signal.
package storage
