// Package cmap provides a concurrent map implementation for the discount service.
//
// This package implements a sharded concurrent map with the following features:
//
//   - Sharding: Configurable shard count for parallelism
//   - Fine-grained Locking: Per-shard RWMutex, unrelated keys never contend
//   - Compare-and-swap: Atomic per-key state transitions
//   - Iteration: Shard-by-shard iteration under read locks
//
// Usage:
//
//	m := cmap.New[string, bool]()
//	m.SetIfAbsent("ABCD123", false)
//	cur, ok, swapped := cmap.CompareAndSwap(m, "ABCD123", false, true)
//
// Thread Safety:
//
// All operations are thread-safe. Read operations (Get, Count, Range) use RLock,
// write operations (SetIfAbsent, CompareAndSwap) use Lock on a single shard.
package cmap
