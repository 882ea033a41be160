// Package cmap provides a concurrent-safe sharded map.
//
// It uses sharding to reduce lock contention, providing better
// performance than a single mutex-guarded map for high-concurrency workloads.
package cmap

import (
	"sync"

	"github.com/spaolacci/murmur3"
)

// DefaultShardCount is the default number of shards.
const DefaultShardCount = 16

// Map is a concurrent-safe sharded map keyed by strings.
type Map[K ~string, V any] struct {
	shards    []*shard[K, V]
	shardMask uint32
	seed      uint32
}

type shard[K ~string, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

// Option configures a Map.
type Option func(*options)

type options struct {
	shardCount int
	seed       uint32
}

// WithShardCount sets the number of shards. It must be a power of 2,
// otherwise DefaultShardCount is used.
func WithShardCount(n int) Option {
	return func(o *options) {
		o.shardCount = n
	}
}

// WithSeed sets the murmur3 seed used for shard selection.
func WithSeed(seed uint32) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// New creates a new sharded map.
func New[K ~string, V any](opts ...Option) *Map[K, V] {
	o := options{shardCount: DefaultShardCount}
	for _, opt := range opts {
		opt(&o)
	}

	shardCount := o.shardCount
	if shardCount <= 0 || shardCount&(shardCount-1) != 0 {
		shardCount = DefaultShardCount
	}

	m := &Map[K, V]{
		shards:    make([]*shard[K, V], shardCount),
		shardMask: uint32(shardCount - 1),
		seed:      o.seed,
	}
	for i := 0; i < shardCount; i++ {
		m.shards[i] = &shard[K, V]{
			items: make(map[K]V),
		}
	}
	return m
}

// getShard uses the streaming hasher; Sum32WithSeed reads past the key
// with uintptr arithmetic and trips checkptr under -race.
func (m *Map[K, V]) getShard(key K) *shard[K, V] {
	h := murmur3.New32WithSeed(m.seed)
	_, _ = h.Write([]byte(key))
	return m.shards[h.Sum32()&m.shardMask]
}

// Get retrieves a value by key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	shard := m.getShard(key)
	shard.mu.RLock()
	defer shard.mu.RUnlock()
	val, ok := shard.items[key]
	return val, ok
}

// SetIfAbsent sets the value only if the key does not exist.
// Returns true if the value was set, false if the key already exists.
func (m *Map[K, V]) SetIfAbsent(key K, value V) bool {
	shard := m.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	if _, ok := shard.items[key]; ok {
		return false
	}
	shard.items[key] = value
	return true
}

// Count returns the total number of items.
func (m *Map[K, V]) Count() int {
	count := 0
	for _, shard := range m.shards {
		shard.mu.RLock()
		count += len(shard.items)
		shard.mu.RUnlock()
	}
	return count
}

// Range iterates over all key-value pairs.
//
// The callback returns false to stop iteration.
// Locks are taken shard by shard, so the view is not a point-in-time snapshot.
func (m *Map[K, V]) Range(fn func(key K, value V) bool) {
	for _, shard := range m.shards {
		shard.mu.RLock()
		for k, v := range shard.items {
			if !fn(k, v) {
				shard.mu.RUnlock()
				return
			}
		}
		shard.mu.RUnlock()
	}
}

// CompareAndSwap replaces the value of key with new only if the current value equals old.
//
// It reports the value observed under the shard lock, whether the key exists,
// and whether the swap happened. Concurrent callers racing on the same key
// are serialized by the shard lock, so exactly one of them observes the swap.
func CompareAndSwap[K ~string, V comparable](m *Map[K, V], key K, old, new V) (current V, exists, swapped bool) {
	shard := m.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	current, exists = shard.items[key]
	if !exists || current != old {
		return current, exists, false
	}
	shard.items[key] = new
	return new, true, true
}
