// Package memory provides in-memory storage for discount codes.
package memory

import (
	"sort"

	"github.com/yndnr/discountd/internal/core/domain"
	"github.com/yndnr/discountd/pkg/cmap"
)

// Store maps code -> used flag.
type Store struct {
	codes *cmap.Map[string, bool]
}

// Option configures the Store.
type Option func(*storeOptions)

type storeOptions struct {
	shards int
}

// WithShards sets the number of map shards (power of 2).
func WithShards(n int) Option {
	return func(o *storeOptions) {
		o.shards = n
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	o := storeOptions{shards: cmap.DefaultShardCount}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store{
		codes: cmap.New[string, bool](cmap.WithShardCount(o.shards)),
	}
}

// Insert adds code as unused. It returns false if the code already exists.
func (s *Store) Insert(code string) bool {
	return s.codes.SetIfAbsent(code, false)
}

// Restore adds an entry loaded from a snapshot. The first occurrence of a code wins.
func (s *Store) Restore(entry domain.CodeEntry) bool {
	return s.codes.SetIfAbsent(entry.Code, entry.Used)
}

// Redeem flips code from unused to used.
//
// The check and the flip happen under one shard lock, so among concurrent
// callers on the same code exactly one gets UseSuccess.
func (s *Store) Redeem(code string) domain.UseResult {
	_, exists, swapped := cmap.CompareAndSwap(s.codes, code, false, true)
	switch {
	case !exists:
		return domain.UseNotFound
	case !swapped:
		return domain.UseAlreadyUsed
	default:
		return domain.UseSuccess
	}
}

// Lookup returns the used flag of code.
func (s *Store) Lookup(code string) (used bool, ok bool) {
	return s.codes.Get(code)
}

// Count returns the number of stored codes.
func (s *Store) Count() int {
	return s.codes.Count()
}

// Stats counts stored and used codes without copying the table.
func (s *Store) Stats() (total, used int) {
	s.codes.Range(func(_ string, u bool) bool {
		total++
		if u {
			used++
		}
		return true
	})
	return total, used
}

// Entries returns a copy of all entries sorted by code.
func (s *Store) Entries() []domain.CodeEntry {
	entries := make([]domain.CodeEntry, 0, s.codes.Count())
	s.codes.Range(func(code string, used bool) bool {
		entries = append(entries, domain.CodeEntry{Code: code, Used: used})
		return true
	})
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Code < entries[j].Code
	})
	return entries
}
