// Package cache holds the in-memory dimension caches used during ingestion.
// A cache maps a dimension's natural key to the row id the store assigned
// to it. It never owns rows; a miss falls through to the store.
package cache

import (
	"fmt"

	"github.com/maypok86/otter"
)

// Stats counts lookups against one cache.
type Stats struct {
	Hits   uint64
	Misses uint64
	Size   int
}

// Cache resolves a key to a row id, creating the row through create on a
// miss. Failed creations are not cached.
type Cache[K comparable] interface {
	ResolveOrCreate(key K, create func() (int64, error)) (int64, error)
	Stats() Stats
	Close()
}

// New returns an unbounded map cache when capacity <= 0, or an otter-backed
// cache holding at most capacity entries otherwise.
func New[K comparable](capacity int) (Cache[K], error) {
	if capacity <= 0 {
		return NewMap[K](), nil
	}
	return NewBounded[K](capacity)
}

// Map is an unbounded cache backed by a Go map.
type Map[K comparable] struct {
	ids    map[K]int64
	hits   uint64
	misses uint64
}

var _ Cache[string] = (*Map[string])(nil)

func NewMap[K comparable]() *Map[K] {
	return &Map[K]{ids: make(map[K]int64)}
}

func (m *Map[K]) ResolveOrCreate(key K, create func() (int64, error)) (int64, error) {
	if id, ok := m.ids[key]; ok {
		m.hits++
		return id, nil
	}
	m.misses++
	id, err := create()
	if err != nil {
		return 0, err
	}
	m.ids[key] = id
	return id, nil
}

func (m *Map[K]) Stats() Stats {
	return Stats{Hits: m.hits, Misses: m.misses, Size: len(m.ids)}
}

func (m *Map[K]) Close() {
	clear(m.ids)
}

// Bounded is a capacity-limited cache. Evicted keys are simply resolved
// against the store again on their next use.
type Bounded[K comparable] struct {
	c      otter.Cache[K, int64]
	hits   uint64
	misses uint64
}

var _ Cache[string] = (*Bounded[string])(nil)

func NewBounded[K comparable](capacity int) (*Bounded[K], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("bounded cache: capacity must be positive, got %d", capacity)
	}
	c, err := otter.MustBuilder[K, int64](capacity).Build()
	if err != nil {
		return nil, fmt.Errorf("bounded cache: %w", err)
	}
	return &Bounded[K]{c: c}, nil
}

func (b *Bounded[K]) ResolveOrCreate(key K, create func() (int64, error)) (int64, error) {
	if id, ok := b.c.Get(key); ok {
		b.hits++
		return id, nil
	}
	b.misses++
	id, err := create()
	if err != nil {
		return 0, err
	}
	b.c.Set(key, id)
	return id, nil
}

func (b *Bounded[K]) Stats() Stats {
	return Stats{Hits: b.hits, Misses: b.misses, Size: b.c.Size()}
}

func (b *Bounded[K]) Close() {
	b.c.Close()
}
