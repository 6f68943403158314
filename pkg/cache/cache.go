// Package cache memoizes catalog lookups in a persistent key value store.
//
// Once a key has been looked up it always has an entry. Failed lookups store
// a sentinel that is returned on later hits without calling the catalog
// again.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
)

const (
	TracksBucket = "tracks"
	GenresBucket = "genres"
)

// Options controls how failed lookups are persisted.
type Options struct {
	// CacheTransient stores the sentinel also for transient catalog failures
	// (timeouts, rate limits, server errors). When false the sentinel is
	// returned but not persisted so a later run retries the key.
	CacheTransient bool
	Debug          bool
}

// Stats counts what happened to the lookups of a cache.
type Stats struct {
	Hits     int64
	Misses   int64
	Calls    int64
	Failures int64
}

func (s Stats) String() string {
	return fmt.Sprintf("hits=%d misses=%d calls=%d failures=%d", s.Hits, s.Misses, s.Calls, s.Failures)
}

type counters struct {
	hits, misses, calls, failures atomic.Int64
}

func (c *counters) stats() Stats {
	return Stats{
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Calls:    c.calls.Load(),
		Failures: c.failures.Load(),
	}
}

// memo is the typed view of a backend.
type memo[V any] struct {
	name    string
	backend Backend
	debug   bool
}

// get returns ErrMiss when the key has no entry. Any other error means the
// entry couldn't be read and must not be replaced.
func (m *memo[V]) get(ctx context.Context, key string) (V, error) {
	var v V
	b, err := m.backend.Get(ctx, key)
	if errors.Is(err, ErrMiss) {
		return v, ErrMiss
	}
	if err != nil {
		log.Printf("cache: couldn't get %s %q: %v\n", m.name, key, err)
		return v, err
	}
	if err := json.Unmarshal(b, &v); err != nil {
		log.Printf("cache: couldn't decode %s %q: %v\n", m.name, key, err)
		return v, err
	}
	return v, nil
}

func (m *memo[V]) set(ctx context.Context, key string, v V) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("cache: couldn't encode %s %q: %v\n", m.name, key, err)
		return
	}
	if err := m.backend.Set(ctx, key, b); err != nil {
		log.Printf("cache: couldn't persist %s %q: %v\n", m.name, key, err)
		return
	}
	if m.debug {
		log.Printf("cache: stored %s %q\n", m.name, key)
	}
}

func (m *memo[V]) keys(ctx context.Context) ([]string, error) {
	keys, err := m.backend.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("cache: couldn't list %s: %w", m.name, err)
	}
	return keys, nil
}

// load copies every decodable entry of src, re-encoding it in the current
// format.
func (m *memo[V]) load(ctx context.Context, src Backend) (int, error) {
	keys, err := src.Keys(ctx)
	if err != nil {
		return 0, fmt.Errorf("cache: couldn't list source %s: %w", m.name, err)
	}
	from := &memo[V]{name: m.name, backend: src}
	var n int
	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		v, err := from.get(ctx, k)
		if err != nil {
			continue
		}
		b, err := json.Marshal(v)
		if err != nil {
			return n, fmt.Errorf("cache: couldn't encode %s %q: %w", m.name, k, err)
		}
		if err := m.backend.Set(ctx, k, b); err != nil {
			return n, fmt.Errorf("cache: couldn't persist %s %q: %w", m.name, k, err)
		}
		n++
	}
	return n, nil
}
