package cache

import (
	"context"
	"errors"
	"log"

	"github.com/igolaizola/llmtunes/pkg/catalog"
)

// Genres is the artist genre cache keyed by artist name.
type Genres struct {
	memo           memo[[]string]
	catalog        catalog.Catalog
	cacheTransient bool
	debug          bool
	counters       counters
}

// NewGenres returns a genre cache over the backend. With a nil catalog the
// cache is read only and misses return an empty list without storing it.
func NewGenres(b Backend, c catalog.Catalog, opts Options) *Genres {
	return &Genres{
		memo:           memo[[]string]{name: "genres", backend: b, debug: opts.Debug},
		catalog:        c,
		cacheTransient: opts.CacheTransient,
		debug:          opts.Debug,
	}
}

// Lookup returns the genre tags of the artist, querying the catalog on a
// miss. Unresolved artists get an empty list.
func (g *Genres) Lookup(ctx context.Context, artist string) []string {
	v, err := g.memo.get(ctx, artist)
	switch {
	case err == nil:
		g.counters.hits.Add(1)
		if v == nil {
			v = []string{}
		}
		return v
	case !errors.Is(err, ErrMiss):
		g.counters.failures.Add(1)
		return []string{}
	}
	g.counters.misses.Add(1)
	if g.catalog == nil {
		return []string{}
	}

	g.counters.calls.Add(1)
	genres, err := g.catalog.SearchArtist(ctx, artist)
	v = []string{}
	switch outcome := catalog.Classify(err); outcome {
	case catalog.OK:
		if genres != nil {
			v = genres
		}
	case catalog.NotFound:
		if g.debug {
			log.Printf("cache: artist %q not found\n", artist)
		}
	default:
		g.counters.failures.Add(1)
		log.Printf("cache: couldn't look up artist %q (%s): %v\n", artist, outcome, err)
		if ctx.Err() != nil || outcome == catalog.Unauthorized || (outcome == catalog.TransientFailure && !g.cacheTransient) {
			return v
		}
	}
	g.memo.set(ctx, artist, v)
	return v
}

// Get returns the cached tags without querying the catalog.
func (g *Genres) Get(ctx context.Context, artist string) ([]string, bool) {
	v, err := g.memo.get(ctx, artist)
	return v, err == nil
}

func (g *Genres) Keys(ctx context.Context) ([]string, error) {
	return g.memo.keys(ctx)
}

// Import copies the entries of another backend.
func (g *Genres) Import(ctx context.Context, src Backend) (int, error) {
	return g.memo.load(ctx, src)
}

func (g *Genres) Stats() Stats {
	return g.counters.stats()
}
