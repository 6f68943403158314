package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/igolaizola/llmtunes/pkg/catalog"
	"github.com/igolaizola/llmtunes/pkg/playlist"
)

const (
	UnknownGenre = "Unknown"
	UnknownAlbum = "Unknown Album"

	// legacyImage is the placeholder image url stored by older sentinels.
	legacyImage = "https://place-hold.it/300x300/666/fff/000.png?text=No%20Image"
)

// TrackInfo is the cached catalog metadata of a song.
type TrackInfo struct {
	ImageURL     string   `json:"image_url" yaml:"image_url"`
	CanonicalURL string   `json:"canonical_url" yaml:"canonical_url"`
	PreviewURL   string   `json:"preview_url" yaml:"preview_url"`
	AlbumName    string   `json:"album_name" yaml:"album_name"`
	Genres       []string `json:"genres" yaml:"genres"`
	Genre        string   `json:"genre" yaml:"genre"`
}

// DefaultTrack returns the sentinel stored for songs the catalog couldn't
// resolve.
func DefaultTrack() TrackInfo {
	return TrackInfo{
		AlbumName: UnknownAlbum,
		Genres:    []string{},
		Genre:     UnknownGenre,
	}
}

// Found reports whether the info comes from a resolved catalog track.
func (t TrackInfo) Found() bool {
	return t.CanonicalURL != ""
}

// Tags returns the genre tags of the track, falling back to the primary
// genre when the list is empty.
func (t TrackInfo) Tags() []string {
	if len(t.Genres) > 0 {
		return t.Genres
	}
	if t.Genre != "" && t.Genre != UnknownGenre {
		return []string{t.Genre}
	}
	return nil
}

// UnmarshalJSON also accepts entries written with the spotify_url field and
// the placeholder image of older cache files.
func (t *TrackInfo) UnmarshalJSON(b []byte) error {
	type plain TrackInfo
	var v struct {
		plain
		SpotifyURL string `json:"spotify_url"`
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*t = TrackInfo(v.plain)
	if t.CanonicalURL == "" {
		t.CanonicalURL = v.SpotifyURL
	}
	if t.ImageURL == legacyImage {
		t.ImageURL = ""
	}
	if t.Genres == nil {
		t.Genres = []string{}
	}
	if t.Genre == "" {
		t.Genre = UnknownGenre
		if len(t.Genres) > 0 {
			t.Genre = t.Genres[0]
		}
	}
	return nil
}

func trackInfo(tr *catalog.Track) TrackInfo {
	info := TrackInfo{
		ImageURL:     tr.ImageURL,
		CanonicalURL: tr.URL,
		PreviewURL:   tr.PreviewURL,
		AlbumName:    tr.Album,
		Genres:       tr.Genres,
		Genre:        UnknownGenre,
	}
	if info.Genres == nil {
		info.Genres = []string{}
	}
	if len(info.Genres) > 0 {
		info.Genre = info.Genres[0]
	}
	if info.AlbumName == "" {
		info.AlbumName = UnknownAlbum
	}
	return info
}

// Tracks is the track cache keyed by song id.
type Tracks struct {
	memo           memo[TrackInfo]
	catalog        catalog.Catalog
	cacheTransient bool
	debug          bool
	counters       counters
}

// NewTracks returns a track cache over the backend. With a nil catalog the
// cache is read only and misses return the sentinel without storing it.
func NewTracks(b Backend, c catalog.Catalog, opts Options) *Tracks {
	return &Tracks{
		memo:           memo[TrackInfo]{name: "track", backend: b, debug: opts.Debug},
		catalog:        c,
		cacheTransient: opts.CacheTransient,
		debug:          opts.Debug,
	}
}

// Lookup returns the cached info of the song, querying the catalog on a
// miss. It never fails: unresolved songs get the sentinel.
func (t *Tracks) Lookup(ctx context.Context, song, artist string) TrackInfo {
	key := playlist.SongID(song, artist)
	v, err := t.memo.get(ctx, key)
	switch {
	case err == nil:
		t.counters.hits.Add(1)
		return v
	case !errors.Is(err, ErrMiss):
		t.counters.failures.Add(1)
		return DefaultTrack()
	}
	t.counters.misses.Add(1)
	if t.catalog == nil {
		return DefaultTrack()
	}

	t.counters.calls.Add(1)
	tr, err := t.catalog.SearchTrack(ctx, song, artist)
	v = DefaultTrack()
	switch outcome := catalog.Classify(err); outcome {
	case catalog.OK:
		if tr != nil {
			v = trackInfo(tr)
		}
	case catalog.NotFound:
		if t.debug {
			log.Printf("cache: track %q not found\n", key)
		}
	default:
		t.counters.failures.Add(1)
		log.Printf("cache: couldn't look up track %q (%s): %v\n", key, outcome, err)
		if ctx.Err() != nil || outcome == catalog.Unauthorized || (outcome == catalog.TransientFailure && !t.cacheTransient) {
			return v
		}
	}
	t.memo.set(ctx, key, v)
	return v
}

// Get returns the cached info without querying the catalog.
func (t *Tracks) Get(ctx context.Context, song, artist string) (TrackInfo, bool) {
	v, err := t.memo.get(ctx, playlist.SongID(song, artist))
	return v, err == nil
}

func (t *Tracks) Keys(ctx context.Context) ([]string, error) {
	return t.memo.keys(ctx)
}

// Import copies the entries of another backend, upgrading older formats.
func (t *Tracks) Import(ctx context.Context, src Backend) (int, error) {
	return t.memo.load(ctx, src)
}

func (t *Tracks) Stats() Stats {
	return t.counters.stats()
}
