package llmtunes

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/igolaizola/llmtunes/pkg/cache"
	"github.com/igolaizola/llmtunes/pkg/catalog"
	"github.com/igolaizola/llmtunes/pkg/playlist"
	"github.com/igolaizola/llmtunes/pkg/spotify"
	"github.com/igolaizola/llmtunes/pkg/storage"
)

// Config holds the settings shared by every batch command.
type Config struct {
	Debug          bool
	Input          string
	TrackCache     string
	GenreCache     string
	DBType         string
	DBConn         string
	SpotifyID      string
	SpotifySecret  string
	Proxy          string
	Wait           time.Duration
	CacheTransient bool

	// SpotifyAuthURL and SpotifyAPIURL override the spotify endpoints.
	SpotifyAuthURL string
	SpotifyAPIURL  string
}

// Session bundles the catalog client and the caches of a batch run.
type Session struct {
	Tracks  *cache.Tracks
	Genres  *cache.Genres
	Store   *storage.Store
	Catalog catalog.Catalog
}

// NewHTTPClient returns the client used for outgoing requests, routed through
// proxy when set.
func NewHTTPClient(proxy string) (*http.Client, error) {
	httpClient := &http.Client{
		Timeout: 2 * time.Minute,
	}
	if proxy != "" {
		u, err := url.Parse(proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}
		httpClient.Transport = &http.Transport{
			Proxy: http.ProxyURL(u),
		}
	}
	return httpClient, nil
}

// Open builds the session. Without spotify credentials the catalog is nil
// and the caches are read only. Credentials are checked before any lookup so
// a rejected secret fails the batch instead of filling the caches with
// fallback entries. With a database type the caches live in the database,
// otherwise in the JSON cache files.
func Open(ctx context.Context, cfg *Config) (*Session, error) {
	s := &Session{}

	if cfg.SpotifyID != "" && cfg.SpotifySecret != "" {
		httpClient, err := NewHTTPClient(cfg.Proxy)
		if err != nil {
			return nil, err
		}
		client := spotify.New(&spotify.Config{
			Wait:         cfg.Wait,
			Debug:        cfg.Debug,
			Client:       httpClient,
			ClientID:     cfg.SpotifyID,
			ClientSecret: cfg.SpotifySecret,
			AuthURL:      cfg.SpotifyAuthURL,
			BaseURL:      cfg.SpotifyAPIURL,
		})
		if err := client.Auth(ctx); err != nil {
			if errors.Is(err, catalog.ErrUnauthorized) {
				return nil, fmt.Errorf("llmtunes: spotify rejected the credentials, check --spotify-id and --spotify-secret: %w", err)
			}
			return nil, fmt.Errorf("llmtunes: couldn't authenticate with spotify: %w", err)
		}
		s.Catalog = client
	} else {
		log.Println("llmtunes: no spotify credentials, using cached metadata only")
	}

	var tracks, genres cache.Backend
	if cfg.DBType != "" {
		store, err := OpenStore(ctx, cfg.DBType, cfg.DBConn, cfg.Debug)
		if err != nil {
			return nil, err
		}
		s.Store = store
		tracks = cache.NewDB(store, cache.TracksBucket)
		genres = cache.NewDB(store, cache.GenresBucket)
	} else {
		t, err := cache.OpenFile(cfg.TrackCache)
		if err != nil {
			return nil, fmt.Errorf("llmtunes: couldn't open track cache: %w", err)
		}
		g, err := cache.OpenFile(cfg.GenreCache)
		if err != nil {
			return nil, fmt.Errorf("llmtunes: couldn't open genre cache: %w", err)
		}
		tracks, genres = t, g
	}

	opts := cache.Options{
		CacheTransient: cfg.CacheTransient,
		Debug:          cfg.Debug,
	}
	s.Tracks = cache.NewTracks(tracks, s.Catalog, opts)
	s.Genres = cache.NewGenres(genres, s.Catalog, opts)
	return s, nil
}

// OpenStore creates and starts a database store.
func OpenStore(ctx context.Context, dbType, dbConn string, debug bool) (*storage.Store, error) {
	store, err := storage.New(dbType, dbConn, debug)
	if err != nil {
		return nil, fmt.Errorf("llmtunes: couldn't create store: %w", err)
	}
	if err := store.Start(ctx); err != nil {
		return nil, fmt.Errorf("llmtunes: couldn't start store: %w", err)
	}
	return store, nil
}

// Close releases the database connection, if any.
func (s *Session) Close() error {
	if s.Store == nil {
		return nil
	}
	return s.Store.Close()
}

// ArtistGenres returns the artist genre lookup used by the genre analysis.
func (s *Session) ArtistGenres(ctx context.Context) func(artist string) []string {
	return func(artist string) []string {
		return s.Genres.Lookup(ctx, artist)
	}
}

// TrackGenres returns the lookup of the genre tags of a song in the track
// cache.
func (s *Session) TrackGenres(ctx context.Context) func(song, artist string) []string {
	return func(song, artist string) []string {
		return s.Tracks.Lookup(ctx, song, artist).Tags()
	}
}

func (s *Session) TrackInfo(ctx context.Context) func(song, artist string) cache.TrackInfo {
	return func(song, artist string) cache.TrackInfo {
		return s.Tracks.Lookup(ctx, song, artist)
	}
}

// LogStats logs the cache counters when debug is enabled.
func (s *Session) LogStats(debug bool) {
	if !debug {
		return
	}
	log.Printf("llmtunes: track cache %s\n", s.Tracks.Stats())
	log.Printf("llmtunes: genre cache %s\n", s.Genres.Stats())
}

// Selections loads the model runs and, when temperature is set, the
// temperature study runs under the input directory.
func Selections(cfg *Config, temperature bool) (sels, temps []playlist.Selection, err error) {
	sels, err = playlist.Load(cfg.Input, cfg.Debug)
	if err != nil {
		return nil, nil, err
	}
	if temperature {
		temps, err = playlist.LoadTemperature(cfg.Input, cfg.Debug)
		if err != nil {
			return nil, nil, err
		}
	}
	return sels, temps, nil
}
