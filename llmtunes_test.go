package llmtunes

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/igolaizola/llmtunes/pkg/catalog"
)

func TestOpenOffline(t *testing.T) {
	dir := t.TempDir()
	genres := filepath.Join(dir, "genres.json")
	if err := os.WriteFile(genres, []byte(`{"BTS": ["k-pop"]}`), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := &Config{
		TrackCache: filepath.Join(dir, "tracks.json"),
		GenreCache: genres,
	}
	ctx := context.Background()
	s, err := Open(ctx, cfg)
	if err != nil {
		t.Fatalf("Open() err = %v; want nil", err)
	}
	defer s.Close()
	if s.Catalog != nil || s.Store != nil {
		t.Fatalf("Open() = %+v; want no catalog and no store", s)
	}
	if got := s.ArtistGenres(ctx)("BTS"); !reflect.DeepEqual(got, []string{"k-pop"}) {
		t.Fatalf("ArtistGenres(BTS) = %v; want [k-pop]", got)
	}
	if got := s.ArtistGenres(ctx)("Nobody"); got == nil || len(got) != 0 {
		t.Fatalf("ArtistGenres(Nobody) = %v; want []", got)
	}
	if got := s.TrackInfo(ctx)("Song", "Artist"); got.Found() {
		t.Fatalf("TrackInfo() = %+v; want the fallback", got)
	}
	if _, err := os.Stat(cfg.TrackCache); !os.IsNotExist(err) {
		t.Fatalf("track cache written offline: %v", err)
	}
}

func TestOpenCorruptCache(t *testing.T) {
	dir := t.TempDir()
	tracks := filepath.Join(dir, "tracks.json")
	if err := os.WriteFile(tracks, []byte(`{"a": `), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Open(context.Background(), &Config{TrackCache: tracks, GenreCache: filepath.Join(dir, "g.json")})
	if err == nil {
		t.Fatalf("Open() err = nil; want error")
	}
}

func TestNewHTTPClient(t *testing.T) {
	if _, err := NewHTTPClient("http://proxy.local:8080"); err != nil {
		t.Fatalf("NewHTTPClient() err = %v; want nil", err)
	}
	if _, err := NewHTTPClient("://bad"); err == nil {
		t.Fatalf("NewHTTPClient(%q) err = nil; want error", "://bad")
	}
}

func TestOpenRejectedCredentials(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"invalid_client"}`)
	}))
	t.Cleanup(srv.Close)
	dir := t.TempDir()
	cfg := &Config{
		TrackCache:     filepath.Join(dir, "tracks.json"),
		GenreCache:     filepath.Join(dir, "genres.json"),
		SpotifyID:      "id",
		SpotifySecret:  "wrong",
		SpotifyAuthURL: srv.URL + "/token",
		SpotifyAPIURL:  srv.URL + "/v1",
	}
	_, err := Open(context.Background(), cfg)
	if !errors.Is(err, catalog.ErrUnauthorized) {
		t.Fatalf("Open() err = %v; want %v", err, catalog.ErrUnauthorized)
	}
	if calls != 1 {
		t.Fatalf("token calls = %d; want 1", calls)
	}
	if _, err := os.Stat(cfg.TrackCache); !os.IsNotExist(err) {
		t.Fatalf("track cache written with rejected credentials: %v", err)
	}
}
