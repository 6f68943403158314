package warm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/igolaizola/llmtunes"
	"github.com/igolaizola/llmtunes/pkg/cache"
)

func fixture(t *testing.T) llmtunes.Config {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"runs/openai_gpt-4o/playlist_run1_20241121_161159.json": `{"songs": [
			{"song": "Hey Jude", "artist": "The Beatles"}
		]}`,
		"runs/temperature_study_40_temp_0.2/playlist_openai_gpt-4o_run1_20241122_101010.json": `{"songs": [
			{"song": "Creep", "artist": "Radiohead"}
		]}`,
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return llmtunes.Config{
		Input:      filepath.Join(root, "runs"),
		TrackCache: filepath.Join(root, "tracks.json"),
		GenreCache: filepath.Join(root, "genres.json"),
	}
}

func keys(t *testing.T, path string) []string {
	t.Helper()
	f, err := cache.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	ks, err := f.Keys(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return ks
}

func TestRunWithoutCredentials(t *testing.T) {
	cfg := &Config{Config: fixture(t), Temperature: true}
	err := Run(context.Background(), cfg)
	if err == nil || !strings.Contains(err.Error(), "credentials are required") {
		t.Fatalf("Run() err = %v; want credentials error", err)
	}
	if _, err := os.Stat(cfg.TrackCache); !os.IsNotExist(err) {
		t.Fatalf("track cache written without credentials: %v", err)
	}
}

func TestRunTemperature(t *testing.T) {
	var lck sync.Mutex
	var queries []string
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"access_token":"token","token_type":"Bearer","expires_in":3600}`)
	})
	mux.HandleFunc("/v1/search", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		lck.Lock()
		queries = append(queries, q.Get("type")+" "+q.Get("q"))
		lck.Unlock()
		if q.Get("type") == "artist" {
			fmt.Fprint(w, `{"artists":{"items":[{"id":"a1","name":"The Beatles","genres":["rock"]}]}}`)
			return
		}
		fmt.Fprint(w, `{"tracks":{"items":[{"id":"t1","name":"x","external_urls":{"spotify":"https://open/t1"},"album":{"name":"x"}}]}}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := &Config{Config: fixture(t), Temperature: true}
	cfg.SpotifyID = "id"
	cfg.SpotifySecret = "secret"
	cfg.SpotifyAuthURL = srv.URL + "/token"
	cfg.SpotifyAPIURL = srv.URL + "/v1"
	if err := Run(context.Background(), cfg); err != nil {
		t.Fatalf("Run() err = %v; want nil", err)
	}

	if got, want := keys(t, cfg.TrackCache), []string{"Creep - Radiohead", "Hey Jude - The Beatles"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("track cache keys = %v; want %v", got, want)
	}
	// Temperature runs only read genres from the track cache.
	if got, want := keys(t, cfg.GenreCache), []string{"The Beatles"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("genre cache keys = %v; want %v", got, want)
	}
	if len(queries) != 3 {
		t.Fatalf("queries = %q; want 3", queries)
	}
}

func TestRunSkip(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"access_token":"token","token_type":"Bearer","expires_in":3600}`)
	})
	mux.HandleFunc("/v1/search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"artists":{"items":[{"id":"a1","name":"The Beatles","genres":["rock"]}]}}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := &Config{Config: fixture(t), Temperature: true, SkipTracks: true}
	cfg.SpotifyID = "id"
	cfg.SpotifySecret = "secret"
	cfg.SpotifyAuthURL = srv.URL + "/token"
	cfg.SpotifyAPIURL = srv.URL + "/v1"
	if err := Run(context.Background(), cfg); err != nil {
		t.Fatalf("Run() err = %v; want nil", err)
	}
	if _, err := os.Stat(cfg.TrackCache); !os.IsNotExist(err) {
		t.Fatalf("track cache written with skip tracks: %v", err)
	}
	if got := keys(t, cfg.GenreCache); !reflect.DeepEqual(got, []string{"The Beatles"}) {
		t.Fatalf("genre cache keys = %v; want [The Beatles]", got)
	}
}
