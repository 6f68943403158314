package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/igolaizola/llmtunes/pkg/catalog"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if id, secret, ok := r.BasicAuth(); !ok || id != "id" || secret != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"access_token":"token","token_type":"Bearer","expires_in":3600}`)
	})
	mux.Handle("/v1/", h)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return New(&Config{
		ClientID:     "id",
		ClientSecret: "secret",
		BaseURL:      srv.URL + "/v1",
		AuthURL:      srv.URL + "/token",
		RetryWait:    time.Millisecond,
	})
}

func TestSearchTrack(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/search", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer token" {
			t.Errorf("Authorization = %q; want %q", got, "Bearer token")
		}
		if got, want := r.URL.Query().Get("q"), "track:Hey Jude artist:The Beatles"; got != want {
			t.Errorf("q = %q; want %q", got, want)
		}
		fmt.Fprint(w, `{"tracks":{"items":[{
			"id":"t1","name":"Hey Jude","preview_url":"https://p/t1",
			"external_urls":{"spotify":"https://open/t1"},
			"artists":[{"id":"a1","name":"The Beatles"}],
			"album":{"id":"b1","name":"Hey Jude","images":[{"url":"https://i/b1","height":640,"width":640}]}
		}]}}`)
	})
	mux.HandleFunc("/v1/artists/a1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"a1","name":"The Beatles","genres":["british invasion","rock"]}`)
	})
	mux.HandleFunc("/v1/albums/b1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"b1","name":"Hey Jude","genres":["rock","merseybeat"]}`)
	})
	c := newTestClient(t, mux)

	got, err := c.SearchTrack(context.Background(), "Hey Jude", "The Beatles")
	if err != nil {
		t.Fatalf("SearchTrack() err = %v; want nil", err)
	}
	want := &catalog.Track{
		ID:         "t1",
		Name:       "Hey Jude",
		Album:      "Hey Jude",
		ImageURL:   "https://i/b1",
		URL:        "https://open/t1",
		PreviewURL: "https://p/t1",
		Genres:     []string{"british invasion", "rock", "merseybeat"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SearchTrack() = %+v; want %+v", got, want)
	}
}

func TestSearchTrackNotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"tracks":{"items":[]}}`)
	}))
	_, err := c.SearchTrack(context.Background(), "Nope", "Nobody")
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("SearchTrack() err = %v; want %v", err, catalog.ErrNotFound)
	}
	if catalog.IsTransient(err) {
		t.Fatalf("SearchTrack() err = %v; want non transient", err)
	}
}

func TestSearchArtist(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("type"); got != "artist" {
			t.Errorf("type = %q; want artist", got)
		}
		fmt.Fprint(w, `{"artists":{"items":[{"id":"a1","name":"BTS","genres":["k-pop"]}]}}`)
	}))
	got, err := c.SearchArtist(context.Background(), "BTS")
	if err != nil {
		t.Fatalf("SearchArtist() err = %v; want nil", err)
	}
	if !reflect.DeepEqual(got, []string{"k-pop"}) {
		t.Fatalf("SearchArtist() = %v; want [k-pop]", got)
	}
}

func TestRetryTransient(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"artists":{"items":[{"id":"a1","name":"Muse","genres":["rock"]}]}}`)
	}))
	got, err := c.SearchArtist(context.Background(), "Muse")
	if err != nil {
		t.Fatalf("SearchArtist() err = %v; want nil", err)
	}
	if !reflect.DeepEqual(got, []string{"rock"}) {
		t.Fatalf("SearchArtist() = %v; want [rock]", got)
	}
	if calls != 3 {
		t.Fatalf("calls = %d; want 3", calls)
	}
}

func TestRetryExhausted(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	_, err := c.SearchArtist(context.Background(), "Muse")
	if !catalog.IsTransient(err) {
		t.Fatalf("SearchArtist() err = %v; want transient", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d; want 3", calls)
	}
}

func TestNoRetryBadRequest(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	_, err := c.SearchArtist(context.Background(), "Muse")
	if got := catalog.Classify(err); got != catalog.Failed {
		t.Fatalf("Classify(SearchArtist() err) = %v; want %v", got, catalog.Failed)
	}
	if calls != 1 {
		t.Fatalf("calls = %d; want 1", calls)
	}
}

func TestAuthRejected(t *testing.T) {
	var tokenCalls, apiCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&tokenCalls, 1)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"invalid_client"}`)
	})
	mux.HandleFunc("/v1/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&apiCalls, 1)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	c := New(&Config{
		ClientID:     "id",
		ClientSecret: "wrong",
		BaseURL:      srv.URL + "/v1",
		AuthURL:      srv.URL + "/token",
		RetryWait:    time.Millisecond,
	})

	err := c.Auth(context.Background())
	if !errors.Is(err, catalog.ErrUnauthorized) {
		t.Fatalf("Auth() err = %v; want %v", err, catalog.ErrUnauthorized)
	}
	_, err = c.SearchTrack(context.Background(), "Creep", "Radiohead")
	if got := catalog.Classify(err); got != catalog.Unauthorized {
		t.Fatalf("Classify(SearchTrack() err) = %v; want %v", got, catalog.Unauthorized)
	}
	if got, api := atomic.LoadInt32(&tokenCalls), atomic.LoadInt32(&apiCalls); got != 2 || api != 0 {
		t.Fatalf("token, api calls = %d, %d; want 2, 0", got, api)
	}
}
