package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/oklog/ulid/v2"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s, err := New("sqlite", filepath.Join(t.TempDir(), "test.db"), false)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Start(ctx); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.Migrate(ctx); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestNewUnknownType(t *testing.T) {
	if _, err := New("oracle", "", false); err == nil {
		t.Fatal("New(oracle) err = nil; want error")
	}
}

func TestMigrateTwice(t *testing.T) {
	s := newTestStore(t)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() err = %v; want nil", err)
	}
}

func TestCacheEntry(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.GetCacheEntry(ctx, "tracks", "a - b"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetCacheEntry() err = %v; want %v", err, ErrNotFound)
	}
	if err := s.SetCacheEntry(ctx, "tracks", "a - b", `{"genre":"Unknown"}`); err != nil {
		t.Fatal(err)
	}
	if err := s.SetCacheEntry(ctx, "tracks", "a - b", `{"genre":"rock"}`); err != nil {
		t.Fatal(err)
	}
	if err := s.SetCacheEntry(ctx, "genres", "a - b", `[]`); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetCacheEntry(ctx, "tracks", "a - b")
	if err != nil {
		t.Fatal(err)
	}
	if got != `{"genre":"rock"}` {
		t.Fatalf("GetCacheEntry() = %s; want %s", got, `{"genre":"rock"}`)
	}
	n, err := s.CountCacheEntries(ctx, "tracks")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("CountCacheEntries() = %d; want 1", n)
	}
	if err := s.SetCacheEntry(ctx, "tracks", "0 - z", `{}`); err != nil {
		t.Fatal(err)
	}
	vs, err := s.ListCacheEntries(ctx, "tracks")
	if err != nil {
		t.Fatal(err)
	}
	if len(vs) != 2 || vs[0].Key != "0 - z" || vs[1].Key != "a - b" {
		t.Fatalf("ListCacheEntries() = %v; want keys [0 - z, a - b]", vs)
	}
}

func TestFileRef(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	if _, err := s.GetFileRef(ctx, "report.csv"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetFileRef() err = %v; want %v", err, ErrNotFound)
	}
	if err := s.SetFileRef(ctx, "report.csv", "1"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetFileRef(ctx, "report.csv", "2"); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetFileRef(ctx, "report.csv")
	if err != nil {
		t.Fatal(err)
	}
	if got != "2" {
		t.Fatalf("GetFileRef() = %q; want %q", got, "2")
	}
	if err := s.DeleteFile(ctx, "report.csv"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetFileRef(ctx, "report.csv"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetFileRef() err = %v; want %v", err, ErrNotFound)
	}
}

func TestListArtifacts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	for _, name := range []string{"export.csv", "top_songs.png", "summary.yaml"} {
		if err := s.SetArtifact(ctx, &Artifact{ID: ulid.Make().String(), Name: name, Backend: "local"}); err != nil {
			t.Fatal(err)
		}
	}
	vs, err := s.ListArtifacts(ctx, 1, 10, "name asc", Where("name LIKE ?", "%.png"))
	if err != nil {
		t.Fatal(err)
	}
	if len(vs) != 1 || vs[0].Name != "top_songs.png" {
		t.Fatalf("ListArtifacts() = %v; want [top_songs.png]", vs)
	}
	got, err := s.GetArtifact(ctx, vs[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "top_songs.png" {
		t.Fatalf("GetArtifact() name = %q; want top_songs.png", got.Name)
	}
}
