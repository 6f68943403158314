package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/igolaizola/llmtunes/pkg/storage"
)

// ErrMiss is returned by a backend when the key has no entry.
var ErrMiss = errors.New("cache: miss")

// Backend persists raw JSON values by key.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Keys(ctx context.Context) ([]string, error)
}

// File keeps every entry in a single JSON object on disk. Each write rewrites
// the whole file through a temporary file renamed over the original.
type File struct {
	path    string
	lck     sync.Mutex
	entries map[string]json.RawMessage
}

var _ Backend = (*File)(nil)

// OpenFile loads the cache file at path. A missing file is an empty cache.
func OpenFile(path string) (*File, error) {
	f := &File{
		path:    path,
		entries: map[string]json.RawMessage{},
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache: couldn't read %s: %w", path, err)
	}
	if len(b) == 0 {
		return f, nil
	}
	if err := json.Unmarshal(b, &f.entries); err != nil {
		return nil, fmt.Errorf("cache: corrupt cache file %s: %w", path, err)
	}
	if f.entries == nil {
		f.entries = map[string]json.RawMessage{}
	}
	return f, nil
}

func (f *File) Path() string {
	return f.path
}

func (f *File) Get(_ context.Context, key string) ([]byte, error) {
	f.lck.Lock()
	defer f.lck.Unlock()
	v, ok := f.entries[key]
	if !ok {
		return nil, ErrMiss
	}
	return v, nil
}

func (f *File) Set(_ context.Context, key string, value []byte) error {
	f.lck.Lock()
	defer f.lck.Unlock()
	prev, existed := f.entries[key]
	f.entries[key] = json.RawMessage(value)
	if err := f.flush(); err != nil {
		if existed {
			f.entries[key] = prev
		} else {
			delete(f.entries, key)
		}
		return err
	}
	return nil
}

func (f *File) Keys(_ context.Context) ([]string, error) {
	f.lck.Lock()
	defer f.lck.Unlock()
	keys := make([]string, 0, len(f.entries))
	for k := range f.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *File) flush() error {
	// Map keys are sorted by the encoder so output is reproducible.
	b, err := json.MarshalIndent(f.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("cache: couldn't marshal %s: %w", f.path, err)
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cache: couldn't create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("cache: couldn't create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("cache: couldn't write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Chmod(0644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("cache: couldn't chmod %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cache: couldn't close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("cache: couldn't replace %s: %w", f.path, err)
	}
	return nil
}

// DB keeps entries as rows of the cache_entries table, one bucket per cache.
type DB struct {
	store  *storage.Store
	bucket string
}

var _ Backend = (*DB)(nil)

func NewDB(store *storage.Store, bucket string) *DB {
	return &DB{store: store, bucket: bucket}
}

func (d *DB) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := d.store.GetCacheEntry(ctx, d.bucket, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	return []byte(v), nil
}

func (d *DB) Set(ctx context.Context, key string, value []byte) error {
	return d.store.SetCacheEntry(ctx, d.bucket, key, string(value))
}

func (d *DB) Keys(ctx context.Context) ([]string, error) {
	vs, err := d.store.ListCacheEntries(ctx, d.bucket)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(vs))
	for _, v := range vs {
		keys = append(keys, v.Key)
	}
	return keys, nil
}
