package migrate

import (
	"context"
	"fmt"
	"log"

	"github.com/igolaizola/llmtunes"
	"github.com/igolaizola/llmtunes/pkg/cache"
)

type Config struct {
	Debug  bool
	DBType string
	DBConn string

	// TrackCache and GenreCache are JSON cache files whose entries are
	// imported into the database after migrating.
	TrackCache string
	GenreCache string
}

// Run launches the migration process.
func Run(ctx context.Context, cfg *Config) error {
	log.Println("migrate: process started")
	defer log.Println("migrate: process ended")

	store, err := llmtunes.OpenStore(ctx, cfg.DBType, cfg.DBConn, cfg.Debug)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: couldn't migrate: %w", err)
	}

	opts := cache.Options{Debug: cfg.Debug}
	if cfg.TrackCache != "" {
		src, err := cache.OpenFile(cfg.TrackCache)
		if err != nil {
			return fmt.Errorf("migrate: couldn't open track cache: %w", err)
		}
		n, err := cache.NewTracks(cache.NewDB(store, cache.TracksBucket), nil, opts).Import(ctx, src)
		if err != nil {
			return fmt.Errorf("migrate: couldn't import track cache: %w", err)
		}
		log.Printf("migrate: imported %d tracks from %s\n", n, cfg.TrackCache)
	}
	if cfg.GenreCache != "" {
		src, err := cache.OpenFile(cfg.GenreCache)
		if err != nil {
			return fmt.Errorf("migrate: couldn't open genre cache: %w", err)
		}
		n, err := cache.NewGenres(cache.NewDB(store, cache.GenresBucket), nil, opts).Import(ctx, src)
		if err != nil {
			return fmt.Errorf("migrate: couldn't import genre cache: %w", err)
		}
		log.Printf("migrate: imported %d artists from %s\n", n, cfg.GenreCache)
	}
	return nil
}
