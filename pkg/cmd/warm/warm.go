package warm

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/igolaizola/llmtunes"
	"github.com/igolaizola/llmtunes/pkg/cache"
)

type Config struct {
	llmtunes.Config

	// Temperature also warms the track cache with the temperature study
	// selections.
	Temperature bool
	SkipTracks  bool
	SkipGenres  bool
}

// Run fills the caches with every song and artist of the input runs.
func Run(ctx context.Context, cfg *Config) error {
	log.Println("warm: process started")
	defer log.Println("warm: process ended")

	debug := func(format string, args ...interface{}) {
		if !cfg.Debug {
			return
		}
		format += "\n"
		log.Printf(format, args...)
	}

	s, err := llmtunes.Open(ctx, &cfg.Config)
	if err != nil {
		return fmt.Errorf("warm: %w", err)
	}
	defer s.Close()
	if s.Catalog == nil {
		return errors.New("warm: spotify credentials are required")
	}

	sels, temps, err := llmtunes.Selections(&cfg.Config, cfg.Temperature)
	if err != nil {
		return fmt.Errorf("warm: couldn't load selections: %w", err)
	}
	debug("warm: loaded %d selections and %d temperature selections", len(sels), len(temps))

	tracks, genres := s.Tracks, s.Genres
	if cfg.SkipTracks {
		tracks = nil
	}
	if cfg.SkipGenres {
		genres = nil
	}
	if err := cache.Warm(ctx, tracks, genres, sels); err != nil {
		return fmt.Errorf("warm: %w", err)
	}
	if len(temps) > 0 && tracks != nil {
		// The temperature study reads genres from the track cache only.
		if err := cache.Warm(ctx, tracks, nil, temps); err != nil {
			return fmt.Errorf("warm: %w", err)
		}
	}
	return nil
}
