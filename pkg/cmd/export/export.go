package export

import (
	"context"
	"fmt"
	"log"

	"github.com/igolaizola/llmtunes"
	"github.com/igolaizola/llmtunes/pkg/export"
)

const DefaultOutput = "data_exports/llm_music_choices.csv"

type Config struct {
	llmtunes.Config

	Output string
}

// Run writes one CSV row per selection.
func Run(ctx context.Context, cfg *Config) error {
	log.Println("export: process started")
	defer log.Println("export: process ended")

	s, err := llmtunes.Open(ctx, &cfg.Config)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer s.Close()

	sels, _, err := llmtunes.Selections(&cfg.Config, false)
	if err != nil {
		return fmt.Errorf("export: couldn't load selections: %w", err)
	}
	output := cfg.Output
	if output == "" {
		output = DefaultOutput
	}
	rows := export.Rows(sels, s.ArtistGenres(ctx))
	if err := export.WriteFile(output, rows); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	s.LogStats(cfg.Debug)
	log.Printf("export: wrote %d rows to %s\n", len(rows), output)
	return nil
}
