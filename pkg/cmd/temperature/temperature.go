package temperature

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/igolaizola/llmtunes"
	statscmd "github.com/igolaizola/llmtunes/pkg/cmd/stats"
	"github.com/igolaizola/llmtunes/pkg/playlist"
	"github.com/igolaizola/llmtunes/pkg/stats"
)

type Config struct {
	llmtunes.Config

	Output string
}

// Run prints how the selections of each model change with the sampling
// temperature.
func Run(ctx context.Context, cfg *Config) error {
	log.Println("temperature: process started")
	defer log.Println("temperature: process ended")

	s, err := llmtunes.Open(ctx, &cfg.Config)
	if err != nil {
		return fmt.Errorf("temperature: %w", err)
	}
	defer s.Close()

	temps, err := playlist.LoadTemperature(cfg.Input, cfg.Debug)
	if err != nil {
		return fmt.Errorf("temperature: couldn't load selections: %w", err)
	}
	if len(temps) == 0 {
		return errors.New("temperature: no temperature study runs found")
	}
	summary := &stats.Summary{}
	summary.Temperature = stats.TemperatureStats(temps, s.TrackGenres(ctx))
	summary.Comparison = stats.TemperatureComparison(summary.Temperature)
	s.LogStats(cfg.Debug)

	if err := statscmd.PrintTemperature(os.Stdout, summary); err != nil {
		return fmt.Errorf("temperature: couldn't print: %w", err)
	}
	if cfg.Output != "" {
		if err := statscmd.WriteYAML(cfg.Output, summary); err != nil {
			return fmt.Errorf("temperature: %w", err)
		}
	}
	return nil
}
