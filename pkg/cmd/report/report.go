package report

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/igolaizola/llmtunes"
	"github.com/igolaizola/llmtunes/pkg/cmd/chart"
	statscmd "github.com/igolaizola/llmtunes/pkg/cmd/stats"
	"github.com/igolaizola/llmtunes/pkg/export"
	"github.com/igolaizola/llmtunes/pkg/stats"
)

const (
	DefaultOutput = "report"
	CSVFile       = "llm_music_choices.csv"
	SummaryFile   = "summary.yaml"
)

type Config struct {
	llmtunes.Config

	Output      string
	Temperature bool
}

// Run builds the full report of the input runs.
func Run(ctx context.Context, cfg *Config) error {
	log.Println("report: process started")
	defer log.Println("report: process ended")

	files, err := Generate(ctx, cfg)
	if err != nil {
		return err
	}
	for _, f := range files {
		log.Printf("report: wrote %s\n", f)
	}
	return nil
}

// Generate writes the CSV export, the YAML summary and the charts into the
// output directory and returns the written paths.
func Generate(ctx context.Context, cfg *Config) ([]string, error) {
	s, err := llmtunes.Open(ctx, &cfg.Config)
	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	defer s.Close()

	sels, temps, err := llmtunes.Selections(&cfg.Config, cfg.Temperature)
	if err != nil {
		return nil, fmt.Errorf("report: couldn't load selections: %w", err)
	}
	artistGenres := s.ArtistGenres(ctx)
	summary := stats.NewSummary(sels, temps, stats.Lookups{
		ArtistGenres: artistGenres,
		TrackGenres:  s.TrackGenres(ctx),
		TrackInfo:    s.TrackInfo(ctx),
	})
	s.LogStats(cfg.Debug)

	dir := cfg.Output
	if dir == "" {
		dir = DefaultOutput
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("report: couldn't create output dir: %w", err)
	}

	var files []string
	path := filepath.Join(dir, CSVFile)
	if err := export.WriteFile(path, export.Rows(sels, artistGenres)); err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	files = append(files, path)

	path = filepath.Join(dir, SummaryFile)
	if err := statscmd.WriteYAML(path, summary); err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	files = append(files, path)

	charts, err := chart.Render(dir, summary)
	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	return append(files, charts...), nil
}
