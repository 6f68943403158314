package chart

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/igolaizola/llmtunes"
	"github.com/igolaizola/llmtunes/pkg/chart"
	"github.com/igolaizola/llmtunes/pkg/stats"
)

const DefaultOutput = "charts"

type Config struct {
	llmtunes.Config

	Output      string
	Temperature bool
}

// Run renders the charts of the input runs as PNG files.
func Run(ctx context.Context, cfg *Config) error {
	log.Println("chart: process started")
	defer log.Println("chart: process ended")

	s, err := llmtunes.Open(ctx, &cfg.Config)
	if err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	defer s.Close()

	sels, temps, err := llmtunes.Selections(&cfg.Config, cfg.Temperature)
	if err != nil {
		return fmt.Errorf("chart: couldn't load selections: %w", err)
	}
	summary := stats.NewSummary(sels, temps, stats.Lookups{
		ArtistGenres: s.ArtistGenres(ctx),
		TrackGenres:  s.TrackGenres(ctx),
	})
	s.LogStats(cfg.Debug)

	output := cfg.Output
	if output == "" {
		output = DefaultOutput
	}
	files, err := Render(output, summary)
	if err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	for _, f := range files {
		log.Printf("chart: wrote %s\n", f)
	}
	return nil
}

// Render writes every chart the summary has data for into dir and returns
// the written paths.
func Render(dir string, s *stats.Summary) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("couldn't create output dir: %w", err)
	}
	type job struct {
		name   string
		render func() ([]byte, error)
	}
	jobs := []job{
		{"top_songs.png", func() ([]byte, error) { return chart.TopSongs("Most selected songs", s.TopSongs) }},
		{"top_artists.png", func() ([]byte, error) { return chart.TopSongs("Most selected artists", s.TopArtists) }},
		{"model_diversity.png", func() ([]byte, error) { return chart.Diversity(s.Models) }},
		{"genre_distribution.png", func() ([]byte, error) { return chart.GenreDistribution(s.Distribution) }},
		{"genre_heatmap.png", func() ([]byte, error) {
			if s.Matrix == nil {
				return nil, chart.ErrNoData
			}
			return chart.GenreHeatmap(*s.Matrix)
		}},
		{"temperature_diversity.png", func() ([]byte, error) { return chart.TemperatureDiversity(s.Temperature) }},
	}
	var files []string
	for _, j := range jobs {
		b, err := j.render()
		if errors.Is(err, chart.ErrNoData) {
			continue
		}
		if err != nil {
			return files, fmt.Errorf("couldn't render %s: %w", j.name, err)
		}
		path := filepath.Join(dir, j.name)
		if err := os.WriteFile(path, b, 0644); err != nil {
			return files, fmt.Errorf("couldn't write %s: %w", path, err)
		}
		files = append(files, path)
	}
	return files, nil
}
