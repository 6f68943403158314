package stats

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/igolaizola/llmtunes"
	"github.com/igolaizola/llmtunes/pkg/stats"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

type Config struct {
	llmtunes.Config

	// Output is an optional YAML file where the summary is written.
	Output string
	Genres bool
}

// Run prints the per model statistics of the input runs.
func Run(ctx context.Context, cfg *Config) error {
	log.Println("stats: process started")
	defer log.Println("stats: process ended")

	s, err := llmtunes.Open(ctx, &cfg.Config)
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	defer s.Close()

	sels, _, err := llmtunes.Selections(&cfg.Config, false)
	if err != nil {
		return fmt.Errorf("stats: couldn't load selections: %w", err)
	}
	var lookups stats.Lookups
	if cfg.Genres {
		lookups.ArtistGenres = s.ArtistGenres(ctx)
	}
	summary := stats.NewSummary(sels, nil, lookups)
	s.LogStats(cfg.Debug)

	if err := Print(os.Stdout, summary); err != nil {
		return fmt.Errorf("stats: couldn't print: %w", err)
	}
	if cfg.Output != "" {
		if err := WriteYAML(cfg.Output, summary); err != nil {
			return fmt.Errorf("stats: %w", err)
		}
	}
	return nil
}

// Print writes the summary as tables.
func Print(w io.Writer, s *stats.Summary) error {
	var rows [][]string
	for _, m := range s.Models {
		rows = append(rows, []string{
			m.Model,
			strconv.Itoa(m.UniqueSongs),
			strconv.Itoa(m.TotalSongs),
			strconv.FormatFloat(m.DiversityRatio, 'f', 3, 64),
			fmt.Sprintf("%s (%d)", m.MostCommonSong, m.MostCommonCount),
		})
	}
	if err := table(w, []string{"Model", "Unique", "Total", "Diversity", "Most common"}, rows); err != nil {
		return err
	}
	if err := table(w, []string{"Song", "Count"}, counts(s.TopSongs)); err != nil {
		return err
	}
	if err := table(w, []string{"Artist", "Count"}, counts(s.TopArtists)); err != nil {
		return err
	}
	if len(s.Distribution.Models) == 0 {
		return nil
	}

	fmt.Fprintf(w, "%d distinct genres\n", s.Genres.DistinctGenres)
	rows = nil
	for _, m := range s.Distribution.Models {
		for _, g := range m.Genres {
			rows = append(rows, []string{
				m.Model,
				g.Genre,
				strconv.Itoa(g.Count),
				strconv.FormatFloat(g.Percentage, 'f', 1, 64),
			})
		}
	}
	return table(w, []string{"Model", "Genre", "Count", "%"}, rows)
}

// PrintTemperature writes the temperature study stats as tables.
func PrintTemperature(w io.Writer, s *stats.Summary) error {
	var rows [][]string
	for _, t := range s.Temperature {
		rows = append(rows, []string{
			t.Model,
			t.Label(),
			strconv.Itoa(t.UniqueSongs),
			strconv.Itoa(t.TotalSongs),
			strconv.Itoa(t.UniqueGenres),
			strconv.FormatFloat(t.RepetitionRate, 'f', 1, 64),
		})
	}
	if err := table(w, []string{"Model", "Temperature", "Unique", "Total", "Genres", "Repetition %"}, rows); err != nil {
		return err
	}
	rows = nil
	for _, c := range s.Comparison {
		rows = append(rows, []string{
			c.Model,
			c.Low.Label() + " / " + c.High.Label(),
			fmt.Sprintf("%d / %d", c.Low.UniqueSongs, c.High.UniqueSongs),
			fmt.Sprintf("%.1f / %.1f", c.Low.RepetitionRate, c.High.RepetitionRate),
		})
	}
	return table(w, []string{"Model", "Temperature", "Unique", "Repetition %"}, rows)
}

// WriteYAML writes the summary to path.
func WriteYAML(path string, s *stats.Summary) error {
	b, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("couldn't marshal summary: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("couldn't create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("couldn't write summary: %w", err)
	}
	return nil
}

func counts(cs []stats.Count) [][]string {
	rows := make([][]string, 0, len(cs))
	for _, c := range cs {
		rows = append(rows, []string{c.Key, strconv.Itoa(c.Count)})
	}
	return rows
}

func table(w io.Writer, header []string, rows [][]string) error {
	t := tablewriter.NewWriter(w)
	t.Header(header)
	for _, r := range rows {
		if err := t.Append(r); err != nil {
			return err
		}
	}
	return t.Render()
}
