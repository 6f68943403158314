// Package export flattens song selections into a CSV file.
package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/igolaizola/llmtunes/pkg/playlist"
)

// Unknown is written when an artist has no genre tags.
const Unknown = "Unknown"

// Row is one selection in the export.
type Row struct {
	Model     string `csv:"model"`
	Timestamp string `csv:"timestamp"`
	Song      string `csv:"song"`
	Artist    string `csv:"artist"`
	Genres    string `csv:"genres"`
}

// Rows builds one row per selection, sorted by model and timestamp. The
// lookup returns the genre tags of an artist.
func Rows(sels []playlist.Selection, lookup func(artist string) []string) []*Row {
	rows := make([]*Row, 0, len(sels))
	for _, s := range sels {
		genres := Unknown
		if tags := lookup(s.Artist); len(tags) > 0 {
			genres = strings.Join(tags, "; ")
		}
		rows = append(rows, &Row{
			Model:     s.Model,
			Timestamp: s.Timestamp,
			Song:      s.Song,
			Artist:    s.Artist,
			Genres:    genres,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Model != rows[j].Model {
			return rows[i].Model < rows[j].Model
		}
		return rows[i].Timestamp < rows[j].Timestamp
	})
	return rows
}

// CSV writes the rows with a header line.
func CSV(w io.Writer, rows []*Row) error {
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("export: couldn't marshal csv: %w", err)
	}
	return nil
}

// WriteFile writes the rows to path creating its directory.
func WriteFile(path string, rows []*Row) error {
	var buf bytes.Buffer
	if err := CSV(&buf, rows); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("export: couldn't create directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("export: couldn't write %s: %w", path, err)
	}
	return nil
}
