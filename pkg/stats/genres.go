package stats

import (
	"sort"

	"github.com/igolaizola/llmtunes/pkg/genre"
	"github.com/igolaizola/llmtunes/pkg/playlist"
)

const (
	TopGenres    = 10
	TopRawGenres = 5
)

// GenreRow is one genre tag of one selection.
type GenreRow struct {
	Model      string
	Song       string
	Artist     string
	Genre      string
	Normalized string
}

// GenreRows expands every selection into one row per genre tag of its
// artist. Selections whose artist has no tags produce no rows.
func GenreRows(sels []playlist.Selection, lookup func(artist string) []string) []GenreRow {
	var rows []GenreRow
	for _, s := range sels {
		for _, g := range lookup(s.Artist) {
			rows = append(rows, GenreRow{
				Model:      s.Model,
				Song:       s.Song,
				Artist:     s.Artist,
				Genre:      g,
				Normalized: genre.Normalize(g),
			})
		}
	}
	return rows
}

// GenreShare is the weight of a genre within a group of genre rows.
type GenreShare struct {
	Genre      string  `yaml:"genre"`
	Count      int     `yaml:"count"`
	Percentage float64 `yaml:"percentage"`
}

// ModelGenres is the genre distribution of one model. Total is the number of
// genre rows of the model and the base of every percentage.
type ModelGenres struct {
	Model  string       `yaml:"model"`
	Total  int          `yaml:"total"`
	Genres []GenreShare `yaml:"genres"`
}

// Distribution holds the share of the top genres for each model.
type Distribution struct {
	Genres []string      `yaml:"genres"`
	Models []ModelGenres `yaml:"models"`
}

// GenreDistribution picks the k most frequent normalized genres overall and
// computes, for every model, the share of each of them over all the genre
// rows of that model.
func GenreDistribution(rows []GenreRow, k int) Distribution {
	overall := NewCounter()
	perModel := map[string]*Counter{}
	for _, r := range rows {
		overall.Add(r.Normalized)
		c, ok := perModel[r.Model]
		if !ok {
			c = NewCounter()
			perModel[r.Model] = c
		}
		c.Add(r.Normalized)
	}
	var d Distribution
	for _, c := range overall.Top(k) {
		d.Genres = append(d.Genres, c.Key)
	}
	for _, m := range sortedKeys(perModel) {
		c := perModel[m]
		mg := ModelGenres{Model: m, Total: c.Total()}
		for _, g := range d.Genres {
			n := c.Get(g)
			mg.Genres = append(mg.Genres, GenreShare{
				Genre:      g,
				Count:      n,
				Percentage: percent(n, c.Total()),
			})
		}
		d.Models = append(d.Models, mg)
	}
	return d
}

// Matrix is a model by genre count matrix.
type Matrix struct {
	Models []string `yaml:"models"`
	Genres []string `yaml:"genres"`
	Counts [][]int  `yaml:"counts"`
}

// GenreMatrix counts normalized genres per model. If genres is empty every
// normalized genre is used, most frequent first.
func GenreMatrix(rows []GenreRow, genres []string) Matrix {
	if len(genres) == 0 {
		overall := NewCounter()
		for _, r := range rows {
			overall.Add(r.Normalized)
		}
		for _, c := range overall.Top(0) {
			genres = append(genres, c.Key)
		}
	}
	col := make(map[string]int, len(genres))
	for i, g := range genres {
		col[g] = i
	}
	models := map[string][]int{}
	for _, r := range rows {
		counts, ok := models[r.Model]
		if !ok {
			counts = make([]int, len(genres))
			models[r.Model] = counts
		}
		if j, ok := col[r.Normalized]; ok {
			counts[j]++
		}
	}
	m := Matrix{Genres: genres, Models: sortedKeys(models)}
	for _, model := range m.Models {
		m.Counts = append(m.Counts, models[model])
	}
	return m
}

// RowShares returns each row as percentages of the row total.
func (m Matrix) RowShares() [][]float64 {
	shares := make([][]float64, len(m.Counts))
	for i, row := range m.Counts {
		var total int
		for _, n := range row {
			total += n
		}
		shares[i] = make([]float64, len(row))
		for j, n := range row {
			shares[i][j] = percent(n, total)
		}
	}
	return shares
}

// ModelCount is a per model number.
type ModelCount struct {
	Model string `yaml:"model"`
	Count int    `yaml:"count"`
}

// GenreSummary describes the raw genre tags before normalization.
type GenreSummary struct {
	DistinctGenres int          `yaml:"distinct_genres"`
	Models         []ModelCount `yaml:"models"`
	TopGenres      []Count      `yaml:"top_genres"`
}

func Summarize(rows []GenreRow) GenreSummary {
	overall := NewCounter()
	perModel := map[string]map[string]struct{}{}
	for _, r := range rows {
		overall.Add(r.Genre)
		set, ok := perModel[r.Model]
		if !ok {
			set = map[string]struct{}{}
			perModel[r.Model] = set
		}
		set[r.Genre] = struct{}{}
	}
	s := GenreSummary{
		DistinctGenres: overall.Len(),
		TopGenres:      overall.Top(TopRawGenres),
	}
	for _, m := range sortedKeys(perModel) {
		s.Models = append(s.Models, ModelCount{Model: m, Count: len(perModel[m])})
	}
	return s
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
