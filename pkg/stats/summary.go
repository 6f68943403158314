package stats

import (
	"github.com/igolaizola/llmtunes/pkg/cache"
	"github.com/igolaizola/llmtunes/pkg/playlist"
)

const TopOverall = 20

// Summary gathers every aggregate of a batch.
type Summary struct {
	Selections   int               `yaml:"selections"`
	Models       []ModelStat       `yaml:"models"`
	TopSongs     []Count           `yaml:"top_songs"`
	TopArtists   []Count           `yaml:"top_artists"`
	Genres       GenreSummary      `yaml:"genres"`
	Distribution Distribution      `yaml:"genre_distribution"`
	Matrix       *Matrix           `yaml:"genre_matrix,omitempty"`
	TopTracks    []ModelTracks     `yaml:"top_tracks,omitempty"`
	Temperature  []TemperatureStat `yaml:"temperature,omitempty"`
	Comparison   []Comparison      `yaml:"temperature_comparison,omitempty"`
}

// Lookups are the cache reads needed to build a summary. Any of them may be
// nil to skip the sections depending on it.
type Lookups struct {
	ArtistGenres func(artist string) []string
	TrackGenres  func(song, artist string) []string
	TrackInfo    func(song, artist string) cache.TrackInfo
}

// NewSummary aggregates the model runs and the temperature study runs.
func NewSummary(sels, temps []playlist.Selection, l Lookups) *Summary {
	s := &Summary{
		Selections: len(sels),
		Models:     ModelStats(sels),
		TopSongs:   SongFrequencies(sels).Top(TopOverall),
		TopArtists: ArtistFrequencies(sels).Top(TopOverall),
	}
	if l.ArtistGenres != nil {
		rows := GenreRows(sels, l.ArtistGenres)
		s.Genres = Summarize(rows)
		s.Distribution = GenreDistribution(rows, TopGenres)
		m := GenreMatrix(rows, s.Distribution.Genres)
		s.Matrix = &m
	}
	if l.TrackInfo != nil {
		s.TopTracks = TopTracks(sels, TopSongs, l.TrackInfo)
	}
	if len(temps) > 0 && l.TrackGenres != nil {
		s.Temperature = TemperatureStats(temps, l.TrackGenres)
		s.Comparison = TemperatureComparison(s.Temperature)
	}
	return s
}
