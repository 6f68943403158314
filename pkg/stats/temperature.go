package stats

import (
	"sort"
	"strconv"

	"github.com/igolaizola/llmtunes/pkg/genre"
	"github.com/igolaizola/llmtunes/pkg/playlist"
)

// TemperatureStat summarizes the selections of one model at one sampling
// temperature. A nil temperature groups selections without one.
type TemperatureStat struct {
	Model          string       `yaml:"model"`
	Temperature    *float64     `yaml:"temperature"`
	TotalSongs     int          `yaml:"total_songs"`
	UniqueSongs    int          `yaml:"unique_songs"`
	UniqueGenres   int          `yaml:"unique_genres"`
	RepetitionRate float64      `yaml:"repetition_rate"`
	TopSongs       []Count      `yaml:"top_songs"`
	TopGenres      []GenreShare `yaml:"top_genres"`
}

// Label returns the temperature as shown in reports.
func (t TemperatureStat) Label() string {
	if t.Temperature == nil {
		return "default"
	}
	return strconv.FormatFloat(*t.Temperature, 'g', -1, 64)
}

type bucket struct {
	model string
	temp  *float64
	sels  []playlist.Selection
}

// TemperatureStats groups the selections by model and temperature. The
// lookup returns the genre tags of a song.
func TemperatureStats(sels []playlist.Selection, lookup func(song, artist string) []string) []TemperatureStat {
	var buckets []*bucket
	index := map[string]*bucket{}
	for _, s := range sels {
		k := s.Model + "\x00" + tempKey(s.Temperature)
		b, ok := index[k]
		if !ok {
			b = &bucket{model: s.Model, temp: s.Temperature}
			index[k] = b
			buckets = append(buckets, b)
		}
		b.sels = append(b.sels, s)
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		a, b := buckets[i], buckets[j]
		if a.model != b.model {
			return a.model < b.model
		}
		return lessTemp(a.temp, b.temp)
	})
	stats := make([]TemperatureStat, 0, len(buckets))
	for _, b := range buckets {
		stats = append(stats, temperatureStat(b, lookup))
	}
	return stats
}

func temperatureStat(b *bucket, lookup func(song, artist string) []string) TemperatureStat {
	songs := NewCounter()
	raw := NewCounter()
	normalized := NewCounter()
	for _, s := range b.sels {
		songs.Add(s.SongID())
		for _, g := range lookup(s.Song, s.Artist) {
			raw.Add(g)
			normalized.Add(genre.Normalize(g))
		}
	}
	var repeated int
	for _, c := range songs.Top(0) {
		if c.Count > 1 {
			repeated++
		}
	}
	st := TemperatureStat{
		Model:          b.model,
		Temperature:    b.temp,
		TotalSongs:     songs.Total(),
		UniqueSongs:    songs.Len(),
		UniqueGenres:   raw.Len(),
		RepetitionRate: percent(repeated, songs.Len()),
		TopSongs:       songs.Top(TopSongs),
	}
	for _, c := range normalized.Top(TopGenres) {
		st.TopGenres = append(st.TopGenres, GenreShare{
			Genre:      c.Key,
			Count:      c.Count,
			Percentage: percent(c.Count, normalized.Total()),
		})
	}
	return st
}

// Comparison pairs the stats of a model at its lowest and highest sampling
// temperature.
type Comparison struct {
	Model string          `yaml:"model"`
	Low   TemperatureStat `yaml:"low"`
	High  TemperatureStat `yaml:"high"`
}

// TemperatureComparison picks, for each model, its lowest and highest
// temperature buckets. Buckets without temperature are ignored.
func TemperatureComparison(stats []TemperatureStat) []Comparison {
	var models []string
	low := map[string]TemperatureStat{}
	high := map[string]TemperatureStat{}
	for _, st := range stats {
		if st.Temperature == nil {
			continue
		}
		l, ok := low[st.Model]
		if !ok {
			models = append(models, st.Model)
			low[st.Model] = st
			high[st.Model] = st
			continue
		}
		if *st.Temperature < *l.Temperature {
			low[st.Model] = st
		}
		if *st.Temperature > *high[st.Model].Temperature {
			high[st.Model] = st
		}
	}
	sort.Strings(models)
	cs := make([]Comparison, 0, len(models))
	for _, m := range models {
		cs = append(cs, Comparison{Model: m, Low: low[m], High: high[m]})
	}
	return cs
}

func tempKey(t *float64) string {
	if t == nil {
		return ""
	}
	return strconv.FormatFloat(*t, 'g', -1, 64)
}

// lessTemp orders missing temperatures first.
func lessTemp(a, b *float64) bool {
	switch {
	case a == nil:
		return b != nil
	case b == nil:
		return false
	default:
		return *a < *b
	}
}
