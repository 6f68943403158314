package stats

import (
	"sort"

	"github.com/igolaizola/llmtunes/pkg/playlist"
)

const (
	TopSongs   = 10
	TopArtists = 10
)

// ModelStat summarizes the selections of one model.
type ModelStat struct {
	Model           string  `yaml:"model"`
	UniqueSongs     int     `yaml:"unique_songs"`
	TotalSongs      int     `yaml:"total_songs"`
	DiversityRatio  float64 `yaml:"diversity_ratio"`
	MostCommonSong  string  `yaml:"most_common_song"`
	MostCommonCount int     `yaml:"most_common_count"`
	TopSongs        []Count `yaml:"top_songs"`
	TopArtists      []Count `yaml:"top_artists"`
}

// SongFrequencies counts song ids over every model.
func SongFrequencies(sels []playlist.Selection) *Counter {
	c := NewCounter()
	for _, s := range sels {
		c.Add(s.SongID())
	}
	return c
}

// ArtistFrequencies counts artists over every model.
func ArtistFrequencies(sels []playlist.Selection) *Counter {
	c := NewCounter()
	for _, s := range sels {
		c.Add(s.Artist)
	}
	return c
}

// ByModel groups the selections by model keeping their relative order.
func ByModel(sels []playlist.Selection) (models []string, groups map[string][]playlist.Selection) {
	groups = map[string][]playlist.Selection{}
	for _, s := range sels {
		if _, ok := groups[s.Model]; !ok {
			models = append(models, s.Model)
		}
		groups[s.Model] = append(groups[s.Model], s)
	}
	sort.Strings(models)
	return models, groups
}

// ModelStats returns the statistics of every model sorted by model name.
func ModelStats(sels []playlist.Selection) []ModelStat {
	models, groups := ByModel(sels)
	stats := make([]ModelStat, 0, len(models))
	for _, m := range models {
		stats = append(stats, modelStat(m, groups[m]))
	}
	return stats
}

func modelStat(model string, sels []playlist.Selection) ModelStat {
	songs := SongFrequencies(sels)
	artists := ArtistFrequencies(sels)
	st := ModelStat{
		Model:          model,
		UniqueSongs:    songs.Len(),
		TotalSongs:     songs.Total(),
		DiversityRatio: ratio(songs.Len(), songs.Total()),
		MostCommonSong: "N/A",
		TopSongs:       songs.Top(TopSongs),
		TopArtists:     artists.Top(TopArtists),
	}
	if len(st.TopSongs) > 0 {
		st.MostCommonSong = st.TopSongs[0].Key
		st.MostCommonCount = st.TopSongs[0].Count
	}
	return st
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

func percent(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) * 100 / float64(d)
}
