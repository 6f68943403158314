package stats

import (
	"github.com/igolaizola/llmtunes/pkg/cache"
	"github.com/igolaizola/llmtunes/pkg/playlist"
)

// TopTrack is a frequently selected song with its catalog metadata.
type TopTrack struct {
	Song   string          `yaml:"song"`
	Artist string          `yaml:"artist"`
	Count  int             `yaml:"count"`
	Info   cache.TrackInfo `yaml:"info"`
}

// ModelTracks lists the top tracks of a model.
type ModelTracks struct {
	Model  string     `yaml:"model"`
	Tracks []TopTrack `yaml:"tracks"`
}

// TopTracks returns the k most selected songs of every model enriched with
// the track lookup.
func TopTracks(sels []playlist.Selection, k int, lookup func(song, artist string) cache.TrackInfo) []ModelTracks {
	models, groups := ByModel(sels)
	out := make([]ModelTracks, 0, len(models))
	for _, m := range models {
		first := map[string]playlist.Selection{}
		songs := NewCounter()
		for _, s := range groups[m] {
			id := s.SongID()
			if _, ok := first[id]; !ok {
				first[id] = s
			}
			songs.Add(id)
		}
		mt := ModelTracks{Model: m}
		for _, c := range songs.Top(k) {
			s := first[c.Key]
			mt.Tracks = append(mt.Tracks, TopTrack{
				Song:   s.Song,
				Artist: s.Artist,
				Count:  c.Count,
				Info:   lookup(s.Song, s.Artist),
			})
		}
		out = append(out, mt)
	}
	return out
}
