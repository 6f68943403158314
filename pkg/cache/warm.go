package cache

import (
	"context"
	"log"

	"github.com/igolaizola/llmtunes/pkg/playlist"
)

// Warm looks up every distinct song and artist of the selections so both
// caches contain an entry for each of them. Either cache may be nil.
func Warm(ctx context.Context, tracks *Tracks, genres *Genres, sels []playlist.Selection) error {
	songs := map[string]struct{}{}
	artists := map[string]struct{}{}
	var n int
	for _, s := range sels {
		if err := ctx.Err(); err != nil {
			return err
		}
		id := s.SongID()
		_, seenSong := songs[id]
		_, seenArtist := artists[s.Artist]
		if seenSong && seenArtist {
			continue
		}
		if !seenSong {
			songs[id] = struct{}{}
			if tracks != nil {
				_ = tracks.Lookup(ctx, s.Song, s.Artist)
			}
		}
		if !seenArtist {
			artists[s.Artist] = struct{}{}
			if genres != nil {
				_ = genres.Lookup(ctx, s.Artist)
			}
		}
		n++
		if n%100 == 0 {
			log.Printf("cache: warmed %d songs, %d artists\n", len(songs), len(artists))
		}
	}
	if tracks != nil {
		log.Printf("cache: tracks %s\n", tracks.Stats())
	}
	if genres != nil {
		log.Printf("cache: genres %s\n", genres.Stats())
	}
	return ctx.Err()
}
