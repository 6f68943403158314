package spotify

import (
	"context"
	"fmt"
	"net/url"

	"github.com/igolaizola/llmtunes/pkg/catalog"
	"github.com/zmb3/spotify/v2"
)

var _ catalog.Catalog = (*Client)(nil)

// SearchTrack returns the first track matching the song and artist, with the
// genres of its first artist and its album merged in that order.
func (c *Client) SearchTrack(ctx context.Context, song, artist string) (*catalog.Track, error) {
	if err := c.Auth(ctx); err != nil {
		return nil, err
	}
	query := fmt.Sprintf("track:%s artist:%s", song, artist)
	var resp spotify.SearchResult
	u := "search?q=" + url.QueryEscape(query) + "&type=track&limit=1"
	if _, err := c.do(ctx, "GET", u, nil, &resp); err != nil {
		return nil, fmt.Errorf("spotify: couldn't search track: %w", err)
	}
	if resp.Tracks == nil || len(resp.Tracks.Tracks) == 0 {
		return nil, fmt.Errorf("spotify: track %q by %q: %w", song, artist, catalog.ErrNotFound)
	}
	t := resp.Tracks.Tracks[0]

	var genres []string
	if len(t.Artists) > 0 && t.Artists[0].ID != "" {
		a, err := c.Artist(ctx, string(t.Artists[0].ID))
		if err != nil {
			return nil, err
		}
		genres = merge(genres, a.Genres)
	}
	if t.Album.ID != "" {
		a, err := c.Album(ctx, string(t.Album.ID))
		if err != nil {
			return nil, err
		}
		genres = merge(genres, a.Genres)
	}

	track := &catalog.Track{
		ID:         string(t.ID),
		Name:       t.Name,
		Album:      t.Album.Name,
		URL:        t.ExternalURLs["spotify"],
		PreviewURL: t.PreviewURL,
		Genres:     genres,
	}
	if len(t.Album.Images) > 0 {
		track.ImageURL = t.Album.Images[0].URL
	}
	return track, nil
}

// SearchArtist returns the genres of the first artist matching the name.
func (c *Client) SearchArtist(ctx context.Context, artist string) ([]string, error) {
	if err := c.Auth(ctx); err != nil {
		return nil, err
	}
	var resp spotify.SearchResult
	u := "search?q=" + url.QueryEscape(artist) + "&type=artist&limit=1"
	if _, err := c.do(ctx, "GET", u, nil, &resp); err != nil {
		return nil, fmt.Errorf("spotify: couldn't search artist: %w", err)
	}
	if resp.Artists == nil || len(resp.Artists.Artists) == 0 {
		return nil, fmt.Errorf("spotify: artist %q: %w", artist, catalog.ErrNotFound)
	}
	genres := resp.Artists.Artists[0].Genres
	if genres == nil {
		genres = []string{}
	}
	return genres, nil
}

func (c *Client) Artist(ctx context.Context, id string) (*spotify.FullArtist, error) {
	var resp spotify.FullArtist
	if _, err := c.do(ctx, "GET", "artists/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, fmt.Errorf("spotify: couldn't get artist %s: %w", id, err)
	}
	return &resp, nil
}

func (c *Client) Album(ctx context.Context, id string) (*spotify.FullAlbum, error) {
	var resp spotify.FullAlbum
	if _, err := c.do(ctx, "GET", "albums/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, fmt.Errorf("spotify: couldn't get album %s: %w", id, err)
	}
	return &resp, nil
}

func merge(dst, src []string) []string {
	seen := make(map[string]struct{}, len(dst))
	for _, g := range dst {
		seen[g] = struct{}{}
	}
	for _, g := range src {
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		dst = append(dst, g)
	}
	return dst
}
