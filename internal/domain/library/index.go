package library

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// MPDClient is the subset of MPD operations the index needs.
type MPDClient interface {
	SearchByArtistTitle(artist, title string) ([]map[string]string, error)
	FindByArtist(artist string) ([]map[string]string, error)
	FindByGenre(genre string) ([]map[string]string, error)
	FindByFile(uri string) ([]map[string]string, error)
	FindAlbumTracks(artist, album string) ([]map[string]string, error)
	ListGenres() ([]string, error)
	ListArtists() ([]string, error)
	ListAlbums() ([]string, error)
	ListTitles() ([]string, error)
}

// Index answers tag-based queries against the local catalog.
type Index struct {
	mpd MPDClient
}

// NewIndex creates a new catalog index backed by the given MPD client.
func NewIndex(mpd MPDClient) *Index {
	return &Index{mpd: mpd}
}

// FindByArtistTitle looks up tracks matching both artist and title.
func (ix *Index) FindByArtistTitle(artist, title string) ([]Track, error) {
	attrs, err := ix.mpd.SearchByArtistTitle(artist, title)
	if err != nil {
		return nil, fmt.Errorf("search %q - %q: %w", artist, title, err)
	}
	return tracks(attrs), nil
}

// FindByArtist looks up all tracks tagged with exactly the given artist.
func (ix *Index) FindByArtist(artist string) ([]Track, error) {
	attrs, err := ix.mpd.FindByArtist(artist)
	if err != nil {
		return nil, fmt.Errorf("find artist %q: %w", artist, err)
	}
	return tracks(attrs), nil
}

// FindByGenre looks up all tracks tagged with exactly the given genre string.
// No fuzzy matching happens here; callers that want relaxed genre equality
// apply it on the returned tracks.
func (ix *Index) FindByGenre(genre string) ([]Track, error) {
	attrs, err := ix.mpd.FindByGenre(genre)
	if err != nil {
		return nil, fmt.Errorf("find genre %q: %w", genre, err)
	}
	return tracks(attrs), nil
}

// FindAlbumTracks looks up all tracks of an album, preferring the
// albumartist tag over artist.
func (ix *Index) FindAlbumTracks(artist, album string) ([]Track, error) {
	attrs, err := ix.mpd.FindAlbumTracks(artist, album)
	if err != nil {
		return nil, fmt.Errorf("find album %q by %q: %w", album, artist, err)
	}
	return tracks(attrs), nil
}

// TrackGenre resolves the genre tag of a single track by its file URI.
// An empty string with nil error means the track is ungenred.
func (ix *Index) TrackGenre(uri string) (string, error) {
	attrs, err := ix.mpd.FindByFile(uri)
	if err != nil {
		return "", fmt.Errorf("resolve genre for %q: %w", uri, err)
	}
	if len(attrs) == 0 {
		log.Debug().Str("uri", uri).Msg("Track not found in catalog during genre lookup")
		return "", nil
	}
	return attrs[0]["Genre"], nil
}

// Genres lists all distinct genre tags in the catalog.
func (ix *Index) Genres() ([]string, error) {
	return ix.mpd.ListGenres()
}

// Artists lists all distinct artist tags in the catalog.
func (ix *Index) Artists() ([]string, error) {
	return ix.mpd.ListArtists()
}

// Albums lists all distinct album tags in the catalog.
func (ix *Index) Albums() ([]string, error) {
	return ix.mpd.ListAlbums()
}

// Titles lists all distinct title tags in the catalog.
func (ix *Index) Titles() ([]string, error) {
	return ix.mpd.ListTitles()
}

func tracks(attrs []map[string]string) []Track {
	out := make([]Track, 0, len(attrs))
	for _, a := range attrs {
		if a["file"] == "" {
			continue
		}
		out = append(out, FromAttrs(a))
	}
	return out
}
