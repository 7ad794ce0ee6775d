package library_test

import (
	"errors"
	"testing"

	"github.com/chorus-player/chorus-mpd-backend/internal/domain/library"
)

type fakeMPD struct {
	tracks map[string][]map[string]string // keyed by artist
	byFile map[string]map[string]string
	err    error
}

func (f *fakeMPD) SearchByArtistTitle(artist, title string) ([]map[string]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []map[string]string
	for _, t := range f.tracks[artist] {
		if t["Title"] == title {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeMPD) FindByArtist(artist string) ([]map[string]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tracks[artist], nil
}

func (f *fakeMPD) FindByGenre(genre string) ([]map[string]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []map[string]string
	for _, ts := range f.tracks {
		for _, t := range ts {
			if t["Genre"] == genre {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func (f *fakeMPD) FindByFile(uri string) ([]map[string]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	if t, ok := f.byFile[uri]; ok {
		return []map[string]string{t}, nil
	}
	return nil, nil
}

func (f *fakeMPD) FindAlbumTracks(artist, album string) ([]map[string]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []map[string]string
	for _, t := range f.tracks[artist] {
		if t["Album"] == album {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeMPD) ListGenres() ([]string, error)  { return []string{"Rock", "Jazz"}, f.err }
func (f *fakeMPD) ListArtists() ([]string, error) { return nil, f.err }
func (f *fakeMPD) ListAlbums() ([]string, error)  { return nil, f.err }
func (f *fakeMPD) ListTitles() ([]string, error)  { return nil, f.err }

func newFakeMPD() *fakeMPD {
	track := func(uri, artist, title, album, genre string) map[string]string {
		return map[string]string{
			"file": uri, "Artist": artist, "Title": title,
			"Album": album, "Genre": genre, "Time": "215",
		}
	}
	f := &fakeMPD{
		tracks: map[string][]map[string]string{
			"Radiohead": {
				track("r/1.flac", "Radiohead", "Let Down", "OK Computer", "Alternative Rock"),
				track("r/2.flac", "Radiohead", "Nude", "In Rainbows", "Alternative Rock"),
			},
		},
		byFile: map[string]map[string]string{},
	}
	for _, ts := range f.tracks {
		for _, t := range ts {
			f.byFile[t["file"]] = t
		}
	}
	return f
}

func TestFindByArtistTitle(t *testing.T) {
	ix := library.NewIndex(newFakeMPD())

	tracks, err := ix.FindByArtistTitle("Radiohead", "Nude")
	if err != nil {
		t.Fatalf("FindByArtistTitle failed: %v", err)
	}
	if len(tracks) != 1 {
		t.Fatalf("expected 1 track, got %d", len(tracks))
	}
	got := tracks[0]
	if got.URI != "r/2.flac" || got.Album != "In Rainbows" || got.Duration != 215 {
		t.Errorf("unexpected track: %+v", got)
	}
}

func TestTrackGenre(t *testing.T) {
	ix := library.NewIndex(newFakeMPD())

	genre, err := ix.TrackGenre("r/1.flac")
	if err != nil {
		t.Fatalf("TrackGenre failed: %v", err)
	}
	if genre != "Alternative Rock" {
		t.Errorf("expected Alternative Rock, got %q", genre)
	}

	// Unknown URI resolves to empty genre, not an error.
	genre, err = ix.TrackGenre("missing.flac")
	if err != nil || genre != "" {
		t.Errorf("expected empty genre for unknown file, got %q, %v", genre, err)
	}
}

func TestIndexPropagatesErrors(t *testing.T) {
	ix := library.NewIndex(&fakeMPD{err: errors.New("gone")})

	if _, err := ix.FindByArtist("anyone"); err == nil {
		t.Error("expected error from FindByArtist")
	}
	if _, err := ix.TrackGenre("x.flac"); err == nil {
		t.Error("expected error from TrackGenre")
	}
}
