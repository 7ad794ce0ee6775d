// Package mpd provides a wrapper around the gompd MPD client.
//
// Every operation dials its own short-lived connection and disconnects before
// returning, so a failed call can never leak a connection or poison later
// calls, and the background pollers stay independent of user-facing requests.
package mpd

import (
	"fmt"

	"github.com/fhs/gompd/v2/mpd"
	"github.com/rs/zerolog/log"
)

// Client dials MPD on demand for each operation.
type Client struct {
	addr     string
	password string
}

// NewClient creates a new MPD client wrapper.
func NewClient(host string, port int, password string) *Client {
	return &Client{
		addr:     fmt.Sprintf("%s:%d", host, port),
		password: password,
	}
}

// withConn dials MPD, runs fn, and always closes the connection.
func (c *Client) withConn(fn func(conn *mpd.Client) error) error {
	conn, err := mpd.DialAuthenticated("tcp", c.addr, c.password)
	if err != nil {
		return fmt.Errorf("connect to MPD at %s: %w", c.addr, err)
	}
	defer conn.Close()

	return fn(conn)
}

// Ping checks that MPD is reachable.
func (c *Client) Ping() error {
	return c.withConn(func(conn *mpd.Client) error {
		return conn.Ping()
	})
}

// Status returns the current MPD status attributes.
func (c *Client) Status() (map[string]string, error) {
	var attrs mpd.Attrs
	err := c.withConn(func(conn *mpd.Client) error {
		var err error
		attrs, err = conn.Status()
		return err
	})
	return attrs, err
}

// CurrentSong returns the attributes of the currently playing song.
func (c *Client) CurrentSong() (map[string]string, error) {
	var attrs mpd.Attrs
	err := c.withConn(func(conn *mpd.Client) error {
		var err error
		attrs, err = conn.CurrentSong()
		return err
	})
	return attrs, err
}

// PlaylistInfo returns the current queue contents.
func (c *Client) PlaylistInfo() ([]map[string]string, error) {
	var out []map[string]string
	err := c.withConn(func(conn *mpd.Client) error {
		attrs, err := conn.PlaylistInfo(-1, -1)
		if err != nil {
			return err
		}
		out = attrsSlice(attrs)
		return nil
	})
	return out, err
}

// Play starts playback. If pos is -1, resumes the current track.
func (c *Client) Play(pos int) error {
	return c.withConn(func(conn *mpd.Client) error {
		return conn.Play(pos)
	})
}

// Pause sets the pause state.
func (c *Client) Pause(pause bool) error {
	return c.withConn(func(conn *mpd.Client) error {
		return conn.Pause(pause)
	})
}

// Stop stops playback.
func (c *Client) Stop() error {
	return c.withConn(func(conn *mpd.Client) error {
		return conn.Stop()
	})
}

// Next plays the next song in the queue.
func (c *Client) Next() error {
	return c.withConn(func(conn *mpd.Client) error {
		return conn.Next()
	})
}

// Previous plays the previous song.
func (c *Client) Previous() error {
	return c.withConn(func(conn *mpd.Client) error {
		return conn.Previous()
	})
}

// Seek seeks to a position (seconds) within the current song.
func (c *Client) Seek(seconds int) error {
	return c.withConn(func(conn *mpd.Client) error {
		status, err := conn.Status()
		if err != nil {
			return err
		}
		pos, err := atoi(status["song"])
		if err != nil {
			return fmt.Errorf("no song playing")
		}
		return conn.Seek(pos, seconds)
	})
}

// SetVolume sets the volume, clamped to 0-100.
func (c *Client) SetVolume(vol int) error {
	if vol < 0 {
		vol = 0
	} else if vol > 100 {
		vol = 100
	}
	return c.withConn(func(conn *mpd.Client) error {
		return conn.SetVolume(vol)
	})
}

// SetRandom sets shuffle mode.
func (c *Client) SetRandom(on bool) error {
	return c.withConn(func(conn *mpd.Client) error {
		return conn.Random(on)
	})
}

// SetConsume sets consume mode (played tracks are removed from the queue).
func (c *Client) SetConsume(on bool) error {
	return c.withConn(func(conn *mpd.Client) error {
		return conn.Consume(on)
	})
}

// SetCrossfade sets the crossfade duration in seconds (0 disables).
func (c *Client) SetCrossfade(seconds int) error {
	return c.withConn(func(conn *mpd.Client) error {
		return conn.Command("crossfade %d", seconds).OK()
	})
}

// Add appends a URI to the queue.
func (c *Client) Add(uri string) error {
	return c.withConn(func(conn *mpd.Client) error {
		return conn.Add(uri)
	})
}

// Clear empties the queue.
func (c *Client) Clear() error {
	return c.withConn(func(conn *mpd.Client) error {
		return conn.Clear()
	})
}

// UpdateDatabase triggers an MPD database rescan.
func (c *Client) UpdateDatabase() error {
	return c.withConn(func(conn *mpd.Client) error {
		_, err := conn.Update("")
		return err
	})
}

// SearchByArtistTitle finds tracks matching artist and title
// (case-insensitive, MPD "search" semantics).
func (c *Client) SearchByArtistTitle(artist, title string) ([]map[string]string, error) {
	return c.tracksCommand("search artist %s title %s", artist, title)
}

// FindByArtist finds all tracks tagged with exactly the given artist.
func (c *Client) FindByArtist(artist string) ([]map[string]string, error) {
	return c.tracksCommand("find artist %s", artist)
}

// FindByGenre finds all tracks tagged with exactly the given genre.
func (c *Client) FindByGenre(genre string) ([]map[string]string, error) {
	return c.tracksCommand("find genre %s", genre)
}

// FindByFile finds the track with exactly the given file path.
func (c *Client) FindByFile(uri string) ([]map[string]string, error) {
	return c.tracksCommand("find file %s", uri)
}

// FindAlbumTracks finds all tracks for an album, preferring the albumartist
// tag over artist.
func (c *Client) FindAlbumTracks(artist, album string) ([]map[string]string, error) {
	var out []map[string]string
	err := c.withConn(func(conn *mpd.Client) error {
		attrs, err := conn.Command("find albumartist %s album %s", artist, album).AttrsList("file")
		if err != nil || len(attrs) == 0 {
			if err != nil {
				log.Debug().Err(err).Str("artist", artist).Str("album", album).
					Msg("albumartist lookup failed, falling back to artist")
			}
			attrs, err = conn.Command("find artist %s album %s", artist, album).AttrsList("file")
			if err != nil {
				return err
			}
		}
		out = attrsSlice(attrs)
		return nil
	})
	return out, err
}

// ListGenres lists all distinct genre tags.
func (c *Client) ListGenres() ([]string, error) {
	var out []string
	err := c.withConn(func(conn *mpd.Client) error {
		values, err := conn.Command("list genre").Strings("Genre")
		if err != nil {
			return err
		}
		out = values
		return nil
	})
	return out, err
}

// ListArtists lists all distinct artist tags.
func (c *Client) ListArtists() ([]string, error) {
	var out []string
	err := c.withConn(func(conn *mpd.Client) error {
		values, err := conn.Command("list artist").Strings("Artist")
		if err != nil {
			return err
		}
		out = values
		return nil
	})
	return out, err
}

// ListAlbums lists all distinct album tags.
func (c *Client) ListAlbums() ([]string, error) {
	var out []string
	err := c.withConn(func(conn *mpd.Client) error {
		values, err := conn.Command("list album").Strings("Album")
		if err != nil {
			return err
		}
		out = values
		return nil
	})
	return out, err
}

// ListTitles lists all distinct title tags.
func (c *Client) ListTitles() ([]string, error) {
	var out []string
	err := c.withConn(func(conn *mpd.Client) error {
		values, err := conn.Command("list title").Strings("Title")
		if err != nil {
			return err
		}
		out = values
		return nil
	})
	return out, err
}

func (c *Client) tracksCommand(format string, args ...interface{}) ([]map[string]string, error) {
	var out []map[string]string
	err := c.withConn(func(conn *mpd.Client) error {
		attrs, err := conn.Command(format, args...).AttrsList("file")
		if err != nil {
			return err
		}
		out = attrsSlice(attrs)
		return nil
	})
	return out, err
}

func attrsSlice(attrs []mpd.Attrs) []map[string]string {
	out := make([]map[string]string, len(attrs))
	for i, a := range attrs {
		out[i] = a
	}
	return out
}

func atoi(s string) (int, error) {
	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	return n, err
}
