// Package lastfm wraps the Last.fm API for artist similarity lookups and
// scrobbling.
package lastfm

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shkh/lastfm-go/lastfm"
)

// Error kinds callers can match with errors.Is instead of inspecting
// message strings.
var (
	// ErrUnavailable indicates a network failure or a Last.fm service error.
	ErrUnavailable = errors.New("last.fm unavailable")

	// ErrAuthFailure indicates invalid or expired API credentials.
	ErrAuthFailure = errors.New("last.fm authentication failed")

	// ErrNotFound indicates the requested artist or track is unknown.
	ErrNotFound = errors.New("last.fm resource not found")

	// ErrNotConfigured indicates no API key is set.
	ErrNotConfigured = errors.New("last.fm API key not configured")
)

// SimilarArtist is an artist suggested by Last.fm with its match score.
type SimilarArtist struct {
	Name  string
	Match float64
}

// TopTrack is a popular track for an artist.
type TopTrack struct {
	Artist string
	Title  string
}

// TopAlbum is a popular album for an artist.
type TopAlbum struct {
	Artist string
	Album  string
}

// Client wraps the Last.fm API.
type Client struct {
	api        *lastfm.Api
	apiKey     string
	sessionKey string
}

// New creates a new Last.fm client. An empty API key yields a client whose
// calls all fail with ErrNotConfigured.
func New(apiKey, apiSecret string) *Client {
	c := &Client{apiKey: apiKey}
	if apiKey != "" {
		c.api = lastfm.New(apiKey, apiSecret)
	}
	return c
}

// SetSessionKey sets the authenticated session key used for scrobbling.
func (c *Client) SetSessionKey(key string) {
	c.sessionKey = key
	if c.api != nil && key != "" {
		c.api.SetSession(key)
	}
}

// IsAuthenticated reports whether a scrobbling session is available.
func (c *Client) IsAuthenticated() bool {
	return c.api != nil && c.sessionKey != ""
}

// GetToken requests an authentication token for the desktop auth flow.
func (c *Client) GetToken() (string, error) {
	if c.api == nil {
		return "", ErrNotConfigured
	}
	token, err := c.api.GetToken()
	if err != nil {
		return "", classify(err, "get token")
	}
	return token, nil
}

// AuthURL returns the user authorization URL for a token.
func (c *Client) AuthURL(token string) string {
	return fmt.Sprintf("https://www.last.fm/api/auth/?api_key=%s&token=%s", c.apiKey, token)
}

// FinalizeSession exchanges an authorized token for a session key.
func (c *Client) FinalizeSession(token string) (string, error) {
	if c.api == nil {
		return "", ErrNotConfigured
	}
	if err := c.api.LoginWithToken(token); err != nil {
		return "", classify(err, "get session")
	}
	c.sessionKey = c.api.GetSessionKey()
	return c.sessionKey, nil
}

// SimilarArtists fetches up to limit artists similar to the given one.
func (c *Client) SimilarArtists(artist string, limit int) ([]SimilarArtist, error) {
	if c.api == nil {
		return nil, ErrNotConfigured
	}

	result, err := c.api.Artist.GetSimilar(lastfm.P{
		"artist": artist,
		"limit":  limit,
	})
	if err != nil {
		return nil, classify(err, "get similar artists")
	}

	artists := make([]SimilarArtist, 0, len(result.Similars))
	for _, a := range result.Similars {
		if a.Name == "" {
			continue
		}
		match := 0.0
		if a.Match != "" {
			_, _ = fmt.Sscanf(a.Match, "%f", &match)
		}
		artists = append(artists, SimilarArtist{Name: a.Name, Match: match})
	}

	return artists, nil
}

// TopTracks fetches up to limit of the artist's most popular tracks.
func (c *Client) TopTracks(artist string, limit int) ([]TopTrack, error) {
	if c.api == nil {
		return nil, ErrNotConfigured
	}

	result, err := c.api.Artist.GetTopTracks(lastfm.P{
		"artist": artist,
		"limit":  limit,
	})
	if err != nil {
		return nil, classify(err, "get top tracks")
	}

	tracks := make([]TopTrack, 0, len(result.Tracks))
	for _, t := range result.Tracks {
		if t.Name == "" {
			continue
		}
		tracks = append(tracks, TopTrack{Artist: artist, Title: t.Name})
	}

	return tracks, nil
}

// TopAlbums fetches up to limit of the artist's most popular albums.
// Placeholder entries Last.fm sometimes returns ("(null)") are dropped.
func (c *Client) TopAlbums(artist string, limit int) ([]TopAlbum, error) {
	if c.api == nil {
		return nil, ErrNotConfigured
	}

	result, err := c.api.Artist.GetTopAlbums(lastfm.P{
		"artist": artist,
		"limit":  limit,
	})
	if err != nil {
		return nil, classify(err, "get top albums")
	}

	albums := make([]TopAlbum, 0, len(result.Albums))
	for _, a := range result.Albums {
		name := strings.TrimSpace(a.Name)
		switch strings.ToLower(name) {
		case "", "(null)", "null", "unknown":
			continue
		}
		albums = append(albums, TopAlbum{Artist: artist, Album: name})
	}

	return albums, nil
}

// UpdateNowPlaying sends a "now playing" notification.
func (c *Client) UpdateNowPlaying(artist, title, album string, duration int) error {
	if !c.IsAuthenticated() {
		return ErrAuthFailure
	}

	params := lastfm.P{
		"artist": artist,
		"track":  title,
	}
	if album != "" {
		params["album"] = album
	}
	if duration > 0 {
		params["duration"] = duration
	}

	if _, err := c.api.Track.UpdateNowPlaying(params); err != nil {
		return classify(err, "update now playing")
	}
	return nil
}

// Scrobble submits a completed track play.
func (c *Client) Scrobble(artist, title, album string, started time.Time, duration int) error {
	if !c.IsAuthenticated() {
		return ErrAuthFailure
	}

	params := lastfm.P{
		"artist":    artist,
		"track":     title,
		"timestamp": started.Unix(),
	}
	if album != "" {
		params["album"] = album
	}
	if duration > 0 {
		params["duration"] = duration
	}

	if _, err := c.api.Track.Scrobble(params); err != nil {
		return classify(err, "scrobble")
	}
	return nil
}

// classify maps a lastfm-go error onto one of the package error kinds.
func classify(err error, op string) error {
	var lfmErr *lastfm.LastfmError
	if errors.As(err, &lfmErr) {
		switch lfmErr.Code {
		case 4, 9, 10, 13, 14, 26:
			return fmt.Errorf("%s: %w: %s", op, ErrAuthFailure, lfmErr.Message)
		case 6:
			return fmt.Errorf("%s: %w: %s", op, ErrNotFound, lfmErr.Message)
		default:
			return fmt.Errorf("%s: %w: %s", op, ErrUnavailable, lfmErr.Message)
		}
	}
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}
