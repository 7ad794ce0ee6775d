// Package storefront integrates the Qobuz catalog: account login, catalog
// search, and stream URL resolution for playing purchased or streamed
// content through MPD.
package storefront

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/markhc/gobuz"
	"github.com/rs/zerolog/log"
)

// ErrNotLoggedIn is returned by operations that require authentication.
var ErrNotLoggedIn = errors.New("not logged in to Qobuz")

// ErrNotConfigured is returned when no application credentials are set.
var ErrNotConfigured = errors.New("Qobuz app credentials are not configured")

// Album is one album search hit.
type Album struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	ArtworkURL string `json:"artwork_url"`
	Year       int    `json:"year"`
}

// Artist is one artist search hit.
type Artist struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	ArtworkURL string `json:"artwork_url"`
}

// TrackHit is one track search hit.
type TrackHit struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	Duration int    `json:"duration"`
}

// SearchResult bundles the hits of one catalog search.
type SearchResult struct {
	Albums  []Album    `json:"albums"`
	Artists []Artist   `json:"artists"`
	Tracks  []TrackHit `json:"tracks"`
}

// StreamInfo describes a resolved stream for one track.
type StreamInfo struct {
	URL        string `json:"url"`
	Format     string `json:"format"`
	BitDepth   int    `json:"bit_depth"`
	SampleRate int    `json:"sample_rate"`
	Duration   int    `json:"duration"`
	MimeType   string `json:"mime_type"`
}

// Status is the account state reported to clients.
type Status struct {
	Configured bool   `json:"configured"`
	LoggedIn   bool   `json:"logged_in"`
	Email      string `json:"email,omitempty"`
}

// persisted is the on-disk session file.
type persisted struct {
	Email     string `json:"email,omitempty"`
	AuthToken string `json:"auth_token,omitempty"`
}

// Service wraps the Qobuz API with session persistence.
type Service struct {
	appID      string
	appSecret  string
	configPath string

	mu       sync.RWMutex
	api      *gobuz.QobuzAPI
	loggedIn bool
	email    string
	session  persisted
}

// NewService creates the storefront service. App credentials come from the
// application config; a previously saved session is restored when present.
func NewService(appID, appSecret, configPath string) (*Service, error) {
	s := &Service{
		appID:      appID,
		appSecret:  appSecret,
		configPath: configPath,
	}

	if err := s.loadSession(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load Qobuz session: %w", err)
	}

	if appID != "" && appSecret != "" {
		if s.session.AuthToken != "" {
			s.api = gobuz.NewQobuzAPI(
				gobuz.WithApplicationCredentials(appID, appSecret),
				gobuz.WithAuthToken(s.session.AuthToken),
			)
			s.loggedIn = true
			s.email = s.session.Email
		} else {
			s.api = gobuz.NewQobuzAPI(
				gobuz.WithApplicationCredentials(appID, appSecret),
			)
		}
	}

	return s, nil
}

// Configured reports whether app credentials are present.
func (s *Service) Configured() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.api != nil
}

// GetStatus returns the current account state.
func (s *Service) GetStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{Configured: s.api != nil, LoggedIn: s.loggedIn, Email: s.email}
}

// Login authenticates against Qobuz and persists the session.
func (s *Service) Login(email, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.api == nil {
		return ErrNotConfigured
	}
	if err := s.api.Login(email, password); err != nil {
		return fmt.Errorf("Qobuz login failed: %w", err)
	}

	s.loggedIn = true
	s.email = email
	s.session.Email = email

	if err := s.saveSession(); err != nil {
		log.Warn().Err(err).Msg("Could not save Qobuz session")
	}
	log.Info().Str("email", email).Msg("Logged in to Qobuz")
	return nil
}

// Logout drops the session, keeping app credentials for future logins.
func (s *Service) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loggedIn = false
	s.email = ""
	s.session = persisted{}
	if s.appID != "" && s.appSecret != "" {
		s.api = gobuz.NewQobuzAPI(gobuz.WithApplicationCredentials(s.appID, s.appSecret))
	}
	return s.saveSession()
}

// Search queries the catalog for albums, artists and tracks. Partial
// failures are tolerated: a failed sub-search just leaves its section empty.
func (s *Service) Search(query string, limit int) (*SearchResult, error) {
	s.mu.RLock()
	api, loggedIn := s.api, s.loggedIn
	s.mu.RUnlock()

	if api == nil {
		return nil, ErrNotConfigured
	}
	if !loggedIn {
		return nil, ErrNotLoggedIn
	}
	if limit <= 0 {
		limit = 20
	}

	result := &SearchResult{}

	if albums, err := api.SearchAlbums(query).WithLimit(limit).Run(); err == nil && albums != nil {
		for _, album := range albums.Albums.Items {
			artistName := ""
			if album.Artist != nil {
				artistName = album.Artist.Name
			}
			result.Albums = append(result.Albums, Album{
				ID:         album.ID,
				Title:      album.Title,
				Artist:     artistName,
				ArtworkURL: album.Image.Large,
				Year:       album.ReleasedAt.Year(),
			})
		}
	} else if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("Qobuz album search failed")
	}

	if artists, err := api.SearchArtists(query).WithLimit(limit).Run(); err == nil && artists != nil {
		for _, artist := range artists.Artists.Items {
			result.Artists = append(result.Artists, Artist{
				ID:         artist.ID,
				Name:       artist.Name,
				ArtworkURL: artist.Image.Large,
			})
		}
	} else if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("Qobuz artist search failed")
	}

	if tracks, err := api.SearchTracks(query).WithLimit(limit).Run(); err == nil && tracks != nil {
		for _, track := range tracks.Tracks.Items {
			result.Tracks = append(result.Tracks, TrackHit{
				ID:       track.ID,
				Title:    track.Title,
				Artist:   track.Performer.Name,
				Album:    track.Album.Title,
				Duration: track.Duration,
			})
		}
	} else if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("Qobuz track search failed")
	}

	return result, nil
}

// StreamURL resolves the best available stream for a track, trying 24/192,
// then 24/96, then 16-bit FLAC.
func (s *Service) StreamURL(trackID string) (*StreamInfo, error) {
	s.mu.RLock()
	api, loggedIn := s.api, s.loggedIn
	s.mu.RUnlock()

	if api == nil {
		return nil, ErrNotConfigured
	}
	if !loggedIn {
		return nil, ErrNotLoggedIn
	}

	id, err := strconv.Atoi(trackID)
	if err != nil {
		return nil, fmt.Errorf("invalid track ID %q: %w", trackID, err)
	}

	fileURL, err := api.GetTrackFileUrl(id, gobuz.TrackFormatHiRes24Bit192Khz)
	if err != nil {
		fileURL, err = api.GetTrackFileUrl(id, gobuz.TrackFormatHiRes24Bit96Khz)
		if err != nil {
			fileURL, err = api.GetTrackFileUrl(id, gobuz.TrackFormatFLAC)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve stream URL: %w", err)
			}
		}
	}

	return &StreamInfo{
		URL:        fileURL.URL,
		Format:     "flac",
		BitDepth:   fileURL.BitDepth,
		SampleRate: int(fileURL.SamplingRate),
		Duration:   fileURL.Duration,
		MimeType:   fileURL.MimeType,
	}, nil
}

func (s *Service) loadSession() error {
	data, err := os.ReadFile(s.configPath)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, &s.session)
}

func (s *Service) saveSession() error {
	if err := os.MkdirAll(filepath.Dir(s.configPath), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s.session, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.configPath, data, 0600)
}
