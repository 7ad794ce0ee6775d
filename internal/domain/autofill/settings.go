package autofill

import (
	"fmt"
	"sync"
)

// Settings controls when the monitor triggers a fill and how many tracks
// each fill adds.
type Settings struct {
	MinQueueLength int  `json:"min_queue_length"`
	NumTracksMin   int  `json:"num_tracks_min"`
	NumTracksMax   int  `json:"num_tracks_max"`
	GenreFilter    bool `json:"genre_filter"`
}

// Validate checks the settings for usable bounds.
func (s Settings) Validate() error {
	if s.MinQueueLength < 1 {
		return fmt.Errorf("min queue length must be at least 1, got %d", s.MinQueueLength)
	}
	if s.NumTracksMin < 1 {
		return fmt.Errorf("track count minimum must be at least 1, got %d", s.NumTracksMin)
	}
	if s.NumTracksMax < s.NumTracksMin {
		return fmt.Errorf("track count range is inverted: min %d, max %d", s.NumTracksMin, s.NumTracksMax)
	}
	return nil
}

// SettingsStore holds the live auto-fill settings behind a mutex so the
// monitor and the transport layer can read and update them concurrently.
type SettingsStore struct {
	mu       sync.RWMutex
	settings Settings
}

// NewSettingsStore creates a store seeded with the given settings.
func NewSettingsStore(initial Settings) *SettingsStore {
	return &SettingsStore{settings: initial}
}

// Get returns the current settings.
func (s *SettingsStore) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Set replaces the current settings after validation.
func (s *SettingsStore) Set(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return nil
}
