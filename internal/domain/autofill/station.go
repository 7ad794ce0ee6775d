package autofill

import "sync"

// StationState holds the currently active genre station, if any. While a
// station is active the monitor fills from its genre set instead of from
// similar-artist recommendations.
type StationState struct {
	mu     sync.RWMutex
	name   string
	genres []string
	active bool
}

// NewStationState creates an empty station state.
func NewStationState() *StationState {
	return &StationState{}
}

// Set activates a genre station. An empty genre list deactivates instead.
func (s *StationState) Set(name string, genres []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(genres) == 0 {
		s.name = ""
		s.genres = nil
		s.active = false
		return
	}
	s.name = name
	s.genres = append([]string(nil), genres...)
	s.active = true
}

// Clear deactivates any active station.
func (s *StationState) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = ""
	s.genres = nil
	s.active = false
}

// Snapshot returns the current station name, its genres and whether a
// station is active. The returned slice is a copy.
func (s *StationState) Snapshot() (name string, genres []string, active bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.active {
		return "", nil, false
	}
	return s.name, append([]string(nil), s.genres...), true
}
