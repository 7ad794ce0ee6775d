// Package stations manages saved genre stations and binds them to the
// auto-fill engine's station state.
package stations

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/chorus-player/chorus-mpd-backend/internal/domain/autofill"
)

// ErrNotFound is returned when a named station does not exist.
var ErrNotFound = errors.New("station not found")

// Store is the persistence surface for saved stations.
type Store interface {
	SaveStation(name string, genres []string) error
	GetStation(name string) (genres []string, ok bool, err error)
	ListStations() (map[string][]string, error)
	DeleteStation(name string) error
}

// Station is one saved genre station.
type Station struct {
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
}

// Service exposes station CRUD plus activation against the live auto-fill
// station state.
type Service struct {
	store   Store
	station *autofill.StationState
}

// NewService creates the station service.
func NewService(store Store, station *autofill.StationState) *Service {
	return &Service{store: store, station: station}
}

// Save persists a station.
func (s *Service) Save(name string, genres []string) error {
	if err := s.store.SaveStation(name, genres); err != nil {
		return err
	}
	log.Info().Str("station", name).Int("genres", len(genres)).Msg("Station saved")
	return nil
}

// List returns all saved stations ordered by name.
func (s *Service) List() ([]Station, error) {
	byName, err := s.store.ListStations()
	if err != nil {
		return nil, err
	}
	out := make([]Station, 0, len(byName))
	for name, genres := range byName {
		out = append(out, Station{Name: name, Genres: genres})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Delete removes a saved station. If the deleted station is currently
// active it is also deactivated.
func (s *Service) Delete(name string) error {
	if err := s.store.DeleteStation(name); err != nil {
		return err
	}
	if active, _, ok := s.station.Snapshot(); ok && active == name {
		s.station.Clear()
		log.Info().Str("station", name).Msg("Active station deleted and deactivated")
	}
	return nil
}

// Activate loads a saved station and makes it the live genre station.
func (s *Service) Activate(name string) error {
	genres, ok, err := s.store.GetStation(name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	s.station.Set(name, genres)
	log.Info().Str("station", name).Strs("genres", genres).Msg("Station activated")
	return nil
}

// ActivateAdHoc makes an unsaved genre set the live station.
func (s *Service) ActivateAdHoc(name string, genres []string) error {
	if len(genres) == 0 {
		return errors.New("at least one genre is required")
	}
	s.station.Set(name, genres)
	log.Info().Str("station", name).Strs("genres", genres).Msg("Ad hoc station activated")
	return nil
}

// Deactivate clears the live station.
func (s *Service) Deactivate() {
	s.station.Clear()
	log.Info().Msg("Station deactivated")
}

// Current returns the live station, if any.
func (s *Service) Current() (Station, bool) {
	name, genres, active := s.station.Snapshot()
	if !active {
		return Station{}, false
	}
	return Station{Name: name, Genres: genres}, true
}
