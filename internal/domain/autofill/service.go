package autofill

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/chorus-player/chorus-mpd-backend/internal/domain/library"
	"github.com/chorus-player/chorus-mpd-backend/internal/infra/lastfm"
)

// AlbumCatalog lists an artist's notable albums.
type AlbumCatalog interface {
	TopAlbums(artist string, limit int) ([]lastfm.TopAlbum, error)
	TopTracks(artist string, limit int) ([]lastfm.TopTrack, error)
}

// AlbumLibrary resolves albums against the local library.
type AlbumLibrary interface {
	FindAlbumTracks(artist, album string) ([]library.Track, error)
}

// Service exposes the user-initiated fill operations: seeding the queue from
// a named artist, and enqueueing an artist's top tracks or albums wholesale.
type Service struct {
	collector *Collector
	engine    *Engine
	station   *StationState
	queue     Queue
	library   Library
	albums    AlbumLibrary
	catalog   AlbumCatalog
}

// NewService creates the manual fill service.
func NewService(collector *Collector, engine *Engine, station *StationState,
	queue Queue, lib Library, albums AlbumLibrary, catalog AlbumCatalog) *Service {
	return &Service{
		collector: collector,
		engine:    engine,
		station:   station,
		queue:     queue,
		library:   lib,
		albums:    albums,
		catalog:   catalog,
	}
}

// FillFromArtist runs a similarity fill seeded from a named artist. It
// deactivates any genre station (a manual artist seed overrides station
// mode), optionally clears the queue first, and returns how many tracks
// were added.
func (s *Service) FillFromArtist(artist, filterGenre string, numTracks int, clearQueue bool) (int, error) {
	if artist == "" {
		return 0, errors.New("artist is required")
	}
	if numTracks < 1 {
		return 0, fmt.Errorf("track count must be positive, got %d", numTracks)
	}

	s.station.Clear()

	if clearQueue {
		if err := s.queue.Clear(); err != nil {
			return 0, fmt.Errorf("clear queue: %w", err)
		}
	}

	candidates, err := s.collector.Collect(artist, filterGenre, numTracks)
	if err != nil {
		return 0, err
	}

	added := s.engine.Fill(candidates, numTracks)
	log.Info().Str("artist", artist).Int("added", added).Msg("Manual fill finished")
	return added, nil
}

// AddTopTracks enqueues an artist's top tracks that exist in the library.
func (s *Service) AddTopTracks(artist string, count int) (int, error) {
	if artist == "" {
		return 0, errors.New("artist is required")
	}

	top, err := s.catalog.TopTracks(artist, count)
	if err != nil {
		return 0, fmt.Errorf("fetch top tracks for %q: %w", artist, err)
	}

	added := 0
	for _, t := range top {
		found, err := s.library.FindByArtistTitle(artist, t.Title)
		if err != nil || len(found) == 0 {
			continue
		}
		if err := s.queue.Add(found[0].URI); err != nil {
			log.Warn().Err(err).Str("uri", found[0].URI).Msg("Could not enqueue top track")
			continue
		}
		added++
	}
	if added == 0 {
		return 0, ErrNoCandidates
	}
	log.Info().Str("artist", artist).Int("added", added).Msg("Enqueued top tracks")
	return added, nil
}

// AddTopAlbums enqueues the full track lists of an artist's top albums that
// exist in the library.
func (s *Service) AddTopAlbums(artist string, count int) (int, error) {
	if artist == "" {
		return 0, errors.New("artist is required")
	}

	albums, err := s.catalog.TopAlbums(artist, count)
	if err != nil {
		return 0, fmt.Errorf("fetch top albums for %q: %w", artist, err)
	}

	added := 0
	for _, a := range albums {
		tracks, err := s.albums.FindAlbumTracks(artist, a.Album)
		if err != nil || len(tracks) == 0 {
			continue
		}
		for _, t := range tracks {
			if err := s.queue.Add(t.URI); err != nil {
				log.Warn().Err(err).Str("uri", t.URI).Msg("Could not enqueue album track")
				continue
			}
			added++
		}
	}
	if added == 0 {
		return 0, ErrNoCandidates
	}
	log.Info().Str("artist", artist).Int("added", added).Msg("Enqueued top albums")
	return added, nil
}
