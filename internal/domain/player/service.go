package player

import (
	"github.com/rs/zerolog/log"
)

// ControlClient is the subset of MPD operations the control service uses.
type ControlClient interface {
	StatusClient
	Play(pos int) error
	Pause(pause bool) error
	Stop() error
	Next() error
	Previous() error
	Seek(seconds int) error
	SetVolume(vol int) error
	SetRandom(on bool) error
	SetConsume(on bool) error
	SetCrossfade(seconds int) error
	Add(uri string) error
	Clear() error
	UpdateDatabase() error
}

// Service handles transport control operations.
type Service struct {
	mpd ControlClient
}

// NewService creates a new player control service.
func NewService(mpd ControlClient) *Service {
	return &Service{mpd: mpd}
}

// Play starts playback at the given position, or resumes if pos < 0.
func (s *Service) Play(pos int) error {
	log.Info().Int("position", pos).Msg("Play")
	return s.mpd.Play(pos)
}

// Pause pauses playback.
func (s *Service) Pause() error {
	log.Info().Msg("Pause")
	return s.mpd.Pause(true)
}

// Stop stops playback.
func (s *Service) Stop() error {
	log.Info().Msg("Stop")
	return s.mpd.Stop()
}

// Next plays the next track.
func (s *Service) Next() error {
	log.Info().Msg("Next")
	return s.mpd.Next()
}

// Previous plays the previous track.
func (s *Service) Previous() error {
	log.Info().Msg("Previous")
	return s.mpd.Previous()
}

// Seek seeks to position in seconds within the current track.
func (s *Service) Seek(seconds int) error {
	log.Info().Int("position", seconds).Msg("Seek")
	return s.mpd.Seek(seconds)
}

// SetVolume sets the volume (0-100).
func (s *Service) SetVolume(vol int) error {
	log.Info().Int("volume", vol).Msg("SetVolume")
	return s.mpd.SetVolume(vol)
}

// SetShuffle sets shuffle/random mode.
func (s *Service) SetShuffle(on bool) error {
	log.Info().Bool("shuffle", on).Msg("SetShuffle")
	return s.mpd.SetRandom(on)
}

// SetConsume sets consume mode.
func (s *Service) SetConsume(on bool) error {
	log.Info().Bool("consume", on).Msg("SetConsume")
	return s.mpd.SetConsume(on)
}

// SetCrossfade sets the crossfade duration in seconds.
func (s *Service) SetCrossfade(seconds int) error {
	log.Info().Int("seconds", seconds).Msg("SetCrossfade")
	return s.mpd.SetCrossfade(seconds)
}

// Queue returns the current queue contents as normalized items.
func (s *Service) Queue() ([]QueueItem, error) {
	raw, err := s.mpd.PlaylistInfo()
	if err != nil {
		return nil, err
	}

	queue := make([]QueueItem, 0, len(raw))
	for _, song := range raw {
		queue = append(queue, queueItemFromAttrs(song))
	}
	return queue, nil
}

// Clear empties the play queue.
func (s *Service) Clear() error {
	log.Info().Msg("ClearQueue")
	return s.mpd.Clear()
}

// Add appends a track to the play queue by its identifier.
func (s *Service) Add(uri string) error {
	log.Debug().Str("uri", uri).Msg("AddToQueue")
	return s.mpd.Add(uri)
}

// UpdateDatabase triggers an MPD library rescan.
func (s *Service) UpdateDatabase() error {
	log.Info().Msg("UpdateDatabase")
	return s.mpd.UpdateDatabase()
}
