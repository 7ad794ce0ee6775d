// Package scrobble submits listening history derived from playback
// snapshots: a now-playing update when a track starts and at most one
// scrobble per play once enough of it was heard.
package scrobble

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/chorus-player/chorus-mpd-backend/internal/domain/player"
)

// A track qualifies for a scrobble after four minutes of playback, or after
// half its duration, whichever comes first.
const (
	minScrobbleSeconds = 240
	scrobbleFraction   = 0.5
)

// Submitter delivers now-playing updates and scrobbles.
type Submitter interface {
	UpdateNowPlaying(artist, title, album string, duration int) error
	Scrobble(artist, title, album string, started time.Time, duration int) error
}

// Tracker watches playback snapshots and drives the submitter. It is fed
// from the status monitor's observer callback.
type Tracker struct {
	submitter Submitter
	enabled   bool
	now       func() time.Time

	mu        sync.Mutex
	artist    string
	title     string
	album     string
	started   time.Time
	submitted bool
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithClock overrides the time source.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) { t.now = now }
}

// NewTracker creates a scrobble tracker. A disabled tracker observes
// snapshots but never submits.
func NewTracker(submitter Submitter, enabled bool, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		submitter: submitter,
		enabled:   enabled,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetEnabled toggles submission at runtime.
func (t *Tracker) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
}

// Observe processes one playback snapshot. A new track identity sends a
// now-playing update and arms a fresh scrobble; the scrobble fires at most
// once per identity, after minScrobbleSeconds of playback or half the track,
// whichever comes first.
func (t *Tracker) Observe(snap player.Snapshot) {
	if !snap.Playing() || snap.Artist == "" || snap.Title == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}

	if snap.Artist != t.artist || snap.Title != t.title {
		t.artist = snap.Artist
		t.title = snap.Title
		t.album = snap.Album
		t.started = t.now()
		t.submitted = false

		if err := t.submitter.UpdateNowPlaying(snap.Artist, snap.Title, snap.Album, int(snap.RawTotal)); err != nil {
			log.Warn().Err(err).Str("artist", snap.Artist).Str("title", snap.Title).
				Msg("Now-playing update failed")
		}
		return
	}

	if t.submitted {
		return
	}
	if !scrobbleDue(snap.RawElapsed, snap.RawTotal) {
		return
	}

	t.submitted = true
	if err := t.submitter.Scrobble(t.artist, t.title, t.album, t.started, int(snap.RawTotal)); err != nil {
		log.Warn().Err(err).Str("artist", t.artist).Str("title", t.title).
			Msg("Scrobble failed")
		return
	}
	log.Info().Str("artist", t.artist).Str("title", t.title).Msg("Scrobbled")
}

func scrobbleDue(elapsed, total float64) bool {
	if elapsed >= minScrobbleSeconds {
		return true
	}
	return total > 0 && elapsed >= total*scrobbleFraction
}
