package autofill

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/chorus-player/chorus-mpd-backend/internal/domain/library"
	"github.com/chorus-player/chorus-mpd-backend/internal/domain/player"
)

const (
	defaultTickInterval = 5 * time.Second
	defaultCooldown     = 30 * time.Second
)

// StatusSource exposes the most recent playback snapshot.
type StatusSource interface {
	Last() (player.Snapshot, bool)
}

// Notifier delivers user-visible notices about fill activity.
type Notifier interface {
	Notify(kind, text string)
}

// Monitor watches the playback queue and triggers background fills when it
// runs low. All trigger state (cooldown timestamp, last known seed) is owned
// by the monitor and mutated only under its mutex so two rapid ticks can
// never double-dispatch.
type Monitor struct {
	status    StatusSource
	collector *Collector
	engine    *Engine
	settings  *SettingsStore
	station   *StationState
	notifier  Notifier

	interval time.Duration
	cooldown time.Duration

	// Seams for tests.
	now      func() time.Time
	intn     func(int) int
	dispatch func(func())

	onFilled func()

	mu          sync.Mutex
	active      bool
	lastTrigger time.Time
	lastArtist  string
	lastGenre   string
}

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

// WithTickInterval overrides the polling interval.
func WithTickInterval(d time.Duration) MonitorOption {
	return func(m *Monitor) { m.interval = d }
}

// WithCooldown overrides the minimum time between two autonomous triggers.
func WithCooldown(d time.Duration) MonitorOption {
	return func(m *Monitor) { m.cooldown = d }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) MonitorOption {
	return func(m *Monitor) { m.now = now }
}

// WithRandInt overrides the random track-count source.
func WithRandInt(intn func(int) int) MonitorOption {
	return func(m *Monitor) { m.intn = intn }
}

// WithDispatch overrides how background fill work is launched.
func WithDispatch(fn func(func())) MonitorOption {
	return func(m *Monitor) { m.dispatch = fn }
}

// WithOnFilled registers a callback invoked after a fill added tracks,
// typically to push a fresh status to clients.
func WithOnFilled(fn func()) MonitorOption {
	return func(m *Monitor) { m.onFilled = fn }
}

// NewMonitor creates an auto-fill monitor. It starts inactive.
func NewMonitor(status StatusSource, collector *Collector, engine *Engine,
	settings *SettingsStore, station *StationState, notifier Notifier,
	opts ...MonitorOption) *Monitor {

	m := &Monitor{
		status:    status,
		collector: collector,
		engine:    engine,
		settings:  settings,
		station:   station,
		notifier:  notifier,
		interval:  defaultTickInterval,
		cooldown:  defaultCooldown,
		now:       time.Now,
		intn:      rand.Intn,
		dispatch:  func(fn func()) { go fn() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start activates autonomous filling.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active {
		return
	}
	m.active = true
	log.Info().Msg("Auto-fill activated")
}

// Stop deactivates autonomous filling. A fill already in flight completes.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.active {
		return
	}
	m.active = false
	log.Info().Msg("Auto-fill deactivated")
}

// Active reports whether autonomous filling is on.
func (m *Monitor) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Run ticks until the context is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	log.Info().Dur("interval", m.interval).Dur("cooldown", m.cooldown).
		Msg("Auto-fill monitor started")

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Auto-fill monitor stopped")
			return
		case <-ticker.C:
			m.safeTick()
		}
	}
}

func (m *Monitor) safeTick() {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Auto-fill tick panicked")
		}
	}()
	m.Tick()
}

// Tick evaluates the queue once and dispatches at most one background fill.
// The cooldown timestamp is recorded before the background work starts so an
// overlapping tick observes it immediately.
func (m *Monitor) Tick() {
	snap, ok := m.status.Last()

	m.mu.Lock()
	if !m.active {
		m.mu.Unlock()
		return
	}
	// Not playing: no evaluation, no cooldown consumed.
	if !ok || !snap.Playing() {
		m.mu.Unlock()
		return
	}

	// Remember the last usable seed across metadata gaps between tracks.
	if snap.Artist != "" {
		m.lastArtist = snap.Artist
	}
	if snap.Genre != "" {
		m.lastGenre = snap.Genre
	}
	seedArtist := snap.Artist
	if seedArtist == "" {
		seedArtist = m.lastArtist
	}
	seedGenre := snap.Genre
	if seedGenre == "" {
		seedGenre = m.lastGenre
	}

	settings := m.settings.Get()
	if snap.QueueLength >= settings.MinQueueLength {
		m.mu.Unlock()
		return
	}
	if m.now().Sub(m.lastTrigger) <= m.cooldown {
		m.mu.Unlock()
		return
	}

	numTracks := settings.NumTracksMin
	if spread := settings.NumTracksMax - settings.NumTracksMin; spread > 0 {
		numTracks += m.intn(spread + 1)
	}

	stationName, stationGenres, stationActive := m.station.Snapshot()

	if !stationActive && seedArtist == "" && seedGenre == "" {
		// Terminal for this trigger window. Recording the timestamp keeps
		// the warning from repeating every tick.
		m.lastTrigger = m.now()
		m.mu.Unlock()
		log.Warn().Msg("Auto-fill skipped: no seed artist or genre available")
		m.notifier.Notify("warning", "Auto-fill could not determine a seed track; waiting for the next one.")
		return
	}

	m.lastTrigger = m.now()
	m.mu.Unlock()

	log.Info().Int("queue_length", snap.QueueLength).Int("min", settings.MinQueueLength).
		Int("num_tracks", numTracks).Bool("genre_station", stationActive).
		Msg("Auto-fill triggered")

	m.dispatch(func() {
		if stationActive {
			m.fillFromStation(stationName, stationGenres, numTracks)
			return
		}
		m.fillFromSeed(seedArtist, seedGenre, settings.GenreFilter, numTracks)
	})
}

func (m *Monitor) fillFromStation(name string, genres []string, numTracks int) {
	candidates, err := m.collector.CollectByGenre(genres, numTracks)
	if err != nil {
		log.Error().Err(err).Str("station", name).Msg("Genre station fill failed")
		m.notifier.Notify("error", fmt.Sprintf("Genre station %q: %v", name, err))
		return
	}
	m.finishFill(candidates, numTracks)
}

func (m *Monitor) fillFromSeed(artist, genre string, filterByGenre bool, numTracks int) {
	var (
		candidates []library.Track
		err        error
	)
	if artist != "" {
		filter := ""
		if filterByGenre {
			if genre == "" {
				log.Warn().Str("artist", artist).Msg("Genre filter requested but no genre known")
				m.notifier.Notify("warning", "Genre filter is on but no genre is known for the current track; adding tracks from all genres.")
			} else {
				filter = genre
			}
		}
		candidates, err = m.collector.Collect(artist, filter, numTracks)
	} else {
		// No artist anywhere, but a genre is known: fill from it directly.
		candidates, err = m.collector.CollectByGenre([]string{genre}, numTracks)
	}
	if err != nil {
		log.Error().Err(err).Str("artist", artist).Str("genre", genre).
			Msg("Auto-fill collection failed")
		m.notifier.Notify("error", fmt.Sprintf("Auto-fill found nothing to add: %v", err))
		return
	}
	m.finishFill(candidates, numTracks)
}

func (m *Monitor) finishFill(candidates []library.Track, numTracks int) {
	added := m.engine.Fill(candidates, numTracks)
	if added == 0 {
		m.notifier.Notify("warning", "Auto-fill could not add any tracks.")
		return
	}
	m.notifier.Notify("info", fmt.Sprintf("Auto-fill added %d tracks to the queue.", added))
	if m.onFilled != nil {
		m.onFilled()
	}
}
