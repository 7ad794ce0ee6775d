package player

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Monitor polls the daemon on a fixed interval and publishes a snapshot to
// its observers only when it differs from the previously published one.
type Monitor struct {
	source   *SnapshotSource
	interval time.Duration

	mu        sync.Mutex
	last      Snapshot
	hasLast   bool
	observers []func(Snapshot)
}

// NewMonitor creates a status monitor polling at the given interval.
func NewMonitor(source *SnapshotSource, interval time.Duration) *Monitor {
	return &Monitor{
		source:   source,
		interval: interval,
	}
}

// Subscribe registers an observer called for every published snapshot.
// Observers must be registered before Run starts.
func (m *Monitor) Subscribe(fn func(Snapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

// Last returns the most recently published snapshot, if any.
func (m *Monitor) Last() (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last, m.hasLast
}

// Poll captures a fresh snapshot and publishes it if it changed.
// It returns the snapshot and whether it was published.
func (m *Monitor) Poll() (Snapshot, bool) {
	snap := m.source.Capture()

	m.mu.Lock()
	if m.hasLast && snap == m.last {
		m.mu.Unlock()
		return snap, false
	}
	m.last = snap
	m.hasLast = true
	observers := make([]func(Snapshot), len(m.observers))
	copy(observers, m.observers)
	m.mu.Unlock()

	for _, fn := range observers {
		fn(snap)
	}
	return snap, true
}

// Run polls until the context is cancelled. A panicking observer aborts one
// poll, never the loop.
func (m *Monitor) Run(ctx context.Context) {
	log.Info().Dur("interval", m.interval).Msg("Status monitor started")

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Status monitor stopped")
			return
		case <-ticker.C:
			m.safePoll()
		}
	}
}

func (m *Monitor) safePoll() {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Status poll panicked")
		}
	}()
	m.Poll()
}
