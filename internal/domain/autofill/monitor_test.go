package autofill_test

import (
	"strings"
	"testing"
	"time"

	"github.com/chorus-player/chorus-mpd-backend/internal/domain/autofill"
	"github.com/chorus-player/chorus-mpd-backend/internal/domain/library"
	"github.com/chorus-player/chorus-mpd-backend/internal/domain/player"
	"github.com/chorus-player/chorus-mpd-backend/internal/infra/lastfm"
)

type fakeStatus struct {
	snap player.Snapshot
	ok   bool
}

func (f *fakeStatus) Last() (player.Snapshot, bool) { return f.snap, f.ok }

type fakeNotifier struct {
	notices []string
}

func (f *fakeNotifier) Notify(kind, text string) {
	f.notices = append(f.notices, kind+": "+text)
}

// monitorFixture wires a monitor with a fake clock and synchronous dispatch.
type monitorFixture struct {
	monitor  *autofill.Monitor
	status   *fakeStatus
	queue    *fakeQueue
	notifier *fakeNotifier
	clock    *fakeClock
	fills    int
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newMonitorFixture(t *testing.T, lib *fakeLibrary, sim *fakeSimilarity) *monitorFixture {
	t.Helper()

	f := &monitorFixture{
		status: &fakeStatus{
			snap: player.Snapshot{
				State:       player.StatePlaying,
				Artist:      "Radiohead",
				Genre:       "Alternative Rock",
				QueueLength: 3,
			},
			ok: true,
		},
		queue:    &fakeQueue{},
		notifier: &fakeNotifier{},
		clock:    &fakeClock{now: time.Unix(1_000_000, 0)},
	}

	settings := autofill.NewSettingsStore(autofill.Settings{
		MinQueueLength: 5,
		NumTracksMin:   2,
		NumTracksMax:   2,
	})
	collector := autofill.NewCollector(lib, sim)

	f.monitor = autofill.NewMonitor(
		f.status, collector, autofill.NewEngine(f.queue),
		settings, autofill.NewStationState(), f.notifier,
		autofill.WithClock(f.clock.Now),
		autofill.WithRandInt(func(n int) int { return 0 }),
		autofill.WithDispatch(func(fn func()) { f.fills++; fn() }),
	)
	f.monitor.Start()
	return f
}

func TestTickDispatchesOnceThenCoolsDown(t *testing.T) {
	lib, sim := similarityFixture()
	f := newMonitorFixture(t, lib, sim)

	f.monitor.Tick()
	if f.fills != 1 {
		t.Fatalf("expected exactly one dispatch, got %d", f.fills)
	}
	if len(f.queue.added) != 2 {
		t.Errorf("expected 2 tracks added, got %d", len(f.queue.added))
	}

	// Immediately after the trigger the cooldown must block another one.
	f.monitor.Tick()
	if f.fills != 1 {
		t.Fatalf("expected cooldown to block the second tick, got %d dispatches", f.fills)
	}

	// After the cooldown elapses a low queue triggers again.
	f.clock.Advance(31 * time.Second)
	f.monitor.Tick()
	if f.fills != 2 {
		t.Fatalf("expected a second dispatch after cooldown, got %d", f.fills)
	}
}

func TestTickSkipsWhenNotPlaying(t *testing.T) {
	lib, sim := similarityFixture()
	f := newMonitorFixture(t, lib, sim)

	f.status.snap.State = player.StatePaused
	f.monitor.Tick()
	if f.fills != 0 {
		t.Fatalf("expected no dispatch while paused, got %d", f.fills)
	}

	// The skipped tick must not have consumed the cooldown.
	f.status.snap.State = player.StatePlaying
	f.monitor.Tick()
	if f.fills != 1 {
		t.Fatalf("expected dispatch once playing resumes, got %d", f.fills)
	}
}

func TestTickSkipsWhenQueueAboveThreshold(t *testing.T) {
	lib, sim := similarityFixture()
	f := newMonitorFixture(t, lib, sim)

	f.status.snap.QueueLength = 5
	f.monitor.Tick()
	if f.fills != 0 {
		t.Fatalf("expected no dispatch at threshold, got %d", f.fills)
	}
}

func TestTickSkipsWhenInactive(t *testing.T) {
	lib, sim := similarityFixture()
	f := newMonitorFixture(t, lib, sim)
	f.monitor.Stop()

	f.monitor.Tick()
	if f.fills != 0 {
		t.Fatalf("expected no dispatch while stopped, got %d", f.fills)
	}
	if f.monitor.Active() {
		t.Error("monitor must report inactive after Stop")
	}
}

func TestTickNoSeedIsTerminal(t *testing.T) {
	lib, sim := similarityFixture()
	f := newMonitorFixture(t, lib, sim)
	f.status.snap.Artist = ""
	f.status.snap.Genre = ""

	f.monitor.Tick()
	if f.fills != 0 {
		t.Fatalf("expected no dispatch without a seed, got %d", f.fills)
	}
	if len(f.notifier.notices) != 1 {
		t.Fatalf("expected a single user notice, got %v", f.notifier.notices)
	}

	// The notice must not repeat on the next tick inside the cooldown.
	f.monitor.Tick()
	if len(f.notifier.notices) != 1 {
		t.Fatalf("expected no repeated notice, got %v", f.notifier.notices)
	}
}

func TestTickSeedFallsBackToLastKnown(t *testing.T) {
	lib, sim := similarityFixture()
	f := newMonitorFixture(t, lib, sim)

	// First tick sees full metadata but a long queue, which stores the seed.
	f.status.snap.QueueLength = 10
	f.monitor.Tick()

	// Between tracks the metadata vanishes while the queue runs low.
	f.status.snap.Artist = ""
	f.status.snap.Genre = ""
	f.status.snap.QueueLength = 3
	f.monitor.Tick()

	if f.fills != 1 {
		t.Fatalf("expected dispatch from the remembered seed, got %d", f.fills)
	}
	if len(f.queue.added) == 0 {
		t.Error("expected tracks added from the remembered artist")
	}
}

func TestTickGenreStationMode(t *testing.T) {
	lib := &fakeLibrary{tracks: []library.Track{
		track("Nina Simone", "Feeling Good", "Vocal Jazz"),
		track("Miles Davis", "So What", "Jazz"),
	}}
	f := newMonitorFixture(t, lib, &fakeSimilarity{})

	station := autofill.NewStationState()
	station.Set("Late Night Jazz", []string{"Jazz", "Vocal Jazz"})
	// Rebuild the monitor with the active station.
	f.monitor = autofill.NewMonitor(
		f.status, autofill.NewCollector(lib, &fakeSimilarity{}),
		autofill.NewEngine(f.queue),
		autofill.NewSettingsStore(autofill.Settings{MinQueueLength: 5, NumTracksMin: 2, NumTracksMax: 2}),
		station, f.notifier,
		autofill.WithClock(f.clock.Now),
		autofill.WithRandInt(func(n int) int { return 0 }),
		autofill.WithDispatch(func(fn func()) { f.fills++; fn() }),
	)
	f.monitor.Start()

	f.monitor.Tick()
	if f.fills != 1 {
		t.Fatalf("expected one station dispatch, got %d", f.fills)
	}
	if len(f.queue.added) != 2 {
		t.Fatalf("expected 2 jazz tracks added, got %d", len(f.queue.added))
	}
}

func TestTickGenreFilterWithoutGenreWarns(t *testing.T) {
	lib, sim := similarityFixture()
	f := newMonitorFixture(t, lib, sim)

	// Enable filtering, then make the current track carry no genre tag.
	f.monitor = autofill.NewMonitor(
		f.status, autofill.NewCollector(lib, sim),
		autofill.NewEngine(f.queue),
		autofill.NewSettingsStore(autofill.Settings{
			MinQueueLength: 5, NumTracksMin: 2, NumTracksMax: 2, GenreFilter: true,
		}),
		autofill.NewStationState(), f.notifier,
		autofill.WithClock(f.clock.Now),
		autofill.WithRandInt(func(n int) int { return 0 }),
		autofill.WithDispatch(func(fn func()) { f.fills++; fn() }),
	)
	f.monitor.Start()
	f.status.snap.Genre = ""

	f.monitor.Tick()
	if f.fills != 1 {
		t.Fatalf("expected the fill to proceed unfiltered, got %d dispatches", f.fills)
	}
	if len(f.queue.added) != 2 {
		t.Errorf("expected 2 tracks added without filtering, got %d", len(f.queue.added))
	}
	if len(f.notifier.notices) == 0 || !strings.HasPrefix(f.notifier.notices[0], "warning:") {
		t.Fatalf("expected a warning notice before degrading, got %v", f.notifier.notices)
	}
}

// similarityFixture builds a library and similarity source where a
// Radiohead seed resolves to two library tracks.
func similarityFixture() (*fakeLibrary, *fakeSimilarity) {
	lib := &fakeLibrary{tracks: []library.Track{
		track("Portishead", "Glory Box", "Trip-Hop"),
		track("Massive Attack", "Teardrop", "Trip-Hop"),
	}}
	sim := &fakeSimilarity{
		similar: map[string][]lastfm.SimilarArtist{
			"radiohead": {{Name: "Portishead", Match: 0.9}, {Name: "Massive Attack", Match: 0.8}},
		},
		topTracks: map[string][]lastfm.TopTrack{
			"portishead":     {{Artist: "Portishead", Title: "Glory Box"}},
			"massive attack": {{Artist: "Massive Attack", Title: "Teardrop"}},
		},
	}
	return lib, sim
}
