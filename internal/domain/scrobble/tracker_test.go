package scrobble_test

import (
	"testing"
	"time"

	"github.com/chorus-player/chorus-mpd-backend/internal/domain/player"
	"github.com/chorus-player/chorus-mpd-backend/internal/domain/scrobble"
)

type fakeSubmitter struct {
	nowPlaying []string
	scrobbles  []string
}

func (f *fakeSubmitter) UpdateNowPlaying(artist, title, album string, duration int) error {
	f.nowPlaying = append(f.nowPlaying, artist+" - "+title)
	return nil
}

func (f *fakeSubmitter) Scrobble(artist, title, album string, started time.Time, duration int) error {
	f.scrobbles = append(f.scrobbles, artist+" - "+title)
	return nil
}

func playingSnap(artist, title string, elapsed, total float64) player.Snapshot {
	return player.Snapshot{
		State:      player.StatePlaying,
		Artist:     artist,
		Title:      title,
		RawElapsed: elapsed,
		RawTotal:   total,
	}
}

func TestObserveSendsNowPlayingOnNewTrack(t *testing.T) {
	sub := &fakeSubmitter{}
	tracker := scrobble.NewTracker(sub, true)

	tracker.Observe(playingSnap("Radiohead", "Airbag", 5, 284))
	tracker.Observe(playingSnap("Radiohead", "Airbag", 10, 284))

	if len(sub.nowPlaying) != 1 {
		t.Fatalf("expected one now-playing update, got %d", len(sub.nowPlaying))
	}
}

func TestObserveScrobblesAtHalfDuration(t *testing.T) {
	sub := &fakeSubmitter{}
	tracker := scrobble.NewTracker(sub, true)

	tracker.Observe(playingSnap("Radiohead", "Airbag", 5, 200))
	tracker.Observe(playingSnap("Radiohead", "Airbag", 99, 200))
	if len(sub.scrobbles) != 0 {
		t.Fatal("must not scrobble before half the track")
	}

	tracker.Observe(playingSnap("Radiohead", "Airbag", 100, 200))
	if len(sub.scrobbles) != 1 {
		t.Fatalf("expected one scrobble at half duration, got %d", len(sub.scrobbles))
	}
}

func TestObserveScrobblesAtFourMinutes(t *testing.T) {
	sub := &fakeSubmitter{}
	tracker := scrobble.NewTracker(sub, true)

	// A long track scrobbles at 240s even though that is well under half.
	tracker.Observe(playingSnap("Sleep", "Dopesmoker", 5, 3803))
	tracker.Observe(playingSnap("Sleep", "Dopesmoker", 241, 3803))

	if len(sub.scrobbles) != 1 {
		t.Fatalf("expected one scrobble at four minutes, got %d", len(sub.scrobbles))
	}
}

func TestObserveScrobblesAtMostOnce(t *testing.T) {
	sub := &fakeSubmitter{}
	tracker := scrobble.NewTracker(sub, true)

	tracker.Observe(playingSnap("Radiohead", "Airbag", 5, 200))
	for e := 100.0; e < 200; e += 10 {
		tracker.Observe(playingSnap("Radiohead", "Airbag", e, 200))
	}

	if len(sub.scrobbles) != 1 {
		t.Fatalf("expected exactly one scrobble per play, got %d", len(sub.scrobbles))
	}
}

func TestObserveRearmsOnTrackChange(t *testing.T) {
	sub := &fakeSubmitter{}
	tracker := scrobble.NewTracker(sub, true)

	tracker.Observe(playingSnap("Radiohead", "Airbag", 5, 200))
	tracker.Observe(playingSnap("Radiohead", "Airbag", 150, 200))
	tracker.Observe(playingSnap("Radiohead", "Karma Police", 5, 260))
	tracker.Observe(playingSnap("Radiohead", "Karma Police", 140, 260))

	if len(sub.scrobbles) != 2 {
		t.Fatalf("expected a scrobble per track, got %d", len(sub.scrobbles))
	}
	if len(sub.nowPlaying) != 2 {
		t.Fatalf("expected a now-playing update per track, got %d", len(sub.nowPlaying))
	}
}

func TestObserveIgnoresUnusableSnapshots(t *testing.T) {
	sub := &fakeSubmitter{}
	tracker := scrobble.NewTracker(sub, true)

	paused := playingSnap("Radiohead", "Airbag", 150, 200)
	paused.State = player.StatePaused
	tracker.Observe(paused)
	tracker.Observe(playingSnap("", "Untitled Stream", 150, 200))

	if len(sub.nowPlaying) != 0 || len(sub.scrobbles) != 0 {
		t.Fatal("paused or anonymous snapshots must not submit anything")
	}
}

func TestObserveDisabled(t *testing.T) {
	sub := &fakeSubmitter{}
	tracker := scrobble.NewTracker(sub, false)

	tracker.Observe(playingSnap("Radiohead", "Airbag", 150, 200))
	if len(sub.nowPlaying) != 0 {
		t.Fatal("disabled tracker must not submit")
	}

	tracker.SetEnabled(true)
	tracker.Observe(playingSnap("Radiohead", "Airbag", 160, 200))
	if len(sub.nowPlaying) != 1 {
		t.Fatal("re-enabled tracker must resume submitting")
	}
}
