package player_test

import (
	"testing"
	"time"

	"github.com/chorus-player/chorus-mpd-backend/internal/domain/player"
)

func TestMonitorPublishesOnlyOnChange(t *testing.T) {
	client := playingClient()
	monitor := player.NewMonitor(player.NewSnapshotSource(client), time.Second)

	var published []player.Snapshot
	monitor.Subscribe(func(s player.Snapshot) {
		published = append(published, s)
	})

	if _, changed := monitor.Poll(); !changed {
		t.Fatal("first poll must publish")
	}
	if _, changed := monitor.Poll(); changed {
		t.Fatal("unchanged state must not republish")
	}

	client.status["state"] = "pause"
	if _, changed := monitor.Poll(); !changed {
		t.Fatal("state change must publish")
	}

	if len(published) != 2 {
		t.Fatalf("expected 2 published snapshots, got %d", len(published))
	}
	if published[0].State != player.StatePlaying || published[1].State != player.StatePaused {
		t.Errorf("unexpected published states: %v, %v", published[0].State, published[1].State)
	}
}

func TestMonitorLast(t *testing.T) {
	monitor := player.NewMonitor(player.NewSnapshotSource(playingClient()), time.Second)

	if _, ok := monitor.Last(); ok {
		t.Fatal("Last must report nothing before the first poll")
	}

	want, _ := monitor.Poll()
	got, ok := monitor.Last()
	if !ok || got != want {
		t.Errorf("Last() = (%+v, %v), want polled snapshot", got, ok)
	}
}
