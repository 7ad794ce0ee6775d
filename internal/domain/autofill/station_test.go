package autofill_test

import (
	"testing"

	"github.com/chorus-player/chorus-mpd-backend/internal/domain/autofill"
)

func TestStationStateLifecycle(t *testing.T) {
	s := autofill.NewStationState()

	if _, _, active := s.Snapshot(); active {
		t.Fatal("new station state must be inactive")
	}

	s.Set("Late Night Jazz", []string{"Jazz", "Vocal Jazz"})
	name, genres, active := s.Snapshot()
	if !active || name != "Late Night Jazz" || len(genres) != 2 {
		t.Fatalf("unexpected snapshot: %q %v %v", name, genres, active)
	}

	// The returned slice is a copy.
	genres[0] = "mutated"
	if _, fresh, _ := s.Snapshot(); fresh[0] != "Jazz" {
		t.Error("snapshot must not expose internal state")
	}

	s.Clear()
	if _, _, active := s.Snapshot(); active {
		t.Error("cleared station must be inactive")
	}
}

func TestStationStateEmptyGenresDeactivates(t *testing.T) {
	s := autofill.NewStationState()
	s.Set("Empty", nil)
	if _, _, active := s.Snapshot(); active {
		t.Error("a station with no genres must not activate")
	}
}

func TestSettingsValidation(t *testing.T) {
	tests := []struct {
		name     string
		settings autofill.Settings
		wantErr  bool
	}{
		{"valid", autofill.Settings{MinQueueLength: 5, NumTracksMin: 20, NumTracksMax: 25}, false},
		{"zero min queue", autofill.Settings{MinQueueLength: 0, NumTracksMin: 1, NumTracksMax: 1}, true},
		{"inverted range", autofill.Settings{MinQueueLength: 5, NumTracksMin: 10, NumTracksMax: 5}, true},
		{"zero tracks", autofill.Settings{MinQueueLength: 5, NumTracksMin: 0, NumTracksMax: 5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSettingsStoreRejectsInvalid(t *testing.T) {
	store := autofill.NewSettingsStore(autofill.Settings{MinQueueLength: 5, NumTracksMin: 2, NumTracksMax: 4})

	if err := store.Set(autofill.Settings{MinQueueLength: 0}); err == nil {
		t.Fatal("expected invalid settings to be rejected")
	}
	if got := store.Get(); got.MinQueueLength != 5 {
		t.Errorf("rejected update must not change the store, got %+v", got)
	}
}
