package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chorus-player/chorus-mpd-backend/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load with empty path failed: %v", err)
	}

	if cfg.MPD.Host != "localhost" {
		t.Errorf("expected default MPD host localhost, got %q", cfg.MPD.Host)
	}
	if cfg.MPD.Port != 6600 {
		t.Errorf("expected default MPD port 6600, got %d", cfg.MPD.Port)
	}
	if cfg.AutoFill.MinQueueLength != 5 {
		t.Errorf("expected default min queue length 5, got %d", cfg.AutoFill.MinQueueLength)
	}
	if cfg.AutoFill.NumTracksMin != 20 || cfg.AutoFill.NumTracksMax != 25 {
		t.Errorf("expected default track bounds [20,25], got [%d,%d]",
			cfg.AutoFill.NumTracksMin, cfg.AutoFill.NumTracksMax)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing config file should not error: %v", err)
	}
	if cfg.Server.Port != "3001" {
		t.Errorf("expected default port 3001, got %q", cfg.Server.Port)
	}
}

func TestLoadFile(t *testing.T) {
	content := `
[mpd]
host = "music.local"
port = 6601

[lastfm]
api_key = "k"
api_secret = "s"
scrobbling = true

[autofill]
min_queue_length = 3
num_tracks_min = 10
num_tracks_max = 15
genre_filter = true
`
	path := filepath.Join(t.TempDir(), "chorus.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.MPD.Host != "music.local" || cfg.MPD.Port != 6601 {
		t.Errorf("unexpected MPD config: %+v", cfg.MPD)
	}
	if !cfg.Lastfm.Scrobbling || cfg.Lastfm.APIKey != "k" {
		t.Errorf("unexpected lastfm config: %+v", cfg.Lastfm)
	}
	if cfg.AutoFill.MinQueueLength != 3 || !cfg.AutoFill.GenreFilter {
		t.Errorf("unexpected autofill config: %+v", cfg.AutoFill)
	}

	// Values the file omits keep their defaults.
	if cfg.Server.Port != "3001" {
		t.Errorf("expected default server port, got %q", cfg.Server.Port)
	}
}

func TestLoadInvalidBounds(t *testing.T) {
	content := `
[autofill]
num_tracks_min = 20
num_tracks_max = 10
`
	path := filepath.Join(t.TempDir(), "chorus.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := config.Load(path); err == nil {
		t.Error("expected error for max < min track bounds")
	}
}
