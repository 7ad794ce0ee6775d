// Package config loads the Chorus backend configuration from TOML files.
package config

import (
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the full backend configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	MPD      MPDConfig      `koanf:"mpd"`
	Lastfm   LastfmConfig   `koanf:"lastfm"`
	AutoFill AutoFillConfig `koanf:"autofill"`
	Store    StoreConfig    `koanf:"store"`
	Qobuz    QobuzConfig    `koanf:"qobuz"`
	Radio    RadioConfig    `koanf:"radio"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port      string `koanf:"port"`
	StaticDir string `koanf:"static_dir"`
}

// MPDConfig holds the player daemon connection settings.
type MPDConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Password string `koanf:"password"`
}

// LastfmConfig holds Last.fm API credentials and scrobbling settings.
type LastfmConfig struct {
	APIKey     string `koanf:"api_key"`
	APISecret  string `koanf:"api_secret"`
	SessionKey string `koanf:"session_key"`
	Scrobbling bool   `koanf:"scrobbling"`
}

// AutoFillConfig holds the queue replenishment defaults.
type AutoFillConfig struct {
	MinQueueLength int  `koanf:"min_queue_length"`
	NumTracksMin   int  `koanf:"num_tracks_min"`
	NumTracksMax   int  `koanf:"num_tracks_max"`
	GenreFilter    bool `koanf:"genre_filter"`
}

// StoreConfig holds the SQLite store location.
type StoreConfig struct {
	Path string `koanf:"path"`
}

// QobuzConfig holds Qobuz storefront credentials.
type QobuzConfig struct {
	AppID      string `koanf:"app_id"`
	AppSecret  string `koanf:"app_secret"`
	ConfigPath string `koanf:"config_path"`
}

// RadioConfig holds station directory settings.
type RadioConfig struct {
	CacheTTLHours int `koanf:"cache_ttl_hours"`
}

// Default returns the configuration defaults used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "3001",
		},
		MPD: MPDConfig{
			Host: "localhost",
			Port: 6600,
		},
		AutoFill: AutoFillConfig{
			MinQueueLength: 5,
			NumTracksMin:   20,
			NumTracksMax:   25,
		},
		Store: StoreConfig{
			Path: "data/chorus.db",
		},
		Qobuz: QobuzConfig{
			ConfigPath: "data/qobuz.json",
		},
		Radio: RadioConfig{
			CacheTTLHours: 24,
		},
	}
}

// Load reads the configuration from the given path, falling back to defaults
// for anything the file does not set. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.AutoFill.NumTracksMin <= 0 {
		return fmt.Errorf("autofill.num_tracks_min must be positive, got %d", c.AutoFill.NumTracksMin)
	}
	if c.AutoFill.NumTracksMax < c.AutoFill.NumTracksMin {
		return fmt.Errorf("autofill.num_tracks_max (%d) must be >= num_tracks_min (%d)",
			c.AutoFill.NumTracksMax, c.AutoFill.NumTracksMin)
	}
	if c.AutoFill.MinQueueLength < 0 {
		return fmt.Errorf("autofill.min_queue_length must not be negative, got %d", c.AutoFill.MinQueueLength)
	}
	if c.MPD.Port <= 0 || c.MPD.Port > 65535 {
		return fmt.Errorf("mpd.port out of range: %d", c.MPD.Port)
	}
	return nil
}
