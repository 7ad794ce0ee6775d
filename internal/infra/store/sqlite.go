// Package store provides the SQLite-backed persistence layer: saved genre
// stations and a TTL cache for the radio directory.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/rs/zerolog/log"
)

// DefaultDBPath is the default path for the application database.
const DefaultDBPath = "data/chorus.db"

// DB wraps the SQLite database.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB creates a database instance. Call Open before use.
func NewDB(path string) *DB {
	if path == "" {
		path = DefaultDBPath
	}
	return &DB{path: path}
}

// Open opens the database and initializes the schema.
func (d *DB) Open() error {
	dir := filepath.Dir(d.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", d.path+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	d.db = db

	if err := d.initSchema(); err != nil {
		d.db.Close()
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	log.Info().Str("path", d.path).Msg("Database opened")
	return nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db != nil {
		err := d.db.Close()
		d.db = nil
		return err
	}
	return nil
}

func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS genre_stations (
		name TEXT PRIMARY KEY,
		genres TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS radio_cache (
		cache_key TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		fetched_at INTEGER NOT NULL
	);
	`
	if _, err := d.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// SaveStation stores a genre station, replacing an existing one of the same
// name. Genres are stored as a JSON array.
func (d *DB) SaveStation(name string, genres []string) error {
	if name == "" {
		return fmt.Errorf("station name is required")
	}
	if len(genres) == 0 {
		return fmt.Errorf("station %q has no genres", name)
	}

	payload, err := json.Marshal(genres)
	if err != nil {
		return fmt.Errorf("failed to encode genres: %w", err)
	}

	_, err = d.db.Exec(
		`INSERT OR REPLACE INTO genre_stations (name, genres, created_at) VALUES (?, ?, ?)`,
		name, string(payload), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save station %q: %w", name, err)
	}
	return nil
}

// GetStation returns a saved station's genres, or ok=false if absent.
func (d *DB) GetStation(name string) (genres []string, ok bool, err error) {
	var payload string
	err = d.db.QueryRow(`SELECT genres FROM genre_stations WHERE name = ?`, name).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load station %q: %w", name, err)
	}
	if err := json.Unmarshal([]byte(payload), &genres); err != nil {
		return nil, false, fmt.Errorf("failed to decode genres for %q: %w", name, err)
	}
	return genres, true, nil
}

// ListStations returns all saved stations keyed by name.
func (d *DB) ListStations() (map[string][]string, error) {
	rows, err := d.db.Query(`SELECT name, genres FROM genre_stations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list stations: %w", err)
	}
	defer rows.Close()

	stations := make(map[string][]string)
	for rows.Next() {
		var name, payload string
		if err := rows.Scan(&name, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan station row: %w", err)
		}
		var genres []string
		if err := json.Unmarshal([]byte(payload), &genres); err != nil {
			log.Warn().Err(err).Str("station", name).Msg("Skipping station with bad genre data")
			continue
		}
		stations[name] = genres
	}
	return stations, rows.Err()
}

// DeleteStation removes a saved station. Deleting an absent station is not
// an error.
func (d *DB) DeleteStation(name string) error {
	if _, err := d.db.Exec(`DELETE FROM genre_stations WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete station %q: %w", name, err)
	}
	return nil
}

// GetCached returns a cached payload if it is younger than maxAge.
func (d *DB) GetCached(key string, maxAge time.Duration) (payload string, ok bool, err error) {
	var fetchedAt int64
	err = d.db.QueryRow(
		`SELECT payload, fetched_at FROM radio_cache WHERE cache_key = ?`, key,
	).Scan(&payload, &fetchedAt)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cache key %q: %w", key, err)
	}
	if time.Since(time.Unix(fetchedAt, 0)) > maxAge {
		return "", false, nil
	}
	return payload, true, nil
}

// PutCached stores a payload under a cache key, replacing any previous value.
func (d *DB) PutCached(key, payload string) error {
	_, err := d.db.Exec(
		`INSERT OR REPLACE INTO radio_cache (cache_key, payload, fetched_at) VALUES (?, ?, ?)`,
		key, payload, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to write cache key %q: %w", key, err)
	}
	return nil
}
