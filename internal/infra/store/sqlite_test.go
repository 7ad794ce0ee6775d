package store_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/chorus-player/chorus-mpd-backend/internal/infra/store"
)

func openTestDB(t *testing.T) *store.DB {
	t.Helper()
	db := store.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err := db.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestStationRoundTrip(t *testing.T) {
	db := openTestDB(t)

	if err := db.SaveStation("Late Night Jazz", []string{"Jazz", "Vocal Jazz"}); err != nil {
		t.Fatalf("SaveStation: %v", err)
	}

	genres, ok, err := db.GetStation("Late Night Jazz")
	if err != nil || !ok {
		t.Fatalf("GetStation: ok=%v err=%v", ok, err)
	}
	if len(genres) != 2 || genres[0] != "Jazz" {
		t.Errorf("unexpected genres: %v", genres)
	}

	if _, ok, _ := db.GetStation("Missing"); ok {
		t.Error("absent station must report ok=false")
	}
}

func TestStationReplaceAndDelete(t *testing.T) {
	db := openTestDB(t)

	if err := db.SaveStation("Mix", []string{"Rock"}); err != nil {
		t.Fatalf("SaveStation: %v", err)
	}
	if err := db.SaveStation("Mix", []string{"Rock", "Metal"}); err != nil {
		t.Fatalf("SaveStation replace: %v", err)
	}

	stations, err := db.ListStations()
	if err != nil {
		t.Fatalf("ListStations: %v", err)
	}
	if len(stations) != 1 || len(stations["Mix"]) != 2 {
		t.Errorf("expected replaced station, got %v", stations)
	}

	if err := db.DeleteStation("Mix"); err != nil {
		t.Fatalf("DeleteStation: %v", err)
	}
	if err := db.DeleteStation("Mix"); err != nil {
		t.Errorf("deleting an absent station must not error: %v", err)
	}
}

func TestSaveStationValidation(t *testing.T) {
	db := openTestDB(t)

	if err := db.SaveStation("", []string{"Jazz"}); err == nil {
		t.Error("expected error for empty name")
	}
	if err := db.SaveStation("Empty", nil); err == nil {
		t.Error("expected error for empty genre list")
	}
}

func TestRadioCacheTTL(t *testing.T) {
	db := openTestDB(t)

	if err := db.PutCached("countries", `["DE","NL"]`); err != nil {
		t.Fatalf("PutCached: %v", err)
	}

	payload, ok, err := db.GetCached("countries", time.Hour)
	if err != nil || !ok {
		t.Fatalf("GetCached: ok=%v err=%v", ok, err)
	}
	if payload != `["DE","NL"]` {
		t.Errorf("unexpected payload: %s", payload)
	}

	// A zero max age makes every entry stale.
	if _, ok, _ := db.GetCached("countries", -time.Second); ok {
		t.Error("stale entry must miss")
	}

	if _, ok, _ := db.GetCached("absent", time.Hour); ok {
		t.Error("absent key must miss")
	}
}
