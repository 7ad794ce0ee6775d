package radiodir_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chorus-player/chorus-mpd-backend/internal/infra/radiodir"
)

type memCache struct {
	entries map[string]string
	hits    int
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]string)}
}

func (m *memCache) GetCached(key string, maxAge time.Duration) (string, bool, error) {
	payload, ok := m.entries[key]
	if ok {
		m.hits++
	}
	return payload, ok, nil
}

func (m *memCache) PutCached(key, payload string) error {
	m.entries[key] = payload
	return nil
}

func TestSearchStations(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Path != "/json/stations/search" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("countrycode"); got != "DE" {
			t.Errorf("unexpected countrycode %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"stationuuid":"abc","name":"Deutschlandfunk","url_resolved":"https://st.example/dlf","countrycode":"DE","bitrate":128}]`))
	}))
	defer srv.Close()

	client := radiodir.NewClient(
		radiodir.WithBaseURL(srv.URL),
		radiodir.WithRateLimit(1000),
	)

	stations, err := client.SearchStations(context.Background(), "deutschland", "DE", 10)
	if err != nil {
		t.Fatalf("SearchStations: %v", err)
	}
	if len(stations) != 1 || stations[0].Name != "Deutschlandfunk" {
		t.Errorf("unexpected stations: %+v", stations)
	}
	if requests != 1 {
		t.Errorf("expected 1 upstream request, got %d", requests)
	}
}

func TestFetchUsesCache(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"name":"Germany","iso_3166_1":"DE","stationcount":2400}]`))
	}))
	defer srv.Close()

	cache := newMemCache()
	client := radiodir.NewClient(
		radiodir.WithBaseURL(srv.URL),
		radiodir.WithRateLimit(1000),
		radiodir.WithCache(cache, time.Hour),
	)

	for i := 0; i < 3; i++ {
		countries, err := client.Countries(context.Background())
		if err != nil {
			t.Fatalf("Countries: %v", err)
		}
		if len(countries) != 1 || countries[0].Code != "DE" {
			t.Fatalf("unexpected countries: %+v", countries)
		}
	}

	if requests != 1 {
		t.Errorf("expected a single upstream request with a warm cache, got %d", requests)
	}
	if cache.hits < 2 {
		t.Errorf("expected cache hits on repeat calls, got %d", cache.hits)
	}
}

func TestFetchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := radiodir.NewClient(radiodir.WithBaseURL(srv.URL), radiodir.WithRateLimit(1000))

	if _, err := client.TopStations(context.Background(), 5); err == nil {
		t.Fatal("expected error on upstream failure")
	}
}
