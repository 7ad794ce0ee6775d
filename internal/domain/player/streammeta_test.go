package player

import "testing"

func TestParseStreamMetadata(t *testing.T) {
	tests := []struct {
		name   string
		field  string
		artist string
		title  string
		ok     bool
	}{
		{"title by artist", "Karma Police by Radiohead", "Radiohead", "Karma Police", true},
		{"artist dash title", "Portishead - Glory Box", "Portishead", "Glory Box", true},
		{"en dash", "Burial – Archangel", "Burial", "Archangel", true},
		{"em dash", "Aphex Twin — Flim", "Aphex Twin", "Flim", true},
		{"plain title", "Untitled", "", "", false},
		{"empty", "", "", "", false},
		{"placeholder", "N/A", "", "", false},
		{"leading dash", "- broken", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			artist, title, ok := parseStreamMetadata(tt.field)
			if ok != tt.ok || artist != tt.artist || title != tt.title {
				t.Errorf("parseStreamMetadata(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.field, artist, title, ok, tt.artist, tt.title, tt.ok)
			}
		})
	}
}

func TestSplitArtistStation(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		artist  string
		station string
		ok      bool
	}{
		{"radio suffix", "Miles Davis - Jazz24 Radio", "Miles Davis", "Jazz24 Radio", true},
		{"domain suffix", "Four Tet - NTS.fm", "Four Tet", "NTS.fm", true},
		{"two artists", "Simon - Garfunkel", "", "", false},
		{"no separator", "KEXP Seattle", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			artist, station, ok := splitArtistStation(tt.field)
			if ok != tt.ok || artist != tt.artist || station != tt.station {
				t.Errorf("splitArtistStation(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.field, artist, station, ok, tt.artist, tt.station, tt.ok)
			}
		})
	}
}

func TestHasStationIndicators(t *testing.T) {
	if !hasStationIndicators("Groove Salad Station") {
		t.Error("expected station match for 'Station'")
	}
	if hasStationIndicators("") {
		t.Error("empty string must not match")
	}
}
