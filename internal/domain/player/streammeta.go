package player

import "strings"

// Radio streams stuff whatever metadata they have into the title or artist
// field, usually in one of a handful of conventions. These helpers pull a
// usable artist/title pair back out, best effort.

var dashSeparators = []string{" - ", " – ", " — "}

var stationIndicators = []string{
	"radio", ".com", ".fm", ".net", "station", "broadcasting", "fm", "am",
}

// hasStationIndicators reports whether the text looks like a station name
// rather than an artist or track title.
func hasStationIndicators(text string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, ind := range stationIndicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}

// parseStreamMetadata extracts (artist, title) from a free-form stream title
// field. Supported conventions, in order: "Title by Artist" and
// "Artist - Title" with several dash variants. Returns ok=false when no
// convention matched.
func parseStreamMetadata(titleField string) (artist, title string, ok bool) {
	if titleField == "" || titleField == "N/A" {
		return "", "", false
	}

	if idx := strings.Index(titleField, " by "); idx > 0 {
		title = strings.TrimSpace(titleField[:idx])
		artist = strings.TrimSpace(titleField[idx+len(" by "):])
		if title != "" && artist != "" {
			return artist, title, true
		}
	}

	for _, sep := range dashSeparators {
		if idx := strings.Index(titleField, sep); idx > 0 {
			artist = strings.TrimSpace(titleField[:idx])
			title = strings.TrimSpace(titleField[idx+len(sep):])
			if artist != "" && title != "" {
				return artist, title, true
			}
		}
	}

	return "", "", false
}

// splitArtistStation splits an "Artist - Station" value when the second part
// looks like a station name. Returns ok=false when the field does not match.
func splitArtistStation(field string) (artist, station string, ok bool) {
	for _, sep := range dashSeparators {
		if idx := strings.Index(field, sep); idx > 0 {
			first := strings.TrimSpace(field[:idx])
			second := strings.TrimSpace(field[idx+len(sep):])
			if first != "" && hasStationIndicators(second) {
				return first, second, true
			}
		}
	}
	return "", "", false
}
