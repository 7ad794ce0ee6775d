// Package library provides tag-based lookups against the local MPD catalog.
package library

import "strconv"

// Track is a normalized record for one playable file in the catalog.
// The raw MPD attribute maps are converted at this boundary so callers
// never deal with tag-key spelling.
type Track struct {
	URI         string
	Artist      string
	AlbumArtist string
	Title       string
	Album       string
	Genre       string
	Duration    int // seconds
}

// FromAttrs builds a Track from an MPD attribute map.
func FromAttrs(attrs map[string]string) Track {
	return Track{
		URI:         attrs["file"],
		Artist:      attrs["Artist"],
		AlbumArtist: attrs["AlbumArtist"],
		Title:       attrs["Title"],
		Album:       attrs["Album"],
		Genre:       attrs["Genre"],
		Duration:    parseSeconds(attrs["Time"], attrs["duration"]),
	}
}

func parseSeconds(values ...string) int {
	for _, v := range values {
		if v == "" {
			continue
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return int(f)
		}
	}
	return 0
}
