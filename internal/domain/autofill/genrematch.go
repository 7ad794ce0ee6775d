// Package autofill keeps the playback queue topped up with recommendations
// seeded from the current track, or from a fixed genre set when a genre
// station is active.
package autofill

import "strings"

// MatchGenre reports whether a track genre satisfies a target genre.
// Matching is case-insensitive and tolerant of tag variation: an exact match
// wins, then substring containment in either direction, then a comparison of
// the base genres with any parenthesized qualifier stripped, so
// "Rock (Progressive)" still matches "rock".
func MatchGenre(trackGenre, targetGenre string) bool {
	track := strings.ToLower(strings.TrimSpace(trackGenre))
	target := strings.ToLower(strings.TrimSpace(targetGenre))
	if track == "" || target == "" {
		return false
	}

	if track == target {
		return true
	}
	if strings.Contains(track, target) || strings.Contains(target, track) {
		return true
	}

	trackBase := baseGenre(track)
	targetBase := baseGenre(target)
	return trackBase != "" && trackBase == targetBase
}

// baseGenre strips a trailing parenthesized qualifier from a genre tag.
func baseGenre(genre string) string {
	if idx := strings.Index(genre, "("); idx > 0 {
		return strings.TrimSpace(genre[:idx])
	}
	return genre
}
