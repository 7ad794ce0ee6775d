// Package player provides playback state capture and transport control for
// the MPD daemon.
package player

// PlayState is the coarse playback state of the daemon.
type PlayState string

const (
	StatePlaying      PlayState = "play"
	StatePaused       PlayState = "pause"
	StateStopped      PlayState = "stop"
	StateDisconnected PlayState = "disconnected"
	StateError        PlayState = "error"
)

// Snapshot is a normalized projection of the daemon's state at one poll.
// It contains only comparable fields so two snapshots can be checked for
// structural equality with ==; the status monitor publishes a snapshot only
// when it differs from the previously published one.
type Snapshot struct {
	State PlayState `json:"state"`

	// Current track identity.
	Artist      string `json:"artist"`
	Title       string `json:"title"`
	Album       string `json:"album"`
	AlbumArtist string `json:"album_artist"`
	Genre       string `json:"genre"`
	File        string `json:"file"`

	// Timing, formatted for display plus raw seconds.
	Elapsed    string  `json:"elapsed"` // MM:SS
	Total      string  `json:"total"`   // MM:SS, or "LIVE" for streams with unknown duration
	RawElapsed float64 `json:"raw_elapsed"`
	RawTotal   float64 `json:"raw_total"`

	// Audio format.
	FileFormat string `json:"file_format"`
	SampleRate int    `json:"sample_rate"`
	BitDepth   int    `json:"bit_depth"`

	// Mixer and queue.
	Volume      int `json:"volume"`
	QueueLength int `json:"queue_length"`

	// Playback options.
	Shuffle          bool `json:"shuffle"`
	Consume          bool `json:"consume"`
	CrossfadeEnabled bool `json:"crossfade_enabled"`
	CrossfadeSecs    int  `json:"crossfade_secs"`

	// Stream handling.
	IsStream bool `json:"is_stream"`

	// Up-next preview.
	NextTitle  string `json:"next_title"`
	NextArtist string `json:"next_artist"`

	Message string `json:"message"`
}

// Playing reports whether the daemon is actively playing.
func (s Snapshot) Playing() bool {
	return s.State == StatePlaying
}

// disconnectedSnapshot builds the synthetic snapshot used when the daemon
// cannot be reached or errors out, so change detection keeps working.
func disconnectedSnapshot(state PlayState, message string) Snapshot {
	return Snapshot{
		State:      state,
		Total:      "00:00",
		Elapsed:    "00:00",
		NextTitle:  "N/A",
		NextArtist: "N/A",
		Message:    message,
	}
}
