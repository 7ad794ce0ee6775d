package player

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// StatusClient is the subset of MPD operations needed to build a snapshot.
type StatusClient interface {
	Status() (map[string]string, error)
	CurrentSong() (map[string]string, error)
	PlaylistInfo() ([]map[string]string, error)
}

// SnapshotSource builds normalized snapshots from the daemon.
type SnapshotSource struct {
	mpd StatusClient
}

// NewSnapshotSource creates a snapshot source over the given MPD client.
func NewSnapshotSource(mpd StatusClient) *SnapshotSource {
	return &SnapshotSource{mpd: mpd}
}

// Capture reads the daemon state and normalizes it into a Snapshot.
// Connection failures never surface as errors: callers always get a snapshot,
// synthetic disconnected/error ones included, so change detection is never
// bypassed by a failure path.
func (s *SnapshotSource) Capture() Snapshot {
	status, err := s.mpd.Status()
	if err != nil {
		log.Warn().Err(err).Msg("Could not read MPD status")
		return disconnectedSnapshot(StateDisconnected, fmt.Sprintf("Could not connect to MPD: %v", err))
	}

	song, err := s.mpd.CurrentSong()
	if err != nil {
		// Status worked but the follow-up failed mid-poll.
		log.Warn().Err(err).Msg("Could not read current song")
		return disconnectedSnapshot(StateError, fmt.Sprintf("MPD error: %v", err))
	}

	queue, err := s.mpd.PlaylistInfo()
	if err != nil {
		log.Warn().Err(err).Msg("Could not read queue")
		return disconnectedSnapshot(StateError, fmt.Sprintf("MPD error: %v", err))
	}

	return buildSnapshot(status, song, queue)
}

func buildSnapshot(status, song map[string]string, queue []map[string]string) Snapshot {
	snap := Snapshot{
		State:       playState(status["state"]),
		Artist:      song["Artist"],
		Title:       song["Title"],
		Album:       song["Album"],
		AlbumArtist: song["AlbumArtist"],
		Genre:       song["Genre"],
		File:        song["file"],
		QueueLength: len(queue),
		Shuffle:     status["random"] == "1",
		Consume:     status["consume"] == "1",
		Message:     "Connected to MPD.",
	}

	if vol, err := strconv.Atoi(status["volume"]); err == nil {
		snap.Volume = vol
	}

	if xfade, err := strconv.Atoi(status["xfade"]); err == nil && xfade > 0 {
		snap.CrossfadeEnabled = true
		snap.CrossfadeSecs = xfade
	}

	snap.RawElapsed, _ = strconv.ParseFloat(status["elapsed"], 64)
	snap.RawTotal, _ = strconv.ParseFloat(song["Time"], 64)
	if snap.RawTotal == 0 {
		snap.RawTotal, _ = strconv.ParseFloat(status["duration"], 64)
	}
	snap.Elapsed = formatTime(snap.RawElapsed)
	snap.Total = formatTime(snap.RawTotal)

	if sr, bits, ok := parseAudioFormat(status["audio"]); ok {
		snap.SampleRate = sr
		snap.BitDepth = bits
	}

	if ext := strings.TrimPrefix(strings.ToUpper(path.Ext(snap.File)), "."); ext != "" {
		snap.FileFormat = ext
	}

	if snap.Title == "" && snap.File != "" {
		snap.Title = path.Base(snap.File)
	}

	snap.NextTitle, snap.NextArtist = nextTrack(status, queue)

	snap.IsStream = strings.HasPrefix(snap.File, "http://") || strings.HasPrefix(snap.File, "https://")
	if snap.IsStream {
		normalizeStreamFields(&snap, song["Name"])
	}

	return snap
}

func playState(state string) PlayState {
	switch state {
	case "play":
		return StatePlaying
	case "pause":
		return StatePaused
	default:
		return StateStopped
	}
}

// normalizeStreamFields replaces the tag soup radio streams deliver with the
// best artist/title/station split we can extract.
func normalizeStreamFields(snap *Snapshot, streamName string) {
	if snap.RawTotal == 0 {
		snap.Total = "LIVE"
	}

	switch {
	case snap.Artist != "":
		if artist, station, ok := splitArtistStation(snap.Artist); ok {
			snap.Artist = artist
			snap.Album = station
			log.Debug().Str("artist", artist).Str("station", station).
				Msg("Stream metadata split from artist field")
		} else if artist, title, ok := parseStreamMetadata(snap.Artist); ok {
			snap.Artist = artist
			snap.Title = title
			if streamName != "" {
				snap.Album = streamName
			}
		}
	case snap.Title != "":
		if artist, title, ok := parseStreamMetadata(snap.Title); ok {
			snap.Artist = artist
			snap.Title = title
			if streamName != "" {
				snap.Album = streamName
			}
		}
	}
}

func nextTrack(status map[string]string, queue []map[string]string) (title, artist string) {
	title = "End of queue"
	artist = "—"

	idx, err := strconv.Atoi(status["song"])
	if err != nil || idx < 0 || idx+1 >= len(queue) {
		return title, artist
	}

	next := queue[idx+1]
	title = next["Title"]
	if title == "" {
		if title = next["file"]; title != "" {
			title = path.Base(title)
		} else {
			title = "Unknown Title"
		}
	}
	if artist = next["Artist"]; artist == "" {
		artist = "Unknown Artist"
	}
	return title, artist
}

func parseAudioFormat(audio string) (sampleRate, bitDepth int, ok bool) {
	if audio == "" {
		return 0, 0, false
	}
	parts := strings.Split(audio, ":")
	if len(parts) < 2 {
		return 0, 0, false
	}
	sr, err1 := strconv.Atoi(parts[0])
	bits, err2 := strconv.Atoi(parts[1])
	if err1 != nil {
		return 0, 0, false
	}
	if err2 != nil {
		// DSD streams report "dsd128:2" style formats without a bit depth.
		return sr, 0, true
	}
	return sr, bits, true
}

func formatTime(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
