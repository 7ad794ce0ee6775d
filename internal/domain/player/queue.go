package player

import (
	"path"
	"strconv"
)

// QueueItem is one entry of the play queue, normalized for transport.
type QueueItem struct {
	URI      string `json:"uri"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	Genre    string `json:"genre,omitempty"`
	Duration int    `json:"duration,omitempty"`
}

func queueItemFromAttrs(song map[string]string) QueueItem {
	item := QueueItem{
		URI:    song["file"],
		Title:  song["Title"],
		Artist: song["Artist"],
		Album:  song["Album"],
		Genre:  song["Genre"],
	}
	if item.Title == "" && item.URI != "" {
		item.Title = path.Base(item.URI)
	}
	if d, err := strconv.Atoi(song["Time"]); err == nil {
		item.Duration = d
	}
	return item
}
