package socketio

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/zishang520/socket.io/servers/socket/v3"

	"github.com/chorus-player/chorus-mpd-backend/internal/domain/autofill"
)

// registerAutoFillHandlers wires the auto-fill control events.
func (s *Server) registerAutoFillHandlers(client *socket.Socket, clientID string) {
	client.On("autofillStart", func(args ...any) {
		log.Info().Str("id", clientID).Msg("autofillStart")
		s.fillMonitor.Start()
		s.pushAutoFillStatus(client)
	})

	client.On("autofillStop", func(args ...any) {
		log.Info().Str("id", clientID).Msg("autofillStop")
		s.fillMonitor.Stop()
		s.pushAutoFillStatus(client)
	})

	client.On("autofillStatus", func(args ...any) {
		s.pushAutoFillStatus(client)
	})

	client.On("autofillSettings", func(args ...any) {
		m, ok := payload(args)
		if !ok {
			return
		}
		current := s.fillSettings.Get()
		updated := autofill.Settings{
			MinQueueLength: intField(m, "min_queue_length", current.MinQueueLength),
			NumTracksMin:   intField(m, "num_tracks_min", current.NumTracksMin),
			NumTracksMax:   intField(m, "num_tracks_max", current.NumTracksMax),
			GenreFilter:    boolField(m, "genre_filter", current.GenreFilter),
		}
		if err := s.fillSettings.Set(updated); err != nil {
			s.notifyClient(client, "error", "Invalid auto-fill settings: "+err.Error())
			return
		}
		log.Info().Str("id", clientID).Interface("settings", updated).Msg("Auto-fill settings updated")
		s.pushAutoFillStatus(client)
	})

	// Manual similarity fill seeded from a named artist.
	client.On("addRandomTracks", func(args ...any) {
		m, ok := payload(args)
		if !ok {
			return
		}
		artist, _ := m["artist"].(string)
		genre, _ := m["genre"].(string)
		count := intField(m, "num_tracks", s.fillSettings.Get().NumTracksMin)
		clearFirst := boolField(m, "clear_queue", false)

		go func() {
			added, err := s.fillService.FillFromArtist(artist, genre, count, clearFirst)
			if err != nil {
				s.Notify("error", "Fill failed: "+err.Error())
				return
			}
			s.Notify("info", notifyAdded(added))
			s.BroadcastQueue()
		}()
	})

	client.On("addTopTracks", func(args ...any) {
		m, ok := payload(args)
		if !ok {
			return
		}
		artist, _ := m["artist"].(string)
		count := intField(m, "count", 10)

		go func() {
			added, err := s.fillService.AddTopTracks(artist, count)
			if err != nil {
				s.Notify("error", "Could not add top tracks: "+err.Error())
				return
			}
			s.Notify("info", notifyAdded(added))
			s.BroadcastQueue()
		}()
	})

	client.On("addTopAlbums", func(args ...any) {
		m, ok := payload(args)
		if !ok {
			return
		}
		artist, _ := m["artist"].(string)
		count := intField(m, "count", 3)

		go func() {
			added, err := s.fillService.AddTopAlbums(artist, count)
			if err != nil {
				s.Notify("error", "Could not add top albums: "+err.Error())
				return
			}
			s.Notify("info", notifyAdded(added))
			s.BroadcastQueue()
		}()
	})
}

func (s *Server) pushAutoFillStatus(client *socket.Socket) {
	settings := s.fillSettings.Get()
	status := map[string]any{
		"active":           s.fillMonitor.Active(),
		"min_queue_length": settings.MinQueueLength,
		"num_tracks_min":   settings.NumTracksMin,
		"num_tracks_max":   settings.NumTracksMax,
		"genre_filter":     settings.GenreFilter,
	}
	if station, ok := s.stationService.Current(); ok {
		status["station"] = station
	}
	client.Emit("autofill_status", status)
}

func notifyAdded(added int) string {
	if added == 1 {
		return "Added 1 track to the queue."
	}
	return fmt.Sprintf("Added %d tracks to the queue.", added)
}
