package socketio

import (
	"github.com/rs/zerolog/log"
	"github.com/zishang520/socket.io/servers/socket/v3"
)

// registerStationHandlers wires the genre station CRUD and activation
// events.
func (s *Server) registerStationHandlers(client *socket.Socket, clientID string) {
	client.On("listStations", func(args ...any) {
		s.pushStations(client)
	})

	client.On("saveStation", func(args ...any) {
		m, ok := payload(args)
		if !ok {
			return
		}
		name, _ := m["name"].(string)
		genres := stringSliceField(m, "genres")

		if err := s.stationService.Save(name, genres); err != nil {
			s.notifyClient(client, "error", "Could not save station: "+err.Error())
			return
		}
		s.notifyClient(client, "info", "Station saved.")
		s.pushStations(client)
	})

	client.On("deleteStation", func(args ...any) {
		name, ok := stringField(args, "name")
		if !ok {
			return
		}
		if err := s.stationService.Delete(name); err != nil {
			s.notifyClient(client, "error", "Could not delete station: "+err.Error())
			return
		}
		s.pushStations(client)
		s.pushAutoFillStatus(client)
	})

	client.On("setGenreStation", func(args ...any) {
		m, ok := payload(args)
		if !ok {
			return
		}
		name, _ := m["name"].(string)
		genres := stringSliceField(m, "genres")

		var err error
		if len(genres) > 0 {
			err = s.stationService.ActivateAdHoc(name, genres)
		} else {
			err = s.stationService.Activate(name)
		}
		if err != nil {
			s.notifyClient(client, "error", "Could not activate station: "+err.Error())
			return
		}
		log.Info().Str("id", clientID).Str("station", name).Msg("Genre station set")
		s.notifyClient(client, "info", "Genre station active: "+name)
		s.pushAutoFillStatus(client)
	})

	client.On("clearGenreStation", func(args ...any) {
		s.stationService.Deactivate()
		log.Info().Str("id", clientID).Msg("Genre station cleared")
		s.notifyClient(client, "info", "Genre station cleared.")
		s.pushAutoFillStatus(client)
	})
}

func (s *Server) pushStations(client *socket.Socket) {
	list, err := s.stationService.List()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list stations")
		s.notifyClient(client, "error", "Could not load stations.")
		return
	}
	client.Emit("stations", list)
}
