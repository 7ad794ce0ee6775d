package socketio

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zishang520/socket.io/servers/socket/v3"

	"github.com/chorus-player/chorus-mpd-backend/internal/infra/lrclib"
)

const serviceCallTimeout = 15 * time.Second

// registerServiceHandlers wires library browsing, lyrics, the radio
// directory and the Qobuz storefront.
func (s *Server) registerServiceHandlers(client *socket.Socket, clientID string) {
	client.On("listGenres", func(args ...any) {
		genres, err := s.libraryIndex.Genres()
		if err != nil {
			s.notifyClient(client, "error", "Could not list genres: "+err.Error())
			return
		}
		client.Emit("genres", genres)
	})

	client.On("listArtists", func(args ...any) {
		artists, err := s.libraryIndex.Artists()
		if err != nil {
			s.notifyClient(client, "error", "Could not list artists: "+err.Error())
			return
		}
		client.Emit("artists", artists)
	})

	client.On("listAlbums", func(args ...any) {
		albums, err := s.libraryIndex.Albums()
		if err != nil {
			s.notifyClient(client, "error", "Could not list albums: "+err.Error())
			return
		}
		client.Emit("albums", albums)
	})

	client.On("getLyrics", func(args ...any) {
		m, ok := payload(args)
		if !ok {
			return
		}
		artist, _ := m["artist"].(string)
		title, _ := m["title"].(string)
		duration := time.Duration(intField(m, "duration", 0)) * time.Second

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), serviceCallTimeout)
			defer cancel()

			result, err := s.lyricsClient.Get(ctx, artist, title, duration)
			if errors.Is(err, lrclib.ErrNotFound) {
				client.Emit("lyrics", map[string]any{
					"artist": artist, "title": title, "found": false,
				})
				return
			}
			if err != nil {
				log.Warn().Err(err).Str("artist", artist).Str("title", title).
					Msg("Lyrics lookup failed")
				s.notifyClient(client, "error", "Lyrics lookup failed.")
				return
			}
			client.Emit("lyrics", map[string]any{
				"artist":     artist,
				"title":      title,
				"found":      true,
				"plain":      result.PlainLyrics,
				"synced":     result.SyncedLyrics,
				"has_synced": result.HasSyncedLyrics(),
			})
		}()
	})

	client.On("searchRadio", func(args ...any) {
		m, ok := payload(args)
		if !ok {
			return
		}
		name, _ := m["name"].(string)
		countryCode, _ := m["country_code"].(string)
		limit := intField(m, "limit", 50)

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), serviceCallTimeout)
			defer cancel()

			results, err := s.radioClient.SearchStations(ctx, name, countryCode, limit)
			if err != nil {
				log.Warn().Err(err).Str("name", name).Msg("Radio search failed")
				s.notifyClient(client, "error", "Radio search failed.")
				return
			}
			client.Emit("radio_stations", results)
		}()
	})

	client.On("topRadio", func(args ...any) {
		limit := 50
		if m, ok := payload(args); ok {
			limit = intField(m, "limit", limit)
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), serviceCallTimeout)
			defer cancel()

			results, err := s.radioClient.TopStations(ctx, limit)
			if err != nil {
				log.Warn().Err(err).Msg("Top radio lookup failed")
				s.notifyClient(client, "error", "Radio directory unavailable.")
				return
			}
			client.Emit("radio_stations", results)
		}()
	})

	client.On("radioCountries", func(args ...any) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), serviceCallTimeout)
			defer cancel()

			countries, err := s.radioClient.Countries(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("Radio country list failed")
				s.notifyClient(client, "error", "Radio directory unavailable.")
				return
			}
			client.Emit("radio_countries", countries)
		}()
	})

	client.On("playRadio", func(args ...any) {
		m, ok := payload(args)
		if !ok {
			return
		}
		url, _ := m["url"].(string)
		if url == "" {
			return
		}
		log.Info().Str("id", clientID).Str("url", url).Msg("playRadio")
		if err := s.playerService.Add(url); err != nil {
			s.notifyClient(client, "error", "Could not add stream: "+err.Error())
			return
		}
		s.BroadcastQueue()
	})

	client.On("qobuzStatus", func(args ...any) {
		client.Emit("qobuz_status", s.storeService.GetStatus())
	})

	client.On("qobuzLogin", func(args ...any) {
		m, ok := payload(args)
		if !ok {
			return
		}
		email, _ := m["email"].(string)
		password, _ := m["password"].(string)
		if !s.storeService.Configured() {
			s.notifyClient(client, "error", "Qobuz is not configured on this server.")
			return
		}

		go func() {
			if err := s.storeService.Login(email, password); err != nil {
				s.notifyClient(client, "error", "Qobuz login failed.")
				log.Warn().Err(err).Msg("Qobuz login failed")
				return
			}
			client.Emit("qobuz_status", s.storeService.GetStatus())
		}()
	})

	client.On("qobuzLogout", func(args ...any) {
		if err := s.storeService.Logout(); err != nil {
			log.Warn().Err(err).Msg("Qobuz logout failed")
		}
		client.Emit("qobuz_status", s.storeService.GetStatus())
	})

	client.On("qobuzSearch", func(args ...any) {
		m, ok := payload(args)
		if !ok {
			return
		}
		query, _ := m["query"].(string)
		limit := intField(m, "limit", 20)

		go func() {
			result, err := s.storeService.Search(query, limit)
			if err != nil {
				s.notifyClient(client, "error", "Qobuz search failed: "+err.Error())
				return
			}
			client.Emit("qobuz_results", result)
		}()
	})

	client.On("qobuzPlay", func(args ...any) {
		id, ok := stringField(args, "track_id")
		if !ok {
			return
		}

		go func() {
			info, err := s.storeService.StreamURL(id)
			if err != nil {
				s.notifyClient(client, "error", "Could not resolve Qobuz stream: "+err.Error())
				return
			}
			if err := s.playerService.Add(info.URL); err != nil {
				s.notifyClient(client, "error", "Could not enqueue Qobuz stream: "+err.Error())
				return
			}
			s.BroadcastQueue()
		}()
	})
}
