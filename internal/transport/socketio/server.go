// Package socketio provides the Socket.io server for client communication.
package socketio

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/zishang520/socket.io/servers/socket/v3"
	"github.com/zishang520/socket.io/v3/pkg/types"

	"github.com/chorus-player/chorus-mpd-backend/internal/domain/autofill"
	"github.com/chorus-player/chorus-mpd-backend/internal/domain/library"
	"github.com/chorus-player/chorus-mpd-backend/internal/domain/player"
	"github.com/chorus-player/chorus-mpd-backend/internal/domain/stations"
	"github.com/chorus-player/chorus-mpd-backend/internal/domain/storefront"
	"github.com/chorus-player/chorus-mpd-backend/internal/infra/lrclib"
	"github.com/chorus-player/chorus-mpd-backend/internal/infra/radiodir"
)

// Server handles Socket.io connections and events.
type Server struct {
	io *socket.Server

	playerService *player.Service
	statusMonitor *player.Monitor
	libraryIndex  *library.Index

	fillMonitor  *autofill.Monitor
	fillService  *autofill.Service
	fillSettings *autofill.SettingsStore

	stationService *stations.Service
	lyricsClient   *lrclib.Client
	radioClient    *radiodir.Client
	storeService   *storefront.Service

	mu      sync.RWMutex
	clients map[string]*socket.Socket
}

// Deps bundles the services the server exposes to clients.
type Deps struct {
	Player       *player.Service
	Status       *player.Monitor
	Library      *library.Index
	FillMonitor  *autofill.Monitor
	FillService  *autofill.Service
	FillSettings *autofill.SettingsStore
	Stations     *stations.Service
	Lyrics       *lrclib.Client
	Radio        *radiodir.Client
	Storefront   *storefront.Service
}

// NewServer creates a new Socket.io server.
func NewServer(deps Deps) (*Server, error) {
	opts := socket.DefaultServerOptions()
	opts.SetPingTimeout(20 * time.Second)
	opts.SetPingInterval(25 * time.Second)
	opts.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	s := &Server{
		io:             socket.NewServer(nil, opts),
		playerService:  deps.Player,
		statusMonitor:  deps.Status,
		libraryIndex:   deps.Library,
		fillMonitor:    deps.FillMonitor,
		fillService:    deps.FillService,
		fillSettings:   deps.FillSettings,
		stationService: deps.Stations,
		lyricsClient:   deps.Lyrics,
		radioClient:    deps.Radio,
		storeService:   deps.Storefront,
		clients:        make(map[string]*socket.Socket),
	}

	s.setupHandlers()

	// Broadcast every status change the monitor publishes.
	if s.statusMonitor != nil {
		s.statusMonitor.Subscribe(func(snap player.Snapshot) {
			s.io.Emit("player_status", snap)
		})
	}

	return s, nil
}

// setupHandlers registers all Socket.io event handlers.
func (s *Server) setupHandlers() {
	s.io.On("connection", func(clients ...any) {
		client := clients[0].(*socket.Socket)
		clientID := string(client.Id())

		log.Info().Str("id", clientID).Msg("Client connected")

		s.mu.Lock()
		s.clients[clientID] = client
		s.mu.Unlock()

		// Send initial state after small delay
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.pushStatus(client)
			s.pushQueue(client)
		}()

		client.On("disconnect", func(args ...any) {
			reason := ""
			if len(args) > 0 {
				if r, ok := args[0].(string); ok {
					reason = r
				}
			}
			log.Info().Str("id", clientID).Str("reason", reason).Msg("Client disconnected")

			s.mu.Lock()
			delete(s.clients, clientID)
			s.mu.Unlock()
		})

		s.registerPlayerHandlers(client, clientID)
		s.registerQueueHandlers(client, clientID)
		s.registerAutoFillHandlers(client, clientID)
		s.registerStationHandlers(client, clientID)
		s.registerServiceHandlers(client, clientID)
	})
}

// registerPlayerHandlers wires the transport control events.
func (s *Server) registerPlayerHandlers(client *socket.Socket, clientID string) {
	client.On("getStatus", func(args ...any) {
		log.Debug().Str("id", clientID).Msg("getStatus")
		s.pushStatus(client)
	})

	client.On("play", func(args ...any) {
		pos := -1 // resume
		if v, ok := floatArg(args); ok {
			pos = int(v)
		}
		log.Debug().Str("id", clientID).Int("pos", pos).Msg("play")
		if err := s.playerService.Play(pos); err != nil {
			s.notifyClient(client, "error", "Play failed: "+err.Error())
		}
	})

	client.On("pause", func(args ...any) {
		log.Debug().Str("id", clientID).Msg("pause")
		if err := s.playerService.Pause(); err != nil {
			s.notifyClient(client, "error", "Pause failed: "+err.Error())
		}
	})

	client.On("stop", func(args ...any) {
		log.Debug().Str("id", clientID).Msg("stop")
		if err := s.playerService.Stop(); err != nil {
			s.notifyClient(client, "error", "Stop failed: "+err.Error())
		}
	})

	client.On("next", func(args ...any) {
		log.Debug().Str("id", clientID).Msg("next")
		if err := s.playerService.Next(); err != nil {
			s.notifyClient(client, "error", "Next failed: "+err.Error())
		}
	})

	client.On("prev", func(args ...any) {
		log.Debug().Str("id", clientID).Msg("prev")
		if err := s.playerService.Previous(); err != nil {
			s.notifyClient(client, "error", "Previous failed: "+err.Error())
		}
	})

	client.On("seek", func(args ...any) {
		if sec, ok := floatArg(args); ok {
			log.Debug().Str("id", clientID).Float64("sec", sec).Msg("seek")
			if err := s.playerService.Seek(int(sec)); err != nil {
				s.notifyClient(client, "error", "Seek failed: "+err.Error())
			}
		}
	})

	client.On("volume", func(args ...any) {
		if vol, ok := floatArg(args); ok {
			log.Debug().Str("id", clientID).Float64("vol", vol).Msg("volume")
			if err := s.playerService.SetVolume(int(vol)); err != nil {
				s.notifyClient(client, "error", "Volume change failed: "+err.Error())
			}
		}
	})

	client.On("setShuffle", func(args ...any) {
		if on, ok := boolValueArg(args); ok {
			if err := s.playerService.SetShuffle(on); err != nil {
				s.notifyClient(client, "error", "Shuffle toggle failed: "+err.Error())
			}
		}
	})

	client.On("setConsume", func(args ...any) {
		if on, ok := boolValueArg(args); ok {
			if err := s.playerService.SetConsume(on); err != nil {
				s.notifyClient(client, "error", "Consume toggle failed: "+err.Error())
			}
		}
	})

	client.On("setCrossfade", func(args ...any) {
		if secs, ok := floatArg(args); ok {
			if err := s.playerService.SetCrossfade(int(secs)); err != nil {
				s.notifyClient(client, "error", "Crossfade change failed: "+err.Error())
			}
		}
	})

	client.On("updateDatabase", func(args ...any) {
		log.Debug().Str("id", clientID).Msg("updateDatabase")
		if err := s.playerService.UpdateDatabase(); err != nil {
			s.notifyClient(client, "error", "Database update failed: "+err.Error())
			return
		}
		s.notifyClient(client, "info", "Library update started.")
	})
}

// registerQueueHandlers wires the queue events.
func (s *Server) registerQueueHandlers(client *socket.Socket, clientID string) {
	client.On("getQueue", func(args ...any) {
		log.Debug().Str("id", clientID).Msg("getQueue")
		s.pushQueue(client)
	})

	client.On("clearQueue", func(args ...any) {
		log.Debug().Str("id", clientID).Msg("clearQueue")
		if err := s.playerService.Clear(); err != nil {
			s.notifyClient(client, "error", "Clear queue failed: "+err.Error())
			return
		}
		s.BroadcastQueue()
	})

	client.On("addToQueue", func(args ...any) {
		if uri, ok := stringField(args, "uri"); ok {
			log.Debug().Str("id", clientID).Str("uri", uri).Msg("addToQueue")
			if err := s.playerService.Add(uri); err != nil {
				s.notifyClient(client, "error", "Add to queue failed: "+err.Error())
				return
			}
			s.BroadcastQueue()
		}
	})
}

// pushStatus sends the current status to one client.
func (s *Server) pushStatus(client *socket.Socket) {
	if snap, ok := s.statusMonitor.Last(); ok {
		client.Emit("player_status", snap)
		return
	}
	snap, _ := s.statusMonitor.Poll()
	client.Emit("player_status", snap)
}

// pushQueue sends the current queue to one client.
func (s *Server) pushQueue(client *socket.Socket) {
	queue, err := s.playerService.Queue()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get queue")
		return
	}
	client.Emit("queue", queue)
}

// BroadcastQueue sends the queue to all connected clients.
func (s *Server) BroadcastQueue() {
	queue, err := s.playerService.Queue()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get queue for broadcast")
		return
	}
	s.io.Emit("queue", queue)
}

// Notify broadcasts a server message to all clients. Messages carry a
// unique id so the frontend can deduplicate reconnect replays.
func (s *Server) Notify(kind, text string) {
	s.io.Emit("server_message", map[string]any{
		"id":   uuid.NewString(),
		"type": kind,
		"text": text,
	})
}

// notifyClient sends a server message to one client.
func (s *Server) notifyClient(client *socket.Socket, kind, text string) {
	client.Emit("server_message", map[string]any{
		"id":   uuid.NewString(),
		"type": kind,
		"text": text,
	})
}

// SetFillMonitor attaches the auto-fill monitor. The monitor is created
// after the server because it notifies through it; call this before serving.
func (s *Server) SetFillMonitor(m *autofill.Monitor) {
	s.fillMonitor = m
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// ServeHTTP implements http.Handler for the Socket.io endpoint.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.io.ServeHandler(nil).ServeHTTP(w, r)
}

// Close shuts down the Socket.io server.
func (s *Server) Close() error {
	s.io.Close(nil)
	return nil
}
