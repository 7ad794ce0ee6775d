// Package main is the entry point for the Chorus MPD control panel backend.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/chorus-player/chorus-mpd-backend/internal/config"
	"github.com/chorus-player/chorus-mpd-backend/internal/domain/autofill"
	"github.com/chorus-player/chorus-mpd-backend/internal/domain/library"
	"github.com/chorus-player/chorus-mpd-backend/internal/domain/player"
	"github.com/chorus-player/chorus-mpd-backend/internal/domain/scrobble"
	"github.com/chorus-player/chorus-mpd-backend/internal/domain/stations"
	"github.com/chorus-player/chorus-mpd-backend/internal/domain/storefront"
	"github.com/chorus-player/chorus-mpd-backend/internal/infra/lastfm"
	"github.com/chorus-player/chorus-mpd-backend/internal/infra/lrclib"
	"github.com/chorus-player/chorus-mpd-backend/internal/infra/mpd"
	"github.com/chorus-player/chorus-mpd-backend/internal/infra/radiodir"
	"github.com/chorus-player/chorus-mpd-backend/internal/infra/store"
	"github.com/chorus-player/chorus-mpd-backend/internal/transport/socketio"
	"github.com/chorus-player/chorus-mpd-backend/internal/version"
)

const statusPollInterval = time.Second

func main() {
	configPath := flag.String("config", "config.toml", "Path to the TOML config file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("Failed to load configuration")
	}

	versionInfo := version.GetInfo()
	log.Info().Msg("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Info().Msgf("  %s", versionInfo.String())
	log.Info().Msg("  MPD Control Panel Backend")
	log.Info().Msg("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Info().
		Str("port", cfg.Server.Port).
		Str("mpd_host", cfg.MPD.Host).
		Int("mpd_port", cfg.MPD.Port).
		Bool("mpd_password_set", cfg.MPD.Password != "").
		Bool("lastfm_configured", cfg.Lastfm.APIKey != "").
		Msg("Configuration")

	// MPD access is connection-per-call; a ping just verifies reachability.
	mpdClient := mpd.NewClient(cfg.MPD.Host, cfg.MPD.Port, cfg.MPD.Password)
	if err := mpdClient.Ping(); err != nil {
		log.Warn().Err(err).Msg("MPD is not reachable yet, continuing anyway")
	} else {
		log.Info().Msg("MPD connection verified")
	}

	db := store.NewDB(cfg.Store.Path)
	if err := db.Open(); err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	lastfmClient := lastfm.New(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret)
	if cfg.Lastfm.SessionKey != "" {
		lastfmClient.SetSessionKey(cfg.Lastfm.SessionKey)
	}

	storeService, err := storefront.NewService(cfg.Qobuz.AppID, cfg.Qobuz.AppSecret, cfg.Qobuz.ConfigPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init Qobuz service")
	}

	radioClient := radiodir.NewClient(
		radiodir.WithCache(db, time.Duration(cfg.Radio.CacheTTLHours)*time.Hour),
	)

	// Domain wiring.
	libraryIndex := library.NewIndex(mpdClient)
	playerService := player.NewService(mpdClient)
	statusMonitor := player.NewMonitor(player.NewSnapshotSource(mpdClient), statusPollInterval)

	fillSettings := autofill.NewSettingsStore(autofill.Settings{
		MinQueueLength: cfg.AutoFill.MinQueueLength,
		NumTracksMin:   cfg.AutoFill.NumTracksMin,
		NumTracksMax:   cfg.AutoFill.NumTracksMax,
		GenreFilter:    cfg.AutoFill.GenreFilter,
	})
	stationState := autofill.NewStationState()
	collector := autofill.NewCollector(libraryIndex, lastfmClient)
	engine := autofill.NewEngine(mpdClient)
	fillService := autofill.NewService(collector, engine, stationState,
		mpdClient, libraryIndex, libraryIndex, lastfmClient)
	stationService := stations.NewService(db, stationState)

	socketServer, err := socketio.NewServer(socketio.Deps{
		Player:       playerService,
		Status:       statusMonitor,
		Library:      libraryIndex,
		FillService:  fillService,
		FillSettings: fillSettings,
		Stations:     stationService,
		Lyrics:       lrclib.New(),
		Radio:        radioClient,
		Storefront:   storeService,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Socket.io server")
	}
	defer socketServer.Close()

	fillMonitor := autofill.NewMonitor(
		statusMonitor, collector, engine, fillSettings, stationState, socketServer,
		autofill.WithOnFilled(socketServer.BroadcastQueue),
	)
	socketServer.SetFillMonitor(fillMonitor)

	if cfg.Lastfm.Scrobbling && lastfmClient.IsAuthenticated() {
		tracker := scrobble.NewTracker(lastfmClient, true)
		statusMonitor.Subscribe(tracker.Observe)
		log.Info().Msg("Scrobbling enabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go statusMonitor.Run(ctx)
	go fillMonitor.Run(ctx)
	fillMonitor.Start()

	mux := http.NewServeMux()
	mux.Handle("/socket.io/", socketServer)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := mpdClient.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, `{"status":"error","mpd":"disconnected","clients":%d}`, socketServer.ClientCount())
			return
		}
		fmt.Fprintf(w, `{"status":"ok","mpd":"connected","clients":%d}`, socketServer.ClientCount())
	})

	mux.HandleFunc("/api/v1/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		json.NewEncoder(w).Encode(version.GetInfo())
	})

	if cfg.Server.StaticDir != "" {
		log.Info().Str("dir", cfg.Server.StaticDir).Msg("Serving static files")
		fs := http.FileServer(http.Dir(cfg.Server.StaticDir))
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			path := cfg.Server.StaticDir + r.URL.Path
			if r.URL.Path == "/" {
				path = cfg.Server.StaticDir + "/index.html"
			}
			if _, err := os.Stat(path); os.IsNotExist(err) {
				// SPA routing: unknown paths get index.html.
				http.ServeFile(w, r, cfg.Server.StaticDir+"/index.html")
				return
			}
			fs.ServeHTTP(w, r)
		})
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Info().Msg("Shutting down...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown error")
		}
	}()

	log.Info().Str("addr", ":"+cfg.Server.Port).Msg("HTTP server listening")
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("HTTP server error")
	}

	log.Info().Msg("Server stopped")
}
