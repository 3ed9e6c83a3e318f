package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"trafficserver/internal/config"
	"trafficserver/internal/logger"
	"trafficserver/internal/repository/sqlite"
	"trafficserver/internal/routes"
	"trafficserver/internal/services/ai"
	"trafficserver/internal/services/analytics"
	ws "trafficserver/internal/services/websocket"
)

type App struct {
	config   *config.Config
	logger   *logger.Logger
	analyzer *analytics.Analyzer
	history  *sqlite.HistoryRepository
	hub      *ws.HubService
	mode     string
	server   *http.Server
	cancel   context.CancelFunc
}

// New wires the whole process: config, logger, camera set, detection
// backend (decided once, here, never inside the pipeline), history
// store and analytics core.
func New() (*App, error) {
	cfg := config.Load()

	log, err := logger.New(cfg.LogDirectory)
	if err != nil {
		return nil, err
	}

	cameras, err := config.LoadCameras(cfg.CamerasFile)
	if err != nil {
		return nil, err
	}

	history, err := sqlite.NewHistoryRepository(cfg.HistoryDB)
	if err != nil {
		// History is an auxiliary feature; the core runs without it.
		log.Warning("History store unavailable: %v", err)
		history = nil
	}

	backend, mode := selectBackend(cfg, log)
	log.Info("Traffic analyzer starting in %s mode with %d camera(s)", mode, len(cameras))

	return &App{
		config:   cfg,
		logger:   log,
		analyzer: analytics.New(cfg, cameras, backend, history, log),
		history:  history,
		hub:      ws.NewHubService(log),
		mode:     mode,
	}, nil
}

// selectBackend resolves the operating mode. "real" falls back to mock
// with an error log when the detection network cannot load; "auto"
// prefers real and downgrades with a warning.
func selectBackend(cfg *config.Config, log *logger.Logger) (ai.Backend, string) {
	switch cfg.Mode {
	case "mock":
		return nil, "mock"
	case "real":
		backend, err := ai.NewDNNBackend(cfg, log)
		if err != nil {
			log.Error("Real mode requested but detection backend unavailable, falling back to mock: %v", err)
			return nil, "mock"
		}
		return backend, "real"
	default: // auto
		backend, err := ai.NewDNNBackend(cfg, log)
		if err != nil {
			log.Warning("Detection backend unavailable, running in mock mode: %v", err)
			return nil, "mock"
		}
		return backend, "real"
	}
}

// Run starts the background services and serves HTTP until Shutdown.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.analyzer.Start()
	go a.hub.Run(ctx)
	go a.broadcastLoop(ctx)

	router := routes.SetupRoutes(a.analyzer, a.history, a.hub, a.logger)
	a.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", a.config.Port),
		Handler: router,
	}

	a.logger.Info("🚦 Traffic analytics server on http://localhost:%d (%s mode)", a.config.Port, a.mode)
	return a.server.ListenAndServe()
}

// broadcastLoop pushes a fresh summary to the websocket hub on the mock
// tick cadence so dashboards update without polling.
func (a *App) broadcastLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(a.config.MockTickSeconds) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if a.hub.GetClientCount() == 0 {
			continue
		}
		payload, err := json.Marshal(a.analyzer.LatestData())
		if err != nil {
			a.logger.Error("Failed to encode summary broadcast: %v", err)
			continue
		}
		a.hub.Broadcast(payload)
	}
}

// Shutdown stops the driver, background loops and the HTTP server.
func (a *App) Shutdown() {
	if a.cancel != nil {
		a.cancel()
	}
	a.analyzer.Stop()

	if a.history != nil {
		if err := a.history.Close(); err != nil {
			a.logger.Error("Failed to close history store: %v", err)
		}
	}

	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.server.Shutdown(ctx); err != nil {
			a.logger.Error("HTTP shutdown: %v", err)
		}
	}
}
