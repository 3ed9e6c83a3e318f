package routes

import (
	"net/http"

	"trafficserver/internal/handlers"
	"trafficserver/internal/logger"
	"trafficserver/internal/repository/sqlite"
	"trafficserver/internal/services/analytics"
	ws "trafficserver/internal/services/websocket"
)

// SetupRoutes registers the API endpoints, the video feed and static
// file serving. The data feed carries no authentication.
func SetupRoutes(analyzer *analytics.Analyzer, history *sqlite.HistoryRepository, hub *ws.HubService, logger *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	// Static files for the dashboard
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	// API endpoints
	mux.HandleFunc("/api/data", handlers.LatestDataHandler(analyzer, logger))
	mux.HandleFunc("/api/history", handlers.HistoryHandler(history, logger))
	mux.HandleFunc("/api/live", handlers.LiveWebsocketHandler(hub, logger))

	// MJPEG camera feed
	mux.HandleFunc("/video_feed", handlers.VideoFeedHandler(analyzer, logger))

	return mux
}
