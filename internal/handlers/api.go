package handlers

import (
	"encoding/json"
	"net/http"

	"trafficserver/internal/logger"
	"trafficserver/internal/repository/sqlite"
	"trafficserver/internal/services/analytics"
)

// LatestDataHandler serves the live dashboard summary.
func LatestDataHandler(analyzer *analytics.Analyzer, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(analyzer.LatestData()); err != nil {
			logger.Error("Failed to encode summary: %v", err)
		}
	}
}

// HistoryHandler serves aggregated per-type totals for a time-of-day
// slot (morning, afternoon, evening or night).
func HistoryHandler(history *sqlite.HistoryRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if history == nil {
			http.Error(w, "history unavailable", http.StatusServiceUnavailable)
			return
		}

		slot := r.URL.Query().Get("slot")
		if slot == "" {
			slot = "morning"
		}

		totals, err := history.SlotTotals(slot)
		if err != nil {
			logger.Error("Failed to query history for slot %s: %v", slot, err)
			http.Error(w, "history query failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]interface{}{
			"slot":   slot,
			"totals": totals,
		}); err != nil {
			logger.Error("Failed to encode history: %v", err)
		}
	}
}
