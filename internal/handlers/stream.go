package handlers

import (
	"fmt"
	"io"
	"net/http"

	"trafficserver/internal/logger"
	"trafficserver/internal/services/analytics"
)

const frameBoundary = "frame"

// VideoFeedHandler streams a camera's latest frames as an MJPEG
// multipart response. The frame subscription is bound to the request
// context, so a disconnected client tears down its poll loop instead of
// leaking it. An unknown camera id streams nothing until the client
// gives up.
func VideoFeedHandler(analyzer *analytics.Analyzer, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cameraID := r.URL.Query().Get("id")

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+frameBoundary)

		for frame := range analyzer.Frames(r.Context(), cameraID) {
			if _, err := fmt.Fprintf(w, "--%s\r\nContent-Type: image/jpeg\r\n\r\n", frameBoundary); err != nil {
				return
			}
			if _, err := w.Write(frame); err != nil {
				return
			}
			if _, err := io.WriteString(w, "\r\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
