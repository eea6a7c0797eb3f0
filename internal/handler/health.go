package handler

import (
	"context"
	"log/slog"
	"net/http"
)

// Pinger is satisfied by the store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HandleHealth reports whether the database answers.
//
// HTTP: GET /healthz
func HandleHealth(db Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			logger.Warn("health check failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"success": false, "status": "unavailable"})
			return
		}
		writeOK(w, payload{"status": "ok"})
	}
}
