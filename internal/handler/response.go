package handler

// RESPONSE ENVELOPE:
// Every JSON body carries a boolean "success" next to its payload:
//
//	{"success": true, "message": "...", "project": {...}}
//	{"success": false, "error": "Title already exist"}
//
// 401 responses also carry "message". 5xx responses never expose internal
// detail; the real error is logged with the request id instead.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/peerhub/internal/apperror"
)

// payload is the body of a successful response, minus the success flag.
type payload map[string]any

// writeJSON sends a JSON response with the given status code.
// Headers and status must be written before the body.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeOK sends 200 with {"success": true} merged into p.
func writeOK(w http.ResponseWriter, p payload) {
	body := make(map[string]any, len(p)+1)
	for k, v := range p {
		body[k] = v
	}
	body["success"] = true
	writeJSON(w, http.StatusOK, body)
}

// writeError maps a domain error to its HTTP status and sends the envelope.
//
// ERROR MAPPING:
//
//	ErrValidation, ErrConflict → 400
//	ErrAuth                    → 401
//	ErrForbidden               → 403
//	ErrNotFound                → 404
//	anything else              → 500
//
// apperror.As walks the wrap chain, so a service may add context with
// fmt.Errorf("...: %w", appErr) and the mapping still holds.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	if appErr, ok := apperror.As(err); ok {
		switch {
		case errors.Is(err, apperror.ErrValidation), errors.Is(err, apperror.ErrConflict):
			writeFailure(w, http.StatusBadRequest, appErr.Message)
			return
		case errors.Is(err, apperror.ErrAuth):
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"success": false,
				"message": appErr.Message,
				"error":   appErr.Message,
			})
			return
		case errors.Is(err, apperror.ErrForbidden):
			writeFailure(w, http.StatusForbidden, appErr.Message)
			return
		case errors.Is(err, apperror.ErrNotFound):
			writeFailure(w, http.StatusNotFound, appErr.Message)
			return
		}
	}

	logger.Error("request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("request_id", chimiddleware.GetReqID(r.Context())),
		slog.String("error", err.Error()),
	)
	writeJSON(w, http.StatusInternalServerError, map[string]any{
		"success": false,
		"message": "Internal Server Error",
		"error":   "an unexpected error occurred",
	})
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   message,
	})
}
