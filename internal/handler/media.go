package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/peerhub/internal/apperror"
	"github.com/sakif/peerhub/internal/repository"
)

// MediaHandler serves images kept by the database media store.
type MediaHandler struct {
	blobs  repository.BlobRepository
	logger *slog.Logger
}

func NewMediaHandler(blobs repository.BlobRepository, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{blobs: blobs, logger: logger}
}

// HandleGet streams one object.
//
// HTTP: GET /media/*
//
// Keys are immutable (a replaced image gets a new key), so responses are
// cacheable forever.
func (h *MediaHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if key == "" {
		http.NotFound(w, r)
		return
	}

	blob, err := h.blobs.GetBlob(r.Context(), key)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		writeError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", blob.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(blob.Data)))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(blob.Data)
}
