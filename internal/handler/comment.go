package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/peerhub/internal/auth"
	"github.com/sakif/peerhub/internal/service"
)

// CommentHandler serves project comments.
type CommentHandler struct {
	comments *service.CommentService
	logger   *slog.Logger
}

func NewCommentHandler(comments *service.CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

// HandleCreate adds a comment.
//
// HTTP: POST /api/v1/comment/create/{projectId}
// BODY: {"content": "..."}
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFromContext(r.Context())

	var req struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	c, err := h.comments.Create(r.Context(), chi.URLParam(r, "projectId"), caller.ID, req.Content)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, payload{"message": "Commented Successfully", "newComment": c})
}

// HandleList returns a project's comments, oldest first.
//
// HTTP: GET /api/v1/comment/get/{projectId}
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.List(r.Context(), chi.URLParam(r, "projectId"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, payload{"comments": comments})
}

// HandleDelete removes a comment written by the caller.
//
// HTTP: DELETE /api/v1/comment/delete/{commentId}
func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFromContext(r.Context())

	if err := h.comments.Delete(r.Context(), chi.URLParam(r, "commentId"), caller.ID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, payload{"message": "Comment Deleted Successfully"})
}
