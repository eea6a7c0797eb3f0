package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/peerhub/internal/auth"
	"github.com/sakif/peerhub/internal/media"
	"github.com/sakif/peerhub/internal/service"
)

// UserHandler serves profiles and the user-scoped project lists.
type UserHandler struct {
	users     *service.UserService
	maxUpload int64
	logger    *slog.Logger
}

func NewUserHandler(users *service.UserService, maxUpload int64, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, maxUpload: maxUpload, logger: logger}
}

// HandleUpdateProfile edits the caller's own profile.
//
// HTTP: PUT /api/v1/user/update/profile/{userId}
// BODY: multipart/form-data (username, bio, optional "profilePic" file) or JSON.
func (h *UserHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFromContext(r.Context())

	var (
		in    service.ProfileInput
		image *media.Upload
	)
	if isMultipart(r) {
		if err := parseMultipart(w, r, h.maxUpload); err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		if v := formValue(r.MultipartForm, "username"); v != nil {
			in.Username = *v
		}
		in.Bio = formValue(r.MultipartForm, "bio")

		var err error
		image, err = formImage(r, "profilePic", media.FolderProfiles, h.maxUpload)
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
	} else {
		var req struct {
			Username string  `json:"username"`
			Bio      *string `json:"bio"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		in = service.ProfileInput{Username: req.Username, Bio: req.Bio}
	}

	profile, err := h.users.UpdateProfile(r.Context(), chi.URLParam(r, "userId"), caller.ID, in, image)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, payload{"message": "Profile Updated Successfully", "updatedUserProfile": profile})
}

// HandleBookmarks lists the caller's bookmarks.
//
// HTTP: GET /api/v1/user/get/bookmarks/{userId}
func (h *UserHandler) HandleBookmarks(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFromContext(r.Context())

	projects, err := h.users.GetBookmarks(r.Context(), chi.URLParam(r, "userId"), caller.ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, payload{"bookmarks": projects})
}

// HandleFavorites lists the caller's favorites.
//
// HTTP: GET /api/v1/user/get/favorites/{userId}
func (h *UserHandler) HandleFavorites(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFromContext(r.Context())

	projects, err := h.users.GetFavorites(r.Context(), chi.URLParam(r, "userId"), caller.ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, payload{"favorites": projects})
}

// HandleProjects lists the projects a user owns.
//
// HTTP: GET /api/v1/user/get/projects/{userId}
func (h *UserHandler) HandleProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.users.GetProjects(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, payload{"userProjects": projects})
}

// HandleProfile returns a user's public profile.
//
// HTTP: GET /api/v1/user/get/profile/{userId}
func (h *UserHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.users.GetProfile(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, payload{"user": profile})
}
