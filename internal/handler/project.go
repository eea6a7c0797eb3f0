package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/peerhub/internal/auth"
	"github.com/sakif/peerhub/internal/media"
	"github.com/sakif/peerhub/internal/model"
	"github.com/sakif/peerhub/internal/service"
)

// ProjectHandler serves project CRUD and the relation toggles.
type ProjectHandler struct {
	projects  *service.ProjectService
	ledger    *service.LedgerService
	maxUpload int64
	logger    *slog.Logger
}

func NewProjectHandler(projects *service.ProjectService, ledger *service.LedgerService, maxUpload int64, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, ledger: ledger, maxUpload: maxUpload, logger: logger}
}

// projectRequest is the JSON form of a project body. Pointer fields
// distinguish "absent" from "empty". Tags may be an array or a string
// holding a JSON-encoded array, so it is decoded separately.
type projectRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Category    *string         `json:"category"`
	Tags        json.RawMessage `json:"tags"`
	LiveLink    *string         `json:"liveLink"`
	RepoLink    *string         `json:"repoLink"`
}

// decodeTags returns nil when tags were not sent. Any value that is neither
// an array of strings nor a string holding one yields an empty list.
func decodeTags(raw json.RawMessage) *[]string {
	if len(raw) == 0 {
		return nil
	}
	tags := []string{}
	var list []string
	var encoded string
	switch {
	case json.Unmarshal(raw, &list) == nil && list != nil:
		tags = service.CleanTags(list)
	case json.Unmarshal(raw, &encoded) == nil:
		tags = service.ParseTags(encoded)
	}
	return &tags
}

// HandleCreate creates a project owned by the caller.
//
// HTTP: POST /api/v1/project/create
// BODY: multipart/form-data with an optional "previewImage" file, or JSON.
// "tags" is a JSON-encoded array in multipart bodies; JSON bodies may send
// either an array or that encoded string.
func (h *ProjectHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFromContext(r.Context())

	in, image, err := h.readInput(w, r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	p, err := h.projects.Create(r.Context(), caller.ID, in, image)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, payload{"message": "Project created Successfully", "newProject": p})
}

// HandleList returns every project.
//
// HTTP: GET /api/v1/project/get/all
func (h *ProjectHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, payload{"projects": projects})
}

// HandleGet returns one project with its relations expanded.
//
// HTTP: GET /api/v1/project/get/{id}
func (h *ProjectHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.projects.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, payload{"project": p})
}

// HandleEdit applies a partial update. Absent fields keep their value.
//
// HTTP: PUT /api/v1/project/edit/{id}
func (h *ProjectHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFromContext(r.Context())

	in, image, err := h.readInput(w, r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	p, err := h.projects.Edit(r.Context(), chi.URLParam(r, "id"), caller.ID, in, image)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, payload{"message": "Project Edited Successfully", "editedProject": p})
}

// HandleDelete removes a project with its comments and relations.
//
// HTTP: DELETE /api/v1/project/delete/{id}
func (h *ProjectHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFromContext(r.Context())

	if err := h.projects.Delete(r.Context(), chi.URLParam(r, "id"), caller.ID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, payload{"message": "Project Deleted Successfully"})
}

// toggleCopy holds the response wording for one relation.
type toggleCopy struct {
	key     string
	added   string
	removed string
}

var toggleMessages = map[model.Relation]toggleCopy{
	model.RelationLike:     {"liked", "Project Liked Successfully", "Project Disliked Successfully"},
	model.RelationBookmark: {"bookmarked", "Project added to bookmark Successfully", "Project removed from bookmark Successfully"},
	model.RelationFavorite: {"favorited", "Project added to favorites Successfully", "Project removed from favorites Successfully"},
}

// HandleToggle returns a handler flipping rel for the caller.
//
// HTTP: PUT /api/v1/project/toggle/{like|bookmark|favorite}/{id}
//
// The response carries the state after the flip and the member count, so
// clients do not have to guess from their previous view.
func (h *ProjectHandler) HandleToggle(rel model.Relation) http.HandlerFunc {
	msgs := toggleMessages[rel]
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := auth.IdentityFromContext(r.Context())

		res, err := h.ledger.Toggle(r.Context(), rel, chi.URLParam(r, "id"), caller.ID)
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}

		message := msgs.removed
		if res.Active {
			message = msgs.added
		}
		writeOK(w, payload{"message": message, msgs.key: res.Active, "count": res.Count})
	}
}

func (h *ProjectHandler) readInput(w http.ResponseWriter, r *http.Request) (service.ProjectInput, *media.Upload, error) {
	if !isMultipart(r) {
		var req projectRequest
		if err := decodeJSON(r, &req); err != nil {
			return service.ProjectInput{}, nil, err
		}
		return service.ProjectInput{
			Title:       req.Title,
			Description: req.Description,
			Category:    req.Category,
			Tags:        decodeTags(req.Tags),
			LiveLink:    req.LiveLink,
			RepoLink:    req.RepoLink,
		}, nil, nil
	}

	if err := parseMultipart(w, r, h.maxUpload); err != nil {
		return service.ProjectInput{}, nil, err
	}
	form := r.MultipartForm
	in := service.ProjectInput{
		Title:       formValue(form, "title"),
		Description: formValue(form, "description"),
		Category:    formValue(form, "category"),
		LiveLink:    formValue(form, "liveLink"),
		RepoLink:    formValue(form, "repoLink"),
	}
	if raw, ok := form.Value["tags"]; ok {
		var tags []string
		if len(raw) == 1 {
			tags = service.ParseTags(raw[0])
		} else {
			tags = service.CleanTags(raw)
		}
		in.Tags = &tags
	}

	image, err := formImage(r, "previewImage", media.FolderProjects, h.maxUpload)
	if err != nil {
		return service.ProjectInput{}, nil, err
	}
	return in, image, nil
}
