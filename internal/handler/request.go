package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/sakif/peerhub/internal/apperror"
	"github.com/sakif/peerhub/internal/media"
)

// formOverhead is the room left for text fields on top of the image cap.
const formOverhead = 1 << 20

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperror.ValidationFailed("body", "request body too large")
		}
		return apperror.ValidationFailed("body", "Invalid JSON body")
	}
	return nil
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// parseMultipart parses the form with the body capped at the image limit
// plus formOverhead.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxUpload int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload+formOverhead)
	if err := r.ParseMultipartForm(maxUpload + formOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperror.ValidationFailed("body", fmt.Sprintf("image must be at most %d bytes", maxUpload))
		}
		return apperror.ValidationFailed("body", "Invalid form body")
	}
	return nil
}

// formValue returns a pointer to the first value of key, or nil when the
// field is absent. Presence matters: absent fields are left unchanged by
// partial edits.
func formValue(form *multipart.Form, key string) *string {
	vs, ok := form.Value[key]
	if !ok || len(vs) == 0 {
		return nil
	}
	v := vs[0]
	return &v
}

// formImage prepares the uploaded file under field, or returns nil when no
// file was sent.
func formImage(r *http.Request, field, folder string, maxUpload int64) (*media.Upload, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.ValidationFailed(field, "Invalid file upload")
	}
	defer file.Close()

	u, err := media.Prepare(file, field, folder, header.Filename, maxUpload)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
