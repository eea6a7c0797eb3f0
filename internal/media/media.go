// Package media stores uploaded images and hands back public URLs.
//
// Two stores implement Store:
//   - S3Store puts objects in an S3-compatible bucket (AWS, MinIO, R2)
//   - DBStore keeps the bytes in the media_blobs table and serves them
//     from GET /media/{key}
//
// Callers pass an Upload produced by Prepare, which enforces the size cap
// and checks that the bytes really are an image.
package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/peerhub/internal/apperror"
)

// Folders used by the services.
const (
	FolderProjects = "projects"
	FolderProfiles = "profiles"
)

// Upload is a validated image ready to be stored.
type Upload struct {
	Folder      string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Store persists uploads and removes them again.
type Store interface {
	// Upload stores the object and returns its public URL.
	Upload(ctx context.Context, u Upload) (string, error)
	// Destroy removes the object behind url. URLs the store did not issue
	// are ignored.
	Destroy(ctx context.Context, url string) error
}

// extensions maps sniffed content types to the key suffix.
var extensions = map[string]string{
	"image/png":                ".png",
	"image/jpeg":               ".jpg",
	"image/gif":                ".gif",
	"image/webp":               ".webp",
	"image/bmp":                ".bmp",
	"image/x-icon":             ".ico",
	"image/vnd.microsoft.icon": ".ico",
}

// Prepare reads at most maxBytes from r and returns an Upload whose body is
// the buffered bytes. Empty input, input over the cap, and anything that
// does not sniff as image/* are validation errors on field.
func Prepare(r io.Reader, field, folder, filename string, maxBytes int64) (Upload, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return Upload{}, fmt.Errorf("media: reading upload: %w", err)
	}
	if len(data) == 0 {
		return Upload{}, apperror.ValidationFailed(field, "uploaded file is empty")
	}
	if int64(len(data)) > maxBytes {
		return Upload{}, apperror.ValidationFailed(field, fmt.Sprintf("image must be at most %d bytes", maxBytes))
	}

	contentType := http.DetectContentType(data)
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	if !strings.HasPrefix(contentType, "image/") {
		return Upload{}, apperror.ValidationFailed(field, "uploaded file must be an image")
	}

	return Upload{
		Folder:      folder,
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		Body:        bytes.NewReader(data),
	}, nil
}

// NewKey builds an object key of the form <folder>/<yyyy>/<mm>/<xid><ext>.
// The extension comes from the content type, falling back to the client's
// filename.
func NewKey(u Upload, now time.Time) string {
	ext, ok := extensions[u.ContentType]
	if !ok {
		ext = strings.ToLower(path.Ext(u.Filename))
	}
	folder := strings.Trim(u.Folder, "/")
	if folder == "" {
		folder = "misc"
	}
	return fmt.Sprintf("%s/%04d/%02d/%s%s", folder, now.Year(), int(now.Month()), xid.New().String(), ext)
}

// keyFromURL strips base + "/" from url. ok is false if url is not under base.
func keyFromURL(base, url string) (string, bool) {
	prefix := strings.TrimRight(base, "/") + "/"
	if base == "" || !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	if key == "" || strings.Contains(key, "..") {
		return "", false
	}
	return key, true
}
