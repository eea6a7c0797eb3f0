package media

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sakif/peerhub/internal/model"
	"github.com/sakif/peerhub/internal/repository"
)

// RoutePrefix is where the HTTP server mounts DB-backed media.
const RoutePrefix = "/media"

// DBStore keeps media bytes in the database. It is the fallback when no
// bucket is configured, which keeps development to a single file.
type DBStore struct {
	blobs   repository.BlobRepository
	baseURL string
	now     func() time.Time
}

var _ Store = (*DBStore)(nil)

// NewDBStore returns a store whose URLs are publicBaseURL + "/media/" + key.
func NewDBStore(blobs repository.BlobRepository, publicBaseURL string) *DBStore {
	return &DBStore{
		blobs:   blobs,
		baseURL: strings.TrimRight(publicBaseURL, "/") + RoutePrefix,
		now:     time.Now,
	}
}

func (s *DBStore) Upload(ctx context.Context, u Upload) (string, error) {
	data, err := io.ReadAll(u.Body)
	if err != nil {
		return "", fmt.Errorf("media/db: reading upload: %w", err)
	}

	key := NewKey(u, s.now().UTC())
	if err := s.blobs.SaveBlob(ctx, &model.Blob{Key: key, ContentType: u.ContentType, Data: data}); err != nil {
		return "", fmt.Errorf("media/db: %w", err)
	}
	return s.baseURL + "/" + key, nil
}

func (s *DBStore) Destroy(ctx context.Context, url string) error {
	key, ok := keyFromURL(s.baseURL, url)
	if !ok {
		return nil
	}
	if err := s.blobs.DeleteBlob(ctx, key); err != nil {
		return fmt.Errorf("media/db: %w", err)
	}
	return nil
}
