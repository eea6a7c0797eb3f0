package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/peerhub/internal/apperror"
	"github.com/sakif/peerhub/internal/model"
)

// SaveBlob stores media bytes under blob.Key. Keys are generated unique, so
// a collision is reported as a conflict rather than overwritten.
func (s *Store) SaveBlob(ctx context.Context, blob *model.Blob) error {
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO media_blobs (object_key, content_type, data, created_at) VALUES (?, ?, ?, ?)`),
		blob.Key, blob.ContentType, blob.Data, time.Now().UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("media", "key", blob.Key)
		}
		return fmt.Errorf("sqlstore: saving blob %s: %w", blob.Key, err)
	}
	return nil
}

func (s *Store) GetBlob(ctx context.Context, key string) (*model.Blob, error) {
	b := model.Blob{Key: key}
	err := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT content_type, data FROM media_blobs WHERE object_key = ?`), key,
	).Scan(&b.ContentType, &b.Data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("media", key)
		}
		return nil, fmt.Errorf("sqlstore: getting blob %s: %w", key, err)
	}
	return &b, nil
}

// DeleteBlob is idempotent: deleting a missing key is not an error.
func (s *Store) DeleteBlob(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM media_blobs WHERE object_key = ?`), key); err != nil {
		return fmt.Errorf("sqlstore: deleting blob %s: %w", key, err)
	}
	return nil
}
