package service

import (
	"context"
	"log/slog"

	"github.com/sakif/peerhub/internal/media"
)

// destroyQuietly removes a media object without failing the caller. Cleanup
// runs detached from request cancellation; failures are logged at WARN.
func destroyQuietly(ctx context.Context, store media.Store, logger *slog.Logger, url string) {
	if url == "" {
		return
	}
	if err := store.Destroy(context.WithoutCancel(ctx), url); err != nil {
		logger.Warn("media cleanup failed",
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
	}
}

// upload stores img if present and returns its URL, or "" for no image.
func upload(ctx context.Context, store media.Store, img *media.Upload) (string, error) {
	if img == nil {
		return "", nil
	}
	return store.Upload(ctx, *img)
}
