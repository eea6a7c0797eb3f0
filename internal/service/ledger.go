package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/peerhub/internal/apperror"
	"github.com/sakif/peerhub/internal/model"
	"github.com/sakif/peerhub/internal/repository"
)

// ToggleObserver is told about every successful toggle. *metrics.Metrics
// implements it.
type ToggleObserver interface {
	ObserveToggle(model.ToggleResult)
}

// LedgerService flips likes, bookmarks and favorites.
//
// Every relation is stored once, as a (project, user) row, so a bookmark
// shows up in the project's bookmark list and in the user's bookmarks from
// the same fact. There is nothing to keep in sync.
type LedgerService struct {
	projects  repository.ProjectRepository
	relations repository.RelationRepository
	observer  ToggleObserver
	logger    *slog.Logger
}

// NewLedgerService creates a LedgerService. observer may be nil.
func NewLedgerService(
	projects repository.ProjectRepository,
	relations repository.RelationRepository,
	observer ToggleObserver,
	logger *slog.Logger,
) *LedgerService {
	return &LedgerService{
		projects:  projects,
		relations: relations,
		observer:  observer,
		logger:    logger,
	}
}

// ToggleLike flips userID's like. Liking your own project is forbidden.
func (s *LedgerService) ToggleLike(ctx context.Context, projectID, userID string) (model.ToggleResult, error) {
	return s.Toggle(ctx, model.RelationLike, projectID, userID)
}

// ToggleBookmark flips userID's bookmark. Owners may bookmark their own
// projects.
func (s *LedgerService) ToggleBookmark(ctx context.Context, projectID, userID string) (model.ToggleResult, error) {
	return s.Toggle(ctx, model.RelationBookmark, projectID, userID)
}

// ToggleFavorite flips userID's favorite.
func (s *LedgerService) ToggleFavorite(ctx context.Context, projectID, userID string) (model.ToggleResult, error) {
	return s.Toggle(ctx, model.RelationFavorite, projectID, userID)
}

// Toggle flips membership of userID in rel for projectID and returns the
// authoritative state and member count after the flip.
func (s *LedgerService) Toggle(ctx context.Context, rel model.Relation, projectID, userID string) (model.ToggleResult, error) {
	if !rel.Valid() {
		return model.ToggleResult{}, apperror.ValidationFailed("relation", fmt.Sprintf("unknown relation %q", rel))
	}

	p, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return model.ToggleResult{}, wrapUnlessApp("service/ledger: getting project", err)
	}
	if rel == model.RelationLike && p.AuthorID == userID {
		return model.ToggleResult{}, apperror.Forbidden("You cannot like your own project")
	}

	res, err := s.relations.ToggleRelation(ctx, rel, projectID, userID)
	if err != nil {
		return model.ToggleResult{}, wrapUnlessApp("service/ledger: toggling "+string(rel), err)
	}

	if s.observer != nil {
		s.observer.ObserveToggle(res)
	}
	s.logger.Info("relation toggled",
		slog.String("relation", string(rel)),
		slog.String("projectID", projectID),
		slog.String("userID", userID),
		slog.Bool("active", res.Active),
		slog.Int("count", res.Count),
	)
	return res, nil
}
