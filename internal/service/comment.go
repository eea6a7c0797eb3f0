package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sakif/peerhub/internal/apperror"
	"github.com/sakif/peerhub/internal/auth"
	"github.com/sakif/peerhub/internal/model"
	"github.com/sakif/peerhub/internal/repository"
)

// CommentService creates, lists and deletes comments.
type CommentService struct {
	comments repository.CommentRepository
	logger   *slog.Logger
}

func NewCommentService(comments repository.CommentRepository, logger *slog.Logger) *CommentService {
	return &CommentService{comments: comments, logger: logger}
}

// Create adds a comment by authorID to projectID.
func (s *CommentService) Create(ctx context.Context, projectID, authorID, content string) (*model.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "Content is missing")
	}

	c := &model.Comment{Content: content, AuthorID: authorID, ProjectID: projectID}
	if err := s.comments.CreateComment(ctx, c); err != nil {
		return nil, wrapUnlessApp("service/comment: creating comment", err)
	}

	s.logger.Info("comment created",
		slog.String("commentID", c.ID),
		slog.String("projectID", projectID),
	)
	return c, nil
}

// List returns a project's comments in creation order.
func (s *CommentService) List(ctx context.Context, projectID string) ([]model.CommentDetail, error) {
	comments, err := s.comments.ListComments(ctx, projectID)
	if err != nil {
		return nil, wrapUnlessApp("service/comment: listing comments", err)
	}
	return comments, nil
}

// Delete removes a comment. Only its author may do so.
func (s *CommentService) Delete(ctx context.Context, commentID, callerID string) error {
	c, err := s.comments.GetComment(ctx, commentID)
	if err != nil {
		return wrapUnlessApp("service/comment: getting comment", err)
	}
	if err := auth.AssertOwner(c.AuthorID, callerID, "Unauthorized to delete this comment"); err != nil {
		return err
	}

	if err := s.comments.DeleteComment(ctx, commentID); err != nil {
		return wrapUnlessApp("service/comment: deleting comment", err)
	}

	s.logger.Info("comment deleted", slog.String("commentID", commentID))
	return nil
}
