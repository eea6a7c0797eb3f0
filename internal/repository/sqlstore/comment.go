package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/peerhub/internal/apperror"
	"github.com/sakif/peerhub/internal/model"
)

// CreateComment inserts a comment. The project must exist; the check and
// the insert share a transaction so a concurrent project delete cannot
// leave an orphan.
func (s *Store) CreateComment(ctx context.Context, comment *model.Comment) error {
	comment.ID = xid.New().String()
	comment.CreatedAt = time.Now().UTC()

	return s.withTx(ctx, func(tx dbtx) error {
		var n int
		if err := tx.QueryRowContext(ctx, s.rebind(
			`SELECT COUNT(*) FROM projects WHERE id = ?`), comment.ProjectID,
		).Scan(&n); err != nil {
			return fmt.Errorf("sqlstore: checking project %s: %w", comment.ProjectID, err)
		}
		if n == 0 {
			return apperror.NotFound("project", comment.ProjectID)
		}

		_, err := tx.ExecContext(ctx, s.rebind(
			`INSERT INTO comments (id, content, author_id, project_id, created_at) VALUES (?, ?, ?, ?, ?)`),
			comment.ID,
			comment.Content,
			comment.AuthorID,
			comment.ProjectID,
			comment.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("sqlstore: inserting comment: %w", err)
		}
		return nil
	})
}

// GetComment returns apperror.ErrNotFound if the comment does not exist.
func (s *Store) GetComment(ctx context.Context, id string) (*model.Comment, error) {
	var c model.Comment
	err := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT id, content, author_id, project_id, created_at FROM comments WHERE id = ?`), id,
	).Scan(&c.ID, &c.Content, &c.AuthorID, &c.ProjectID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlstore: getting comment %s: %w", id, err)
	}
	return &c, nil
}

// ListComments returns a project's comments oldest first with the author
// expanded. An unknown project yields an empty list.
func (s *Store) ListComments(ctx context.Context, projectID string) ([]model.CommentDetail, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT c.id, c.content, c.author_id, c.project_id, c.created_at, u.username
		 FROM comments c JOIN users u ON u.id = c.author_id
		 WHERE c.project_id = ?
		 ORDER BY c.created_at, c.id`), projectID)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing comments of %s: %w", projectID, err)
	}
	defer rows.Close()

	comments := []model.CommentDetail{}
	for rows.Next() {
		var c model.CommentDetail
		if err := rows.Scan(&c.ID, &c.Content, &c.AuthorID, &c.ProjectID, &c.CreatedAt, &c.CommentedBy.Username); err != nil {
			return nil, fmt.Errorf("sqlstore: scanning comment: %w", err)
		}
		c.CommentedBy.ID = c.AuthorID
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: iterating comments: %w", err)
	}
	return comments, nil
}

// DeleteComment removes the comment row, which is also its membership in the
// project's comment set.
func (s *Store) DeleteComment(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM comments WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("sqlstore: deleting comment %s: %w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlstore: checking rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.NotFound("comment", id)
	}
	return nil
}
