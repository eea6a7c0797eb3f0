package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/peerhub/internal/apperror"
	"github.com/sakif/peerhub/internal/model"
)

const projectColumns = `p.id, p.title, p.description, p.category, p.tags, p.live_link, p.repo_link, p.preview_image, p.author_id, p.created_at, p.updated_at`

// CreateProject inserts a project. The title UNIQUE constraint backs up the
// service's pre-check when two creates race.
func (s *Store) CreateProject(ctx context.Context, project *model.Project) error {
	now := time.Now().UTC()
	project.ID = xid.New().String()
	project.CreatedAt = now
	project.UpdatedAt = now

	tags, err := encodeTags(project.Tags)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO projects (id, title, description, category, tags, live_link, repo_link, preview_image, author_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		project.ID,
		project.Title,
		project.Description,
		project.Category,
		tags,
		project.LiveLink,
		project.RepoLink,
		project.PreviewImage,
		project.AuthorID,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("project", "title", project.Title)
		}
		return fmt.Errorf("sqlstore: inserting project %q: %w", project.Title, err)
	}
	return nil
}

// GetProject returns the bare project row.
func (s *Store) GetProject(ctx context.Context, id string) (*model.Project, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT `+projectColumns+` FROM projects p WHERE p.id = ?`), id)

	p, err := scanProject(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("project", id)
		}
		return nil, fmt.Errorf("sqlstore: getting project %s: %w", id, err)
	}
	return p, nil
}

// TitleTaken reports whether a project other than excludeID uses title.
func (s *Store) TitleTaken(ctx context.Context, title, excludeID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT COUNT(*) FROM projects WHERE title = ? AND id <> ?`),
		title, excludeID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlstore: checking title %q: %w", title, err)
	}
	return n > 0, nil
}

// UpdateProject writes every mutable field. author_id and created_at are
// never touched.
func (s *Store) UpdateProject(ctx context.Context, project *model.Project) error {
	project.UpdatedAt = time.Now().UTC()

	tags, err := encodeTags(project.Tags)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, s.rebind(
		`UPDATE projects
		 SET title = ?, description = ?, category = ?, tags = ?, live_link = ?, repo_link = ?, preview_image = ?, updated_at = ?
		 WHERE id = ?`),
		project.Title,
		project.Description,
		project.Category,
		tags,
		project.LiveLink,
		project.RepoLink,
		project.PreviewImage,
		project.UpdatedAt,
		project.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("project", "title", project.Title)
		}
		return fmt.Errorf("sqlstore: updating project %s: %w", project.ID, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlstore: checking rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.NotFound("project", project.ID)
	}
	return nil
}

// DeleteProject removes the project's comments, its relation rows and the
// project itself in one transaction. Either all of it goes or none of it.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx dbtx) error {
		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM comments WHERE project_id = ?`), id); err != nil {
			return fmt.Errorf("sqlstore: deleting comments of project %s: %w", id, err)
		}
		for _, rel := range model.Relations {
			if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM `+rel.Table()+` WHERE project_id = ?`), id); err != nil {
				return fmt.Errorf("sqlstore: deleting %s of project %s: %w", rel, id, err)
			}
		}

		res, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM projects WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("sqlstore: deleting project %s: %w", id, err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlstore: checking rows affected: %w", err)
		}
		if rows == 0 {
			return apperror.NotFound("project", id)
		}
		return nil
	})
}

// GetProjectDetail returns one project with author, relations and comments
// expanded.
func (s *Store) GetProjectDetail(ctx context.Context, id string) (*model.ProjectDetail, error) {
	details, err := s.ListProjectDetails(ctx, model.ProjectFilter{ID: id})
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, apperror.NotFound("project", id)
	}
	return &details[0], nil
}

// ListProjectDetails returns the projects matching filter, expanded.
//
// EXPANSION:
// One query loads the projects with their author's username. Then one query
// per relation and one for comments load the members of every listed
// project at once, so the cost is five queries regardless of result size.
func (s *Store) ListProjectDetails(ctx context.Context, filter model.ProjectFilter) ([]model.ProjectDetail, error) {
	query, args := s.projectListQuery(filter)

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing projects: %w", err)
	}
	defer rows.Close()

	var (
		details []model.ProjectDetail
		index   = map[string]int{}
	)
	for rows.Next() {
		var authorName string
		p, err := scanProject(func(dest ...any) error {
			return rows.Scan(append(dest, &authorName)...)
		})
		if err != nil {
			return nil, fmt.Errorf("sqlstore: scanning project: %w", err)
		}
		index[p.ID] = len(details)
		details = append(details, model.ProjectDetail{
			Project:   *p,
			Author:    model.UserSummary{ID: p.AuthorID, Username: authorName},
			Likes:     []model.UserSummary{},
			Bookmarks: []model.UserSummary{},
			Favorites: []model.UserSummary{},
			Comments:  []model.CommentRef{},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: iterating projects: %w", err)
	}
	if len(details) == 0 {
		return []model.ProjectDetail{}, nil
	}

	ids := make([]any, len(details))
	for i := range details {
		ids[i] = details[i].ID
	}

	for _, rel := range model.Relations {
		members, err := s.membersByProject(ctx, rel, ids)
		if err != nil {
			return nil, err
		}
		for projectID, users := range members {
			d := &details[index[projectID]]
			switch rel {
			case model.RelationLike:
				d.Likes = users
			case model.RelationBookmark:
				d.Bookmarks = users
			case model.RelationFavorite:
				d.Favorites = users
			}
		}
	}

	comments, err := s.commentRefsByProject(ctx, ids)
	if err != nil {
		return nil, err
	}
	for projectID, refs := range comments {
		details[index[projectID]].Comments = refs
	}

	return details, nil
}

func (s *Store) projectListQuery(filter model.ProjectFilter) (string, []any) {
	var (
		b     strings.Builder
		args  []any
		order = "p.created_at, p.id"
	)
	b.WriteString(`SELECT ` + projectColumns + `, u.username FROM projects p JOIN users u ON u.id = p.author_id`)

	switch {
	case filter.BookmarkedBy != "":
		b.WriteString(` JOIN project_bookmarks r ON r.project_id = p.id AND r.user_id = ?`)
		args = append(args, filter.BookmarkedBy)
		order = "r.created_at, p.id"
	case filter.FavoritedBy != "":
		b.WriteString(` JOIN project_favorites r ON r.project_id = p.id AND r.user_id = ?`)
		args = append(args, filter.FavoritedBy)
		order = "r.created_at, p.id"
	}

	var where []string
	if filter.ID != "" {
		where = append(where, "p.id = ?")
		args = append(args, filter.ID)
	}
	if filter.AuthorID != "" {
		where = append(where, "p.author_id = ?")
		args = append(args, filter.AuthorID)
	}
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}

	b.WriteString(" ORDER BY " + order)
	return b.String(), args
}

// membersByProject loads {id, username} of every member of rel for the given
// projects, grouped by project in insertion order.
func (s *Store) membersByProject(ctx context.Context, rel model.Relation, projectIDs []any) (map[string][]model.UserSummary, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT r.project_id, u.id, u.username
		 FROM `+rel.Table()+` r JOIN users u ON u.id = r.user_id
		 WHERE r.project_id IN (`+placeholders(len(projectIDs))+`)
		 ORDER BY r.created_at, r.user_id`),
		projectIDs...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: loading %s: %w", rel, err)
	}
	defer rows.Close()

	out := map[string][]model.UserSummary{}
	for rows.Next() {
		var (
			projectID string
			u         model.UserSummary
		)
		if err := rows.Scan(&projectID, &u.ID, &u.Username); err != nil {
			return nil, fmt.Errorf("sqlstore: scanning %s: %w", rel, err)
		}
		out[projectID] = append(out[projectID], u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: iterating %s: %w", rel, err)
	}
	return out, nil
}

func (s *Store) commentRefsByProject(ctx context.Context, projectIDs []any) (map[string][]model.CommentRef, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT c.project_id, c.id, u.id, u.username
		 FROM comments c JOIN users u ON u.id = c.author_id
		 WHERE c.project_id IN (`+placeholders(len(projectIDs))+`)
		 ORDER BY c.created_at, c.id`),
		projectIDs...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: loading comment refs: %w", err)
	}
	defer rows.Close()

	out := map[string][]model.CommentRef{}
	for rows.Next() {
		var (
			projectID string
			ref       model.CommentRef
		)
		if err := rows.Scan(&projectID, &ref.ID, &ref.CommentedBy.ID, &ref.CommentedBy.Username); err != nil {
			return nil, fmt.Errorf("sqlstore: scanning comment ref: %w", err)
		}
		out[projectID] = append(out[projectID], ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: iterating comment refs: %w", err)
	}
	return out, nil
}

// scanProject reads projectColumns through scan, which is row.Scan or a
// closure around rows.Scan that can append extra destinations.
func scanProject(scan func(dest ...any) error) (*model.Project, error) {
	var (
		p    model.Project
		tags string
	)
	if err := scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.Category,
		&tags,
		&p.LiveLink,
		&p.RepoLink,
		&p.PreviewImage,
		&p.AuthorID,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Tags = decodeTags(tags)
	return &p, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("sqlstore: encoding tags: %w", err)
	}
	return string(b), nil
}

func decodeTags(raw string) []string {
	tags := []string{}
	if raw == "" {
		return tags
	}
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return []string{}
	}
	return tags
}
