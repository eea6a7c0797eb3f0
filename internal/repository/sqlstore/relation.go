package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/sakif/peerhub/internal/apperror"
	"github.com/sakif/peerhub/internal/model"
)

// ToggleRelation flips userID's membership in rel for projectID.
//
// CHECK-AND-FLIP:
// The existence check, the flip and the recount run in one transaction, so
// the returned ToggleResult is the state this call produced. The insert uses
// ON CONFLICT DO NOTHING: if two toggles race to add the same pair, both
// end up reporting the pair as present instead of one failing.
func (s *Store) ToggleRelation(ctx context.Context, rel model.Relation, projectID, userID string) (model.ToggleResult, error) {
	if !rel.Valid() {
		return model.ToggleResult{}, fmt.Errorf("sqlstore: unknown relation %q", rel)
	}
	table := rel.Table()
	result := model.ToggleResult{Relation: rel}

	err := s.withTx(ctx, func(tx dbtx) error {
		var n int
		if err := tx.QueryRowContext(ctx, s.rebind(
			`SELECT COUNT(*) FROM projects WHERE id = ?`), projectID,
		).Scan(&n); err != nil {
			return fmt.Errorf("sqlstore: checking project %s: %w", projectID, err)
		}
		if n == 0 {
			return apperror.NotFound("project", projectID)
		}

		if err := tx.QueryRowContext(ctx, s.rebind(
			`SELECT COUNT(*) FROM `+table+` WHERE project_id = ? AND user_id = ?`), projectID, userID,
		).Scan(&n); err != nil {
			return fmt.Errorf("sqlstore: checking %s membership: %w", rel, err)
		}

		if n > 0 {
			if _, err := tx.ExecContext(ctx, s.rebind(
				`DELETE FROM `+table+` WHERE project_id = ? AND user_id = ?`), projectID, userID,
			); err != nil {
				return fmt.Errorf("sqlstore: removing %s membership: %w", rel, err)
			}
			result.Active = false
		} else {
			if _, err := tx.ExecContext(ctx, s.rebind(
				`INSERT INTO `+table+` (project_id, user_id, created_at) VALUES (?, ?, ?)
				 ON CONFLICT (project_id, user_id) DO NOTHING`), projectID, userID, time.Now().UTC(),
			); err != nil {
				return fmt.Errorf("sqlstore: adding %s membership: %w", rel, err)
			}
			result.Active = true
		}

		if err := tx.QueryRowContext(ctx, s.rebind(
			`SELECT COUNT(*) FROM `+table+` WHERE project_id = ?`), projectID,
		).Scan(&result.Count); err != nil {
			return fmt.Errorf("sqlstore: counting %s: %w", rel, err)
		}
		return nil
	})
	if err != nil {
		return model.ToggleResult{}, err
	}
	return result, nil
}

// HasRelation reports whether userID is a member of rel for projectID.
func (s *Store) HasRelation(ctx context.Context, rel model.Relation, projectID, userID string) (bool, error) {
	if !rel.Valid() {
		return false, fmt.Errorf("sqlstore: unknown relation %q", rel)
	}
	var n int
	err := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT COUNT(*) FROM `+rel.Table()+` WHERE project_id = ? AND user_id = ?`), projectID, userID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlstore: checking %s membership: %w", rel, err)
	}
	return n > 0, nil
}

// RelationMembers lists the members of rel for projectID in the order they
// joined.
func (s *Store) RelationMembers(ctx context.Context, rel model.Relation, projectID string) ([]model.UserSummary, error) {
	if !rel.Valid() {
		return nil, fmt.Errorf("sqlstore: unknown relation %q", rel)
	}
	members, err := s.membersByProject(ctx, rel, []any{projectID})
	if err != nil {
		return nil, err
	}
	if users, ok := members[projectID]; ok {
		return users, nil
	}
	return []model.UserSummary{}, nil
}
