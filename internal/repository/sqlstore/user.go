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

const userColumns = `id, username, email, password_hash, provider, bio, profile_pic, created_at, updated_at`

// CreateUser inserts a new account. The email UNIQUE constraint is the final
// word on duplicates: two concurrent signups for one email produce exactly
// one row and one ErrConflict.
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Provider == "" {
		user.Provider = model.ProviderLocal
	}

	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		string(user.Provider),
		user.Bio,
		user.ProfilePic,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", "email", user.Email)
		}
		return fmt.Errorf("sqlstore: inserting user %s: %w", user.Email, err)
	}
	return nil
}

// GetUserByID returns apperror.ErrNotFound if no user has that ID.
func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, s.rebind(
		`SELECT `+userColumns+` FROM users WHERE id = ?`), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlstore: getting user %s: %w", id, err)
	}
	return u, nil
}

// GetUserByEmail returns apperror.ErrNotFound if no user has that email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, s.rebind(
		`SELECT `+userColumns+` FROM users WHERE email = ?`), email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlstore: getting user by email: %w", err)
	}
	return u, nil
}

// UpdateProfile writes the editable profile fields and bumps UpdatedAt.
func (s *Store) UpdateProfile(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx, s.rebind(
		`UPDATE users SET username = ?, bio = ?, profile_pic = ?, updated_at = ? WHERE id = ?`),
		user.Username,
		user.Bio,
		user.ProfilePic,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlstore: updating user %s: %w", user.ID, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlstore: checking rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.NotFound("user", user.ID)
	}
	return nil
}

func scanUser(row *sql.Row) (*model.User, error) {
	var (
		u        model.User
		provider string
	)
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&provider,
		&u.Bio,
		&u.ProfilePic,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.Provider = model.AuthProvider(provider)
	return &u, nil
}
