// Package repository defines the storage contracts the services depend on.
//
// The services never see SQL. They talk to these interfaces, and
// internal/repository/sqlstore implements them for SQLite and PostgreSQL.
// Tests use the same sqlstore against a temporary SQLite file.
package repository

import (
	"context"

	"github.com/sakif/peerhub/internal/model"
)

// UserRepository stores accounts.
type UserRepository interface {
	// CreateUser assigns ID and timestamps. A taken email is an
	// apperror.ErrConflict.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	// GetUserByEmail expects an already normalized email.
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// UpdateProfile writes username, bio and profile picture.
	UpdateProfile(ctx context.Context, user *model.User) error
}

// ProjectRepository stores projects and reads them back with their
// relation sets expanded.
type ProjectRepository interface {
	// CreateProject assigns ID and timestamps. A taken title is an
	// apperror.ErrConflict.
	CreateProject(ctx context.Context, project *model.Project) error
	GetProject(ctx context.Context, id string) (*model.Project, error)
	// TitleTaken reports whether another project (not excludeID) has title.
	TitleTaken(ctx context.Context, title, excludeID string) (bool, error)
	UpdateProject(ctx context.Context, project *model.Project) error
	// DeleteProject removes the project, its comments and every relation row
	// in a single transaction.
	DeleteProject(ctx context.Context, id string) error
	GetProjectDetail(ctx context.Context, id string) (*model.ProjectDetail, error)
	ListProjectDetails(ctx context.Context, filter model.ProjectFilter) ([]model.ProjectDetail, error)
}

// RelationRepository stores likes, bookmarks and favorites. Each membership
// is one row, so the project view and the user view can never disagree.
type RelationRepository interface {
	// ToggleRelation flips membership of userID in rel for projectID inside
	// one transaction and returns the state after the flip.
	ToggleRelation(ctx context.Context, rel model.Relation, projectID, userID string) (model.ToggleResult, error)
	HasRelation(ctx context.Context, rel model.Relation, projectID, userID string) (bool, error)
	RelationMembers(ctx context.Context, rel model.Relation, projectID string) ([]model.UserSummary, error)
}

// CommentRepository stores comments. A comment belongs to the project named
// by its ProjectID; there is no separate membership list to keep in sync.
type CommentRepository interface {
	// CreateComment returns apperror.ErrNotFound if the project is missing.
	CreateComment(ctx context.Context, comment *model.Comment) error
	GetComment(ctx context.Context, id string) (*model.Comment, error)
	ListComments(ctx context.Context, projectID string) ([]model.CommentDetail, error)
	DeleteComment(ctx context.Context, id string) error
}

// BlobRepository stores media bytes for the database-backed media store.
type BlobRepository interface {
	SaveBlob(ctx context.Context, blob *model.Blob) error
	GetBlob(ctx context.Context, key string) (*model.Blob, error)
	DeleteBlob(ctx context.Context, key string) error
}

// Store is everything the server needs from one database.
type Store interface {
	UserRepository
	ProjectRepository
	RelationRepository
	CommentRepository
	BlobRepository
	Ping(ctx context.Context) error
	Close() error
}
