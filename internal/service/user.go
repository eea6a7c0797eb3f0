package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/peerhub/internal/apperror"
	"github.com/sakif/peerhub/internal/auth"
	"github.com/sakif/peerhub/internal/media"
	"github.com/sakif/peerhub/internal/model"
	"github.com/sakif/peerhub/internal/repository"
)

// ProfileInput is a profile edit. Bio is nil when the client did not send
// it, which keeps the stored bio.
type ProfileInput struct {
	Username string
	Bio      *string
}

// UserService serves profiles and the user-scoped project lists.
type UserService struct {
	users    repository.UserRepository
	projects *ProjectService
	media    media.Store
	logger   *slog.Logger
}

func NewUserService(users repository.UserRepository, projects *ProjectService, store media.Store, logger *slog.Logger) *UserService {
	return &UserService{users: users, projects: projects, media: store, logger: logger}
}

// UpdateProfile edits userID's profile. Only the user themself may do so.
func (s *UserService) UpdateProfile(ctx context.Context, userID, callerID string, in ProfileInput, image *media.Upload) (*model.Profile, error) {
	if err := auth.AssertOwner(userID, callerID, "Unauthorized to Update this profile"); err != nil {
		return nil, err
	}

	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, apperror.ValidationFailed("username", "Username is missing")
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, wrapUnlessApp("service/user: getting user", err)
	}

	user.Username = username
	if in.Bio != nil {
		user.Bio = strings.TrimSpace(*in.Bio)
	}

	oldPic := user.ProfilePic
	newPic, err := upload(ctx, s.media, image)
	if err != nil {
		return nil, fmt.Errorf("service/user: uploading profile picture: %w", err)
	}
	if newPic != "" {
		user.ProfilePic = newPic
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		destroyQuietly(ctx, s.media, s.logger, newPic)
		return nil, wrapUnlessApp("service/user: updating profile", err)
	}
	if newPic != "" {
		destroyQuietly(ctx, s.media, s.logger, oldPic)
	}

	s.logger.Info("profile updated", slog.String("userID", userID))
	return user.Profile(), nil
}

// GetProfile returns the public profile of userID.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, wrapUnlessApp("service/user: getting user", err)
	}
	return user.Profile(), nil
}

// GetBookmarks lists userID's bookmarked projects. Self only.
func (s *UserService) GetBookmarks(ctx context.Context, userID, callerID string) ([]model.ProjectDetail, error) {
	if err := auth.AssertOwner(userID, callerID, "Unauthorized to view bookmarks"); err != nil {
		return nil, err
	}
	return s.projects.ListBookmarkedBy(ctx, userID)
}

// GetFavorites lists userID's favorited projects. Self only.
func (s *UserService) GetFavorites(ctx context.Context, userID, callerID string) ([]model.ProjectDetail, error) {
	if err := auth.AssertOwner(userID, callerID, "Unauthorized to view favorites"); err != nil {
		return nil, err
	}
	return s.projects.ListFavoritedBy(ctx, userID)
}

// GetProjects lists the projects userID owns. Public.
func (s *UserService) GetProjects(ctx context.Context, userID string) ([]model.ProjectDetail, error) {
	return s.projects.ListByAuthor(ctx, userID)
}
