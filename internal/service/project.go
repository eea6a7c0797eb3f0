package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/peerhub/internal/apperror"
	"github.com/sakif/peerhub/internal/auth"
	"github.com/sakif/peerhub/internal/media"
	"github.com/sakif/peerhub/internal/model"
	"github.com/sakif/peerhub/internal/repository"
)

// ProjectInput carries the client-supplied project fields.
//
// A nil field was absent from the request. Create requires the required
// fields to be present; Edit keeps the stored value for absent fields.
type ProjectInput struct {
	Title       *string
	Description *string
	Category    *string
	Tags        *[]string
	LiveLink    *string
	RepoLink    *string
}

// ProjectService owns project lifecycle and ownership rules.
type ProjectService struct {
	projects repository.ProjectRepository
	media    media.Store
	logger   *slog.Logger
}

func NewProjectService(projects repository.ProjectRepository, store media.Store, logger *slog.Logger) *ProjectService {
	return &ProjectService{projects: projects, media: store, logger: logger}
}

// required lists the mandatory fields with their client-facing messages.
var required = []struct {
	field   string
	message string
	get     func(*ProjectInput) *string
}{
	{"title", "Title is missing", func(in *ProjectInput) *string { return in.Title }},
	{"description", "Description is missing", func(in *ProjectInput) *string { return in.Description }},
	{"category", "Category is missing", func(in *ProjectInput) *string { return in.Category }},
	{"repoLink", "Repository is missing", func(in *ProjectInput) *string { return in.RepoLink }},
}

// Create validates the input, uploads the preview image if one was sent
// and stores the project.
//
// ORDER MATTERS:
//  1. validation and the title check happen before any upload
//  2. an upload failure aborts before anything is persisted
//  3. if the insert fails after a successful upload, the image is removed
func (s *ProjectService) Create(ctx context.Context, ownerID string, in ProjectInput, image *media.Upload) (*model.Project, error) {
	for _, r := range required {
		if v := r.get(&in); v == nil || strings.TrimSpace(*v) == "" {
			return nil, apperror.ValidationFailed(r.field, r.message)
		}
	}

	p := &model.Project{
		Title:       strings.TrimSpace(*in.Title),
		Description: strings.TrimSpace(*in.Description),
		Category:    strings.TrimSpace(*in.Category),
		RepoLink:    strings.TrimSpace(*in.RepoLink),
		Tags:        []string{},
		AuthorID:    ownerID,
	}
	if in.LiveLink != nil {
		p.LiveLink = strings.TrimSpace(*in.LiveLink)
	}
	if in.Tags != nil {
		p.Tags = CleanTags(*in.Tags)
	}

	if err := s.checkTitle(ctx, p.Title, ""); err != nil {
		return nil, err
	}

	url, err := upload(ctx, s.media, image)
	if err != nil {
		return nil, fmt.Errorf("service/project: uploading preview image: %w", err)
	}
	p.PreviewImage = url

	if err := s.projects.CreateProject(ctx, p); err != nil {
		destroyQuietly(ctx, s.media, s.logger, url)
		if errors.Is(err, apperror.ErrConflict) {
			return nil, titleConflict()
		}
		return nil, fmt.Errorf("service/project: creating project: %w", err)
	}

	s.logger.Info("project created",
		slog.String("projectID", p.ID),
		slog.String("authorID", ownerID),
	)
	return p, nil
}

// List returns every project, expanded.
func (s *ProjectService) List(ctx context.Context) ([]model.ProjectDetail, error) {
	projects, err := s.projects.ListProjectDetails(ctx, model.ProjectFilter{})
	if err != nil {
		return nil, fmt.Errorf("service/project: listing projects: %w", err)
	}
	return projects, nil
}

// Get returns one project, expanded.
func (s *ProjectService) Get(ctx context.Context, id string) (*model.ProjectDetail, error) {
	p, err := s.projects.GetProjectDetail(ctx, id)
	if err != nil {
		return nil, wrapUnlessApp("service/project: getting project", err)
	}
	return p, nil
}

// ListByAuthor returns the projects a user owns.
func (s *ProjectService) ListByAuthor(ctx context.Context, userID string) ([]model.ProjectDetail, error) {
	return s.list(ctx, model.ProjectFilter{AuthorID: userID})
}

// ListBookmarkedBy returns the projects a user bookmarked, oldest bookmark
// first.
func (s *ProjectService) ListBookmarkedBy(ctx context.Context, userID string) ([]model.ProjectDetail, error) {
	return s.list(ctx, model.ProjectFilter{BookmarkedBy: userID})
}

// ListFavoritedBy returns the projects a user favorited.
func (s *ProjectService) ListFavoritedBy(ctx context.Context, userID string) ([]model.ProjectDetail, error) {
	return s.list(ctx, model.ProjectFilter{FavoritedBy: userID})
}

func (s *ProjectService) list(ctx context.Context, f model.ProjectFilter) ([]model.ProjectDetail, error) {
	projects, err := s.projects.ListProjectDetails(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("service/project: listing projects: %w", err)
	}
	return projects, nil
}

// Edit applies a partial update on behalf of callerID, who must own the
// project. A new preview image replaces the old one, which is destroyed
// after the update commits.
func (s *ProjectService) Edit(ctx context.Context, id, callerID string, in ProjectInput, image *media.Upload) (*model.Project, error) {
	p, err := s.projects.GetProject(ctx, id)
	if err != nil {
		return nil, wrapUnlessApp("service/project: getting project", err)
	}
	if err := auth.AssertOwner(p.AuthorID, callerID, "Unauthorized to edit this project"); err != nil {
		return nil, err
	}

	for _, r := range required {
		if v := r.get(&in); v != nil && strings.TrimSpace(*v) == "" {
			return nil, apperror.ValidationFailed(r.field, r.message)
		}
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title != p.Title {
			if err := s.checkTitle(ctx, title, p.ID); err != nil {
				return nil, err
			}
		}
		p.Title = title
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Category != nil {
		p.Category = strings.TrimSpace(*in.Category)
	}
	if in.RepoLink != nil {
		p.RepoLink = strings.TrimSpace(*in.RepoLink)
	}
	if in.LiveLink != nil {
		p.LiveLink = strings.TrimSpace(*in.LiveLink)
	}
	if in.Tags != nil {
		p.Tags = CleanTags(*in.Tags)
	}

	oldImage := p.PreviewImage
	newImage, err := upload(ctx, s.media, image)
	if err != nil {
		return nil, fmt.Errorf("service/project: uploading preview image: %w", err)
	}
	if newImage != "" {
		p.PreviewImage = newImage
	}

	if err := s.projects.UpdateProject(ctx, p); err != nil {
		destroyQuietly(ctx, s.media, s.logger, newImage)
		if errors.Is(err, apperror.ErrConflict) {
			return nil, titleConflict()
		}
		return nil, wrapUnlessApp("service/project: updating project", err)
	}

	if newImage != "" {
		destroyQuietly(ctx, s.media, s.logger, oldImage)
	}

	s.logger.Info("project edited", slog.String("projectID", p.ID))
	return p, nil
}

// Delete removes a project owned by callerID together with its comments and
// relation rows, then destroys its preview image best-effort.
func (s *ProjectService) Delete(ctx context.Context, id, callerID string) error {
	p, err := s.projects.GetProject(ctx, id)
	if err != nil {
		return wrapUnlessApp("service/project: getting project", err)
	}
	if err := auth.AssertOwner(p.AuthorID, callerID, "Unauthorized to delete this project"); err != nil {
		return err
	}

	if err := s.projects.DeleteProject(ctx, id); err != nil {
		return wrapUnlessApp("service/project: deleting project", err)
	}

	destroyQuietly(ctx, s.media, s.logger, p.PreviewImage)

	s.logger.Info("project deleted", slog.String("projectID", id))
	return nil
}

func (s *ProjectService) checkTitle(ctx context.Context, title, excludeID string) error {
	taken, err := s.projects.TitleTaken(ctx, title, excludeID)
	if err != nil {
		return fmt.Errorf("service/project: checking title: %w", err)
	}
	if taken {
		return titleConflict()
	}
	return nil
}

func titleConflict() error {
	return &apperror.AppError{Err: apperror.ErrConflict, Message: "Title already exist", Field: "title"}
}

// ParseTags decodes tags sent as a JSON-encoded string in a multipart form.
// Malformed input yields an empty list rather than an error.
func ParseTags(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return []string{}
	}
	return CleanTags(tags)
}

// CleanTags trims each tag and drops empty ones, keeping order.
func CleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// wrapUnlessApp passes domain errors through untouched and wraps anything
// else with context.
func wrapUnlessApp(msg string, err error) error {
	if _, ok := apperror.As(err); ok {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}
