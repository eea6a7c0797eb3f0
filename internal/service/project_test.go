package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/peerhub/internal/apperror"
	"github.com/sakif/peerhub/internal/media"
	"github.com/sakif/peerhub/internal/model"
)

// =========================================================================
// CREATE
// =========================================================================

func TestProjectCreate_Success(t *testing.T) {
	e := newTestEnv(t)
	ada := e.register(t, "ada")

	in := projectInput("T1")
	in.Tags = ptr([]string{" go ", "", "sql"})
	in.LiveLink = ptr("https://t1.example")

	p, err := e.projects.Create(context.Background(), ada.ID, in, pngUpload(t, media.FolderProjects))
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, ada.ID, p.AuthorID)
	assert.Equal(t, []string{"go", "sql"}, p.Tags)
	assert.Equal(t, "https://t1.example", p.LiveLink)
	require.NotEmpty(t, p.PreviewImage)
	assert.True(t, e.media.has(p.PreviewImage))
}

func TestProjectCreate_RequiredFields(t *testing.T) {
	e := newTestEnv(t)
	ada := e.register(t, "ada")

	tests := []struct {
		name   string
		mutate func(*ProjectInput)
		field  string
	}{
		{"missing title", func(in *ProjectInput) { in.Title = nil }, "title"},
		{"blank title", func(in *ProjectInput) { in.Title = ptr("  ") }, "title"},
		{"missing description", func(in *ProjectInput) { in.Description = nil }, "description"},
		{"missing category", func(in *ProjectInput) { in.Category = nil }, "category"},
		{"missing repo link", func(in *ProjectInput) { in.RepoLink = ptr("") }, "repoLink"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := projectInput("T1")
			tt.mutate(&in)

			_, err := e.projects.Create(context.Background(), ada.ID, in, nil)
			require.ErrorIs(t, err, apperror.ErrValidation)
			var appErr *apperror.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.field, appErr.Field)
		})
	}
}

// Scenario: creating "T1" twice.
func TestProjectCreate_DuplicateTitle(t *testing.T) {
	e := newTestEnv(t)
	ada := e.register(t, "ada")
	bob := e.register(t, "bob")
	e.createProject(t, ada, "T1")

	_, err := e.projects.Create(context.Background(), bob.ID, projectInput("T1"), pngUpload(t, media.FolderProjects))
	require.ErrorIs(t, err, apperror.ErrConflict)
	assert.Empty(t, e.media.objects, "no upload should happen for a rejected title")
}

func TestProjectCreate_UploadFailureAborts(t *testing.T) {
	e := newTestEnv(t)
	ada := e.register(t, "ada")
	e.media.uploadErr = errBoom

	_, err := e.projects.Create(context.Background(), ada.ID, projectInput("T1"), pngUpload(t, media.FolderProjects))
	require.ErrorIs(t, err, errBoom)

	all, err := e.projects.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all, "nothing may be persisted when the upload fails")
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{`["go","react"]`, []string{"go", "react"}},
		{`[" go ", ""]`, []string{"go"}},
		{``, []string{}},
		{`not json`, []string{}},
		{`{"a":1}`, []string{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseTags(tt.raw), tt.raw)
	}
}

// =========================================================================
// READ
// =========================================================================

func TestProjectGet(t *testing.T) {
	e := newTestEnv(t)
	ada := e.register(t, "ada")
	p := e.createProject(t, ada, "T1")

	d, err := e.projects.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.UserSummary{ID: ada.ID, Username: "ada"}, d.Author)
	assert.Empty(t, d.Likes)

	_, err = e.projects.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

// =========================================================================
// EDIT
// =========================================================================

func TestProjectEdit_Partial(t *testing.T) {
	e := newTestEnv(t)
	ada := e.register(t, "ada")
	p := e.createProject(t, ada, "T1")

	edited, err := e.projects.Edit(context.Background(), p.ID, ada.ID, ProjectInput{
		Description: ptr("new description"),
		Tags:        ptr([]string{"rust"}),
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "T1", edited.Title, "absent fields keep their value")
	assert.Equal(t, "web", edited.Category)
	assert.Equal(t, "new description", edited.Description)
	assert.Equal(t, []string{"rust"}, edited.Tags)

	stored, _ := e.projects.Get(context.Background(), p.ID)
	assert.Equal(t, "new description", stored.Description)
}

func TestProjectEdit_Rejections(t *testing.T) {
	e := newTestEnv(t)
	ada := e.register(t, "ada")
	bob := e.register(t, "bob")
	p := e.createProject(t, ada, "T1")
	e.createProject(t, ada, "T2")
	ctx := context.Background()

	_, err := e.projects.Edit(ctx, "missing", ada.ID, ProjectInput{}, nil)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = e.projects.Edit(ctx, p.ID, bob.ID, ProjectInput{Title: ptr("hijacked")}, nil)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = e.projects.Edit(ctx, p.ID, ada.ID, ProjectInput{Category: ptr("")}, nil)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = e.projects.Edit(ctx, p.ID, ada.ID, ProjectInput{Title: ptr("T2")}, nil)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	_, err = e.projects.Edit(ctx, p.ID, ada.ID, ProjectInput{Title: ptr("T1")}, nil)
	assert.NoError(t, err, "keeping your own title is not a conflict")

	stored, _ := e.projects.Get(ctx, p.ID)
	assert.Equal(t, "T1", stored.Title)
}

func TestProjectEdit_ReplacesImage(t *testing.T) {
	e := newTestEnv(t)
	ada := e.register(t, "ada")
	ctx := context.Background()

	p, err := e.projects.Create(ctx, ada.ID, projectInput("T1"), pngUpload(t, media.FolderProjects))
	require.NoError(t, err)
	old := p.PreviewImage

	edited, err := e.projects.Edit(ctx, p.ID, ada.ID, ProjectInput{}, pngUpload(t, media.FolderProjects))
	require.NoError(t, err)

	assert.NotEqual(t, old, edited.PreviewImage)
	assert.True(t, e.media.has(edited.PreviewImage))
	assert.False(t, e.media.has(old), "old image should be destroyed")
}

func TestProjectEdit_DestroyFailureIsSwallowed(t *testing.T) {
	e := newTestEnv(t)
	ada := e.register(t, "ada")
	ctx := context.Background()

	p, err := e.projects.Create(ctx, ada.ID, projectInput("T1"), pngUpload(t, media.FolderProjects))
	require.NoError(t, err)

	e.media.destroyErr = errBoom
	_, err = e.projects.Edit(ctx, p.ID, ada.ID, ProjectInput{}, pngUpload(t, media.FolderProjects))
	assert.NoError(t, err)
}

// =========================================================================
// DELETE
// =========================================================================

func TestProjectDelete_NonOwnerIsForbidden(t *testing.T) {
	e := newTestEnv(t)
	ada := e.register(t, "ada")
	bob := e.register(t, "bob")
	p := e.createProject(t, ada, "T1")

	err := e.projects.Delete(context.Background(), p.ID, bob.ID)
	require.ErrorIs(t, err, apperror.ErrForbidden)

	stored, err := e.projects.Get(context.Background(), p.ID)
	require.NoError(t, err, "project must be unchanged")
	assert.Equal(t, "T1", stored.Title)
}

func TestProjectDelete_CascadesAndDestroysImage(t *testing.T) {
	e := newTestEnv(t)
	ada := e.register(t, "ada")
	bob := e.register(t, "bob")
	ctx := context.Background()

	p, err := e.projects.Create(ctx, ada.ID, projectInput("T1"), pngUpload(t, media.FolderProjects))
	require.NoError(t, err)
	_, err = e.ledger.ToggleBookmark(ctx, p.ID, bob.ID)
	require.NoError(t, err)
	_, err = e.comments.Create(ctx, p.ID, bob.ID, "nice")
	require.NoError(t, err)

	require.NoError(t, e.projects.Delete(ctx, p.ID, ada.ID))

	_, err = e.projects.Get(ctx, p.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.False(t, e.media.has(p.PreviewImage))

	bookmarks, err := e.users.GetBookmarks(ctx, bob.ID, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, bookmarks)

	comments, err := e.comments.List(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestProjectDelete_NotFound(t *testing.T) {
	e := newTestEnv(t)
	ada := e.register(t, "ada")
	assert.ErrorIs(t, e.projects.Delete(context.Background(), "missing", ada.ID), apperror.ErrNotFound)
}
