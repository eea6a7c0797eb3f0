package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/peerhub/internal/apperror"
	"github.com/sakif/peerhub/internal/model"
)

func TestToggleLike_TwiceIsNetZero(t *testing.T) {
	e := newTestEnv(t)
	ada := e.register(t, "ada")
	bob := e.register(t, "bob")
	p := e.createProject(t, ada, "T1")
	ctx := context.Background()

	first, err := e.ledger.ToggleLike(ctx, p.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, first.Active)
	assert.Equal(t, 1, first.Count)

	second, err := e.ledger.ToggleLike(ctx, p.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, second.Active)
	assert.Equal(t, 0, second.Count)

	d, _ := e.projects.Get(ctx, p.ID)
	assert.Empty(t, d.Likes)
	assert.Len(t, e.toggles.results, 2, "each toggle is observed")
}

func TestToggleLike_SelfLikeForbidden(t *testing.T) {
	e := newTestEnv(t)
	ada := e.register(t, "ada")
	p := e.createProject(t, ada, "T1")

	_, err := e.ledger.ToggleLike(context.Background(), p.ID, ada.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	assert.Empty(t, e.toggles.results)
}

func TestToggle_ProjectNotFound(t *testing.T) {
	e := newTestEnv(t)
	bob := e.register(t, "bob")

	for _, rel := range model.Relations {
		_, err := e.ledger.Toggle(context.Background(), rel, "missing", bob.ID)
		assert.ErrorIs(t, err, apperror.ErrNotFound, string(rel))
	}
}

func TestToggle_UnknownRelation(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.ledger.Toggle(context.Background(), model.Relation("stars"), "p", "u")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestToggleBookmark_VisibleFromProjectAndUser(t *testing.T) {
	e := newTestEnv(t)
	ada := e.register(t, "ada")
	bob := e.register(t, "bob")
	p := e.createProject(t, ada, "T1")
	ctx := context.Background()

	res, err := e.ledger.ToggleBookmark(ctx, p.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, res.Active)

	d, _ := e.projects.Get(ctx, p.ID)
	require.Len(t, d.Bookmarks, 1)
	assert.Equal(t, bob.ID, d.Bookmarks[0].ID)

	mine, err := e.users.GetBookmarks(ctx, bob.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, p.ID, mine[0].ID)
}

// Scenario: favorite toggled twice; both sides gain then lose the pair.
func TestToggleFavorite_TwiceBothSides(t *testing.T) {
	e := newTestEnv(t)
	ada := e.register(t, "ada")
	bob := e.register(t, "bob")
	p := e.createProject(t, ada, "T1")
	ctx := context.Background()

	sides := func() (projectSide, userSide int) {
		d, err := e.projects.Get(ctx, p.ID)
		require.NoError(t, err)
		favs, err := e.users.GetFavorites(ctx, bob.ID, bob.ID)
		require.NoError(t, err)
		return len(d.Favorites), len(favs)
	}

	_, err := e.ledger.ToggleFavorite(ctx, p.ID, bob.ID)
	require.NoError(t, err)
	ps, us := sides()
	assert.Equal(t, 1, ps)
	assert.Equal(t, 1, us)

	_, err = e.ledger.ToggleFavorite(ctx, p.ID, bob.ID)
	require.NoError(t, err)
	ps, us = sides()
	assert.Equal(t, 0, ps)
	assert.Equal(t, 0, us)
}

func TestToggle_OwnerMayBookmarkAndFavorite(t *testing.T) {
	e := newTestEnv(t)
	ada := e.register(t, "ada")
	p := e.createProject(t, ada, "T1")
	ctx := context.Background()

	_, err := e.ledger.ToggleBookmark(ctx, p.ID, ada.ID)
	assert.NoError(t, err)
	_, err = e.ledger.ToggleFavorite(ctx, p.ID, ada.ID)
	assert.NoError(t, err)
}
