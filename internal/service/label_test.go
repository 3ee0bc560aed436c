package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/recipebox-server/internal/domain"
	domainerrors "github.com/listenupapp/recipebox-server/internal/errors"
)

func TestLabelCreate_DirectDuplicatesAllowed(t *testing.T) {
	env := newTestEnv(t)
	_, p := env.newUser(t)
	ctx := context.Background()

	first, err := env.labels.Create(ctx, p, domain.LabelTag, "Vegan")
	require.NoError(t, err)
	second, err := env.labels.Create(ctx, p, domain.LabelTag, "Vegan")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)

	tags, err := env.labels.List(ctx, p, domain.LabelTag)
	require.NoError(t, err)
	assert.Len(t, tags, 2)
}

func TestLabel_ReconcilerReusesDirectRow(t *testing.T) {
	env := newTestEnv(t)
	u, p := env.newUser(t)
	ctx := context.Background()

	direct, err := env.labels.Create(ctx, p, domain.LabelIngredient, "Garlic")
	require.NoError(t, err)

	r, err := env.recipes.Create(ctx, u.ID, RecipeInput{
		Title: "Bread", Description: "Garlic bread", Instructions: "Bake",
		Ingredients: []IngredientInput{{Name: "Garlic"}},
	})
	require.NoError(t, err)

	require.Len(t, r.Ingredients, 1)
	assert.Equal(t, direct.ID, r.Ingredients[0].ID)
}

func TestLabel_ScopedToOwner(t *testing.T) {
	env := newTestEnv(t)
	_, pa := env.newUser(t)
	_, pb := env.newUser(t)
	ctx := context.Background()

	tag, err := env.labels.Create(ctx, pa, domain.LabelTag, "Private")
	require.NoError(t, err)

	_, err = env.labels.Get(ctx, pb, domain.LabelTag, tag.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = env.labels.Update(ctx, pb, domain.LabelTag, tag.ID, ptr("Stolen"))
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	err = env.labels.Delete(ctx, pb, domain.LabelTag, tag.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	bTags, err := env.labels.List(ctx, pb, domain.LabelTag)
	require.NoError(t, err)
	assert.Empty(t, bTags)

	// A tag ID is not an ingredient ID.
	_, err = env.labels.Get(ctx, pa, domain.LabelIngredient, tag.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestLabel_RequiresAuthentication(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	anon := domain.Anonymous()

	_, err := env.labels.List(ctx, anon, domain.LabelTag)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
	_, err = env.labels.Create(ctx, anon, domain.LabelTag, "x")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
	_, err = env.labels.Get(ctx, anon, domain.LabelTag, 1)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestLabel_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	u, p := env.newUser(t)
	ctx := context.Background()
	r := env.newRecipe(t, u.ID, "Quick")

	tagID := r.Tags[0].ID
	renamed, err := env.labels.Update(ctx, p, domain.LabelTag, tagID, ptr("Fast"))
	require.NoError(t, err)
	assert.Equal(t, "Fast", renamed.Name)

	unchanged, err := env.labels.Update(ctx, p, domain.LabelTag, tagID, nil)
	require.NoError(t, err)
	assert.Equal(t, "Fast", unchanged.Name)

	_, err = env.labels.Update(ctx, p, domain.LabelTag, tagID, ptr(""))
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	require.NoError(t, env.labels.Delete(ctx, p, domain.LabelTag, tagID))

	got, err := env.recipes.Get(ctx, SurfaceMine, p, r.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tags, "deleting a tag drops its links")
}
