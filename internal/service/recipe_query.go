package service

import (
	"context"
	"errors"

	"github.com/listenupapp/recipebox-server/internal/domain"
	"github.com/listenupapp/recipebox-server/internal/store"
)

// ListAll returns every user's recipes matching search, ordered by ID.
func (s *RecipeService) ListAll(ctx context.Context, search string) ([]*domain.Recipe, error) {
	return s.List(ctx, domain.Anonymous(), SurfaceAll, search)
}

// ListMine returns the principal's own recipes matching search.
// Anonymous callers are rejected before any query runs.
func (s *RecipeService) ListMine(ctx context.Context, principal domain.Principal, search string) ([]*domain.Recipe, error) {
	return s.List(ctx, principal, SurfaceMine, search)
}

// List returns the recipes visible through surface. The surface's scope
// predicate goes to the store; each row is then checked for read access.
func (s *RecipeService) List(ctx context.Context, principal domain.Principal, surface Surface, search string) ([]*domain.Recipe, error) {
	filter, err := scopeFilter(principal, surface, search)
	if err != nil {
		return nil, err
	}

	recipes, err := s.store.ListRecipes(ctx, filter)
	if err != nil {
		return nil, err
	}

	visible := recipes[:0]
	for _, r := range recipes {
		if Authorize(principal, surface, r, OpRead) == nil {
			visible = append(visible, r)
		}
	}
	return visible, nil
}

// Get returns one recipe through surface. Rows outside the surface's scope
// are reported as not found.
func (s *RecipeService) Get(ctx context.Context, surface Surface, principal domain.Principal, recipeID int64) (*domain.Recipe, error) {
	if _, err := scopeFilter(principal, surface, ""); err != nil {
		return nil, err
	}

	r, err := s.store.GetRecipe(ctx, recipeID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if err := Authorize(principal, surface, r, OpRead); err != nil {
		return nil, err
	}
	return r, nil
}
