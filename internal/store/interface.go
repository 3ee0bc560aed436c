// Package store defines the persistence interface for the RecipeBox server.
package store

import (
	"context"

	"github.com/listenupapp/recipebox-server/internal/domain"
)

// Store defines the interface for all persistence operations.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	DeleteUser(ctx context.Context, id int64) error
	ListUsers(ctx context.Context, search string) ([]*domain.User, error)

	// Tags and ingredients
	CreateLabel(ctx context.Context, label *domain.Label) error
	GetLabel(ctx context.Context, kind domain.LabelKind, id int64) (*domain.Label, error)
	ListLabels(ctx context.Context, kind domain.LabelKind, ownerID int64) ([]*domain.Label, error)
	UpdateLabel(ctx context.Context, label *domain.Label) error
	DeleteLabel(ctx context.Context, kind domain.LabelKind, id int64) error

	// Recipes
	GetRecipe(ctx context.Context, id int64) (*domain.Recipe, error)
	ListRecipes(ctx context.Context, filter RecipeFilter) ([]*domain.Recipe, error)
	DeleteRecipe(ctx context.Context, id int64) error
	SetRecipeImage(ctx context.Context, id int64, image *string) error

	// WithTx runs fn inside a single transaction. The transaction commits
	// when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the write surface of one recipe aggregate transaction.
type Tx interface {
	// InsertRecipe stores the scalar fields of r and assigns r.ID.
	InsertRecipe(ctx context.Context, r *domain.Recipe) error
	// UpdateRecipe overwrites the fields present in upd.
	UpdateRecipe(ctx context.Context, id int64, upd RecipeUpdate) error
	ClearRecipeLabels(ctx context.Context, kind domain.LabelKind, recipeID int64) error
	AddRecipeLabels(ctx context.Context, kind domain.LabelKind, recipeID int64, labelIDs []int64) error
	// ReconcileLabel returns the canonical label named name for ownerID,
	// inserting it if no label with that name exists yet.
	ReconcileLabel(ctx context.Context, kind domain.LabelKind, ownerID int64, name string) (*domain.Label, error)
	GetRecipe(ctx context.Context, id int64) (*domain.Recipe, error)
}

// RecipeFilter scopes recipe listings. A nil OwnerID matches every owner.
type RecipeFilter struct {
	OwnerID *int64
	// Search is a case-insensitive substring matched against title and description.
	Search string
}

// RecipeUpdate carries a partial scalar update. Nil fields are left untouched.
// OwnerID is always written.
type RecipeUpdate struct {
	Title        *string
	Description  *string
	Instructions *string
	OwnerID      int64
}
