package sqlstore

import (
	"context"
	"strings"
	"time"

	"github.com/listenupapp/recipebox-server/internal/domain"
	"github.com/listenupapp/recipebox-server/internal/store"
)

// tx is the aggregate write surface handed to WithTx callbacks.
type tx struct {
	conn
}

var _ store.Tx = (*tx)(nil)

// InsertRecipe stores the scalar fields of r and assigns r.ID.
func (t *tx) InsertRecipe(ctx context.Context, r *domain.Recipe) error {
	id, err := t.insertID(ctx, `
		INSERT INTO recipes (user_id, title, description, instructions, image, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.OwnerID,
		r.Title,
		r.Description,
		r.Instructions,
		nullableString(r.Image),
		formatTime(r.CreatedAt),
		formatTime(r.UpdatedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrReferenceMissing
		}
		return err
	}
	r.ID = id
	return nil
}

// UpdateRecipe writes the present scalar fields, the owner and updated_at.
func (t *tx) UpdateRecipe(ctx context.Context, id int64, upd store.RecipeUpdate) error {
	sets := []string{`user_id = ?`, `updated_at = ?`}
	args := []any{upd.OwnerID, formatTime(time.Now())}

	if upd.Title != nil {
		sets = append(sets, `title = ?`)
		args = append(args, *upd.Title)
	}
	if upd.Description != nil {
		sets = append(sets, `description = ?`)
		args = append(args, *upd.Description)
	}
	if upd.Instructions != nil {
		sets = append(sets, `instructions = ?`)
		args = append(args, *upd.Instructions)
	}

	args = append(args, id)
	res, err := t.exec(ctx, `UPDATE recipes SET `+strings.Join(sets, `, `)+` WHERE id = ?`, args...)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrReferenceMissing
		}
		return err
	}
	return rowsAffected(res)
}

// ClearRecipeLabels unlinks every label of one kind from the recipe.
func (t *tx) ClearRecipeLabels(ctx context.Context, kind domain.LabelKind, recipeID int64) error {
	lt, err := tableFor(kind)
	if err != nil {
		return err
	}
	_, err = t.exec(ctx, `DELETE FROM `+lt.link+` WHERE recipe_id = ?`, recipeID)
	return err
}

// AddRecipeLabels links labels to the recipe. Links that already exist are kept.
func (t *tx) AddRecipeLabels(ctx context.Context, kind domain.LabelKind, recipeID int64, labelIDs []int64) error {
	lt, err := tableFor(kind)
	if err != nil {
		return err
	}
	for _, labelID := range labelIDs {
		_, err := t.exec(ctx, `
			INSERT INTO `+lt.link+` (recipe_id, `+lt.linkColumn+`)
			VALUES (?, ?)
			ON CONFLICT DO NOTHING`,
			recipeID, labelID)
		if err != nil {
			if isForeignKeyViolation(err) {
				return store.ErrReferenceMissing
			}
			return err
		}
	}
	return nil
}

// ReconcileLabel resolves name to the owner's canonical label, creating it if needed.
func (t *tx) ReconcileLabel(ctx context.Context, kind domain.LabelKind, ownerID int64, name string) (*domain.Label, error) {
	return t.reconcileLabel(ctx, kind, ownerID, name)
}

// GetRecipe reads the aggregate as seen by this transaction.
func (t *tx) GetRecipe(ctx context.Context, id int64) (*domain.Recipe, error) {
	return t.getRecipe(ctx, id)
}
