package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/listenupapp/recipebox-server/internal/domain"
	"github.com/listenupapp/recipebox-server/internal/store"
)

// recipeColumns must match the scan order in scanRecipe.
const recipeColumns = `id, user_id, title, description, instructions, image, created_at, updated_at`

func scanRecipe(scanner interface{ Scan(dest ...any) error }) (*domain.Recipe, error) {
	var r domain.Recipe

	var (
		image                sql.NullString
		createdAt, updatedAt string
	)

	err := scanner.Scan(
		&r.ID,
		&r.OwnerID,
		&r.Title,
		&r.Description,
		&r.Instructions,
		&image,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if image.Valid {
		r.Image = &image.String
	}

	r.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	r.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	r.SetLabels(domain.LabelTag, nil)
	r.SetLabels(domain.LabelIngredient, nil)
	return &r, nil
}

// recipeWhere renders the scope predicate of a listing.
func (c conn) recipeWhere(filter store.RecipeFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if filter.OwnerID != nil {
		clauses = append(clauses, `user_id = ?`)
		args = append(args, *filter.OwnerID)
	}
	if filter.Search != "" {
		p := likePattern(filter.Search)
		clauses = append(clauses,
			`(`+c.d.containsMatch("title")+` OR `+c.d.containsMatch("description")+`)`)
		args = append(args, p, p)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return ` WHERE ` + strings.Join(clauses, ` AND `), args
}

// getRecipe loads one recipe with both label sets.
func (c conn) getRecipe(ctx context.Context, id int64) (*domain.Recipe, error) {
	row := c.queryRow(ctx, `SELECT `+recipeColumns+` FROM recipes WHERE id = ?`, id)
	r, err := scanRecipe(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	byID := map[int64]*domain.Recipe{r.ID: r}
	if err := c.attachLabels(ctx, byID, `WHERE id = ?`, []any{id}); err != nil {
		return nil, err
	}
	return r, nil
}

// attachLabels fills the label sets of every recipe in byID. recipeWhere
// selects the same recipes from the recipes table.
func (c conn) attachLabels(ctx context.Context, byID map[int64]*domain.Recipe, recipeWhere string, args []any) error {
	for kind, t := range labelTables {
		rows, err := c.query(ctx, `
			SELECT l.recipe_id, x.id, x.user_id, x.name, x.created_at, x.updated_at
			FROM `+t.link+` l
			JOIN `+t.table+` x ON x.id = l.`+t.linkColumn+`
			WHERE l.recipe_id IN (SELECT id FROM recipes `+recipeWhere+`)
			ORDER BY x.id ASC`, args...)
		if err != nil {
			return err
		}

		sets := make(map[int64][]domain.Label)
		for rows.Next() {
			var recipeID int64
			var createdAt, updatedAt string
			l := domain.Label{Kind: kind}
			if err := rows.Scan(&recipeID, &l.ID, &l.OwnerID, &l.Name, &createdAt, &updatedAt); err != nil {
				rows.Close()
				return err
			}
			if l.CreatedAt, err = parseTime(createdAt); err != nil {
				rows.Close()
				return err
			}
			if l.UpdatedAt, err = parseTime(updatedAt); err != nil {
				rows.Close()
				return err
			}
			sets[recipeID] = append(sets[recipeID], l)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return err
		}

		for recipeID, labels := range sets {
			if r, ok := byID[recipeID]; ok {
				r.SetLabels(kind, labels)
			}
		}
	}
	return nil
}

// GetRecipe retrieves a recipe with its tags and ingredients.
// Returns store.ErrNotFound if the recipe does not exist.
func (s *Store) GetRecipe(ctx context.Context, id int64) (*domain.Recipe, error) {
	return s.getRecipe(ctx, id)
}

// ListRecipes returns the recipes matching filter ordered by ID.
func (s *Store) ListRecipes(ctx context.Context, filter store.RecipeFilter) ([]*domain.Recipe, error) {
	where, args := s.recipeWhere(filter)

	rows, err := s.query(ctx, `SELECT `+recipeColumns+` FROM recipes`+where+` ORDER BY id ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recipes := []*domain.Recipe{}
	byID := make(map[int64]*domain.Recipe)
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
		byID[r.ID] = r
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if len(recipes) == 0 {
		return recipes, nil
	}
	if err := s.attachLabels(ctx, byID, where, args); err != nil {
		return nil, err
	}
	return recipes, nil
}

// DeleteRecipe removes a recipe and its label links. The labels themselves stay.
func (s *Store) DeleteRecipe(ctx context.Context, id int64) error {
	res, err := s.exec(ctx, `DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return rowsAffected(res)
}

// SetRecipeImage stores the image reference of a recipe. Nil clears it.
func (s *Store) SetRecipeImage(ctx context.Context, id int64, image *string) error {
	res, err := s.exec(ctx,
		`UPDATE recipes SET image = ? WHERE id = ?`,
		nullableString(image), id)
	if err != nil {
		return err
	}
	return rowsAffected(res)
}
