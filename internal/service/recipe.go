package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"strings"
	"time"

	"github.com/listenupapp/recipebox-server/internal/blob"
	"github.com/listenupapp/recipebox-server/internal/domain"
	domainerrors "github.com/listenupapp/recipebox-server/internal/errors"
	"github.com/listenupapp/recipebox-server/internal/id"
	"github.com/listenupapp/recipebox-server/internal/metrics"
	"github.com/listenupapp/recipebox-server/internal/store"
	"github.com/listenupapp/recipebox-server/internal/validation"
)

// RecipeService writes and reads recipe aggregates: the recipe row plus its
// tag and ingredient links, always saved in one transaction.
type RecipeService struct {
	store      store.Store
	images     blob.Store
	reconciler *Reconciler
	validator  *validation.Validator
	logger     *slog.Logger
}

// NewRecipeService creates a new recipe service.
func NewRecipeService(
	st store.Store,
	images blob.Store,
	reconciler *Reconciler,
	validator *validation.Validator,
	logger *slog.Logger,
) *RecipeService {
	return &RecipeService{
		store:      st,
		images:     images,
		reconciler: reconciler,
		validator:  validator,
		logger:     logger,
	}
}

// TagInput names a tag inside a recipe payload.
type TagInput struct {
	Name string `json:"tag_name" validate:"notblank,maxrunes=100"`
}

// IngredientInput names an ingredient inside a recipe payload.
type IngredientInput struct {
	Name string `json:"ingredient_name" validate:"notblank,maxrunes=100"`
}

// RecipeInput is a complete recipe. A nil Tags or Ingredients slice means
// the key was absent; an empty non-nil slice means it was sent as [].
// There is no owner field: the owner is always the acting user.
type RecipeInput struct {
	Title        string            `json:"recipe_title" validate:"notblank,maxrunes=100"`
	Description  string            `json:"recipe_description" validate:"notblank"`
	Instructions string            `json:"recipe_instructions" validate:"notblank"`
	Tags         []TagInput        `json:"tags" validate:"dive"`
	Ingredients  []IngredientInput `json:"ingredients" validate:"dive"`
}

// RecipePatch is a partial update. Nil fields are left untouched.
type RecipePatch struct {
	Title        *string            `json:"recipe_title" validate:"omitnil,notblank,maxrunes=100"`
	Description  *string            `json:"recipe_description" validate:"omitnil,notblank"`
	Instructions *string            `json:"recipe_instructions" validate:"omitnil,notblank"`
	Tags         *[]TagInput        `json:"tags" validate:"omitnil,dive"`
	Ingredients  *[]IngredientInput `json:"ingredients" validate:"omitnil,dive"`
}

// Patch converts a full input into the patch that replaces every scalar.
// Nested keys keep their absent/present meaning.
func (in RecipeInput) Patch() RecipePatch {
	p := RecipePatch{
		Title:        &in.Title,
		Description:  &in.Description,
		Instructions: &in.Instructions,
	}
	if in.Tags != nil {
		p.Tags = &in.Tags
	}
	if in.Ingredients != nil {
		p.Ingredients = &in.Ingredients
	}
	return p
}

func tagNames(tags []TagInput) []string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return names
}

func ingredientNames(ingredients []IngredientInput) []string {
	names := make([]string, len(ingredients))
	for i, in := range ingredients {
		names[i] = in.Name
	}
	return names
}

// Create stores a new recipe owned by ownerID with its tags and ingredients.
func (s *RecipeService) Create(ctx context.Context, ownerID int64, in RecipeInput) (*domain.Recipe, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	var created *domain.Recipe
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		r := &domain.Recipe{
			OwnerID:      ownerID,
			Title:        in.Title,
			Description:  in.Description,
			Instructions: in.Instructions,
		}
		r.InitTimestamps()

		// First statement is the insert, so SQLite takes the write lock up front.
		if err := tx.InsertRecipe(ctx, r); err != nil {
			return err
		}
		if in.Tags != nil {
			if err := s.attach(ctx, tx, domain.LabelTag, r.ID, ownerID, tagNames(in.Tags), false); err != nil {
				return err
			}
		}
		if in.Ingredients != nil {
			if err := s.attach(ctx, tx, domain.LabelIngredient, r.ID, ownerID, ingredientNames(in.Ingredients), false); err != nil {
				return err
			}
		}

		var err error
		created, err = tx.GetRecipe(ctx, r.ID)
		return err
	})
	if err != nil {
		return nil, translateStoreError(err, "recipe")
	}

	s.logger.Info("recipe created",
		"recipe_id", created.ID,
		"user_id", ownerID,
		"tags", len(created.Tags),
		"ingredients", len(created.Ingredients),
	)
	return created, nil
}

// Update applies patch to a recipe owned by ownerID. Present nested lists
// replace the current set; absent ones leave it alone. The owner is re-set
// to ownerID.
func (s *RecipeService) Update(ctx context.Context, recipeID, ownerID int64, patch RecipePatch) (*domain.Recipe, error) {
	if _, err := s.owned(ctx, recipeID, ownerID, OpUpdate); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(patch); err != nil {
		return nil, err
	}
	return s.apply(ctx, recipeID, ownerID, patch)
}

// Replace overwrites every scalar field. Nested lists follow Update's rules.
func (s *RecipeService) Replace(ctx context.Context, recipeID, ownerID int64, in RecipeInput) (*domain.Recipe, error) {
	if _, err := s.owned(ctx, recipeID, ownerID, OpUpdate); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	return s.apply(ctx, recipeID, ownerID, in.Patch())
}

// apply writes a validated patch in one transaction.
func (s *RecipeService) apply(ctx context.Context, recipeID, ownerID int64, patch RecipePatch) (*domain.Recipe, error) {
	var updated *domain.Recipe
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.UpdateRecipe(ctx, recipeID, store.RecipeUpdate{
			Title:        patch.Title,
			Description:  patch.Description,
			Instructions: patch.Instructions,
			OwnerID:      ownerID,
		}); err != nil {
			return err
		}
		if patch.Tags != nil {
			if err := s.attach(ctx, tx, domain.LabelTag, recipeID, ownerID, tagNames(*patch.Tags), true); err != nil {
				return err
			}
		}
		if patch.Ingredients != nil {
			if err := s.attach(ctx, tx, domain.LabelIngredient, recipeID, ownerID, ingredientNames(*patch.Ingredients), true); err != nil {
				return err
			}
		}

		var err error
		updated, err = tx.GetRecipe(ctx, recipeID)
		return err
	})
	if err != nil {
		return nil, translateStoreError(err, "recipe")
	}

	s.logger.Info("recipe updated",
		"recipe_id", recipeID,
		"user_id", ownerID,
		"tags_replaced", patch.Tags != nil,
		"ingredients_replaced", patch.Ingredients != nil,
	)
	return updated, nil
}

// attach reconciles names for kind and links them to the recipe. With replace
// set the current links of that kind are dropped first.
func (s *RecipeService) attach(ctx context.Context, tx store.Tx, kind domain.LabelKind, recipeID, ownerID int64, names []string, replace bool) error {
	if replace {
		if err := tx.ClearRecipeLabels(ctx, kind, recipeID); err != nil {
			return err
		}
	}
	if len(names) == 0 {
		return nil
	}
	labels, err := s.reconciler.Reconcile(ctx, tx, kind, ownerID, names)
	if err != nil {
		return err
	}
	return tx.AddRecipeLabels(ctx, kind, recipeID, labelIDs(labels))
}

// Delete removes a recipe owned by ownerID and its stored image.
func (s *RecipeService) Delete(ctx context.Context, recipeID, ownerID int64) error {
	existing, err := s.owned(ctx, recipeID, ownerID, OpDelete)
	if err != nil {
		return err
	}
	if err := s.store.DeleteRecipe(ctx, recipeID); err != nil {
		return translateStoreError(err, "recipe")
	}
	if existing.Image != nil {
		s.removeImage(ctx, *existing.Image)
	}

	s.logger.Info("recipe deleted",
		"recipe_id", recipeID,
		"user_id", ownerID,
	)
	return nil
}

// UploadImage stores body as the recipe's image and returns the updated
// recipe. A previous image is removed once the new reference is saved.
func (s *RecipeService) UploadImage(ctx context.Context, recipeID, ownerID int64, contentType string, body io.Reader) (*domain.Recipe, error) {
	existing, err := s.owned(ctx, recipeID, ownerID, OpUpdate)
	if err != nil {
		return nil, err
	}

	name, err := id.ObjectName(21)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("recipes/%d/%s%s", recipeID, name, extensionFor(contentType))

	info, err := s.images.Put(ctx, key, body, blob.PutOptions{ContentType: contentType})
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}
	if err := s.store.SetRecipeImage(ctx, recipeID, &key); err != nil {
		s.removeImage(ctx, key)
		return nil, translateStoreError(err, "recipe")
	}
	if existing.Image != nil && *existing.Image != key {
		s.removeImage(ctx, *existing.Image)
	}
	metrics.ImageUploaded(info.Size)

	s.logger.Info("recipe image uploaded",
		"recipe_id", recipeID,
		"user_id", ownerID,
		"key", key,
		"size", info.Size,
	)

	updated, err := s.store.GetRecipe(ctx, recipeID)
	if err != nil {
		return nil, translateStoreError(err, "recipe")
	}
	return updated, nil
}

// ImageInfo is the metadata of a stored recipe image.
type ImageInfo struct {
	ContentType  string
	Size         int64
	LastModified time.Time
}

// OpenImage streams a stored image by reference. The caller closes the reader.
func (s *RecipeService) OpenImage(ctx context.Context, key string) (ImageInfo, io.ReadCloser, error) {
	info, rc, err := s.images.Get(ctx, key)
	if errors.Is(err, blob.ErrNotFound) || errors.Is(err, blob.ErrInvalidKey) {
		return ImageInfo{}, nil, domainerrors.NotFound("image not found")
	}
	if err != nil {
		return ImageInfo{}, nil, err
	}
	return ImageInfo{ContentType: info.ContentType, Size: info.Size, LastModified: info.LastModified}, rc, nil
}

// owned loads a recipe and checks that ownerID may perform op on it.
func (s *RecipeService) owned(ctx context.Context, recipeID, ownerID int64, op Op) (*domain.Recipe, error) {
	existing, err := s.store.GetRecipe(ctx, recipeID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if err := Authorize(domain.AuthenticatedAs(ownerID), SurfaceAll, existing, op); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *RecipeService) removeImage(ctx context.Context, key string) {
	if err := s.images.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to remove recipe image",
			"key", key,
			"error", err,
		)
	}
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/avif": ".avif",
}

// extensionFor picks a file extension for a content type, or none.
func extensionFor(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	if ext, ok := imageExtensions[mediaType]; ok {
		return ext
	}
	if exts, _ := mime.ExtensionsByType(mediaType); len(exts) > 0 {
		return strings.ToLower(exts[0])
	}
	return ""
}
