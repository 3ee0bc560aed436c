package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/recipebox-server/internal/domain"
	"github.com/listenupapp/recipebox-server/internal/service"
)

// recipeSurface is one of the two route families over recipes.
type recipeSurface struct {
	surface service.Surface
	path    string // under apiPrefix
	name    string // operation ID stem
	tag     string
}

var recipeSurfaces = []recipeSurface{
	{surface: service.SurfaceAll, path: "/recipes", name: "Recipe", tag: "Recipes"},
	{surface: service.SurfaceMine, path: "/my_recipes", name: "MyRecipe", tag: "My Recipes"},
}

func (s *Server) registerRecipeRoutes() {
	for _, rs := range recipeSurfaces {
		s.registerRecipeSurface(rs)
	}
}

func (s *Server) registerRecipeSurface(rs recipeSurface) {
	var listSecurity []map[string][]string
	if rs.surface != service.SurfaceAll {
		listSecurity = bearerSecurity
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "list" + rs.name + "s",
		Method:      http.MethodGet,
		Path:        apiPrefix + rs.path,
		Summary:     "List recipes",
		Description: "Lists recipes, optionally filtered by a title or description substring",
		Tags:        []string{rs.tag},
		Security:    listSecurity,
	}, func(ctx context.Context, input *ListRecipesInput) (*ListRecipesOutput, error) {
		recipes, err := s.services.Recipes.List(ctx, principalFrom(ctx), rs.surface, input.Search)
		if err != nil {
			return nil, err
		}
		out := make([]RecipeResponse, 0, len(recipes))
		for _, r := range recipes {
			out = append(out, newRecipeResponse(r))
		}
		return &ListRecipesOutput{Body: out}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID:   "create" + rs.name,
		Method:        http.MethodPost,
		Path:          apiPrefix + rs.path,
		Summary:       "Create recipe",
		Description:   "Creates a recipe owned by the caller. Tags and ingredients are matched by name.",
		Tags:          []string{rs.tag},
		Security:      bearerSecurity,
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateRecipeInput) (*RecipeOutput, error) {
		principal := principalFrom(ctx)
		if !principal.Authenticated {
			return nil, errAuthRequired
		}
		recipe, err := s.services.Recipes.Create(ctx, principal.UserID, input.Body.toService())
		if err != nil {
			return nil, err
		}
		return &RecipeOutput{Body: newRecipeResponse(recipe)}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get" + rs.name,
		Method:      http.MethodGet,
		Path:        apiPrefix + rs.path + "/{id}",
		Summary:     "Get recipe",
		Description: "Returns a recipe with its tags and ingredients",
		Tags:        []string{rs.tag},
		Security:    listSecurity,
	}, func(ctx context.Context, input *RecipeIDInput) (*RecipeOutput, error) {
		recipe, err := s.services.Recipes.Get(ctx, rs.surface, principalFrom(ctx), input.ID)
		if err != nil {
			return nil, err
		}
		return &RecipeOutput{Body: newRecipeResponse(recipe)}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "replace" + rs.name,
		Method:      http.MethodPut,
		Path:        apiPrefix + rs.path + "/{id}",
		Summary:     "Replace recipe",
		Description: "Overwrites every scalar field. Omitted tags or ingredients are left as they are.",
		Tags:        []string{rs.tag},
		Security:    bearerSecurity,
	}, func(ctx context.Context, input *ReplaceRecipeInput) (*RecipeOutput, error) {
		principal, err := s.recipeWriter(ctx, rs.surface, input.ID)
		if err != nil {
			return nil, err
		}
		recipe, err := s.services.Recipes.Replace(ctx, input.ID, principal.UserID, input.Body.toService())
		if err != nil {
			return nil, err
		}
		return &RecipeOutput{Body: newRecipeResponse(recipe)}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "update" + rs.name,
		Method:      http.MethodPatch,
		Path:        apiPrefix + rs.path + "/{id}",
		Summary:     "Update recipe",
		Description: "Changes the fields present in the body. A tags or ingredients list replaces the whole set.",
		Tags:        []string{rs.tag},
		Security:    bearerSecurity,
	}, func(ctx context.Context, input *UpdateRecipeInput) (*RecipeOutput, error) {
		principal, err := s.recipeWriter(ctx, rs.surface, input.ID)
		if err != nil {
			return nil, err
		}
		recipe, err := s.services.Recipes.Update(ctx, input.ID, principal.UserID, input.Body.toService())
		if err != nil {
			return nil, err
		}
		return &RecipeOutput{Body: newRecipeResponse(recipe)}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID:   "delete" + rs.name,
		Method:        http.MethodDelete,
		Path:          apiPrefix + rs.path + "/{id}",
		Summary:       "Delete recipe",
		Description:   "Deletes a recipe and its image",
		Tags:          []string{rs.tag},
		Security:      bearerSecurity,
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *RecipeIDInput) (*struct{}, error) {
		principal, err := s.recipeWriter(ctx, rs.surface, input.ID)
		if err != nil {
			return nil, err
		}
		if err := s.services.Recipes.Delete(ctx, input.ID, principal.UserID); err != nil {
			return nil, err
		}
		return nil, nil
	})
}

// recipeWriter returns the principal allowed to attempt a write on recipeID
// through surface. On the scoped surface, other users' recipes are hidden
// before the writer's own ownership check runs.
func (s *Server) recipeWriter(ctx context.Context, surface service.Surface, recipeID int64) (domain.Principal, error) {
	principal := principalFrom(ctx)
	if !principal.Authenticated {
		return principal, errAuthRequired
	}
	if surface != service.SurfaceAll {
		if _, err := s.services.Recipes.Get(ctx, surface, principal, recipeID); err != nil {
			return principal, err
		}
	}
	return principal, nil
}

// TagRef names a tag inside a recipe body.
type TagRef struct {
	_    struct{} `json:"-" additionalProperties:"true"`
	Name string   `json:"tag_name" doc:"Tag name"`
}

// IngredientRef names an ingredient inside a recipe body.
type IngredientRef struct {
	_    struct{} `json:"-" additionalProperties:"true"`
	Name string   `json:"ingredient_name" doc:"Ingredient name"`
}

// RecipeRequest is a complete recipe. Any owner field is ignored.
type RecipeRequest struct {
	_            struct{}        `json:"-" additionalProperties:"true"`
	Title        string          `json:"recipe_title" doc:"Title"`
	Description  string          `json:"recipe_description" doc:"Short description"`
	Instructions string          `json:"recipe_instructions" doc:"Preparation steps"`
	Tags         []TagRef        `json:"tags,omitempty" doc:"Tags by name; omit to leave unchanged"`
	Ingredients  []IngredientRef `json:"ingredients,omitempty" doc:"Ingredients by name; omit to leave unchanged"`
}

func (r RecipeRequest) toService() service.RecipeInput {
	return service.RecipeInput{
		Title:        r.Title,
		Description:  r.Description,
		Instructions: r.Instructions,
		Tags:         tagInputs(r.Tags),
		Ingredients:  ingredientInputs(r.Ingredients),
	}
}

// RecipePatchRequest is a partial recipe change.
type RecipePatchRequest struct {
	_            struct{}         `json:"-" additionalProperties:"true"`
	Title        *string          `json:"recipe_title,omitempty" doc:"Title"`
	Description  *string          `json:"recipe_description,omitempty" doc:"Short description"`
	Instructions *string          `json:"recipe_instructions,omitempty" doc:"Preparation steps"`
	Tags         *[]TagRef        `json:"tags,omitempty" doc:"Replaces the tag set"`
	Ingredients  *[]IngredientRef `json:"ingredients,omitempty" doc:"Replaces the ingredient set"`
}

func (r RecipePatchRequest) toService() service.RecipePatch {
	p := service.RecipePatch{
		Title:        r.Title,
		Description:  r.Description,
		Instructions: r.Instructions,
	}
	if r.Tags != nil {
		tags := tagInputs(*r.Tags)
		if tags == nil {
			tags = []service.TagInput{}
		}
		p.Tags = &tags
	}
	if r.Ingredients != nil {
		ingredients := ingredientInputs(*r.Ingredients)
		if ingredients == nil {
			ingredients = []service.IngredientInput{}
		}
		p.Ingredients = &ingredients
	}
	return p
}

// tagInputs keeps nil distinct from empty.
func tagInputs(refs []TagRef) []service.TagInput {
	if refs == nil {
		return nil
	}
	out := make([]service.TagInput, 0, len(refs))
	for _, r := range refs {
		out = append(out, service.TagInput{Name: r.Name})
	}
	return out
}

func ingredientInputs(refs []IngredientRef) []service.IngredientInput {
	if refs == nil {
		return nil
	}
	out := make([]service.IngredientInput, 0, len(refs))
	for _, r := range refs {
		out = append(out, service.IngredientInput{Name: r.Name})
	}
	return out
}

// ListRecipesInput contains parameters for listing recipes.
type ListRecipesInput struct {
	Search string `query:"search" doc:"Substring matched against title and description"`
}

// RecipeIDInput identifies a recipe in the path.
type RecipeIDInput struct {
	ID int64 `path:"id" doc:"Recipe ID"`
}

// CreateRecipeInput wraps a new recipe for Huma.
type CreateRecipeInput struct {
	Body RecipeRequest
}

// ReplaceRecipeInput wraps a full recipe replace for Huma.
type ReplaceRecipeInput struct {
	ID   int64 `path:"id" doc:"Recipe ID"`
	Body RecipeRequest
}

// UpdateRecipeInput wraps a partial recipe change for Huma.
type UpdateRecipeInput struct {
	ID   int64 `path:"id" doc:"Recipe ID"`
	Body RecipePatchRequest
}

// TagResponse is a tag as rendered by the API.
type TagResponse struct {
	ID   int64  `json:"id" doc:"Tag ID"`
	Name string `json:"tag_name" doc:"Tag name"`
}

// IngredientResponse is an ingredient as rendered by the API.
type IngredientResponse struct {
	ID   int64  `json:"id" doc:"Ingredient ID"`
	Name string `json:"ingredient_name" doc:"Ingredient name"`
}

// RecipeResponse is a recipe as rendered by the API.
type RecipeResponse struct {
	ID           int64                `json:"id" doc:"Recipe ID"`
	OwnerID      int64                `json:"user" doc:"Owner user ID"`
	Title        string               `json:"recipe_title" doc:"Title"`
	Description  string               `json:"recipe_description" doc:"Short description"`
	Instructions string               `json:"recipe_instructions" doc:"Preparation steps"`
	Tags         []TagResponse        `json:"tags" doc:"Tags"`
	Ingredients  []IngredientResponse `json:"ingredients" doc:"Ingredients"`
	Image        *string              `json:"image" doc:"Image URL, null when unset"`
}

// RecipeOutput wraps a single recipe for Huma.
type RecipeOutput struct {
	Body RecipeResponse
}

// ListRecipesOutput wraps a recipe list for Huma.
type ListRecipesOutput struct {
	Body []RecipeResponse
}

func newRecipeResponse(r *domain.Recipe) RecipeResponse {
	resp := RecipeResponse{
		ID:           r.ID,
		OwnerID:      r.OwnerID,
		Title:        r.Title,
		Description:  r.Description,
		Instructions: r.Instructions,
		Tags:         make([]TagResponse, 0, len(r.Tags)),
		Ingredients:  make([]IngredientResponse, 0, len(r.Ingredients)),
		Image:        imageURL(r.Image),
	}
	for _, t := range r.Tags {
		resp.Tags = append(resp.Tags, TagResponse{ID: t.ID, Name: t.Name})
	}
	for _, i := range r.Ingredients {
		resp.Ingredients = append(resp.Ingredients, IngredientResponse{ID: i.ID, Name: i.Name})
	}
	return resp
}

func imageURL(key *string) *string {
	if key == nil {
		return nil
	}
	url := mediaPrefix + *key
	return &url
}
