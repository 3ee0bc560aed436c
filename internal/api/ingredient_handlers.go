package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/recipebox-server/internal/domain"
)

func (s *Server) registerIngredientRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listIngredients",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/ingredients",
		Summary:     "List ingredients",
		Description: "Lists the caller's ingredients",
		Tags:        []string{"Ingredients"},
		Security:    bearerSecurity,
	}, s.handleListIngredients)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createIngredient",
		Method:        http.MethodPost,
		Path:          apiPrefix + "/ingredients",
		Summary:       "Create ingredient",
		Description:   "Creates an ingredient. Names are not deduplicated on this route.",
		Tags:          []string{"Ingredients"},
		Security:      bearerSecurity,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateIngredient)

	huma.Register(s.api, huma.Operation{
		OperationID: "getIngredient",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/ingredients/{id}",
		Summary:     "Get ingredient",
		Tags:        []string{"Ingredients"},
		Security:    bearerSecurity,
	}, s.handleGetIngredient)

	huma.Register(s.api, huma.Operation{
		OperationID: "replaceIngredient",
		Method:      http.MethodPut,
		Path:        apiPrefix + "/ingredients/{id}",
		Summary:     "Rename ingredient",
		Tags:        []string{"Ingredients"},
		Security:    bearerSecurity,
	}, s.handleReplaceIngredient)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateIngredient",
		Method:      http.MethodPatch,
		Path:        apiPrefix + "/ingredients/{id}",
		Summary:     "Update ingredient",
		Tags:        []string{"Ingredients"},
		Security:    bearerSecurity,
	}, s.handleUpdateIngredient)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteIngredient",
		Method:        http.MethodDelete,
		Path:          apiPrefix + "/ingredients/{id}",
		Summary:       "Delete ingredient",
		Description:   "Deletes an ingredient and removes it from every recipe",
		Tags:          []string{"Ingredients"},
		Security:      bearerSecurity,
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteIngredient)
}

// IngredientRequest is the body for creating or renaming an ingredient.
type IngredientRequest struct {
	_    struct{} `json:"-" additionalProperties:"true"`
	Name string   `json:"ingredient_name" doc:"Ingredient name"`
}

// IngredientPatchRequest is a partial ingredient change.
type IngredientPatchRequest struct {
	_    struct{} `json:"-" additionalProperties:"true"`
	Name *string  `json:"ingredient_name,omitempty" doc:"Ingredient name"`
}

// IngredientIDInput identifies an ingredient in the path.
type IngredientIDInput struct {
	ID int64 `path:"id" doc:"Ingredient ID"`
}

// CreateIngredientInput wraps a new ingredient for Huma.
type CreateIngredientInput struct {
	Body IngredientRequest
}

// ReplaceIngredientInput wraps an ingredient rename for Huma.
type ReplaceIngredientInput struct {
	ID   int64 `path:"id" doc:"Ingredient ID"`
	Body IngredientRequest
}

// UpdateIngredientInput wraps a partial ingredient change for Huma.
type UpdateIngredientInput struct {
	ID   int64 `path:"id" doc:"Ingredient ID"`
	Body IngredientPatchRequest
}

// IngredientOutput wraps a single ingredient for Huma.
type IngredientOutput struct {
	Body IngredientResponse
}

// ListIngredientsOutput wraps an ingredient list for Huma.
type ListIngredientsOutput struct {
	Body []IngredientResponse
}

func newIngredientResponse(l *domain.Label) IngredientResponse {
	return IngredientResponse{ID: l.ID, Name: l.Name}
}

func (s *Server) handleListIngredients(ctx context.Context, _ *struct{}) (*ListIngredientsOutput, error) {
	labels, err := s.services.Labels.List(ctx, principalFrom(ctx), domain.LabelIngredient)
	if err != nil {
		return nil, err
	}
	out := make([]IngredientResponse, 0, len(labels))
	for _, l := range labels {
		out = append(out, newIngredientResponse(l))
	}
	return &ListIngredientsOutput{Body: out}, nil
}

func (s *Server) handleCreateIngredient(ctx context.Context, input *CreateIngredientInput) (*IngredientOutput, error) {
	label, err := s.services.Labels.Create(ctx, principalFrom(ctx), domain.LabelIngredient, input.Body.Name)
	if err != nil {
		return nil, err
	}
	return &IngredientOutput{Body: newIngredientResponse(label)}, nil
}

func (s *Server) handleGetIngredient(ctx context.Context, input *IngredientIDInput) (*IngredientOutput, error) {
	label, err := s.services.Labels.Get(ctx, principalFrom(ctx), domain.LabelIngredient, input.ID)
	if err != nil {
		return nil, err
	}
	return &IngredientOutput{Body: newIngredientResponse(label)}, nil
}

func (s *Server) handleReplaceIngredient(ctx context.Context, input *ReplaceIngredientInput) (*IngredientOutput, error) {
	label, err := s.services.Labels.Update(ctx, principalFrom(ctx), domain.LabelIngredient, input.ID, &input.Body.Name)
	if err != nil {
		return nil, err
	}
	return &IngredientOutput{Body: newIngredientResponse(label)}, nil
}

func (s *Server) handleUpdateIngredient(ctx context.Context, input *UpdateIngredientInput) (*IngredientOutput, error) {
	label, err := s.services.Labels.Update(ctx, principalFrom(ctx), domain.LabelIngredient, input.ID, input.Body.Name)
	if err != nil {
		return nil, err
	}
	return &IngredientOutput{Body: newIngredientResponse(label)}, nil
}

func (s *Server) handleDeleteIngredient(ctx context.Context, input *IngredientIDInput) (*struct{}, error) {
	if err := s.services.Labels.Delete(ctx, principalFrom(ctx), domain.LabelIngredient, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}
