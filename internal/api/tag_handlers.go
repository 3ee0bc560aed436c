package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/recipebox-server/internal/domain"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/tags",
		Summary:     "List tags",
		Description: "Lists the caller's tags",
		Tags:        []string{"Tags"},
		Security:    bearerSecurity,
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createTag",
		Method:        http.MethodPost,
		Path:          apiPrefix + "/tags",
		Summary:       "Create tag",
		Description:   "Creates a tag. Names are not deduplicated on this route.",
		Tags:          []string{"Tags"},
		Security:      bearerSecurity,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTag",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/tags/{id}",
		Summary:     "Get tag",
		Tags:        []string{"Tags"},
		Security:    bearerSecurity,
	}, s.handleGetTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "replaceTag",
		Method:      http.MethodPut,
		Path:        apiPrefix + "/tags/{id}",
		Summary:     "Rename tag",
		Tags:        []string{"Tags"},
		Security:    bearerSecurity,
	}, s.handleReplaceTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateTag",
		Method:      http.MethodPatch,
		Path:        apiPrefix + "/tags/{id}",
		Summary:     "Update tag",
		Tags:        []string{"Tags"},
		Security:    bearerSecurity,
	}, s.handleUpdateTag)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteTag",
		Method:        http.MethodDelete,
		Path:          apiPrefix + "/tags/{id}",
		Summary:       "Delete tag",
		Description:   "Deletes a tag and removes it from every recipe",
		Tags:          []string{"Tags"},
		Security:      bearerSecurity,
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteTag)
}

// TagRequest is the body for creating or renaming a tag.
type TagRequest struct {
	_    struct{} `json:"-" additionalProperties:"true"`
	Name string   `json:"tag_name" doc:"Tag name"`
}

// TagPatchRequest is a partial tag change.
type TagPatchRequest struct {
	_    struct{} `json:"-" additionalProperties:"true"`
	Name *string  `json:"tag_name,omitempty" doc:"Tag name"`
}

// TagIDInput identifies a tag in the path.
type TagIDInput struct {
	ID int64 `path:"id" doc:"Tag ID"`
}

// CreateTagInput wraps a new tag for Huma.
type CreateTagInput struct {
	Body TagRequest
}

// ReplaceTagInput wraps a tag rename for Huma.
type ReplaceTagInput struct {
	ID   int64 `path:"id" doc:"Tag ID"`
	Body TagRequest
}

// UpdateTagInput wraps a partial tag change for Huma.
type UpdateTagInput struct {
	ID   int64 `path:"id" doc:"Tag ID"`
	Body TagPatchRequest
}

// TagOutput wraps a single tag for Huma.
type TagOutput struct {
	Body TagResponse
}

// ListTagsOutput wraps a tag list for Huma.
type ListTagsOutput struct {
	Body []TagResponse
}

func newTagResponse(l *domain.Label) TagResponse {
	return TagResponse{ID: l.ID, Name: l.Name}
}

func (s *Server) handleListTags(ctx context.Context, _ *struct{}) (*ListTagsOutput, error) {
	labels, err := s.services.Labels.List(ctx, principalFrom(ctx), domain.LabelTag)
	if err != nil {
		return nil, err
	}
	out := make([]TagResponse, 0, len(labels))
	for _, l := range labels {
		out = append(out, newTagResponse(l))
	}
	return &ListTagsOutput{Body: out}, nil
}

func (s *Server) handleCreateTag(ctx context.Context, input *CreateTagInput) (*TagOutput, error) {
	label, err := s.services.Labels.Create(ctx, principalFrom(ctx), domain.LabelTag, input.Body.Name)
	if err != nil {
		return nil, err
	}
	return &TagOutput{Body: newTagResponse(label)}, nil
}

func (s *Server) handleGetTag(ctx context.Context, input *TagIDInput) (*TagOutput, error) {
	label, err := s.services.Labels.Get(ctx, principalFrom(ctx), domain.LabelTag, input.ID)
	if err != nil {
		return nil, err
	}
	return &TagOutput{Body: newTagResponse(label)}, nil
}

func (s *Server) handleReplaceTag(ctx context.Context, input *ReplaceTagInput) (*TagOutput, error) {
	label, err := s.services.Labels.Update(ctx, principalFrom(ctx), domain.LabelTag, input.ID, &input.Body.Name)
	if err != nil {
		return nil, err
	}
	return &TagOutput{Body: newTagResponse(label)}, nil
}

func (s *Server) handleUpdateTag(ctx context.Context, input *UpdateTagInput) (*TagOutput, error) {
	label, err := s.services.Labels.Update(ctx, principalFrom(ctx), domain.LabelTag, input.ID, input.Body.Name)
	if err != nil {
		return nil, err
	}
	return &TagOutput{Body: newTagResponse(label)}, nil
}

func (s *Server) handleDeleteTag(ctx context.Context, input *TagIDInput) (*struct{}, error) {
	if err := s.services.Labels.Delete(ctx, principalFrom(ctx), domain.LabelTag, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}
