package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/recipebox-server/internal/domain"
	"github.com/listenupapp/recipebox-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "registerUser",
		Method:        http.MethodPost,
		Path:          apiPrefix + "/users",
		Summary:       "Register",
		Description:   "Creates a new account",
		Tags:          []string{"Users"},
		DefaultStatus: http.StatusCreated,
	}, s.handleRegisterUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "listUsers",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/users",
		Summary:     "List users",
		Description: "Lists accounts, optionally filtered by id, email or name",
		Tags:        []string{"Users"},
		Security:    bearerSecurity,
	}, s.handleListUsers)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/users/me",
		Summary:     "Get current user",
		Description: "Returns the authenticated account",
		Tags:        []string{"Users"},
		Security:    bearerSecurity,
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUser",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/users/{id}",
		Summary:     "Get user",
		Description: "Returns an account by ID",
		Tags:        []string{"Users"},
		Security:    bearerSecurity,
	}, s.handleGetUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "replaceUser",
		Method:      http.MethodPut,
		Path:        apiPrefix + "/users/{id}",
		Summary:     "Replace user",
		Description: "Overwrites email, name and password of your own account",
		Tags:        []string{"Users"},
		Security:    bearerSecurity,
	}, s.handleReplaceUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateUser",
		Method:      http.MethodPatch,
		Path:        apiPrefix + "/users/{id}",
		Summary:     "Update user",
		Description: "Changes fields of your own account",
		Tags:        []string{"Users"},
		Security:    bearerSecurity,
	}, s.handleUpdateUser)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteUser",
		Method:        http.MethodDelete,
		Path:          apiPrefix + "/users/{id}",
		Summary:       "Delete user",
		Description:   "Deletes your own account with its recipes, tags and ingredients",
		Tags:          []string{"Users"},
		Security:      bearerSecurity,
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteUser)
}

// RegisterUserRequest is the body of a registration or full replace.
type RegisterUserRequest struct {
	_        struct{} `json:"-" additionalProperties:"true"`
	Email    string   `json:"email" doc:"Email address, used to log in"`
	Name     string   `json:"name" doc:"Display name"`
	Password string   `json:"password" doc:"Password, at least 8 characters"`
}

func (r RegisterUserRequest) toService() service.RegisterRequest {
	return service.RegisterRequest{Email: r.Email, Name: r.Name, Password: r.Password}
}

// UpdateUserRequest is a partial account change.
type UpdateUserRequest struct {
	_        struct{} `json:"-" additionalProperties:"true"`
	Email    *string  `json:"email,omitempty" doc:"New email address"`
	Name     *string  `json:"name,omitempty" doc:"New display name"`
	Password *string  `json:"password,omitempty" doc:"New password"`
}

// RegisterUserInput wraps the registration request for Huma.
type RegisterUserInput struct {
	Body RegisterUserRequest
}

// ListUsersInput contains parameters for listing users.
type ListUsersInput struct {
	Search string `query:"search" doc:"Substring matched against id, email and name"`
}

// UserIDInput identifies a user in the path.
type UserIDInput struct {
	ID int64 `path:"id" doc:"User ID"`
}

// ReplaceUserInput wraps a full account replace for Huma.
type ReplaceUserInput struct {
	ID   int64 `path:"id" doc:"User ID"`
	Body RegisterUserRequest
}

// UpdateUserInput wraps a partial account change for Huma.
type UpdateUserInput struct {
	ID   int64 `path:"id" doc:"User ID"`
	Body UpdateUserRequest
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        int64     `json:"id" doc:"User ID"`
	Email     string    `json:"email" doc:"Email address"`
	Name      string    `json:"name" doc:"Display name"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
}

// UserOutput wraps a single user for Huma.
type UserOutput struct {
	Body UserResponse
}

// ListUsersOutput wraps a user list for Huma.
type ListUsersOutput struct {
	Body []UserResponse
}

func newUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}
}

func (s *Server) handleRegisterUser(ctx context.Context, input *RegisterUserInput) (*UserOutput, error) {
	user, err := s.services.Users.Register(ctx, input.Body.toService())
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: newUserResponse(user)}, nil
}

func (s *Server) handleListUsers(ctx context.Context, input *ListUsersInput) (*ListUsersOutput, error) {
	users, err := s.services.Users.List(ctx, principalFrom(ctx), input.Search)
	if err != nil {
		return nil, err
	}
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, newUserResponse(u))
	}
	return &ListUsersOutput{Body: out}, nil
}

func (s *Server) handleGetCurrentUser(ctx context.Context, _ *struct{}) (*UserOutput, error) {
	principal := principalFrom(ctx)
	if !principal.Authenticated {
		return nil, errAuthRequired
	}
	user, err := s.services.Users.Get(ctx, principal, principal.UserID)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: newUserResponse(user)}, nil
}

func (s *Server) handleGetUser(ctx context.Context, input *UserIDInput) (*UserOutput, error) {
	user, err := s.services.Users.Get(ctx, principalFrom(ctx), input.ID)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: newUserResponse(user)}, nil
}

func (s *Server) handleReplaceUser(ctx context.Context, input *ReplaceUserInput) (*UserOutput, error) {
	user, err := s.services.Users.Replace(ctx, principalFrom(ctx), input.ID, input.Body.toService())
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: newUserResponse(user)}, nil
}

func (s *Server) handleUpdateUser(ctx context.Context, input *UpdateUserInput) (*UserOutput, error) {
	user, err := s.services.Users.Update(ctx, principalFrom(ctx), input.ID, service.UpdateUserRequest{
		Email:    input.Body.Email,
		Name:     input.Body.Name,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: newUserResponse(user)}, nil
}

func (s *Server) handleDeleteUser(ctx context.Context, input *UserIDInput) (*struct{}, error) {
	if err := s.services.Users.Delete(ctx, principalFrom(ctx), input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}
