package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/recipebox-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        apiPrefix + "/auth/login",
		Summary:     "Log in",
		Description: "Exchanges email and password for a bearer token. Rate limited per client address.",
		Tags:        []string{"Auth"},
		Middlewares: huma.Middlewares{s.loginRateLimit},
	}, s.handleLogin)
}

// LoginRequest is the request body for logging in.
type LoginRequest struct {
	Email    string `json:"email" doc:"Account email"`
	Password string `json:"password" doc:"Account password"`
}

// LoginInput wraps the login request for Huma.
type LoginInput struct {
	Body LoginRequest
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token     string `json:"token" doc:"PASETO access token"`
	TokenType string `json:"token_type" doc:"Always Bearer"`
	ExpiresIn int64  `json:"expires_in" doc:"Token lifetime in seconds"`
}

// LoginOutput wraps the login response for Huma.
type LoginOutput struct {
	Body LoginResponse
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	res, err := s.services.Users.Login(ctx, service.LoginRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}
	return &LoginOutput{Body: LoginResponse{
		Token:     res.Token,
		TokenType: "Bearer",
		ExpiresIn: int64(res.ExpiresIn.Seconds()),
	}}, nil
}
