package api

import (
	"context"

	"github.com/listenupapp/recipebox-server/internal/service"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups the business logic used by the API server.
type Services struct {
	Users   *service.UserService
	Recipes *service.RecipeService
	Labels  *service.LabelService
	Health  Pinger
}
