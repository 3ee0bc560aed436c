// Package di provides dependency injection configuration for the RecipeBox server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/recipebox-server/internal/auth"
	"github.com/listenupapp/recipebox-server/internal/blob"
	"github.com/listenupapp/recipebox-server/internal/config"
	"github.com/listenupapp/recipebox-server/internal/di/providers"
	"github.com/listenupapp/recipebox-server/internal/logger"
	"github.com/listenupapp/recipebox-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer(cfg *config.Config) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ConfigProvider(cfg))
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideImageStore)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideReconciler)
	do.Provide(injector, providers.ProvideUserService)
	do.Provide(injector, providers.ProvideRecipeService)
	do.Provide(injector, providers.ProvideLabelService)

	// Server
	do.Provide(injector, providers.ProvideAPIServer)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes the core services without starting the HTTP server.
// Command line tools stop here.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[blob.Store](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*auth.TokenService](injector); err != nil {
		return err
	}

	_ = do.MustInvoke[*service.UserService](injector)
	_ = do.MustInvoke[*service.RecipeService](injector)
	_ = do.MustInvoke[*service.LabelService](injector)
	return nil
}

// Serve bootstraps everything and starts the HTTP server.
func Serve(injector *do.RootScope) error {
	if err := Bootstrap(injector); err != nil {
		return err
	}
	_, err := do.Invoke[*providers.HTTPServerHandle](injector)
	return err
}
