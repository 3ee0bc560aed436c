// Package providers contains dependency injection providers for the RecipeBox server.
package providers

import (
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/listenupapp/recipebox-server/internal/config"
	"github.com/listenupapp/recipebox-server/internal/logger"
)

// ConfigProvider returns a provider for an already loaded configuration.
// The metadata directory is created on first use.
func ConfigProvider(cfg *config.Config) do.Provider[*config.Config] {
	return func(i do.Injector) (*config.Config, error) {
		if err := os.MkdirAll(cfg.Metadata.BasePath, 0o755); err != nil {
			return nil, fmt.Errorf("create metadata directory: %w", err)
		}
		return cfg, nil
	}
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting RecipeBox Server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"metadata_path", cfg.Metadata.BasePath,
		"db_driver", cfg.Database.Driver,
		"blob_driver", cfg.Storage.Driver,
	)

	return log, nil
}
