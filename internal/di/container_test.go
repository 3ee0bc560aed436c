package di

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/recipebox-server/internal/blob"
	"github.com/listenupapp/recipebox-server/internal/config"
	"github.com/listenupapp/recipebox-server/internal/di/providers"
	"github.com/listenupapp/recipebox-server/internal/service"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	meta := filepath.Join(t.TempDir(), "metadata")
	return &config.Config{
		App:       config.AppConfig{Environment: "development"},
		Logger:    config.LoggerConfig{Level: "error"},
		Metadata:  config.MetadataConfig{BasePath: meta},
		Server:    config.ServerConfig{Port: "0", MaxUploadBytes: 1 << 20},
		Auth:      config.AuthConfig{AccessTokenDuration: time.Hour},
		Database:  config.DatabaseConfig{Driver: "sqlite", DSN: filepath.Join(meta, "recipebox.db")},
		Storage:   config.StorageConfig{Driver: "memory"},
		RateLimit: config.RateLimitConfig{LoginPerMinute: 10, LoginBurst: 5},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"*"}},
	}
}

func TestBootstrap(t *testing.T) {
	injector := NewContainer(testConfig(t))
	t.Cleanup(func() { _ = injector.Shutdown() })

	require.NoError(t, Bootstrap(injector))

	images := do.MustInvoke[blob.Store](injector)
	assert.Equal(t, blob.DriverMemory, images.Driver())

	users := do.MustInvoke[*service.UserService](injector)
	_, err := users.Register(context.Background(), service.RegisterRequest{
		Email:    "chef@example.com",
		Name:     "Chef",
		Password: "correct horse battery",
	})
	require.NoError(t, err)

	handler := do.MustInvoke[*providers.APIServerHandle](injector)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBootstrap_BadBlobDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Driver = "tape"
	injector := NewContainer(cfg)
	t.Cleanup(func() { _ = injector.Shutdown() })

	assert.Error(t, Bootstrap(injector))
}
