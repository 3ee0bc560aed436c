package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/recipebox-server/internal/auth"
	"github.com/listenupapp/recipebox-server/internal/blob"
	"github.com/listenupapp/recipebox-server/internal/service"
	"github.com/listenupapp/recipebox-server/internal/store/sqlstore"
	"github.com/listenupapp/recipebox-server/internal/validation"
)

type testServer struct {
	*Server
	api    humatest.TestAPI
	store  *sqlstore.Store
	images *blob.Memory
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	return setupTestServerWith(t, Options{LoginPerMinute: 600, LoginBurst: 100})
}

func setupTestServerWith(t *testing.T, opts Options) *testServer {
	t.Helper()

	tmpDir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	st, err := sqlstore.Open(context.Background(), sqlstore.Config{
		Driver: sqlstore.DriverSQLite,
		DSN:    filepath.Join(tmpDir, "test.db"),
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	key, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, 15*time.Minute)
	require.NoError(t, err)

	v := validation.New()
	images := blob.NewMemory()

	services := &Services{
		Users:   service.NewUserService(st, tokens, v, logger),
		Recipes: service.NewRecipeService(st, images, service.NewReconciler(logger), v, logger),
		Labels:  service.NewLabelService(st, v, logger),
		Health:  st,
	}

	s := NewServer(services, opts, logger)
	t.Cleanup(s.Close)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.API()),
		store:  st,
		images: images,
	}
}

var accountSeq atomic.Int64

// account is a registered user with a live token.
type account struct {
	id    int64
	email string
	token string
}

func (a account) auth() string {
	return "Authorization: Bearer " + a.token
}

// newAccount registers a user through the API and logs in.
func (ts *testServer) newAccount(t *testing.T) account {
	t.Helper()

	n := accountSeq.Add(1)
	email := fmt.Sprintf("cook%d@example.com", n)
	resp := ts.api.Post("/api/v1/users", map[string]any{
		"email":    email,
		"name":     fmt.Sprintf("Cook %d", n),
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var user UserResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &user))

	return account{id: user.ID, email: email, token: ts.login(t, email, "correct horse battery")}
}

func (ts *testServer) login(t *testing.T, email, password string) string {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var out LoginResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	return out.Token
}

func decodeJSON[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &v), resp.Body.String())
	return v
}

func TestHealthCheck_Success(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/health")
	assert.Equal(t, http.StatusOK, resp.Code)

	health := decodeJSON[HealthResponse](t, resp)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "healthy", health.Components["database"].Status)
}

func TestHealthCheck_DatabaseDown(t *testing.T) {
	ts := setupTestServer(t)
	require.NoError(t, ts.store.Close())

	resp := ts.api.Get("/api/v1/health")
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)

	health := decodeJSON[HealthResponse](t, resp)
	assert.Equal(t, "unhealthy", health.Status)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	ts.api.Get("/api/v1/health")

	w := httptest.NewRecorder()
	ts.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "recipebox_http_requests_total")
}

func TestOpenAPIDocument(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/openapi.json")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "createMyRecipe")
	assert.Contains(t, resp.Body.String(), "listIngredients")
}

func TestCORSPreflight(t *testing.T) {
	ts := setupTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/recipes", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	ts.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
