package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_DuplicateEmail(t *testing.T) {
	ts := setupTestServer(t)
	cook := ts.newAccount(t)

	resp := ts.api.Post("/api/v1/users", map[string]any{
		"email":    cook.email,
		"name":     "Twin",
		"password": "correct horse battery",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "ALREADY_EXISTS", decodeJSON[APIError](t, resp).Code)
}

func TestRegister_Validation(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"short password", map[string]any{"email": "a@example.com", "name": "A", "password": "short"}},
		{"bad email", map[string]any{"email": "nope", "name": "A", "password": "correct horse battery"}},
		{"long name", map[string]any{"email": "b@example.com", "name": "abcdefghijklmnopqrstuvwxyz", "password": "correct horse battery"}},
		{"missing name", map[string]any{"email": "c@example.com", "password": "correct horse battery"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/api/v1/users", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
		})
	}
}

func TestLogin(t *testing.T) {
	ts := setupTestServer(t)
	cook := ts.newAccount(t)

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    cook.email,
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	out := decodeJSON[LoginResponse](t, resp)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, "Bearer", out.TokenType)
	assert.Equal(t, int64(900), out.ExpiresIn)

	resp = ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    cook.email,
		"password": "wrong password",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decodeJSON[APIError](t, resp).Code)

	resp = ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "nobody@example.com",
		"password": "correct horse battery",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestLogin_InactiveUser(t *testing.T) {
	ts := setupTestServer(t)
	cook := ts.newAccount(t)

	user, err := ts.store.GetUser(context.Background(), cook.id)
	require.NoError(t, err)
	user.IsActive = false
	require.NoError(t, ts.store.UpdateUser(context.Background(), user))

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    cook.email,
		"password": "correct horse battery",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = ts.api.Get("/api/v1/users/me", cook.auth())
	assert.Equal(t, http.StatusUnauthorized, resp.Code, "tokens of disabled accounts are not honoured")
}

func TestLogin_RateLimited(t *testing.T) {
	ts := setupTestServerWith(t, Options{LoginPerMinute: 1, LoginBurst: 2})

	body := map[string]any{"email": "nobody@example.com", "password": "whatever123"}
	assert.Equal(t, http.StatusBadRequest, ts.api.Post("/api/v1/auth/login", body).Code)
	assert.Equal(t, http.StatusBadRequest, ts.api.Post("/api/v1/auth/login", body).Code)

	resp := ts.api.Post("/api/v1/auth/login", body)
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, "RATE_LIMITED", decodeJSON[APIError](t, resp).Code)
}

func TestUsers_RequireAuth(t *testing.T) {
	ts := setupTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, ts.api.Get("/api/v1/users").Code)
	assert.Equal(t, http.StatusUnauthorized, ts.api.Get("/api/v1/users/me").Code)
	assert.Equal(t, http.StatusUnauthorized, ts.api.Get("/api/v1/users/1").Code)
}

func TestUsers_ListAndSearch(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.newAccount(t)
	bob := ts.newAccount(t)

	resp := ts.api.Get("/api/v1/users", alice.auth())
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, decodeJSON[[]UserResponse](t, resp), 2)

	resp = ts.api.Get("/api/v1/users?search="+bob.email, alice.auth())
	require.Equal(t, http.StatusOK, resp.Code)
	found := decodeJSON[[]UserResponse](t, resp)
	require.Len(t, found, 1)
	assert.Equal(t, bob.id, found[0].ID)

	resp = ts.api.Get("/api/v1/users/me", bob.auth())
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, bob.email, decodeJSON[UserResponse](t, resp).Email)
}

func TestUsers_UpdateSelfOnly(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.newAccount(t)
	bob := ts.newAccount(t)

	resp := ts.api.Patch(fmt.Sprintf("/api/v1/users/%d", bob.id), alice.auth(), map[string]any{"name": "Mallory"})
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Patch(fmt.Sprintf("/api/v1/users/%d", alice.id), alice.auth(), map[string]any{
		"name":     "Alice",
		"password": "a much better secret",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "Alice", decodeJSON[UserResponse](t, resp).Name)

	token := ts.login(t, alice.email, "a much better secret")
	assert.NotEmpty(t, token)

	resp = ts.api.Put(fmt.Sprintf("/api/v1/users/%d", alice.id), alice.auth(), map[string]any{
		"email":    "alice@example.com",
		"name":     "Alice B",
		"password": "another long secret",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "alice@example.com", decodeJSON[UserResponse](t, resp).Email)
}

func TestUsers_DeleteCascades(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.newAccount(t)
	bob := ts.newAccount(t)
	recipe := ts.createRecipe(t, alice, chili("Spicy"))

	resp := ts.api.Delete(fmt.Sprintf("/api/v1/users/%d", alice.id), bob.auth())
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Delete(fmt.Sprintf("/api/v1/users/%d", alice.id), alice.auth())
	require.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Get(fmt.Sprintf("/api/v1/recipes/%d", recipe.ID))
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Get("/api/v1/users/me", alice.auth())
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
