package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/listenupapp/recipebox-server/internal/auth"
	"github.com/listenupapp/recipebox-server/internal/blob"
	"github.com/listenupapp/recipebox-server/internal/domain"
	"github.com/listenupapp/recipebox-server/internal/store/sqlstore"
	"github.com/listenupapp/recipebox-server/internal/validation"
)

// testEnv bundles the services over a temporary SQLite store and an
// in-memory image store.
type testEnv struct {
	store   *sqlstore.Store
	images  *blob.Memory
	tokens  *auth.TokenService
	users   *UserService
	recipes *RecipeService
	labels  *LabelService
}

func newTestEnv(t *testing.T) *testEnv {
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

	return &testEnv{
		store:   st,
		images:  images,
		tokens:  tokens,
		users:   NewUserService(st, tokens, v, logger),
		recipes: NewRecipeService(st, images, NewReconciler(logger), v, logger),
		labels:  NewLabelService(st, v, logger),
	}
}

var userSeq atomic.Int64

// newUser registers a fresh account and returns it with its principal.
func (e *testEnv) newUser(t *testing.T) (*domain.User, domain.Principal) {
	t.Helper()
	n := userSeq.Add(1)
	u, err := e.users.Register(context.Background(), RegisterRequest{
		Email:    fmt.Sprintf("cook%d@example.com", n),
		Name:     fmt.Sprintf("Cook %d", n),
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	return u, domain.AuthenticatedAs(u.ID)
}

func (e *testEnv) newRecipe(t *testing.T, ownerID int64, tags ...string) *domain.Recipe {
	t.Helper()
	in := RecipeInput{
		Title:        "Soup",
		Description:  "Warm",
		Instructions: "Boil water",
	}
	for _, tag := range tags {
		in.Tags = append(in.Tags, TagInput{Name: tag})
	}
	r, err := e.recipes.Create(context.Background(), ownerID, in)
	require.NoError(t, err)
	return r
}

func ptr[T any](v T) *T { return &v }

func names(labels []domain.Label) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = l.Name
	}
	return out
}
