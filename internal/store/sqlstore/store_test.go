package sqlstore

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/listenupapp/recipebox-server/internal/domain"
)

// postgresDSNEnv names a disposable Postgres database used by the store tests.
// The database is wiped before each test.
const postgresDSNEnv = "RECIPEBOX_TEST_POSTGRES_DSN"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	s, err := Open(context.Background(), Config{Driver: DriverSQLite, DSN: dbPath}, testLogger())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newPostgresStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv(postgresDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set", postgresDSNEnv)
	}

	ctx := context.Background()
	s, err := Open(ctx, Config{Driver: DriverPostgres, DSN: dsn, SkipMigrations: true}, testLogger())
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	for _, table := range []string{
		"recipe_ingredients", "recipe_tags", "ingredients", "tags", "recipes", "users", "goose_db_version",
	} {
		if _, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS `+table+` CASCADE`); err != nil {
			t.Fatalf("drop %s: %v", table, err)
		}
	}
	if _, err := s.Migrate(ctx); err != nil {
		t.Fatalf("migrate postgres: %v", err)
	}
	return s
}

// forEachDriver runs fn against SQLite and, when configured, Postgres.
func forEachDriver(t *testing.T, fn func(t *testing.T, s *Store)) {
	t.Helper()
	t.Run(DriverSQLite, func(t *testing.T) { fn(t, newTestStore(t)) })
	t.Run(DriverPostgres, func(t *testing.T) { fn(t, newPostgresStore(t)) })
}

// makeTestUser inserts a user with sensible defaults.
func makeTestUser(t *testing.T, s *Store, email string) *domain.User {
	t.Helper()
	u := &domain.User{
		Email:        email,
		Name:         "Test User",
		PasswordHash: "hash",
		IsActive:     true,
	}
	u.InitTimestamps()
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser(%s): %v", email, err)
	}
	return u
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	var journalMode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	var fk int
	if err := s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys=1, got %d", fk)
	}

	tables := []string{"users", "recipes", "tags", "ingredients", "recipe_tags", "recipe_ingredients"}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n, err := s.Migrate(ctx)
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no pending migrations, %d applied", n)
	}

	v, err := s.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != 1 {
		t.Errorf("expected schema version 1, got %d", v)
	}
}

func TestUserFlagsAndTimestamps_RoundTrip(t *testing.T) {
	forEachDriver(t, func(t *testing.T, s *Store) {
		ctx := context.Background()
		u := &domain.User{
			Email:        "flags@example.com",
			Name:         "Flags",
			PasswordHash: "hash",
			IsActive:     false,
			IsStaff:      true,
			IsSuperuser:  true,
		}
		u.InitTimestamps()
		if err := s.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser: %v", err)
		}

		got, err := s.GetUser(ctx, u.ID)
		if err != nil {
			t.Fatalf("GetUser: %v", err)
		}
		if got.IsActive || !got.IsStaff || !got.IsSuperuser {
			t.Errorf("flags = active:%v staff:%v superuser:%v", got.IsActive, got.IsStaff, got.IsSuperuser)
		}
		// Postgres keeps microseconds.
		if d := got.CreatedAt.Sub(u.CreatedAt); d > time.Millisecond || d < -time.Millisecond {
			t.Errorf("created_at drifted by %s", d)
		}
		if got.CreatedAt.Location() != time.UTC {
			t.Errorf("created_at location = %s, want UTC", got.CreatedAt.Location())
		}
	})
}

func TestPostgresColumnTypes(t *testing.T) {
	s := newPostgresStore(t)

	want := map[string]string{
		"is_active":  "boolean",
		"created_at": "timestamp with time zone",
	}
	for col, typ := range want {
		var got string
		err := s.db.QueryRow(
			`SELECT data_type FROM information_schema.columns WHERE table_name = 'users' AND column_name = $1`, col,
		).Scan(&got)
		if err != nil {
			t.Fatalf("column %s: %v", col, err)
		}
		if got != typ {
			t.Errorf("users.%s is %s, want %s", col, got, typ)
		}
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "oracle", DSN: "x"}, testLogger())
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestRebind(t *testing.T) {
	got := postgresDialect.rebind(`SELECT 1 FROM t WHERE a = ? AND b LIKE ? ESCAPE '\' AND c = '?'`)
	want := `SELECT 1 FROM t WHERE a = $1 AND b LIKE $2 ESCAPE '\' AND c = '?'`
	if got != want {
		t.Errorf("rebind:\n got %s\nwant %s", got, want)
	}

	q := `SELECT ? , ?`
	if sqliteDialect.rebind(q) != q {
		t.Errorf("sqlite rebind must be identity")
	}
}

func TestLikePattern(t *testing.T) {
	tests := map[string]string{
		"chili":   "%chili%",
		"100%":    `%100\%%`,
		"a_b":     `%a\_b%`,
		`back\sl`: `%back\\sl%`,
	}
	for in, want := range tests {
		if got := likePattern(in); got != want {
			t.Errorf("likePattern(%q) = %q, want %q", in, got, want)
		}
	}
}
