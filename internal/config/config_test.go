package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:       AppConfig{Environment: "development"},
		Logger:    LoggerConfig{Level: "info"},
		Metadata:  MetadataConfig{BasePath: "/some/path"},
		Server:    ServerConfig{Port: "8000", MaxUploadBytes: 1 << 20},
		Auth:      AuthConfig{AccessTokenDuration: time.Hour},
		Database:  DatabaseConfig{Driver: "sqlite", DSN: "/some/path/recipebox.db"},
		Storage:   StorageConfig{Driver: "fs", Root: "/some/path/media"},
		RateLimit: RateLimitConfig{LoginPerMinute: 10, LoginBurst: 5},
	}
}

// isolate points HOME at a temp dir and clears every variable Load reads.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{
		"ENV", "LOG_LEVEL", "METADATA_PATH", "SERVER_PORT", "MAX_UPLOAD_BYTES",
		"SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT", "SERVER_IDLE_TIMEOUT",
		"ACCESS_TOKEN_DURATION", "DB_DRIVER", "DB_DSN", "BLOB_DRIVER", "BLOB_FS_ROOT",
		"BLOB_S3_BUCKET", "BLOB_S3_REGION", "BLOB_S3_ENDPOINT", "BLOB_S3_PATH_STYLE",
		"BLOB_S3_ACCESS_KEY_ID", "BLOB_S3_SECRET_ACCESS_KEY",
		"LOGIN_RATE_PER_MINUTE", "LOGIN_RATE_BURST", "CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}
	return home
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env
			if tt.valid {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestValidate_AllLogLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"debug", true},
		{"info", true},
		{"warn", true},
		{"error", true},
		{"WARN", true},
		{"trace", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validConfig()
			cfg.Logger.Level = tt.level
			if tt.valid {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestValidate_Backends(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"unknown db driver", func(c *Config) { c.Database.Driver = "mysql" }, "invalid database driver"},
		{"postgres without dsn", func(c *Config) { c.Database.Driver, c.Database.DSN = "postgres", "" }, "DB_DSN"},
		{"unknown blob driver", func(c *Config) { c.Storage.Driver = "tape" }, "invalid blob driver"},
		{"s3 without bucket", func(c *Config) { c.Storage.Driver = "s3" }, "BLOB_S3_BUCKET"},
		{"zero token duration", func(c *Config) { c.Auth.AccessTokenDuration = 0 }, "token duration"},
		{"zero rate", func(c *Config) { c.RateLimit.LoginPerMinute = 0 }, "rate limit"},
		{"empty metadata", func(c *Config) { c.Metadata.BasePath = "" }, "metadata"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	cfg := validConfig()
	cfg.Storage.Driver, cfg.Storage.S3Bucket = "s3", "photos"
	cfg.Database.Driver, cfg.Database.DSN = "postgres", "postgres://localhost/recipebox"
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load([]string{"-env-file", filepath.Join(home, "missing.env")})
	require.NoError(t, err)

	base := filepath.Join(home, "RecipeBox", "metadata")
	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, base, cfg.Metadata.BasePath)
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Auth.AccessTokenDuration)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, filepath.Join(base, "recipebox.db"), cfg.Database.DSN)
	assert.Equal(t, "fs", cfg.Storage.Driver)
	assert.Equal(t, filepath.Join(base, "media"), cfg.Storage.Root)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_Precedence(t *testing.T) {
	home := isolate(t)

	envFile := filepath.Join(home, "test.env")
	content := "# comment\nSERVER_PORT=7000\nLOG_LEVEL=\"debug\"\nACCESS_TOKEN_DURATION=2h\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	// Environment beats the file.
	t.Setenv("LOG_LEVEL", "warn")

	// Flags beat everything.
	cfg, err := Load([]string{"-env-file", envFile, "-port", "9000"})
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logger.Level)
	assert.Equal(t, 2*time.Hour, cfg.Auth.AccessTokenDuration)
}

func TestLoad_EnvFileFillsEmptyVariables(t *testing.T) {
	home := isolate(t)

	envFile := filepath.Join(home, "empty.env")
	require.NoError(t, os.WriteFile(envFile, []byte("ACCESS_TOKEN_DURATION=90m\nLOGIN_RATE_BURST=7\n"), 0o600))
	t.Setenv("ACCESS_TOKEN_DURATION", "")
	t.Setenv("LOGIN_RATE_BURST", "3")

	cfg, err := Load([]string{"-env-file", envFile})
	require.NoError(t, err)

	assert.Equal(t, 90*time.Minute, cfg.Auth.AccessTokenDuration, "exported but empty")
	assert.Equal(t, 3, cfg.RateLimit.LoginBurst, "non-empty environment wins")
}

func TestLoad_S3AndCORS(t *testing.T) {
	home := isolate(t)
	t.Setenv("BLOB_DRIVER", "s3")
	t.Setenv("BLOB_S3_BUCKET", "recipes")
	t.Setenv("BLOB_S3_PATH_STYLE", "YES")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := Load([]string{"-env-file", filepath.Join(home, "none.env")})
	require.NoError(t, err)

	assert.Equal(t, "recipes", cfg.Storage.S3Bucket)
	assert.True(t, cfg.Storage.S3PathStyle)
	assert.Equal(t, "us-east-1", cfg.Storage.S3Region)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_InvalidDuration(t *testing.T) {
	home := isolate(t)
	t.Setenv("ACCESS_TOKEN_DURATION", "forever")

	_, err := Load([]string{"-env-file", filepath.Join(home, "none.env")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ACCESS_TOKEN_DURATION")
}

func TestLoad_PostgresKeepsDSN(t *testing.T) {
	home := isolate(t)
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "postgres://u:p@localhost:5432/recipebox")

	cfg, err := Load([]string{"-env-file", filepath.Join(home, "none.env")})
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@localhost:5432/recipebox", cfg.Database.DSN)
}

func TestLoadEnvFile_InvalidLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.env")
	require.NoError(t, os.WriteFile(path, []byte("NOEQUALS\n"), 0o600))

	err := loadEnvFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestExpandPath(t *testing.T) {
	home := isolate(t)

	got, err := expandPath("", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/default", got)

	got, err = expandPath("~/recipes", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "recipes"), got)

	got, err = expandPath("relative", "")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
}

func TestGetIntConfigValue(t *testing.T) {
	t.Setenv("RB_TEST_INT", "abc")
	assert.Equal(t, 7, getIntConfigValue("", "RB_TEST_INT", 7))
	assert.Equal(t, 3, getIntConfigValue("3", "RB_TEST_INT", 7))
}
