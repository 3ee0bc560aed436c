// Package config loads server configuration from flags, environment variables and a .env file.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Metadata  MetadataConfig
	Server    ServerConfig
	Auth      AuthConfig
	Database  DatabaseConfig
	Storage   StorageConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// MetadataConfig holds the data directory. The auth key, the default
// SQLite database and the default media root live under it.
type MetadataConfig struct {
	BasePath string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string        // default 8000
	ReadTimeout    time.Duration // default 15s
	WriteTimeout   time.Duration // default 30s
	IdleTimeout    time.Duration // default 60s
	MaxUploadBytes int64         // default 10 MiB
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	AccessTokenDuration time.Duration // default 24h
}

// DatabaseConfig selects the persistence backend.
type DatabaseConfig struct {
	Driver string // sqlite|postgres
	// DSN is a file path for sqlite (default {metadata}/recipebox.db)
	// or a connection string for postgres.
	DSN string
}

// StorageConfig selects where recipe images are kept.
type StorageConfig struct {
	Driver string // fs|s3|memory
	Root   string // fs root, default {metadata}/media

	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3PathStyle       bool
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// RateLimitConfig bounds login attempts per client IP.
type RateLimitConfig struct {
	LoginPerMinute int
	LoginBurst     int
}

// CORSConfig holds allowed browser origins.
type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads configuration with precedence:
// 1. Command-line flags in args (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("recipebox", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	metadataPath := fs.String("metadata-path", "", "Base path for server data")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	serverPort := fs.String("port", "", "Server port (default: 8000)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 30s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	maxUpload := fs.String("max-upload-bytes", "", "Largest accepted image upload (default: 10485760)")

	accessTokenDuration := fs.String("access-token-duration", "", "Access token lifetime (default: 24h)")

	dbDriver := fs.String("db-driver", "", "Database driver: sqlite or postgres")
	dbDSN := fs.String("db-dsn", "", "Database file path or connection string")

	blobDriver := fs.String("blob-driver", "", "Image storage driver: fs, s3 or memory")
	blobRoot := fs.String("blob-root", "", "Image directory for the fs driver")

	corsOrigins := fs.String("cors-origins", "", "Comma-separated allowed origins")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Missing .env files are fine.
	if err := loadEnvFile(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", *envFile, err)
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Metadata: MetadataConfig{
			BasePath: getConfigValue(*metadataPath, "METADATA_PATH", ""),
		},
		Server: ServerConfig{
			Port:           getConfigValue(*serverPort, "SERVER_PORT", "8000"),
			MaxUploadBytes: int64(getIntConfigValue(*maxUpload, "MAX_UPLOAD_BYTES", 10<<20)),
		},
		Database: DatabaseConfig{
			Driver: getConfigValue(*dbDriver, "DB_DRIVER", "sqlite"),
			DSN:    getConfigValue(*dbDSN, "DB_DSN", ""),
		},
		Storage: StorageConfig{
			Driver:            getConfigValue(*blobDriver, "BLOB_DRIVER", "fs"),
			Root:              getConfigValue(*blobRoot, "BLOB_FS_ROOT", ""),
			S3Bucket:          getConfigValue("", "BLOB_S3_BUCKET", ""),
			S3Region:          getConfigValue("", "BLOB_S3_REGION", "us-east-1"),
			S3Endpoint:        getConfigValue("", "BLOB_S3_ENDPOINT", ""),
			S3PathStyle:       getBoolConfigValue("", "BLOB_S3_PATH_STYLE", false),
			S3AccessKeyID:     getConfigValue("", "BLOB_S3_ACCESS_KEY_ID", ""),
			S3SecretAccessKey: getConfigValue("", "BLOB_S3_SECRET_ACCESS_KEY", ""),
		},
		RateLimit: RateLimitConfig{
			LoginPerMinute: getIntConfigValue("", "LOGIN_RATE_PER_MINUTE", 10),
			LoginBurst:     getIntConfigValue("", "LOGIN_RATE_BURST", 5),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getConfigValue(*corsOrigins, "CORS_ALLOWED_ORIGINS", "*")),
		},
	}

	durations := []struct {
		dst          *time.Duration
		flag, envKey string
		def          string
	}{
		{&cfg.Server.ReadTimeout, *readTimeout, "SERVER_READ_TIMEOUT", "15s"},
		{&cfg.Server.WriteTimeout, *writeTimeout, "SERVER_WRITE_TIMEOUT", "30s"},
		{&cfg.Server.IdleTimeout, *idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"},
		{&cfg.Auth.AccessTokenDuration, *accessTokenDuration, "ACCESS_TOKEN_DURATION", "24h"},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flag, d.envKey, d.def)
		v, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.envKey, raw, err)
		}
		*d.dst = v
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Metadata.BasePath == "" {
		return errors.New("metadata base path cannot be empty after expansion")
	}

	switch c.Database.Driver {
	case "sqlite":
	case "postgres":
		if c.Database.DSN == "" {
			return errors.New("DB_DSN is required for the postgres driver")
		}
	default:
		return fmt.Errorf("invalid database driver: %q (must be sqlite or postgres)", c.Database.Driver)
	}

	switch c.Storage.Driver {
	case "fs", "memory":
	case "s3":
		if c.Storage.S3Bucket == "" {
			return errors.New("BLOB_S3_BUCKET is required for the s3 driver")
		}
	default:
		return fmt.Errorf("invalid blob driver: %q (must be fs, s3, or memory)", c.Storage.Driver)
	}

	if c.Auth.AccessTokenDuration <= 0 {
		return errors.New("access token duration must be positive")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return errors.New("max upload bytes must be positive")
	}
	if c.RateLimit.LoginPerMinute <= 0 || c.RateLimit.LoginBurst <= 0 {
		return errors.New("login rate limit must be positive")
	}

	return nil
}

// expandPaths resolves the metadata directory and the paths derived from it.
func (c *Config) expandPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	if c.Metadata.BasePath, err = expandPath(c.Metadata.BasePath, filepath.Join(homeDir, "RecipeBox", "metadata")); err != nil {
		return fmt.Errorf("invalid metadata path: %w", err)
	}

	if c.Database.Driver == "sqlite" {
		if c.Database.DSN, err = expandPath(c.Database.DSN, filepath.Join(c.Metadata.BasePath, "recipebox.db")); err != nil {
			return fmt.Errorf("invalid database path: %w", err)
		}
	}

	if c.Storage.Root, err = expandPath(c.Storage.Root, filepath.Join(c.Metadata.BasePath, "media")); err != nil {
		return fmt.Errorf("invalid blob root: %w", err)
	}
	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	return absPath, nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue accepts "true", "1" and "yes" (case-insensitive) as true.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	v := getConfigValue(flagValue, envKey, "")
	if v == "" {
		return defaultValue
	}
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// getIntConfigValue returns an int from flag, env var, or default.
// Unparseable values fall back to the default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	v := getConfigValue(flagValue, envKey, "")
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads KEY=value lines from path. Variables already present
// in the environment win over the file.
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- path comes from the operator
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Empty variables count as unset, matching getConfigValue.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}
