// Package config contains everything related to configuration
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	DatabasePath  string `validate:"required"`
	SpaceURL      string `validate:"omitempty,url"`
	BacklogAPIKey string
	GeminiAPIKey  string
	GeminiModel   string `validate:"required"`

	// DefaultProjectID narrows report fetches when set.
	DefaultProjectID *int64

	TimeZone string
	Location *time.Location `validate:"required"`

	ExportDir   string
	CSVPrefix   string        `validate:"required,excludesall=/"`
	HTTPTimeout time.Duration `validate:"gt=0"`

	LogLevel string `validate:"oneof=debug info warn warning error"`
	LogFile  string

	NotificationsEnabled bool

	GitRemoteName string `validate:"required"`
	RepoName      string
}

// Load reads configuration from .env files and environment variables.
// Missing service credentials are not an error here; the clients report
// them when they are first used.
func Load() (*Config, error) {
	envPaths := getEnvPaths()
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	cfg := &Config{
		DatabasePath:         getEnvString(EnvDatabasePath, getDefaultDatabasePath()),
		SpaceURL:             strings.TrimRight(getEnvString(EnvSpaceURL, ""), "/"),
		BacklogAPIKey:        getEnvString(EnvBacklogAPIKey, ""),
		GeminiAPIKey:         getEnvString(EnvGeminiAPIKey, ""),
		GeminiModel:          getEnvString(EnvGeminiModel, defaultGeminiModel),
		TimeZone:             getEnvString(EnvTimeZone, "Local"),
		ExportDir:            getEnvString(EnvExportDir, getDefaultExportDir()),
		CSVPrefix:            getEnvString(EnvCSVPrefix, defaultCSVPrefix),
		HTTPTimeout:          getEnvDuration(EnvHTTPTimeout, defaultHTTPTimeout),
		LogLevel:             strings.ToLower(getEnvString(EnvLogLevel, defaultLogLevel)),
		LogFile:              getEnvString(EnvLogFile, ""),
		NotificationsEnabled: getEnvBool(EnvNotifications, true),
		GitRemoteName:        getEnvString(EnvGitRemoteName, defaultGitRemoteName),
		RepoName:             getEnvString(EnvRepoName, ""),
	}

	if raw := os.Getenv(EnvDefaultProjectID); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", EnvDefaultProjectID, raw, err)
		}
		cfg.DefaultProjectID = &id
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", EnvTimeZone, cfg.TimeZone, err)
	}
	cfg.Location = loc

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the struct tags on Config.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// TrackerConfigured reports whether the issue tracker can be reached.
func (c *Config) TrackerConfigured() bool {
	return c.SpaceURL != "" && c.BacklogAPIKey != ""
}

// GeneratorConfigured reports whether the text generation service can be reached.
func (c *Config) GeneratorConfigured() bool {
	return c.GeminiAPIKey != ""
}

// MissingCredentials lists the environment variables that still need a value
// before every feature is usable.
func (c *Config) MissingCredentials() []string {
	var missing []string
	if c.SpaceURL == "" {
		missing = append(missing, EnvSpaceURL)
	}
	if c.BacklogAPIKey == "" {
		missing = append(missing, EnvBacklogAPIKey)
	}
	if c.GeminiAPIKey == "" {
		missing = append(missing, EnvGeminiAPIKey)
	}
	return missing
}

// SpaceID extracts the space identifier from SpaceURL,
// e.g. "https://acme.backlog.com" -> "acme".
func (c *Config) SpaceID() string {
	id := strings.TrimPrefix(c.SpaceURL, "https://")
	id = strings.TrimPrefix(id, "http://")
	if i := strings.IndexByte(id, '.'); i >= 0 {
		id = id[:i]
	}
	return id
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", appDirName, ".env"),
			filepath.Join(home, "."+appDirName, ".env"),
		)
	}

	// Parent directories (useful for development)
	if cwd, err := os.Getwd(); err == nil {
		parent := filepath.Dir(cwd)
		paths = append(paths, filepath.Join(parent, ".env"))
		grandparent := filepath.Dir(parent)
		paths = append(paths, filepath.Join(grandparent, ".env"))
	}

	return paths
}

// getDefaultDatabasePath returns the default path for the SQLite database.
func getDefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "workflow.db"
	}
	return filepath.Join(home, ".config", appDirName, "workflow.db")
}

// getDefaultExportDir returns the directory CSV exports are written to.
func getDefaultExportDir() string {
	if cwd, err := os.Getwd(); err == nil {
		return cwd
	}
	return "."
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns the default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
