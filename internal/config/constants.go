package config

import "time"

// Environment variable names.
const (
	EnvDatabasePath     = "DATABASE_PATH"
	EnvSpaceURL         = "BACKLOG_SPACE_URL"
	EnvBacklogAPIKey    = "BACKLOG_API_KEY"
	EnvGeminiAPIKey     = "GEMINI_API_KEY"
	EnvGeminiModel      = "GEMINI_MODEL"
	EnvDefaultProjectID = "DEFAULT_PROJECT_ID"
	EnvTimeZone         = "TIME_ZONE"
	EnvExportDir        = "EXPORT_DIR"
	EnvCSVPrefix        = "CSV_PREFIX"
	EnvHTTPTimeout      = "HTTP_TIMEOUT"
	EnvLogLevel         = "LOG_LEVEL"
	EnvLogFile          = "LOG_FILE"
	EnvNotifications    = "NOTIFICATIONS_ENABLED"
	EnvGitRemoteName    = "GIT_REMOTE_NAME"
	EnvRepoName         = "BACKLOG_REPO_NAME"
)

// Default values
const (
	defaultGeminiModel   = "gemini-2.0-flash"
	defaultCSVPrefix     = "backlog_daily"
	defaultHTTPTimeout   = 30 * time.Second
	defaultLogLevel      = "info"
	defaultGitRemoteName = "origin"
	appDirName           = "bwd"
)
