package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	TablePrefix string
	DatabaseURL string // empty = in-memory store
	CORSOrigins string
	// Debug flags
	Debug bool
	// Optional log file sink
	LogDir      string
	LogMaxFiles int
	// Blob storage
	StorageBackend string // local | s3
	UploadDir      string
	S3             S3Config
	// External activity log
	Activity ActivityConfig
	// Auth is disabled when AuthJWKSURL is empty
	AuthJWKSURL string
	// Live updates
	SSEKeepAlive time.Duration
	// Public app information and upload rules
	App    AppInfo
	Upload UploadPolicy
}

// S3Config configures the S3-compatible storage backend
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string // custom endpoint (MinIO, R2, ...)
	AccessKeyID     string
	SecretAccessKey string
	ForcePathStyle  bool
}

// ActivityConfig configures the external activity log function
type ActivityConfig struct {
	FunctionURL string
	FunctionKey string
	Enabled     bool
}

// AppInfo is reported by the public config endpoint
type AppInfo struct {
	Name       string `yaml:"name"`
	APIVersion string `yaml:"apiVersion"`
}

// Load builds the configuration from defaults, the optional settings file
// named by APP_SETTINGS_FILE, and environment variables, in that order.
func Load() (*Config, error) {
	env := getEnv("ENVIRONMENT", "dev")

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    env,
		TablePrefix:    getTablePrefix(env),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		CORSOrigins:    getEnv("CORS_ORIGINS", "http://localhost:3000"),
		Debug:          getEnv("DEBUG", getDefaultDebug(env)) == "true",
		LogDir:         getEnv("LOG_DIR", ""),
		LogMaxFiles:    getEnvInt("LOG_MAX_FILES", 10),
		StorageBackend: getEnv("STORAGE_BACKEND", "local"),
		UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),
		S3: S3Config{
			Bucket:          getEnv("S3_BUCKET", ""),
			Region:          getEnv("S3_REGION", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			ForcePathStyle:  getEnv("S3_FORCE_PATH_STYLE", "false") == "true",
		},
		Activity: ActivityConfig{
			FunctionURL: strings.TrimRight(getEnv("ACTIVITY_FUNCTION_URL", ""), "/"),
			FunctionKey: getEnv("ACTIVITY_FUNCTION_KEY", ""),
			Enabled:     true,
		},
		AuthJWKSURL:  getEnv("AUTH_JWKS_URL", ""),
		SSEKeepAlive: time.Duration(getEnvInt("SSE_KEEPALIVE_SECONDS", 10)) * time.Second,
		App: AppInfo{
			Name:       "cloudfiles",
			APIVersion: "1.0.0",
		},
		Upload: DefaultUploadPolicy(),
	}

	if path := os.Getenv("APP_SETTINGS_FILE"); path != "" {
		settings, err := LoadSettings(path)
		if err != nil {
			return nil, err
		}
		settings.apply(cfg)
	}

	if err := applyUploadEnv(cfg); err != nil {
		return nil, err
	}
	if v := os.Getenv("FEATURE_LOGGING_ENABLED"); v != "" {
		cfg.Activity.Enabled = v == "true"
	}

	return cfg, nil
}

// ActivityLogEnabled reports whether activity records are sent anywhere
func (c *Config) ActivityLogEnabled() bool {
	return c.Activity.Enabled && c.Activity.FunctionURL != ""
}

func applyUploadEnv(cfg *Config) error {
	if v := os.Getenv("UPLOAD_MAX_FILE_SIZE_MB"); v != "" {
		mb, err := strconv.ParseInt(v, 10, 64)
		if err != nil || mb <= 0 {
			return fmt.Errorf("UPLOAD_MAX_FILE_SIZE_MB must be a positive integer, got %q", v)
		}
		cfg.Upload.MaxFileSizeMB = mb
	}
	if v := os.Getenv("UPLOAD_ALLOWED_EXTENSIONS"); v != "" {
		cfg.Upload.AllowedExtensions = ParseExtensions(v)
	}
	if v := os.Getenv("FEATURE_FILE_VALIDATION_ENABLED"); v != "" {
		cfg.Upload.ValidationEnabled = v == "true"
	}
	return nil
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
