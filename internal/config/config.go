package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Blob backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendGCS    = "gcs"
	BackendMemory = "memory"
)

// DefaultBlobKey is the name the ledger blob is stored under.
const DefaultBlobKey = "sms_expenses"

var validBackends = []string{BackendFile, BackendSQLite, BackendGCS, BackendMemory}

// Config is the process configuration shared by the api and cli commands.
type Config struct {
	// HTTP server
	Port string

	// Logging
	LogLevel  string
	LogFormat string

	// Persistence
	BlobBackend        string
	BlobKey            string
	DataDir            string
	SQLiteDBPath       string
	GCSBucket          string
	GCSPrefix          string
	GCSCredentialsFile string

	// Extraction
	GeminiAPIKey string
	GeminiModel  string
}

// Load reads configuration from the environment. Variables from a .env file
// in the working directory are loaded first without overriding ones already set.
func Load() *Config {
	// A missing .env file is normal outside local development
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", "./data")

	return &Config{
		Port: getEnv("PORT", "8080"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		BlobBackend:        strings.ToLower(getEnv("BLOB_BACKEND", BackendFile)),
		BlobKey:            getEnv("BLOB_KEY", DefaultBlobKey),
		DataDir:            dataDir,
		SQLiteDBPath:       getEnv("SQLITE_DB_PATH", filepath.Join(dataDir, "smsspend.db")),
		GCSBucket:          getEnv("GCS_BUCKET", ""),
		GCSPrefix:          getEnv("GCS_PREFIX", ""),
		GCSCredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),

		GeminiAPIKey: firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY", "API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", ""),
	}
}

// Validate validates the configuration and returns an error listing every problem.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !contains(validBackends, c.BlobBackend) {
		problems = append(problems, fmt.Sprintf("invalid blob backend '%s': must be one of %v", c.BlobBackend, validBackends))
	}

	if strings.TrimSpace(c.BlobKey) == "" || strings.ContainsAny(c.BlobKey, `/\`) {
		problems = append(problems, fmt.Sprintf("invalid blob key '%s': must be a non-empty name without path separators", c.BlobKey))
	}

	switch c.BlobBackend {
	case BackendFile:
		if c.DataDir == "" {
			problems = append(problems, "data directory cannot be empty when using file backend")
		}
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			problems = append(problems, "SQLite database path cannot be empty when using sqlite backend")
		}
	case BackendGCS:
		if c.GCSBucket == "" {
			problems = append(problems, "GCS_BUCKET is required when using gcs backend")
		}
	}

	if len(problems) > 0 {
		return errors.New("configuration validation failed:\n  - " + strings.Join(problems, "\n  - "))
	}
	return nil
}

// ExtractionEnabled reports whether an API key for the model is configured.
func (c *Config) ExtractionEnabled() bool {
	return c.GeminiAPIKey != ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := getEnv(k, ""); v != "" {
			return v
		}
	}
	return ""
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
