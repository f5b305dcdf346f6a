package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "LOG_LEVEL", "LOG_FORMAT", "BLOB_BACKEND", "BLOB_KEY", "DATA_DIR",
		"SQLITE_DB_PATH", "GCS_BUCKET", "GCS_PREFIX", "GCS_CREDENTIALS_FILE",
		"GEMINI_API_KEY", "GOOGLE_API_KEY", "API_KEY", "GEMINI_MODEL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir()) // no .env here

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, BackendFile, cfg.BlobBackend)
	assert.Equal(t, DefaultBlobKey, cfg.BlobKey)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, filepath.Join("./data", "smsspend.db"), cfg.SQLiteDBPath)
	assert.False(t, cfg.ExtractionEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("BLOB_BACKEND", "GCS")
	t.Setenv("GCS_BUCKET", "my-bucket")
	t.Setenv("API_KEY", "from-api-key")
	t.Setenv("GOOGLE_API_KEY", "from-google")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, BackendGCS, cfg.BlobBackend)
	assert.Equal(t, "my-bucket", cfg.GCSBucket)
	assert.Equal(t, "from-google", cfg.GeminiAPIKey)
	assert.True(t, cfg.ExtractionEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{Port: "8080", BlobBackend: BackendFile, BlobKey: DefaultBlobKey, DataDir: "./data"}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"port not a number", func(c *Config) { c.Port = "http" }, "invalid port"},
		{"port out of range", func(c *Config) { c.Port = "70000" }, "between 1 and 65535"},
		{"unknown backend", func(c *Config) { c.BlobBackend = "s3" }, "invalid blob backend"},
		{"key with slash", func(c *Config) { c.BlobKey = "a/b" }, "invalid blob key"},
		{"gcs without bucket", func(c *Config) { c.BlobBackend = BackendGCS }, "GCS_BUCKET"},
		{"sqlite without path", func(c *Config) { c.BlobBackend = BackendSQLite }, "SQLite database path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	c := &Config{Port: "0", BlobBackend: "nope", BlobKey: ""}
	err := c.Validate()
	require.Error(t, err)
	assert.Equal(t, 3, strings.Count(err.Error(), "\n  - "))
}
