package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE_PROVIDER", "")
	t.Chdir(t.TempDir())

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "GOOGLE_APPLICATION_CREDENTIALS", cfg.Storage.CredentialsEnv)
	assert.Equal(t, "./serviceAccountKey.json", cfg.Storage.CredentialsFile)
	assert.Equal(t, "cors.json", cfg.App.CorsFile)
	assert.Equal(t, "none", cfg.Journal.Backend)
	assert.Equal(t, 4, cfg.App.UploadConcurrency)
	assert.False(t, cfg.App.CorsStrict)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORAGE_PROVIDER", "S3")
	t.Setenv("STORAGE_BUCKET", "bizdir-assets")
	t.Setenv("CORS_STRICT", "true")
	t.Setenv("UPLOAD_CONCURRENCY", "9")
	t.Setenv("JOURNAL_BACKEND", "Redis")

	cfg := Load()

	assert.Equal(t, "s3", cfg.Storage.Provider)
	assert.Equal(t, "bizdir-assets", cfg.Storage.Bucket)
	assert.True(t, cfg.App.CorsStrict)
	assert.Equal(t, 9, cfg.App.UploadConcurrency)
	assert.Equal(t, "redis", cfg.Journal.Backend)
}

func TestLoadReturnsFreshConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORAGE_BUCKET", "first")
	first := Load()

	t.Setenv("STORAGE_BUCKET", "second")
	second := Load()

	assert.Equal(t, "first", first.Storage.Bucket)
	assert.Equal(t, "second", second.Storage.Bucket)
}
