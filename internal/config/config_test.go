package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "local", cfg.Upstream.Mode)
	assert.Equal(t, 60, cfg.Editor.SessionTTLMinutes)
	assert.Equal(t, 25, cfg.Editor.MaxUploadSizeMB)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, 5, cfg.Scheduler.SweepIntervalMinutes)
	assert.Equal(t, "03:00", cfg.Scheduler.FullReindexTime)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadConfigMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/portal_config.yaml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Editor.SessionTTLMinutes, cfg.Editor.SessionTTLMinutes)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
editor:
  session_ttl_minutes: 15
  max_upload_size_mb: 5
upstream:
  mode: remote
  base_url: https://listings.example.com
  max_retries: 5
scheduler:
  enabled: false
rate_limit:
  requests_per_minute: 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 15, cfg.Editor.SessionTTLMinutes)
	assert.Equal(t, 5, cfg.Editor.MaxUploadSizeMB)
	assert.Equal(t, "remote", cfg.Upstream.Mode)
	assert.Equal(t, "https://listings.example.com", cfg.Upstream.BaseURL)
	assert.Equal(t, 5, cfg.Upstream.MaxRetries)
	assert.False(t, cfg.Scheduler.Enabled)
	assert.Equal(t, 10, cfg.RateLimit.RequestsPerMinute)

	// Untouched keys keep their defaults
	assert.Equal(t, "local", DefaultConfig().Upstream.Mode)
	assert.Equal(t, 5, cfg.Scheduler.SweepIntervalMinutes)
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("editor: [not a map"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestDurationHelpers(t *testing.T) {
	editor := EditorConfig{SessionTTLMinutes: 30, MaxUploadSizeMB: 2}
	assert.Equal(t, 30*time.Minute, editor.SessionTTL())
	assert.Equal(t, int64(2<<20), editor.MaxUploadSize())

	// Zero and negative values fall back to safe defaults
	zero := EditorConfig{}
	assert.Equal(t, 60*time.Minute, zero.SessionTTL())
	assert.Equal(t, int64(25<<20), zero.MaxUploadSize())
}
