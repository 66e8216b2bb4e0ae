package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Store.Backend)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, time.Second, cfg.Timing.SoftRestartDelay.Std())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "backend: file")
	assert.Contains(t, string(content), "soft_restart_delay: 1s")
}

func TestLoadExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlData := `
store:
  backend: sqlite
  sqlite_path: /tmp/p.db
features:
  maps_enabled: true
timing:
  soft_restart_delay: 250ms
`
	require.NoError(t, os.WriteFile(path, []byte(yamlData), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "/tmp/p.db", cfg.Store.SQLitePath)
	assert.True(t, cfg.Features.MapsEnabled)
	assert.Equal(t, 250*time.Millisecond, cfg.Timing.SoftRestartDelay.Std())
	// untouched sections keep their defaults
	assert.Equal(t, "/data/media/0/videos", cfg.Purge.Recordings.TICI)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("SETTINGS_REDIS_HOST", "10.0.0.2")
	t.Setenv("SETTINGS_REDIS_PORT", "6380")
	t.Setenv("SETTINGS_STORE_BACKEND", "memory")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.2", cfg.Redis.Host)
	assert.Equal(t, 6380, cfg.Redis.Port)
	assert.Equal(t, "memory", cfg.Store.Backend)

	// env values are not persisted
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "10.0.0.2")
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"BadBackend", "store:\n  backend: etcd\n"},
		{"BadDuration", "timing:\n  soft_restart_delay: soon\n"},
		{"BadPort", "redis:\n  port: 70000\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0o644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}
