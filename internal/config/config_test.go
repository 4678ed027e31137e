// Copyright (c) 2025 Sujith Cherukuri
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.Equal(t, "gemini-1.5-flash", cfg.API.Model)
	require.Equal(t, 15, cfg.API.RequestsPerMinute)
	require.Equal(t, 30, cfg.Reveal.IntervalMs)
	require.Equal(t, 30, cfg.Backup.IntervalSecs)
	require.Equal(t, 24, cfg.Backup.MaxAgeHours)
	require.False(t, cfg.SyncEnabled())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	require.Equal(t, Default().API.Model, cfg.API.Model)
}

func TestLoadOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[api]
key = "abc123"
model = "gemini-1.5-pro"

[reveal]
interval_ms = 50

[sync]
project_id = "demo"
api_key = "sync-key"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "abc123", cfg.API.Key)
	require.Equal(t, "gemini-1.5-pro", cfg.API.Model)
	require.Equal(t, 50, cfg.Reveal.IntervalMs)
	require.True(t, cfg.SyncEnabled())
	require.Equal(t, "demo", cfg.Sync.ProjectID)

	// Untouched sections keep their defaults.
	require.Equal(t, 30, cfg.Backup.IntervalSecs)
}

func TestLoadInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("not [valid toml"), 0600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadFixesPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[api]\nkey = \"k\"\n"), 0644))

	_, err := Load(path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SHIFTAI_API_KEY", "env-key")
	t.Setenv("SHIFTAI_MODEL", "gemini-2.0-flash")
	t.Setenv("SHIFTAI_SYNC_PROJECT", "env-project")
	t.Setenv("SHIFTAI_SYNC_KEY", "env-sync-key")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	require.Equal(t, "env-key", cfg.API.Key)
	require.Equal(t, "gemini-2.0-flash", cfg.API.Model)
	require.True(t, cfg.SyncEnabled())
}

func TestClamp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[api]
requests_per_minute = 9000
timeout_secs = 1

[reveal]
interval_ms = -5

[backup]
interval_secs = 1
max_age_hours = 5000
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 60, cfg.API.RequestsPerMinute)
	require.Equal(t, 5, cfg.API.TimeoutSecs)
	require.Equal(t, 0, cfg.Reveal.IntervalMs)
	require.Equal(t, 5, cfg.Backup.IntervalSecs)
	require.Equal(t, 168, cfg.Backup.MaxAgeHours)
}

func TestDerivedDurations(t *testing.T) {
	cfg := Default()
	require.Equal(t, 30*time.Millisecond, cfg.RevealInterval())
	require.Equal(t, 30*time.Second, cfg.BackupInterval())
	require.Equal(t, 24*time.Hour, cfg.BackupMaxAge())
	require.Equal(t, 30*time.Second, cfg.APITimeout())
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.API.Key = "saved-key"
	cfg.Reveal.IntervalMs = 42
	require.NoError(t, Save(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "saved-key", loaded.API.Key)
	require.Equal(t, 42, loaded.Reveal.IntervalMs)
}

func TestDataDirFallback(t *testing.T) {
	cfg := Default()
	cfg.General.DataDir = "/tmp/custom"
	dir, err := cfg.DataDir()
	require.NoError(t, err)
	require.Equal(t, "/tmp/custom", dir)
}

func TestWatchReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[reveal]\ninterval_ms = 30\n"), 0600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan *Config, 4)
	err := Watch(ctx, path, zerolog.Nop(), func(cfg *Config) {
		updates <- cfg
	})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("[reveal]\ninterval_ms = 80\n"), 0600))

	select {
	case cfg := <-updates:
		require.Equal(t, 80, cfg.Reveal.IntervalMs)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}
