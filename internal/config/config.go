// Copyright (c) 2025 Sujith Cherukuri
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete shift-ai configuration.
type Config struct {
	General GeneralConfig `toml:"general"`
	API     APIConfig     `toml:"api"`
	Reveal  RevealConfig  `toml:"reveal"`
	Backup  BackupConfig  `toml:"backup"`
	Sync    SyncConfig    `toml:"sync"`
}

// GeneralConfig contains paths and general settings.
type GeneralConfig struct {
	// DataDir holds the backup slot, archive database, and log file
	// (empty = ~/.shiftai).
	DataDir string `toml:"data_dir"`
}

// APIConfig contains inference API settings.
type APIConfig struct {
	// Key is the API key (also SHIFTAI_API_KEY).
	Key string `toml:"key"`
	// Endpoint is the API base URL (empty = the hosted default).
	Endpoint string `toml:"endpoint"`
	// Model is the model name used in the request path.
	Model string `toml:"model"`
	// RequestsPerMinute caps outbound inference requests.
	RequestsPerMinute int `toml:"requests_per_minute"`
	// TimeoutSecs is the per-request timeout in seconds.
	TimeoutSecs int `toml:"timeout_secs"`
}

// RevealConfig controls the typewriter reveal.
type RevealConfig struct {
	// IntervalMs is the delay between revealed characters in
	// milliseconds. 0 shows replies instantly.
	IntervalMs int `toml:"interval_ms"`
}

// BackupConfig controls the local durability layer.
type BackupConfig struct {
	// IntervalSecs is how often the session is written to disk.
	IntervalSecs int `toml:"interval_secs"`
	// MaxAgeHours is how long a saved session remains restorable.
	MaxAgeHours int `toml:"max_age_hours"`
}

// SyncConfig contains remote sync settings. Sync stays off until both
// ProjectID and APIKey are set.
type SyncConfig struct {
	ProjectID  string `toml:"project_id"`
	APIKey     string `toml:"api_key"`
	Endpoint   string `toml:"endpoint"`
	Collection string `toml:"collection"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			Model:             "gemini-1.5-flash",
			RequestsPerMinute: 15,
			TimeoutSecs:       30,
		},
		Reveal: RevealConfig{
			IntervalMs: 30,
		},
		Backup: BackupConfig{
			IntervalSecs: 30,
			MaxAgeHours:  24,
		},
	}
}

// =============================================================================
// PATH HELPERS
// =============================================================================

// Dir returns the shift-ai configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".shiftai"), nil
}

// DefaultPath returns the path to the TOML config file.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureDir ensures the configuration directory exists.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// DataDir resolves the data directory, falling back to the config
// directory when unset.
func (c *Config) DataDir() (string, error) {
	if c.General.DataDir != "" {
		return c.General.DataDir, nil
	}
	return Dir()
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// RevealInterval returns the reveal delay as a duration.
func (c *Config) RevealInterval() time.Duration {
	return time.Duration(c.Reveal.IntervalMs) * time.Millisecond
}

// BackupInterval returns the backup cadence as a duration.
func (c *Config) BackupInterval() time.Duration {
	return time.Duration(c.Backup.IntervalSecs) * time.Second
}

// BackupMaxAge returns the restore window as a duration.
func (c *Config) BackupMaxAge() time.Duration {
	return time.Duration(c.Backup.MaxAgeHours) * time.Hour
}

// APITimeout returns the inference request timeout as a duration.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutSecs) * time.Second
}

// SyncEnabled reports whether remote sync credentials are present.
func (c *Config) SyncEnabled() bool {
	return c.Sync.ProjectID != "" && c.Sync.APIKey != ""
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load reads configuration from path, layering it over the defaults.
// A missing file is not an error. Environment overrides are applied
// last, then out-of-range values are clamped.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if err := ensureSecurePermissions(path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
		}
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.clamp()
	return cfg, nil
}

// LoadDefault loads configuration from the default location.
func LoadDefault() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// Save writes the configuration to a TOML file with 0600 permissions.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# shift-ai configuration file")
	fmt.Fprintln(file, "")

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ensureSecurePermissions tightens config files to 0600 so API keys
// stay private.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported variables:
//
//	SHIFTAI_API_KEY       inference API key
//	SHIFTAI_API_ENDPOINT  inference API base URL
//	SHIFTAI_MODEL         model name
//	SHIFTAI_DATA_DIR      data directory
//	SHIFTAI_SYNC_PROJECT  remote sync project id
//	SHIFTAI_SYNC_KEY      remote sync API key
func (c *Config) ApplyEnvOverrides() {
	if key := os.Getenv("SHIFTAI_API_KEY"); key != "" {
		c.API.Key = key
	}
	if endpoint := os.Getenv("SHIFTAI_API_ENDPOINT"); endpoint != "" {
		c.API.Endpoint = endpoint
	}
	if model := os.Getenv("SHIFTAI_MODEL"); model != "" {
		c.API.Model = model
	}
	if dir := os.Getenv("SHIFTAI_DATA_DIR"); dir != "" {
		c.General.DataDir = dir
	}
	if project := os.Getenv("SHIFTAI_SYNC_PROJECT"); project != "" {
		c.Sync.ProjectID = project
	}
	if key := os.Getenv("SHIFTAI_SYNC_KEY"); key != "" {
		c.Sync.APIKey = key
	}
}

// clamp forces tunables into their valid ranges instead of rejecting
// the file.
func (c *Config) clamp() {
	c.Reveal.IntervalMs = clampInt(c.Reveal.IntervalMs, 0, 500)
	c.Backup.IntervalSecs = clampInt(c.Backup.IntervalSecs, 5, 3600)
	c.Backup.MaxAgeHours = clampInt(c.Backup.MaxAgeHours, 1, 168)
	c.API.RequestsPerMinute = clampInt(c.API.RequestsPerMinute, 1, 60)
	c.API.TimeoutSecs = clampInt(c.API.TimeoutSecs, 5, 120)
	if c.API.Model == "" {
		c.API.Model = "gemini-1.5-flash"
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
