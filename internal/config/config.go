// Package config loads the YAML application configuration, with
// environment-variable overrides (optionally from a .env file) for
// deployment settings.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`

	// Events is the source of event records: a YAML file, a directory of
	// YAML files, or an HTTP(S) URL.
	Events string `yaml:"events"`

	// RefreshCron is a cron-style schedule for rebuilding the snapshot,
	// e.g. "@hourly" or "*/30 * * * *".
	RefreshCron string `yaml:"refresh"`

	// ReloadToken authorizes POST /reload. Empty disables the endpoint.
	ReloadToken string `yaml:"reload_token"`

	// CacheDir stores the HTTP fetch cache for URL sources.
	CacheDir string `yaml:"cache_dir"`

	// HorizonDays caps how far past "now" recurring events expand.
	HorizonDays int `yaml:"horizon_days"`

	// MaxOccurrences caps instances per recurrence definition.
	MaxOccurrences int `yaml:"max_occurrences"`
}

// DefaultConfig returns the in-memory defaults.
func DefaultConfig() *Config {
	return &Config{
		Listen:         "127.0.0.1:3002",
		Events:         "events",
		RefreshCron:    "@hourly",
		CacheDir:       "./var/events-cache",
		HorizonDays:    365,
		MaxOccurrences: 100,
	}
}

// Normalize fills missing or zero values with defaults so that partial
// config files still behave.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.Events == "" {
		c.Events = def.Events
	}
	if c.RefreshCron == "" {
		c.RefreshCron = def.RefreshCron
	}
	if c.CacheDir == "" {
		c.CacheDir = def.CacheDir
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = def.HorizonDays
	}
	if c.MaxOccurrences <= 0 {
		c.MaxOccurrences = def.MaxOccurrences
	}
}

// applyEnv overlays FOLKLIST_* environment variables, which win over the
// file. A .env file in the working directory is read first if present.
func (c *Config) applyEnv() {
	_ = godotenv.Load()

	if v := os.Getenv("FOLKLIST_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("FOLKLIST_EVENTS"); v != "" {
		c.Events = v
	}
	if v := os.Getenv("FOLKLIST_REFRESH"); v != "" {
		c.RefreshCron = v
	}
	if v := os.Getenv("FOLKLIST_RELOAD_TOKEN"); v != "" {
		c.ReloadToken = v
	}
	if v := os.Getenv("FOLKLIST_CACHE_DIR"); v != "" {
		c.CacheDir = v
	}
	if v := os.Getenv("FOLKLIST_HORIZON_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.HorizonDays = n
		}
	}
	if v := os.Getenv("FOLKLIST_MAX_OCCURRENCES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxOccurrences = n
		}
	}
}

// Load reads the configuration from the given YAML path. A missing file
// is not an error: defaults (plus environment overrides) are used, and a
// default config file is written for the first run.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			cfg.applyEnv()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	cfg.applyEnv()
	return &cfg, nil
}

// Save writes the configuration atomically (temp file + rename) with
// 0600 permissions, creating the parent directory if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".folklist-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
