package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folklist.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	def := DefaultConfig()
	if cfg.Listen != def.Listen || cfg.Events != def.Events || cfg.RefreshCron != def.RefreshCron {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, def)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("default config file not written: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "folklist.yaml")

	want := &Config{
		Listen:         "0.0.0.0:8080",
		Events:         "https://example.com/events.yaml",
		RefreshCron:    "*/15 * * * *",
		ReloadToken:    "s3cret",
		CacheDir:       "/tmp/folklist-cache",
		HorizonDays:    90,
		MaxOccurrences: 20,
	}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("file mode = %o, want 0600", perm)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *got != *want {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

func TestNormalizeFillsZeroValues(t *testing.T) {
	cfg := &Config{Listen: "0.0.0.0:9000", HorizonDays: -1}
	cfg.Normalize()

	if cfg.Listen != "0.0.0.0:9000" {
		t.Errorf("Listen overwritten: %q", cfg.Listen)
	}
	def := DefaultConfig()
	if cfg.Events != def.Events || cfg.RefreshCron != def.RefreshCron {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.HorizonDays != def.HorizonDays || cfg.MaxOccurrences != def.MaxOccurrences {
		t.Errorf("numeric defaults not applied: %+v", cfg)
	}
	if cfg.ReloadToken != "" {
		t.Errorf("ReloadToken defaulted to %q, want empty", cfg.ReloadToken)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folklist.yaml")
	if err := Save(path, &Config{Listen: "127.0.0.1:3002", HorizonDays: 365}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	t.Setenv("FOLKLIST_LISTEN", "0.0.0.0:4000")
	t.Setenv("FOLKLIST_HORIZON_DAYS", "30")
	t.Setenv("FOLKLIST_MAX_OCCURRENCES", "not-a-number")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Listen != "0.0.0.0:4000" {
		t.Errorf("Listen = %q, want env override", cfg.Listen)
	}
	if cfg.HorizonDays != 30 {
		t.Errorf("HorizonDays = %d, want 30", cfg.HorizonDays)
	}
	if cfg.MaxOccurrences != DefaultConfig().MaxOccurrences {
		t.Errorf("MaxOccurrences = %d, bad env value should be ignored", cfg.MaxOccurrences)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Error("Load(\"\") did not fail")
	}
	if err := Save("", DefaultConfig()); err == nil {
		t.Error("Save(\"\") did not fail")
	}
}
