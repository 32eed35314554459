package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSettings_MissingFile(t *testing.T) {
	settings, err := LoadSettings(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if settings.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", settings.LogLevel)
	}
	if settings.WatchDebounceMS != 250 {
		t.Errorf("WatchDebounceMS = %d, want 250", settings.WatchDebounceMS)
	}
	if settings.ComponentDatabasePath == "" {
		t.Error("ComponentDatabasePath is empty")
	}
}

func TestLoadSettings_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("log_level = \"debug\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	settings, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if settings.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", settings.LogLevel)
	}
	if settings.WatchDebounceMS != 250 {
		t.Errorf("WatchDebounceMS = %d, want default 250", settings.WatchDebounceMS)
	}
}

func TestLoadSettings_FullFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `component_database_path = "/var/cache/texd/components.json"
log_level = "warn"
watch_debounce_ms = 500
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	settings, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if settings.ComponentDatabasePath != "/var/cache/texd/components.json" {
		t.Errorf("ComponentDatabasePath = %q", settings.ComponentDatabasePath)
	}
	if settings.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", settings.LogLevel)
	}
	if settings.WatchDebounceMS != 500 {
		t.Errorf("WatchDebounceMS = %d, want 500", settings.WatchDebounceMS)
	}
}

func TestLoadSettings_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("log_level = [broken\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadSettings(path); err == nil {
		t.Error("LoadSettings = nil error, want parse failure")
	}
}
