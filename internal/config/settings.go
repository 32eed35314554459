package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Settings is the server-side configuration read from the settings file.
type Settings struct {
	// ComponentDatabasePath is where the component cache persists.
	ComponentDatabasePath string `toml:"component_database_path"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	// WatchDebounceMS is the local log-watcher debounce in milliseconds.
	WatchDebounceMS int `toml:"watch_debounce_ms"`
}

// DefaultSettings returns the settings used when no file exists.
// The component database lives under ~/.texd.
func DefaultSettings() Settings {
	dir := DefaultDir()
	return Settings{
		ComponentDatabasePath: filepath.Join(dir, "components.json"),
		LogLevel:              "info",
		WatchDebounceMS:       250,
	}
}

// DefaultDir returns the server's data directory (~/.texd).
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".texd"
	}
	return filepath.Join(home, ".texd")
}

// LoadSettings reads the TOML settings file, filling unset fields with
// defaults. A missing file is not an error; a malformed one is.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &settings); err != nil {
		return DefaultSettings(), fmt.Errorf("parse settings %s: %w", path, err)
	}

	if settings.ComponentDatabasePath == "" {
		settings.ComponentDatabasePath = DefaultSettings().ComponentDatabasePath
	}
	if settings.LogLevel == "" {
		settings.LogLevel = "info"
	}
	if settings.WatchDebounceMS <= 0 {
		settings.WatchDebounceMS = 250
	}

	return settings, nil
}
