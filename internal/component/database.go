// Package component maintains the persisted cache of metadata about the
// packages and classes a project references. A single background worker
// owns the cache; everything else either enqueues scan requests or reads
// immutable snapshots.
package component

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Component is the metadata recorded for one package or class file.
type Component struct {
	// Name is the component file name, e.g. "amsmath.sty".
	Name string `json:"name"`

	// References are other components this one loads.
	References []string `json:"references,omitempty"`

	// Commands are the command names the component defines.
	Commands []string `json:"commands,omitempty"`

	// Environments are the environment names the component defines.
	Environments []string `json:"environments,omitempty"`
}

// Database is an immutable snapshot of the component cache.
type Database struct {
	Components []Component `json:"components"`
}

// Find returns the component with the given name.
func (db Database) Find(name string) (Component, bool) {
	for _, c := range db.Components {
		if c.Name == name {
			return c, true
		}
	}
	return Component{}, false
}

// LoadDatabase reads a persisted database from path.
// A missing or corrupt file yields an empty database and the underlying
// error so the caller can log it; it is never fatal.
func LoadDatabase(path string) (Database, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Database{}, err
	}

	var db Database
	if err := json.Unmarshal(data, &db); err != nil {
		return Database{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return db, nil
}

// SaveDatabase writes the database to path via a temp-file rename so a
// crash mid-write never corrupts the previous cache.
func SaveDatabase(path string, db Database) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	data, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
