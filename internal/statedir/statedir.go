// Package statedir provides constants and utilities for the ~/.taskboard directory structure.
package statedir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// Dir is the name of the taskboard state directory.
	Dir = ".taskboard"

	// ConfigFile is the config file name, both in the state directory and
	// in a project root.
	ConfigFile = "taskboard.toml"

	// DataDir holds one <key>.json file per key for the file backend.
	DataDir = "data"

	// SQLiteFile is the database used by the sqlite backend.
	SQLiteFile = "taskboard.db"

	// BoltFile is the database used by the bolt backend.
	BoltFile = "taskboard.bolt"

	// LogsDir holds per-run TUI logs.
	LogsDir = "logs"
)

// Home returns the state directory inside the user's home directory.
func Home() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, Dir), nil
}

// ConfigPath returns the config file path within a state directory.
func ConfigPath(base string) string {
	return filepath.Join(base, ConfigFile)
}

// LogsPath returns the log directory within a state directory.
func LogsPath(base string) string {
	return filepath.Join(base, LogsDir)
}

// StoragePath returns the default storage location for backend within a
// state directory. The memory backend has no location.
func StoragePath(base, backend string) string {
	switch backend {
	case "sqlite":
		return filepath.Join(base, SQLiteFile)
	case "bolt":
		return filepath.Join(base, BoltFile)
	case "memory":
		return ""
	default:
		return filepath.Join(base, DataDir)
	}
}
