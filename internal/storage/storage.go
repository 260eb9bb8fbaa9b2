// Package storage provides the key-value medium tasks are persisted in.
//
// Every backend stores opaque string values under short keys, the way a
// browser's local storage does. Backends:
//
//   - file:   one <key>.json file per key inside a directory
//   - sqlite: a single SQLite database (modernc.org/sqlite, no cgo)
//   - bolt:   a single bbolt database file
//   - memory: an in-process map with an optional byte quota
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidKey is returned for empty keys or keys with characters
	// outside [A-Za-z0-9._-].
	ErrInvalidKey = errors.New("invalid storage key")
	// ErrQuotaExceeded is returned when a write would exceed the backend quota.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	// ErrUnknownBackend is returned by Open for unrecognized backend names.
	ErrUnknownBackend = errors.New("unknown storage backend")
	// ErrNotConfigured is returned when a backend handle is nil or closed.
	ErrNotConfigured = errors.New("storage is not configured")
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
	BackendMemory = "memory"
)

// KV is a string key-value store.
type KV interface {
	// Get returns the value stored under key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys returns every stored key in ascending order.
	Keys(ctx context.Context) ([]string, error)
	// Close releases the backend.
	Close() error
}

// Backends returns the supported backend names.
func Backends() []string {
	return []string{BackendFile, BackendSQLite, BackendBolt, BackendMemory}
}

// NormalizeBackend lowercases a backend name and resolves aliases.
func NormalizeBackend(name string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", BackendFile, "json", "fs":
		return BackendFile, true
	case BackendSQLite, "sqlite3":
		return BackendSQLite, true
	case BackendBolt, "bbolt", "boltdb":
		return BackendBolt, true
	case BackendMemory, "mem":
		return BackendMemory, true
	}
	return name, false
}

// Open opens the named backend at path. path is a directory for the file
// backend and a database file for sqlite and bolt; memory ignores it.
func Open(backend, path string) (KV, error) {
	name, ok := NormalizeBackend(backend)
	if !ok {
		return nil, fmt.Errorf("%w %q (expected %s)", ErrUnknownBackend, backend, strings.Join(Backends(), "|"))
	}
	switch name {
	case BackendSQLite:
		return OpenSQLite(path)
	case BackendBolt:
		return OpenBolt(path)
	case BackendMemory:
		return NewMemory(0), nil
	default:
		return OpenFile(path)
	}
}

// ValidateKey checks that key is usable by every backend.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: key is required", ErrInvalidKey)
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		valid := (c >= 'A' && c <= 'Z') ||
			(c >= 'a' && c <= 'z') ||
			(c >= '0' && c <= '9') ||
			c == '.' || c == '_' || c == '-'
		if !valid {
			return fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	if key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
