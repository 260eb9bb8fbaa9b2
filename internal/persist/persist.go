// Package persist loads and saves the task list under a single storage key.
package persist

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskboard/internal/logging"
	"github.com/nibzard/taskboard/internal/storage"
	"github.com/nibzard/taskboard/internal/todo"
)

// DefaultKey is the storage key the task list lives under.
const DefaultKey = "todos"

// Adapter reads and writes one encoded task list in a KV backend.
type Adapter struct {
	kv     storage.KV
	key    string
	logger *log.Logger
}

// New returns an adapter for key in kv. An empty key selects DefaultKey and
// a nil logger discards output.
func New(kv storage.KV, key string, logger *log.Logger) (*Adapter, error) {
	if kv == nil {
		return nil, storage.ErrNotConfigured
	}
	if key == "" {
		key = DefaultKey
	}
	if err := storage.ValidateKey(key); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Adapter{kv: kv, key: key, logger: logger}, nil
}

// Key returns the storage key.
func (a *Adapter) Key() string {
	return a.key
}

// Load reads the persisted list. The second result reports whether a valid
// payload was found. Missing, unreadable and malformed payloads all yield an
// empty list; the latter two are logged.
func (a *Adapter) Load(ctx context.Context) (todo.List, bool) {
	raw, ok, err := a.kv.Get(ctx, a.key)
	if err != nil {
		a.logger.Warn("could not read saved tasks, starting empty", "key", a.key, "err", err)
		return todo.List{}, false
	}
	if !ok {
		a.logger.Debug("no saved tasks", "key", a.key)
		return todo.List{}, false
	}

	list, err := todo.Decode([]byte(raw))
	if err != nil {
		a.logger.Warn("saved tasks are corrupt, starting empty", "key", a.key, "err", err)
		return todo.List{}, false
	}
	a.logger.Debug("loaded tasks", "key", a.key, "count", list.Len())
	return list, true
}

// Save writes the full list, replacing the previous payload.
func (a *Adapter) Save(ctx context.Context, list todo.List) error {
	data, err := todo.Encode(list)
	if err != nil {
		return err
	}
	if err := a.kv.Set(ctx, a.key, string(data)); err != nil {
		return fmt.Errorf("save %s: %w", a.key, err)
	}
	return nil
}

// Raw returns the stored payload exactly as persisted.
func (a *Adapter) Raw(ctx context.Context) (string, bool, error) {
	raw, ok, err := a.kv.Get(ctx, a.key)
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", a.key, err)
	}
	return raw, ok, nil
}
