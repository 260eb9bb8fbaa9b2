package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openBackends(t *testing.T) map[string]KV {
	t.Helper()
	dir := t.TempDir()

	file, err := OpenFile(filepath.Join(dir, "files"))
	require.NoError(t, err)
	sqlite, err := OpenSQLite(filepath.Join(dir, "db", "taskboard.db"))
	require.NoError(t, err)
	bolt, err := OpenBolt(filepath.Join(dir, "bolt", "taskboard.bolt"))
	require.NoError(t, err)

	backends := map[string]KV{
		BackendFile:   file,
		BackendSQLite: sqlite,
		BackendBolt:   bolt,
		BackendMemory: NewMemory(0),
	}
	t.Cleanup(func() {
		for _, kv := range backends {
			_ = kv.Close()
		}
	})
	return backends
}

func TestKVContract(t *testing.T) {
	ctx := context.Background()
	for name, kv := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := kv.Get(ctx, "todos")
			require.NoError(t, err)
			assert.False(t, ok, "missing key should report ok=false")

			require.NoError(t, kv.Set(ctx, "todos", `[{"id":"a"}]`))
			value, ok, err := kv.Get(ctx, "todos")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `[{"id":"a"}]`, value)

			require.NoError(t, kv.Set(ctx, "todos", `[]`))
			value, _, err = kv.Get(ctx, "todos")
			require.NoError(t, err)
			assert.Equal(t, `[]`, value, "Set should replace the previous value")

			require.NoError(t, kv.Set(ctx, "settings", `{}`))
			keys, err := kv.Keys(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"settings", "todos"}, keys)

			require.NoError(t, kv.Delete(ctx, "settings"))
			require.NoError(t, kv.Delete(ctx, "settings"), "deleting a missing key is not an error")
			keys, err = kv.Keys(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"todos"}, keys)
		})
	}
}

func TestKVRejectsInvalidKeys(t *testing.T) {
	ctx := context.Background()
	for name, kv := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"", "../escape", "a/b", "spaced key", ".."} {
				err := kv.Set(ctx, key, "x")
				assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
				_, _, err = kv.Get(ctx, key)
				assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
			}
		})
	}
}

func TestKVHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for name, kv := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, kv.Set(ctx, "todos", "[]"), context.Canceled)
			_, _, err := kv.Get(ctx, "todos")
			assert.ErrorIs(t, err, context.Canceled)
		})
	}
}

func TestMemoryQuota(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(16)

	require.NoError(t, m.Set(ctx, "todos", "0123456789"))
	// Replacing a value only counts the new size.
	require.NoError(t, m.Set(ctx, "todos", "abcdefghij"))

	err := m.Set(ctx, "todos", "this value is far too long")
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	value, ok, err := m.Get(ctx, "todos")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abcdefghij", value, "a rejected write must not change the stored value")
}

func TestMemoryClosed(t *testing.T) {
	m := NewMemory(0)
	require.NoError(t, m.Close())
	assert.ErrorIs(t, m.Set(context.Background(), "todos", "[]"), ErrNotConfigured)
}

func TestFileSetLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	f, err := OpenFile(dir)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, f.Set(ctx, "todos", "[]"))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "todos.json", entries[0].Name())
}

func TestFileGetReadsExistingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "todos.json"), []byte("[1]"), 0644))

	f, err := OpenFile(dir)
	require.NoError(t, err)
	value, ok, err := f.Get(context.Background(), "todos")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[1]", value)
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "taskboard.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "todos", `["persisted"]`))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()
	value, ok, err := s.Get(ctx, "todos")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `["persisted"]`, value)
}

func TestBoltPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "taskboard.bolt")

	b, err := OpenBolt(path)
	require.NoError(t, err)
	require.NoError(t, b.Set(ctx, "todos", `["persisted"]`))
	require.NoError(t, b.Close())

	b, err = OpenBolt(path)
	require.NoError(t, err)
	defer b.Close()
	value, ok, err := b.Get(ctx, "todos")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `["persisted"]`, value)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		backend string
		path    string
		wantErr error
	}{
		{"", filepath.Join(dir, "default"), nil},
		{"file", filepath.Join(dir, "files"), nil},
		{"SQLite", filepath.Join(dir, "a.db"), nil},
		{"bbolt", filepath.Join(dir, "a.bolt"), nil},
		{"memory", "", nil},
		{"postgres", dir, ErrUnknownBackend},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			kv, err := Open(tt.backend, tt.path)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, kv.Close())
		})
	}
}

func TestOpenRequiresPath(t *testing.T) {
	for _, backend := range []string{BackendFile, BackendSQLite, BackendBolt} {
		_, err := Open(backend, " ")
		assert.Error(t, err, backend)
	}
}
