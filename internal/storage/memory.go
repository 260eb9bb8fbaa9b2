package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Memory is an in-process KV. A positive quota caps the total number of
// bytes held across all keys and values.
type Memory struct {
	mu     sync.Mutex
	quota  int
	values map[string]string
	closed bool
}

// NewMemory returns an empty in-memory store. quota <= 0 means unlimited.
func NewMemory(quota int) *Memory {
	return &Memory{quota: quota, values: make(map[string]string)}
}

// Get implements KV.
func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if err := ValidateKey(key); err != nil {
		return "", false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return "", false, ErrNotConfigured
	}
	v, ok := m.values[key]
	return v, ok, nil
}

// Set implements KV.
func (m *Memory) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrNotConfigured
	}
	if m.quota > 0 {
		used := m.usageExcluding(key)
		if need := used + len(key) + len(value); need > m.quota {
			return fmt.Errorf("%w: need %d bytes, quota %d", ErrQuotaExceeded, need, m.quota)
		}
	}
	m.values[key] = value
	return nil
}

// Delete implements KV.
func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrNotConfigured
	}
	delete(m.values, key)
	return nil
}

// Keys implements KV.
func (m *Memory) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrNotConfigured
	}
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close implements KV.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *Memory) usageExcluding(key string) int {
	n := 0
	for k, v := range m.values {
		if k == key {
			continue
		}
		n += len(k) + len(v)
	}
	return n
}
