package kv

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
)

// ErrMockWrite is returned by a MemStore configured to fail writes.
var ErrMockWrite = errors.New("kv: write failure configured")

// MemStore is an in-memory Store for tests that never writes to disk.
// It records the key of every successful write.
type MemStore struct {
	mu        sync.Mutex
	data      map[string][]byte
	writes    []string
	failWrite bool
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string][]byte)}
}

// SetFailWrite configures the store to fail all Set and Delete calls.
func (m *MemStore) SetFailWrite(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrite = fail
}

// Writes returns the keys written so far, in order.
func (m *MemStore) Writes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.writes))
	copy(out, m.writes)
	return out
}

// ResetWrites clears the write log.
func (m *MemStore) ResetWrites() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = nil
}

// Raw returns the encoded value stored under key.
func (m *MemStore) Raw(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *MemStore) Get(key string, dest any) (bool, error) {
	m.mu.Lock()
	raw, ok := m.data[key]
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("kv: decode %q: %w", key, err)
	}
	return true, nil
}

func (m *MemStore) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv: encode %q: %w", key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite {
		return ErrMockWrite
	}
	m.data[key] = raw
	m.writes = append(m.writes, key)
	return nil
}

func (m *MemStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite {
		return ErrMockWrite
	}
	delete(m.data, key)
	m.writes = append(m.writes, key)
	return nil
}

// Path returns ":memory:" to indicate this is an in-memory store.
func (m *MemStore) Path() string { return ":memory:" }

// Flush is a no-op for in-memory stores.
func (m *MemStore) Flush() error { return nil }

// Close is a no-op for in-memory stores.
func (m *MemStore) Close() error { return nil }

// Backup writes the content as JSON.
func (m *MemStore) Backup(w io.Writer) (int64, error) {
	m.mu.Lock()
	out := make(map[string]json.RawMessage, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	m.mu.Unlock()
	data, err := json.Marshal(out)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

var _ Store = (*MemStore)(nil)
