package kv

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	jsonFileName  = "state.json"
	debounceDelay = 500 * time.Millisecond
)

// JSONStore keeps every key in a single JSON object on disk.
// Writes are debounced and land atomically (temp file + rename).
type JSONStore struct {
	mu     sync.Mutex
	wmu    sync.Mutex // serializes file writes
	path   string
	data   map[string]json.RawMessage
	timer  *time.Timer
	dirty  bool
	logger *slog.Logger
}

// OpenJSONStore loads dir/state.json. A missing file starts empty; a corrupt
// file is logged and also starts empty.
func OpenJSONStore(dir string, logger *slog.Logger) (*JSONStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &JSONStore{
		path:   filepath.Join(dir, jsonFileName),
		data:   make(map[string]json.RawMessage),
		logger: logger,
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("kv: read %s: %w", s.path, err)
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		logger.Warn("kv: corrupt JSON state, starting empty", "path", s.path, "err", err)
		s.data = make(map[string]json.RawMessage)
	}
	return s, nil
}

// Path returns the file path used by this store.
func (s *JSONStore) Path() string { return s.path }

func (s *JSONStore) Get(key string, dest any) (bool, error) {
	s.mu.Lock()
	raw, ok := s.data[key]
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("kv: decode %q: %w", key, err)
	}
	return true, nil
}

// Set updates the key in memory and schedules a debounced write.
// The write happens after 500ms of no further changes.
func (s *JSONStore) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv: encode %q: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = raw
	s.scheduleLocked()
	return nil
}

func (s *JSONStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return nil
	}
	delete(s.data, key)
	s.scheduleLocked()
	return nil
}

func (s *JSONStore) scheduleLocked() {
	s.dirty = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(debounceDelay, func() {
		if err := s.Flush(); err != nil {
			s.logger.Error("kv: failed to write state", "path", s.path, "err", err)
		}
	})
}

// Flush forces an immediate write of any pending changes. After a failed
// write the changes stay pending for the next Flush.
func (s *JSONStore) Flush() error {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	data, err := json.MarshalIndent(s.data, "", "  ")
	s.dirty = false
	s.mu.Unlock()
	if err == nil {
		err = writeAtomic(s.path, data)
	}
	if err != nil {
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
		return err
	}
	return nil
}

// Close flushes pending changes.
func (s *JSONStore) Close() error { return s.Flush() }

// Backup writes the current content as indented JSON.
func (s *JSONStore) Backup(w io.Writer) (int64, error) {
	s.mu.Lock()
	data, err := json.MarshalIndent(s.data, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

var _ Store = (*JSONStore)(nil)
