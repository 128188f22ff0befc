// Package auth guards the control API with access keys read from a JSON
// file. The file is reloaded whenever it changes; with no keys configured
// every request is allowed.
package auth

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// KeysFileName is the default name of the access key file.
const KeysFileName = "keys.json"

// Service verifies access keys. The keys file maps a client name to its key:
//
//	{"keys": {"tablet": "c2VjcmV0", "stream-deck": "b3RoZXI="}}
type Service struct {
	mu      sync.RWMutex
	path    string
	keys    map[string]string
	watcher *fsnotify.Watcher
	logger  *slog.Logger
}

// keysFile is the on-disk shape. Unknown fields are rejected.
type keysFile struct {
	Keys map[string]string `json:"keys"`
}

// NewService loads path and watches it for changes. An empty path disables
// authentication.
func NewService(path string, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		path:   path,
		keys:   make(map[string]string),
		logger: logger,
	}
	if path == "" {
		return s, nil
	}

	// A missing file is open mode.
	if err := s.Reload(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("auth: could not create fsnotify watcher", "err", err)
		return s, nil
	}
	s.watcher = watcher
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		logger.Warn("auth: could not watch keys dir", "err", err)
	}

	go s.watchLoop()
	return s, nil
}

// Reload re-reads the keys file.
func (s *Service) Reload() error {
	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.mu.Lock()
			s.keys = make(map[string]string)
			s.mu.Unlock()
			return nil
		}
		return err
	}

	var file keysFile
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		return fmt.Errorf("auth: parse %s: %w", s.path, err)
	}
	keys := file.Keys
	if keys == nil {
		keys = make(map[string]string)
	}
	for name, key := range keys {
		if key == "" {
			delete(keys, name)
		}
	}

	s.mu.Lock()
	s.keys = keys
	s.mu.Unlock()
	s.logger.Debug("auth: reloaded keys", "count", len(keys))
	return nil
}

// IsOpenMode reports whether no keys are configured.
func (s *Service) IsOpenMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys) == 0
}

// VerifyKey reports whether key belongs to any client, and which.
// Comparison is constant-time.
func (s *Service) VerifyKey(key string) (string, bool) {
	if key == "" {
		return "", false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for name, k := range s.keys {
		if subtle.ConstantTimeCompare([]byte(key), []byte(k)) == 1 {
			return name, true
		}
	}
	return "", false
}

// Close stops the file watcher.
func (s *Service) Close() {
	if s.watcher != nil {
		s.watcher.Close()
	}
}

func (s *Service) watchLoop() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Name == s.path && (event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove)) {
				if err := s.Reload(); err != nil {
					s.logger.Warn("auth: failed to reload keys", "err", err)
				}
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("auth: watcher error", "err", err)
		}
	}
}
