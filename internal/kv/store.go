// Package kv provides the durable key-value stores that back the bookmark
// and playback state. Values are JSON-encoded under fixed string keys.
package kv

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Store is the durable key-value substrate shared by the state stores.
type Store interface {
	// Get decodes the value stored under key into dest.
	// It reports false with a nil error when the key does not exist.
	Get(key string, dest any) (bool, error)

	// Set encodes value and stores it under key. Implementations may debounce.
	Set(key string, value any) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error

	// Path describes where the data lives (file path, redis address, ":memory:").
	Path() string

	// Flush forces an immediate write of any pending data.
	Flush() error

	// Close flushes and releases the underlying resources.
	Close() error
}

// Backuper is implemented by stores that can stream a consistent copy of
// their content.
type Backuper interface {
	Backup(w io.Writer) (int64, error)
}

// Backend names accepted by Open.
const (
	BackendBolt   = "bolt"
	BackendJSON   = "json"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Backend string
	Dir     string
	Redis   RedisOptions
	Logger  *slog.Logger
}

// Open returns the store selected by opts.Backend. An empty backend means bolt.
func Open(opts Options) (Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	switch strings.ToLower(opts.Backend) {
	case "", BackendBolt:
		return OpenBoltStore(opts.Dir)
	case BackendJSON:
		return OpenJSONStore(opts.Dir, logger)
	case BackendRedis:
		return OpenRedisStore(opts.Redis)
	case BackendMemory:
		return NewMemStore(), nil
	}
	return nil, fmt.Errorf("kv: unknown backend %q", opts.Backend)
}
