package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "ambiance:"
	redisTimeout   = 3 * time.Second
)

// RedisOptions configures the redis backend.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore keeps each key as a plain redis string holding JSON.
type RedisStore struct {
	client *redislib.Client
	addr   string
}

// OpenRedisStore connects and pings the server, retrying with backoff.
func OpenRedisStore(opts RedisOptions) (*RedisStore, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("kv: redis address is required")
	}
	client := redislib.NewClient(&redislib.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	attempts := 5
	backoff := 200 * time.Millisecond
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
		err = client.Ping(ctx).Err()
		cancel()
		if err == nil {
			return &RedisStore{client: client, addr: opts.Addr}, nil
		}
		if attempt < attempts {
			time.Sleep(backoff)
			backoff *= 2
		}
	}

	_ = client.Close()
	return nil, fmt.Errorf("kv: redis ping %s: %w", opts.Addr, err)
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redislib.Client) *RedisStore {
	return &RedisStore{client: client, addr: client.Options().Addr}
}

// Path returns the redis address.
func (s *RedisStore) Path() string { return "redis://" + s.addr }

func (s *RedisStore) Get(key string, dest any) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	raw, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redislib.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("kv: decode %q: %w", key, err)
	}
	return true, nil
}

func (s *RedisStore) Set(key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv: encode %q: %w", key, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	return s.client.Set(ctx, redisKeyPrefix+key, payload, 0).Err()
}

func (s *RedisStore) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	return s.client.Del(ctx, redisKeyPrefix+key).Err()
}

// Flush is a no-op; every command is applied when it returns.
func (s *RedisStore) Flush() error { return nil }

func (s *RedisStore) Close() error { return s.client.Close() }

var _ Store = (*RedisStore)(nil)
