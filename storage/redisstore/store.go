// Package redisstore keeps the durable session record in Redis.
//
// The record lives under a single key, "<prefix>:<name>", so several local
// profiles can share one Redis instance without colliding.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/dojoauth/storage"
	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "dojo:session"

// Config controls key layout and expiry.
type Config struct {
	Prefix string
	Name   string
	// TTL bounds how long an untouched record survives. Zero keeps it forever.
	TTL time.Duration
	// Sliding pushes the expiry forward on every successful Load.
	Sliding bool
}

// Store is a Redis-backed [storage.Backend].
type Store struct {
	redis   redis.UniversalClient
	key     string
	ttl     time.Duration
	sliding bool
}

// New returns a Store using client. The client's lifecycle stays with the
// caller unless [Store.Close] is used.
func New(client redis.UniversalClient, cfg Config) (*Store, error) {
	if client == nil {
		return nil, errors.New("redis client required")
	}
	if cfg.TTL < 0 {
		return nil, errors.New("redis record TTL must be >= 0")
	}
	if cfg.Sliding && cfg.TTL == 0 {
		return nil, errors.New("sliding expiry requires a TTL")
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}
	name := cfg.Name
	if name == "" {
		name = "default"
	}

	return &Store{
		redis:   client,
		key:     prefix + ":" + name,
		ttl:     cfg.TTL,
		sliding: cfg.Sliding,
	}, nil
}

// Key returns the Redis key holding the record.
func (s *Store) Key() string {
	return s.key
}

// Load reads the record. A missing key maps to [storage.ErrNotFound].
//
//	Performance: 1 GET, plus 1 PEXPIRE when sliding expiry is on.
func (s *Store) Load(ctx context.Context) ([]byte, error) {
	data, err := s.redis.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}

	if s.sliding {
		if err := s.redis.PExpire(ctx, s.key, s.ttl).Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
		}
	}

	return data, nil
}

// Save overwrites the record.
func (s *Store) Save(ctx context.Context, data []byte) error {
	if err := s.redis.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	return nil
}

// Remove deletes the record; deleting a missing key succeeds.
func (s *Store) Remove(ctx context.Context) error {
	if err := s.redis.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	return nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.redis.Close()
}
