// Package redis persists state buckets as plain string keys in Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"bookdist/pkg/domain"
)

var _ domain.StateStore = (*Store)(nil)

// DefaultPrefix namespaces bucket keys, e.g. "bookdist:schoolData".
const DefaultPrefix = "bookdist:"

// Client is the subset of the go-redis client used by the store.
type Client interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
	Ping(ctx context.Context) *goredis.StatusCmd
	Close() error
}

// Options configures a Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Store keeps one key per bucket.
type Store struct {
	client Client
	prefix string
}

// NewStore connects to Redis and verifies the connection with PING.
func NewStore(ctx context.Context, opts Options) (*Store, error) {
	if opts.Addr == "" {
		opts.Addr = "localhost:6379"
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}
	return NewWithClient(client, opts.Prefix), nil
}

// NewWithClient wraps an existing client. An empty prefix selects DefaultPrefix.
func NewWithClient(client Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

// Key returns the Redis key holding bucket.
func (s *Store) Key(bucket domain.Bucket) string { return s.prefix + string(bucket) }

// Load returns the payload saved under bucket.
func (s *Store) Load(ctx context.Context, bucket domain.Bucket) ([]byte, error) {
	payload, err := s.client.Get(ctx, s.Key(bucket)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, domain.ErrBucketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", bucket, err)
	}
	return payload, nil
}

// Save writes payload under bucket without expiry.
func (s *Store) Save(ctx context.Context, bucket domain.Bucket, payload []byte) error {
	if err := s.client.Set(ctx, s.Key(bucket), payload, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", bucket, err)
	}
	return nil
}

// Close releases the client connection pool.
func (s *Store) Close() error { return s.client.Close() }
