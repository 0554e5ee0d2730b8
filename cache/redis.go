package cache

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures the Redis cache backend.
type RedisOptions struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379").
	URL string

	// KeyPrefix is prepended to every cache key, namespacing this engine's
	// entries in a shared instance. Defaults to "traitkg:".
	KeyPrefix string

	// TLS configuration for secure connections.
	TLS *tls.Config

	// ConnectTimeout is the maximum time to wait for connection establishment.
	ConnectTimeout time.Duration

	// ReadTimeout is the maximum time to wait for read operations.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait for write operations.
	WriteTimeout time.Duration
}

// Redis implements Cache on top of go-redis. Writes go straight to the
// server, so Flush is a no-op.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis creates a Redis cache backend and verifies connectivity.
func NewRedis(opts RedisOptions) (*Redis, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = "traitkg:"
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 10 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 5 * time.Second
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("cache: parsing Redis URL: %w", err)
	}
	redisOpts.TLSConfig = opts.TLS
	redisOpts.DialTimeout = opts.ConnectTimeout
	redisOpts.ReadTimeout = opts.ReadTimeout
	redisOpts.WriteTimeout = opts.WriteTimeout

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: connecting to Redis: %w", err)
	}

	return &Redis{client: client, prefix: opts.KeyPrefix}, nil
}

// Get returns the value stored under key, or ErrCacheMiss.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("cache: redis get %s: %w", key, err)
	}
	return data, nil
}

// Put stores value under key with no expiration.
func (r *Redis) Put(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrInvalidKey
	}
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("cache: redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Absent keys are not an error.
func (r *Redis) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("cache: redis del %s: %w", key, err)
	}
	return nil
}

// Flush is a no-op: Redis writes are already durable server-side.
func (r *Redis) Flush(context.Context) error { return nil }

// Close closes the underlying Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}
