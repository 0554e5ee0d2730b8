package cache

import (
	"context"
	"errors"
)

// Common errors returned by cache operations.
var (
	// ErrCacheMiss is returned by Get when the key is not present.
	ErrCacheMiss = errors.New("cache: key not found")

	// ErrInvalidKey is returned when a key is empty.
	ErrInvalidKey = errors.New("cache: invalid key")
)

// Cache is a key-value store for normalized metadata records.
//
// Values are opaque bytes (the NCBI client stores JSON). Implementations
// must return ErrCacheMiss from Get for absent keys so callers can
// distinguish a miss from a backend failure with errors.Is.
type Cache interface {
	// Get returns the value stored under key, or ErrCacheMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, overwriting any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Flush persists any buffered writes. Backends that write through
	// return nil immediately.
	Flush(ctx context.Context) error

	// Close releases backend resources, flushing first where relevant.
	Close() error
}
