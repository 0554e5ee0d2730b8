package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileOptions configures a File cache.
type FileOptions struct {
	// Path is the location of the JSON cache file. The file is created on
	// first write if it does not exist.
	Path string

	// WriteThrough rewrites the whole file after every Put. When false,
	// writes stay in memory until Flush or Close. Defaults to true, the
	// behavior the metadata client expects at this data scale.
	WriteThrough *bool
}

// File is a Cache backed by a single JSON object on disk mapping keys to
// raw values.
//
// The whole file is read at construction and rewritten on persist. Access
// is serialized behind a mutex; concurrent processes sharing one cache file
// are not supported.
type File struct {
	path         string
	writeThrough bool

	mu      sync.Mutex
	entries map[string]json.RawMessage
	dirty   bool
}

// NewFile opens (or initializes) a file cache at the given path.
// A missing file yields an empty cache; a malformed file is an error.
func NewFile(opts FileOptions) (*File, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("cache: file path is required")
	}

	writeThrough := true
	if opts.WriteThrough != nil {
		writeThrough = *opts.WriteThrough
	}

	f := &File{
		path:         opts.Path,
		writeThrough: writeThrough,
		entries:      make(map[string]json.RawMessage),
	}

	data, err := os.ReadFile(opts.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return nil, fmt.Errorf("cache: reading %s: %w", opts.Path, err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &f.entries); err != nil {
			return nil, fmt.Errorf("cache: parsing %s: %w", opts.Path, err)
		}
	}
	return f, nil
}

// Get returns the value stored under key, or ErrCacheMiss.
func (f *File) Get(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	v, ok := f.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Put stores value under key and, in write-through mode, rewrites the file.
func (f *File) Put(_ context.Context, key string, value []byte) error {
	if key == "" {
		return ErrInvalidKey
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	stored := make(json.RawMessage, len(value))
	copy(stored, value)
	f.entries[key] = stored
	f.dirty = true

	if f.writeThrough {
		return f.persistLocked()
	}
	return nil
}

// Delete removes key and, in write-through mode, rewrites the file.
func (f *File) Delete(_ context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.entries[key]; !ok {
		return nil
	}
	delete(f.entries, key)
	f.dirty = true

	if f.writeThrough {
		return f.persistLocked()
	}
	return nil
}

// Flush writes buffered entries to disk if anything changed.
func (f *File) Flush(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.dirty {
		return nil
	}
	return f.persistLocked()
}

// Close flushes and releases the cache.
func (f *File) Close() error {
	return f.Flush(context.Background())
}

// Len returns the number of cached entries.
func (f *File) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

// persistLocked rewrites the whole file. Callers must hold f.mu.
func (f *File) persistLocked() error {
	data, err := json.MarshalIndent(f.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("cache: encoding %s: %w", f.path, err)
	}

	tmp := f.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("cache: creating directory for %s: %w", f.path, err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("cache: writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("cache: replacing %s: %w", f.path, err)
	}
	f.dirty = false
	return nil
}
