// Package cache provides the pluggable key-value store backing external
// metadata lookups.
//
// The engine never touches a cache backend directly; the NCBI client takes a
// Cache at construction and reads/writes normalized records through it. Keys
// are composite identities of the form "{entityType}:{entityId}" and values
// are JSON-encoded records. Entries have no TTL: a cached record, including
// a cached not-found marker, is reused indefinitely until deleted out of
// band.
//
// Three backends are provided:
//
//   - File: a single JSON object on disk, read fully at construction and
//     rewritten after each write (write-through) or on Flush (batched).
//     Single-process access is assumed; there is no file locking.
//   - Redis: a thin wrapper over go-redis for shared or ephemeral
//     deployments.
//   - Memory: an in-process map, used in tests and as the default when no
//     backend is configured.
package cache
