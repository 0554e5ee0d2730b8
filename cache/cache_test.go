package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_RoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Get(ctx, "gene:G1")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, m.Put(ctx, "gene:G1", []byte(`{"name":"FT"}`)))

	got, err := m.Get(ctx, "gene:G1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"FT"}`, string(got))

	require.NoError(t, m.Delete(ctx, "gene:G1"))
	_, err = m.Get(ctx, "gene:G1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemory_InvalidKey(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Get(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidKey)
	assert.ErrorIs(t, m.Put(ctx, "", nil), ErrInvalidKey)
}

func TestFile_WriteThroughPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ncbi_cache.json")

	f, err := NewFile(FileOptions{Path: path})
	require.NoError(t, err)

	require.NoError(t, f.Put(ctx, "gene:G1", []byte(`{"name":"FT","not_found":false}`)))
	require.NoError(t, f.Put(ctx, "protein:P1", []byte(`{"accession_version":"NP_001.1"}`)))
	require.NoError(t, f.Close())

	// Reopen and verify both entries survived the rewrite.
	reopened, err := NewFile(FileOptions{Path: path})
	require.NoError(t, err)
	assert.Equal(t, 2, reopened.Len())

	got, err := reopened.Get(ctx, "gene:G1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"FT","not_found":false}`, string(got))
}

func TestFile_BatchedFlush(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.json")
	writeThrough := false

	f, err := NewFile(FileOptions{Path: path, WriteThrough: &writeThrough})
	require.NoError(t, err)

	require.NoError(t, f.Put(ctx, "gene:G1", []byte(`{}`)))

	// Nothing on disk until Flush.
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "expected no file before flush")

	require.NoError(t, f.Flush(ctx))
	_, statErr = os.Stat(path)
	assert.NoError(t, statErr)
}

func TestFile_DeleteExpiresEntry(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.json")

	f, err := NewFile(FileOptions{Path: path})
	require.NoError(t, err)
	require.NoError(t, f.Put(ctx, "gene:G1", []byte(`{"not_found":true}`)))
	require.NoError(t, f.Delete(ctx, "gene:G1"))

	reopened, err := NewFile(FileOptions{Path: path})
	require.NoError(t, err)
	_, err = reopened.Get(ctx, "gene:G1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestFile_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFile(FileOptions{Path: path})
	assert.Error(t, err)
}

func TestFile_MissingPathRequired(t *testing.T) {
	_, err := NewFile(FileOptions{})
	assert.Error(t, err)
}

func setupRedis(t *testing.T) *Redis {
	t.Helper()

	mr := miniredis.RunT(t)
	r, err := NewRedis(RedisOptions{URL: fmt.Sprintf("redis://%s", mr.Addr())})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = r.Close()
		mr.Close()
	})
	return r
}

func TestRedis_RoundTrip(t *testing.T) {
	ctx := context.Background()
	r := setupRedis(t)

	_, err := r.Get(ctx, "gene:G1")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, r.Put(ctx, "gene:G1", []byte(`{"name":"FT"}`)))

	got, err := r.Get(ctx, "gene:G1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"FT"}`, string(got))

	require.NoError(t, r.Delete(ctx, "gene:G1"))
	_, err = r.Get(ctx, "gene:G1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedis_InvalidURL(t *testing.T) {
	_, err := NewRedis(RedisOptions{URL: "://bad"})
	assert.Error(t, err)
}
