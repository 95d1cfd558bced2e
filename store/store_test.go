package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openBackends(t *testing.T) map[string]Blob {
	t.Helper()
	dir := t.TempDir()

	backends := map[string]Blob{}
	for _, tc := range []struct{ backend, path string }{
		{BackendMemory, ""},
		{BackendBolt, filepath.Join(dir, "directory.db")},
		{BackendFile, filepath.Join(dir, "files")},
		{BackendSQLite, filepath.Join(dir, "directory.sqlite")},
	} {
		b, err := Open(tc.backend, tc.path, "directory", 0)
		require.NoError(t, err, tc.backend)
		t.Cleanup(func() { b.Close() })
		backends[tc.backend] = b
	}
	return backends
}

func TestBlob_GetPut(t *testing.T) {
	for name, b := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := b.Get("people")
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, b.Put("people", []byte(`[1]`)))
			require.NoError(t, b.Put("people", []byte(`[1,2]`)))

			v, err := b.Get("people")
			require.NoError(t, err)
			assert.Equal(t, `[1,2]`, string(v))

			n, err := Size(b, "people")
			require.NoError(t, err)
			assert.Equal(t, 5, n)

			n, err = Size(b, "other")
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestInMemoryBlob_CopiesValues(t *testing.T) {
	b := NewInMemoryBlob()
	in := []byte("abc")
	require.NoError(t, b.Put("k", in))
	in[0] = 'x'

	out, err := b.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(out))
}

func TestPersistentBlob_Reopen(t *testing.T) {
	file := filepath.Join(t.TempDir(), "directory.db")

	b, err := NewPersistentBlob(file, 0600, "directory", 0)
	require.NoError(t, err)
	require.NoError(t, b.Put("people", []byte(`[]`)))
	require.NoError(t, b.Close())

	b, err = NewPersistentBlob(file, 0600, "directory", 0)
	require.NoError(t, err)
	defer b.Close()

	v, err := b.Get("people")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(v))
}

func TestPersistentBlob_LockedByAnotherHandle(t *testing.T) {
	file := filepath.Join(t.TempDir(), "directory.db")

	held, err := Open(BackendBolt, file, "", 0)
	require.NoError(t, err)
	defer held.Close()

	start := time.Now()
	_, err = Open(BackendBolt, file, "", 100*time.Millisecond)
	require.ErrorIs(t, err, ErrLocked)
	assert.ErrorContains(t, err, file)
	assert.Less(t, time.Since(start), 3*time.Second)

	require.NoError(t, held.Close())
	b, err := Open(BackendBolt, file, "", 100*time.Millisecond)
	require.NoError(t, err, "released file opens again")
	require.NoError(t, b.Close())
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open("redis", "", "", 0)
	assert.ErrorContains(t, err, `unknown backend "redis"`)
}

func TestWatchPath(t *testing.T) {
	assert.Equal(t, "d.db", WatchPath(BackendBolt, "d.db", "people"))
	assert.Equal(t, filepath.Join("dir", "people.json"), WatchPath(BackendFile, "dir", "people"))
	assert.Empty(t, WatchPath(BackendMemory, "", "people"))
}
