package store

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	blob, err := NewFileBlob(dir, 0700)
	require.NoError(t, err)

	var calls atomic.Int32
	w, err := Watch(context.Background(), WatchPath(BackendFile, dir, DefaultKey), 50*time.Millisecond, nil, func() {
		calls.Add(1)
	})
	require.NoError(t, err)
	defer w.Close()

	for range 5 {
		require.NoError(t, blob.Put(DefaultKey, []byte(`[]`)))
	}
	require.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	// other keys in the same directory are ignored
	require.NoError(t, blob.Put("other", []byte(`[]`)))
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatch_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w, err := Watch(ctx, WatchPath(BackendFile, t.TempDir(), DefaultKey), time.Millisecond, nil, func() {})
	require.NoError(t, err)

	cancel()
	select {
	case <-w.doneCh:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
	assert.NoError(t, w.Close())
}
