package store

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrNotFound = errors.New("store: key not found")

// Blob is a key-value store of opaque values.
type Blob interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Close() error
}

const (
	BackendMemory = "memory"
	BackendBolt   = "bolt"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open returns the blob backend named by backend. path is a bbolt or sqlite
// database file, or a directory for the file backend. bucket names the bbolt
// bucket and lockTimeout bounds the wait for its file lock; both are ignored
// elsewhere.
func Open(backend, path, bucket string, lockTimeout time.Duration) (Blob, error) {
	switch strings.ToLower(backend) {
	case BackendMemory, "":
		return NewInMemoryBlob(), nil
	case BackendBolt:
		return NewPersistentBlob(path, 0600, bucket, lockTimeout)
	case BackendFile:
		return NewFileBlob(path, 0700)
	case BackendSQLite:
		return NewSQLiteBlob(path)
	default:
		return nil, fmt.Errorf("store: unknown backend %q", backend)
	}
}

// WatchPath is the filesystem path whose changes mean the stored value for
// key may have changed. It is empty for the memory backend.
func WatchPath(backend, path, key string) string {
	switch strings.ToLower(backend) {
	case BackendBolt, BackendSQLite:
		return path
	case BackendFile:
		return fileName(path, key)
	default:
		return ""
	}
}

// Size reports the stored size of key in bytes, zero when absent.
func Size(b Blob, key string) (int, error) {
	v, err := b.Get(key)
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return len(v), nil
}
