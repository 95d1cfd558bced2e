package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileBlob keeps every key in its own JSON file under Dir. Writes replace
// the file atomically.
type FileBlob struct {
	mu  sync.Mutex
	Dir string
}

var _ Blob = (*FileBlob)(nil)

func NewFileBlob(dir string, mode os.FileMode) (*FileBlob, error) {
	if dir == "" {
		return nil, errors.New("store: file backend needs a directory")
	}
	if err := os.MkdirAll(dir, mode); err != nil {
		return nil, fmt.Errorf("store: create %s: %w", dir, err)
	}
	return &FileBlob{Dir: dir}, nil
}

func fileName(dir, key string) string {
	return filepath.Join(dir, key+".json")
}

func (f *FileBlob) Get(key string) ([]byte, error) {
	v, err := os.ReadFile(fileName(f.Dir, key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return v, err
}

func (f *FileBlob) Put(key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.Dir, "."+key+"-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), fileName(f.Dir, key))
}

func (f *FileBlob) Close() error { return nil }
