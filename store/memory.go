package store

import (
	"bytes"
	"sync"
)

type InMemoryBlob struct {
	mu sync.RWMutex
	Db map[string][]byte
}

var _ Blob = (*InMemoryBlob)(nil)

func NewInMemoryBlob() *InMemoryBlob {
	return &InMemoryBlob{
		Db: make(map[string][]byte),
	}
}

func (i *InMemoryBlob) Get(key string) ([]byte, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	v, ok := i.Db[key]
	if !ok {
		return nil, ErrNotFound
	}

	return bytes.Clone(v), nil
}

func (i *InMemoryBlob) Put(key string, value []byte) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.Db[key] = bytes.Clone(value)
	return nil
}

func (i *InMemoryBlob) Close() error { return nil }
