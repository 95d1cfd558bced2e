package store

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"go.etcd.io/bbolt"
	bolterrors "go.etcd.io/bbolt/errors"
)

// DefaultLockTimeout bounds the wait for a bbolt file held by another process.
const DefaultLockTimeout = 5 * time.Second

// ErrLocked is returned when another process keeps the database file open.
var ErrLocked = errors.New("store: database file is locked by another process")

// PersistentBlob keeps values in one bbolt bucket.
type PersistentBlob struct {
	Db       *bbolt.DB
	DbFile   string
	FileMode os.FileMode
	Bucket   string
}

var _ Blob = (*PersistentBlob)(nil)

// NewPersistentBlob opens file, waiting at most lockTimeout (DefaultLockTimeout
// when not positive) for another process to release it.
func NewPersistentBlob(file string, mode os.FileMode, bucket string, lockTimeout time.Duration) (*PersistentBlob, error) {
	if bucket == "" {
		bucket = "directory"
	}
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}

	db, err := bbolt.Open(file, mode, &bbolt.Options{Timeout: lockTimeout})
	if errors.Is(err, bolterrors.ErrTimeout) {
		return nil, fmt.Errorf("%w: %s (waited %s)", ErrLocked, file, lockTimeout)
	}
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", file, err)
	}

	p := &PersistentBlob{
		Db:       db,
		DbFile:   file,
		FileMode: mode,
		Bucket:   bucket,
	}

	err = p.CreateBucket()
	if err != nil {
		db.Close()
		return nil, err
	}

	return p, nil
}

func (p *PersistentBlob) CreateBucket() error {
	return p.Db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(p.Bucket))
		return err
	})
}

func (p *PersistentBlob) Get(key string) (v []byte, err error) {

	err = p.Db.View(func(tx *bbolt.Tx) error {

		b := tx.Bucket([]byte(p.Bucket))
		raw := b.Get([]byte(key))
		if raw == nil {
			return ErrNotFound
		}

		// raw is only valid inside the transaction
		v = bytes.Clone(raw)
		return nil
	})

	return
}

func (p *PersistentBlob) Put(key string, value []byte) error {

	return p.Db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(p.Bucket))
		return b.Put([]byte(key), value)
	})

}

func (p *PersistentBlob) Close() error {
	return p.Db.Close()
}
