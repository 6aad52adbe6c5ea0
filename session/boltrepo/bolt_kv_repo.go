// Package boltrepo persists session values in a single-file BoltDB database,
// the desktop analogue of browser local storage.
package boltrepo

import (
	"os"
	"path/filepath"
	"time"

	fwzerrors "github.com/jrsteele09/foodwaste-zero/internal/errors"
	"github.com/jrsteele09/foodwaste-zero/session"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

const DefaultBucket = "session"

var _ session.KeyValueRepo = (*BoltKVRepo)(nil)

type BoltKVRepo struct {
	db     *bolt.DB
	bucket []byte
}

// Open creates the database file if needed and ensures the bucket exists.
// A second process holding the file makes Open fail after one second.
func Open(path, bucket string) (*BoltKVRepo, error) {
	if bucket == "" {
		bucket = DefaultBucket
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrap(err, "[Open] creating directory")
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "[Open] opening %s", path)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "[Open] creating bucket")
	}

	return &BoltKVRepo{db: db, bucket: []byte(bucket)}, nil
}

func (r *BoltKVRepo) Get(key string) (string, error) {
	if r == nil || r.db == nil {
		return "", bolt.ErrDatabaseNotOpen
	}
	var value string
	found := false
	err := r.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(r.bucket).Get([]byte(key))
		if v != nil {
			value = string(v)
			found = true
		}
		return nil
	})
	if err != nil {
		return "", errors.Wrapf(err, "[Get] %s", key)
	}
	if !found {
		return "", fwzerrors.ErrNotFound
	}
	return value, nil
}

func (r *BoltKVRepo) Put(key, value string) error {
	if r == nil || r.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(r.bucket).Put([]byte(key), []byte(value))
	})
}

// Delete removes key. Bolt treats a missing key as a no-op.
func (r *BoltKVRepo) Delete(key string) error {
	if r == nil || r.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(r.bucket).Delete([]byte(key))
	})
}

func (r *BoltKVRepo) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}
