package boltstore

import (
	"context"
	"time"

	"go.etcd.io/bbolt"

	"github.com/alextreichler/humbleautos/internal/store"
)

const bucket = "storage"

// Store is a Bolt-backed store.KV.
type Store struct{ db *bbolt.DB }

// Open opens (or creates) the database file at path and ensures the storage
// bucket. A second process opening the same file waits up to a second for the
// lock.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, e := tx.CreateBucketIfNotExists([]byte(bucket))
		return e
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Get copies the value out; bolt memory is only valid inside the transaction.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket([]byte(bucket)).Get([]byte(key)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, store.ErrNotFound
	}
	return data, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucket)).Put([]byte(key), value)
	})
}

func (s *Store) Delete(_ context.Context, key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucket)).Delete([]byte(key))
	})
}

func (s *Store) Close() error {
	return s.db.Close()
}
