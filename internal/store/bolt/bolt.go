package bolt

import (
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/goodocy/android-store/internal/store"
)

// openTimeout bounds how long Open waits for another process's file lock.
const openTimeout = 2 * time.Second

// Store implements store.Store using bbolt (embedded B+ tree).
// Every call runs in its own transaction, so no cursor outlives the call.
type Store struct {
	db *bolt.DB
}

var _ store.Store = (*Store)(nil)

// Open creates or opens a bbolt database at the given path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db: %w: %w", store.ErrUnavailable, err)
	}
	return &Store{db: db}, nil
}

// fnError marks errors returned by ForEach callbacks so they are passed
// through instead of being reported as storage failures.
type fnError struct{ err error }

func (e fnError) Error() string { return e.err.Error() }

func unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	var fe fnError
	if errors.As(err, &fe) {
		return fe.err
	}
	return fmt.Errorf("bolt %s: %w: %w", op, store.ErrUnavailable, err)
}

func (s *Store) view(op string, fn func(tx *bolt.Tx) error) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("bolt %s: %w: store not opened", op, store.ErrUnavailable)
	}
	return unavailable(op, s.db.View(fn))
}

func (s *Store) update(op string, fn func(tx *bolt.Tx) error) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("bolt %s: %w: store not opened", op, store.ErrUnavailable)
	}
	return unavailable(op, s.db.Update(fn))
}

func (s *Store) Get(bucket, key []byte) ([]byte, error) {
	var val []byte
	err := s.view("get", func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get(key); v != nil {
			val = make([]byte, len(v))
			copy(val, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (s *Store) Set(bucket, key, value []byte) error {
	return s.update("set", func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucket)
		if err != nil {
			return fmt.Errorf("creating bucket: %w", err)
		}
		return b.Put(key, value)
	})
}

func (s *Store) GetOrSet(bucket, key, value []byte) ([]byte, error) {
	var val []byte
	err := s.update("getorset", func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucket)
		if err != nil {
			return fmt.Errorf("creating bucket: %w", err)
		}
		cur := b.Get(key)
		if cur == nil {
			cur = value
			if err := b.Put(key, value); err != nil {
				return err
			}
		}
		val = make([]byte, len(cur))
		copy(val, cur)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (s *Store) Delete(bucket, key []byte) error {
	return s.update("delete", func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		return b.Delete(key)
	})
}

// ForEach calls fn for every key in bucket. fn must not retain k or v.
// An error from fn stops the iteration and is returned unwrapped.
func (s *Store) ForEach(bucket []byte, fn func(key, value []byte) error) error {
	return s.view("foreach", func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			if err := fn(k, v); err != nil {
				return fnError{err}
			}
			return nil
		})
	})
}

// Path returns the database file path, or "" for a store never opened.
func (s *Store) Path() string {
	if s == nil || s.db == nil {
		return ""
	}
	return s.db.Path()
}

// Close releases the database. Closing a store never opened is a no-op.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
