package store

import "errors"

// ErrUnavailable is wrapped by every error a Store returns when its backing
// medium cannot be used: not opened, already closed, or failing I/O.
// A missing bucket or key is never reported this way.
var ErrUnavailable = errors.New("storage unavailable")

// Store is an abstract key-value storage interface backed by buckets.
// Get returns nil, nil for an absent key. Set is an upsert. GetOrSet
// returns the stored value, first storing value when the key is absent;
// the check and the write are atomic.
type Store interface {
	Get(bucket, key []byte) ([]byte, error)
	Set(bucket, key, value []byte) error
	GetOrSet(bucket, key, value []byte) ([]byte, error)
	Delete(bucket, key []byte) error
	ForEach(bucket []byte, fn func(key, value []byte) error) error
	Close() error
}
