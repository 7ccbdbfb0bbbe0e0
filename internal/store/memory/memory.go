// Package memory provides a volatile store.Store. Nothing survives the
// process, which makes it suitable for tests and dry runs.
package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/goodocy/android-store/internal/store"
)

// Store implements store.Store on nested maps guarded by a RWMutex.
type Store struct {
	mu      sync.RWMutex
	buckets map[string]map[string][]byte
	closed  bool
}

var _ store.Store = (*Store)(nil)

// New returns an empty, open store.
func New() *Store {
	return &Store{buckets: make(map[string]map[string][]byte)}
}

func errClosed(op string) error {
	return fmt.Errorf("memory %s: %w: store closed", op, store.ErrUnavailable)
}

func (s *Store) Get(bucket, key []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errClosed("get")
	}
	v, ok := s.buckets[string(bucket)][string(key)]
	if !ok {
		return nil, nil
	}
	return clone(v), nil
}

func (s *Store) Set(bucket, key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed("set")
	}
	if len(key) == 0 {
		return fmt.Errorf("memory set: empty key")
	}
	b, ok := s.buckets[string(bucket)]
	if !ok {
		b = make(map[string][]byte)
		s.buckets[string(bucket)] = b
	}
	b[string(key)] = clone(value)
	return nil
}

func (s *Store) GetOrSet(bucket, key, value []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errClosed("getorset")
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("memory getorset: empty key")
	}
	b, ok := s.buckets[string(bucket)]
	if !ok {
		b = make(map[string][]byte)
		s.buckets[string(bucket)] = b
	}
	cur, ok := b[string(key)]
	if !ok {
		cur = clone(value)
		b[string(key)] = cur
	}
	return clone(cur), nil
}

func (s *Store) Delete(bucket, key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed("delete")
	}
	delete(s.buckets[string(bucket)], string(key))
	return nil
}

// ForEach visits keys in byte order, like bbolt. The read lock is held for
// the whole iteration, so fn must not write to the store.
func (s *Store) ForEach(bucket []byte, fn func(key, value []byte) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errClosed("foreach")
	}
	b := s.buckets[string(bucket)]
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := fn([]byte(k), b[k]); err != nil {
			return err
		}
	}
	return nil
}

// Close marks the store unusable. Data is dropped. Closing twice is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.buckets = nil
	return nil
}

func clone(v []byte) []byte {
	out := make([]byte, len(v))
	copy(out, v)
	return out
}
