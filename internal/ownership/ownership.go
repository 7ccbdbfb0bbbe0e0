// Package ownership records which non-consumable items are owned.
//
// A Store maps an item identity through a keycodec.Codec to a storage key
// and keeps one flag per key in a store.Store bucket. It has no cache:
// every Exists reads the backing store.
package ownership

import (
	"fmt"
	"sort"
	"time"

	"github.com/goodocy/android-store/internal/keycodec"
	"github.com/goodocy/android-store/internal/logging"
	"github.com/goodocy/android-store/internal/store"
)

// DefaultBucket holds ownership records unless WithBucket says otherwise.
const DefaultBucket = "nonconsumable"

// Errors surfaced by Store, matchable with errors.Is.
var (
	ErrStorageUnavailable = store.ErrUnavailable
	ErrCodec              = keycodec.ErrEncode
)

var logger = logging.For("ownership")

// Store is the ownership facade. It is safe for concurrent use when the
// underlying store.Store is.
type Store struct {
	kv     store.Store
	codec  keycodec.Codec
	bucket []byte
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithBucket stores records in the named bucket.
func WithBucket(name string) Option {
	return func(s *Store) { s.bucket = []byte(name) }
}

// WithClock overrides the time source used to stamp changes.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns a Store over kv. A nil codec stores identities verbatim.
func New(kv store.Store, codec keycodec.Codec, opts ...Option) *Store {
	if codec == nil {
		codec = keycodec.Plain{}
	}
	s := &Store{
		kv:     kv,
		codec:  codec,
		bucket: []byte(DefaultBucket),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Exists reports whether identity is currently owned. An identity that was
// never granted is not an error; it is simply not owned.
func (s *Store) Exists(identity string) (bool, error) {
	logger.Debug("checking ownership", "item", identity)

	r, found, err := s.lookup(identity)
	if err != nil {
		return false, fmt.Errorf("checking %q: %w", identity, err)
	}
	owned := found && r.Owned
	if owned {
		logger.Debug("item is owned", "item", identity)
	}
	return owned, nil
}

// Grant marks identity as owned. Granting an owned item changes nothing
// observable.
func (s *Store) Grant(identity string) error {
	logger.Debug("granting", "item", identity)
	if err := s.put(identity, true); err != nil {
		return fmt.Errorf("granting %q: %w", identity, err)
	}
	return nil
}

// Revoke marks identity as not owned. The record is overwritten rather than
// deleted; either way Exists reports false afterwards.
func (s *Store) Revoke(identity string) error {
	logger.Debug("revoking", "item", identity)
	if err := s.put(identity, false); err != nil {
		return fmt.Errorf("revoking %q: %w", identity, err)
	}
	return nil
}

// Ownership describes one owned record.
type Ownership struct {
	// Key is the storage key the record lives under.
	Key string
	// Identity is the item identity, or "" when the codec is one-way.
	Identity string
	// ChangedAt is the time of the last Grant, including repeated ones.
	ChangedAt time.Time
}

// Owned lists every owned record, sorted by storage key. Identities are
// recovered only when the codec implements keycodec.Decoder; a key that
// does not decode is still listed, with an empty Identity.
func (s *Store) Owned() ([]Ownership, error) {
	dec, _ := s.codec.(keycodec.Decoder)

	var out []Ownership
	err := s.kv.ForEach(s.bucket, func(k, v []byte) error {
		r, err := unmarshalRecord(v)
		if err != nil {
			return fmt.Errorf("key %q: %w", k, err)
		}
		if !r.Owned {
			return nil
		}
		o := Ownership{Key: string(k), ChangedAt: r.ChangedAt}
		if dec != nil {
			id, err := dec.Decode(o.Key)
			if err != nil {
				logger.Warn("cannot decode storage key", "key", o.Key, "err", err)
			} else {
				o.Identity = id
			}
		}
		out = append(out, o)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing owned items: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *Store) lookup(identity string) (record, bool, error) {
	key, err := s.codec.Encode(identity)
	if err != nil {
		return record{}, false, err
	}
	v, err := s.kv.Get(s.bucket, []byte(key))
	if err != nil {
		return record{}, false, err
	}
	if v == nil {
		return record{}, false, nil
	}
	r, err := unmarshalRecord(v)
	if err != nil {
		return record{}, false, err
	}
	return r, true, nil
}

func (s *Store) put(identity string, owned bool) error {
	key, err := s.codec.Encode(identity)
	if err != nil {
		return err
	}
	r := record{Owned: owned, ChangedAt: s.now()}
	return s.kv.Set(s.bucket, []byte(key), r.marshal())
}
