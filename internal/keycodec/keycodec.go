// Package keycodec turns item identities into the storage keys under which
// their ownership flags are persisted.
//
// Obfuscated keys only keep stored data from being readable at a glance;
// anyone holding the secret and the store can recover or recompute them.
package keycodec

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	bolt "go.etcd.io/bbolt"

	"github.com/goodocy/android-store/internal/logging"
)

// MaxIdentityLen is the longest item identity the obfuscating codecs
// accept, in bytes.
const MaxIdentityLen = 256

// MaxPlainLen is the longest identity Plain accepts: the largest key the
// bolt store can hold.
const MaxPlainLen = bolt.MaxKeySize

var (
	ErrEncode = errors.New("cannot encode item identity")
	ErrDecode = errors.New("cannot decode storage key")
)

// Mode names accepted by New.
const (
	ModeNone = "none"
	ModeHash = "hash"
	ModeSeal = "seal"
)

// Codec maps an item identity to its storage key. Encode is pure and
// deterministic: the same identity always yields the same key.
type Codec interface {
	Encode(identity string) (string, error)
}

// Decoder is implemented by codecs whose keys can be mapped back to the
// identity that produced them.
type Decoder interface {
	Decode(key string) (string, error)
}

// Plain stores identities verbatim. Identities are opaque bytes; only the
// empty string and identities longer than MaxPlainLen are refused, since no
// store can key on them.
type Plain struct{}

func (Plain) Encode(identity string) (string, error) {
	switch {
	case identity == "":
		return "", fmt.Errorf("%w: empty identity", ErrEncode)
	case len(identity) > MaxPlainLen:
		return "", fmt.Errorf("%w: identity is %d bytes, max %d", ErrEncode, len(identity), MaxPlainLen)
	}
	return identity, nil
}

func (Plain) Decode(key string) (string, error) {
	return key, nil
}

// New builds the codec for mode. ModeNone and "" yield Plain and ignore
// secret and salt.
func New(mode string, secret, salt []byte) (Codec, error) {
	switch strings.ToLower(mode) {
	case "", ModeNone:
		return Plain{}, nil
	case ModeHash:
		h, err := NewHash(secret, salt)
		if err != nil {
			return nil, err
		}
		return h, nil
	case ModeSeal:
		s, err := NewSealed(secret, salt)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown codec mode %q", mode)
	}
}

// validate applies the limits of the obfuscating codecs.
func validate(identity string) error {
	switch {
	case identity == "":
		return fmt.Errorf("%w: empty identity", ErrEncode)
	case len(identity) > MaxIdentityLen:
		return fmt.Errorf("%w: identity is %d bytes, max %d", ErrEncode, len(identity), MaxIdentityLen)
	case !utf8.ValidString(identity):
		return fmt.Errorf("%w: identity is not valid UTF-8", ErrEncode)
	}
	return nil
}

var logger = logging.For("keycodec")
