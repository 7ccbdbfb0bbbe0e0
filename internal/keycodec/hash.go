package keycodec

import (
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Hash is a one-way codec: the key is a keyed BLAKE2b-256 digest of the
// identity. Stored keys cannot be mapped back to identities.
type Hash struct {
	key []byte
}

// NewHash derives a Hash codec from secret and salt.
func NewHash(secret, salt []byte) (*Hash, error) {
	key, err := deriveKey(secret, salt, infoHash)
	if err != nil {
		return nil, fmt.Errorf("hash codec: %w", err)
	}
	return &Hash{key: key}, nil
}

func (h *Hash) Encode(identity string) (string, error) {
	if err := validate(identity); err != nil {
		return "", err
	}
	m, err := blake2b.New256(h.key)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncode, err)
	}
	m.Write([]byte(identity))
	return base64.RawURLEncoding.EncodeToString(m.Sum(nil)), nil
}
