package keycodec

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// HKDF info labels. Changing one re-keys every stored item.
const (
	infoHash  = "android-store/keycodec/hash/v1"
	infoNonce = "android-store/keycodec/seal-nonce/v1"
	infoSeal  = "android-store/keycodec/seal-aead/v1"
)

var errNoSecret = errors.New("codec secret is empty")

// deriveKey expands secret and salt into a 32-byte sub-key bound to info.
func deriveKey(secret, salt []byte, info string) ([]byte, error) {
	if len(secret) == 0 {
		return nil, errNoSecret
	}
	key := make([]byte, 32)
	r := hkdf.New(sha256.New, secret, salt, []byte(info))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("deriving %s key: %w", info, err)
	}
	return key, nil
}
