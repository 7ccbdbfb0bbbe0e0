package keycodec

import (
	"crypto/cipher"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20poly1305"
)

// Sealed is a reversible codec. The nonce is a keyed digest of the
// identity, so sealing is deterministic, and the XChaCha20-Poly1305 tag
// rejects keys that were not produced by the same secret and salt.
//
// Key layout: base64url(nonce[24] || ciphertext || tag[16]).
type Sealed struct {
	nonceKey []byte
	aead     cipher.AEAD
}

// NewSealed derives a Sealed codec from secret and salt.
func NewSealed(secret, salt []byte) (*Sealed, error) {
	nonceKey, err := deriveKey(secret, salt, infoNonce)
	if err != nil {
		return nil, fmt.Errorf("seal codec: %w", err)
	}
	aeadKey, err := deriveKey(secret, salt, infoSeal)
	if err != nil {
		return nil, fmt.Errorf("seal codec: %w", err)
	}
	aead, err := chacha20poly1305.NewX(aeadKey)
	if err != nil {
		return nil, fmt.Errorf("seal codec: %w", err)
	}
	return &Sealed{nonceKey: nonceKey, aead: aead}, nil
}

func (s *Sealed) Encode(identity string) (string, error) {
	if err := validate(identity); err != nil {
		return "", err
	}
	m, err := blake2b.New256(s.nonceKey)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncode, err)
	}
	m.Write([]byte(identity))
	nonce := m.Sum(nil)[:chacha20poly1305.NonceSizeX]

	out := make([]byte, 0, len(nonce)+len(identity)+s.aead.Overhead())
	out = append(out, nonce...)
	out = s.aead.Seal(out, nonce, []byte(identity), nil)
	return base64.RawURLEncoding.EncodeToString(out), nil
}

func (s *Sealed) Decode(key string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(key)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if len(raw) < chacha20poly1305.NonceSizeX+s.aead.Overhead() {
		return "", fmt.Errorf("%w: key too short", ErrDecode)
	}
	nonce, sealed := raw[:chacha20poly1305.NonceSizeX], raw[chacha20poly1305.NonceSizeX:]
	plain, err := s.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return string(plain), nil
}
