package storage

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/gtank/cryptopasta"
)

// Encrypted wraps another KV and encrypts payloads at rest with AES-GCM,
// attaching an HMAC signature so tampering is detected on load. A payload
// that fails the signature check or decryption is reported as ErrMalformed,
// which the store treats like an absent key.
type Encrypted struct {
	inner KV
	key   *[32]byte
	sig   *[32]byte
}

// NewEncrypted builds the wrapper from two secrets of at least 32 characters:
// one for encryption, one for signing.
func NewEncrypted(inner KV, encryptionKey, signingKey string) (*Encrypted, error) {
	key, err := toKey(encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encryption key: %w", err)
	}
	sig, err := toKey(signingKey)
	if err != nil {
		return nil, fmt.Errorf("signing key: %w", err)
	}
	return &Encrypted{inner: inner, key: key, sig: sig}, nil
}

func (e *Encrypted) Load(ctx context.Context, key string) ([]byte, error) {
	sealed, err := e.inner.Load(ctx, key)
	if err != nil {
		return nil, err
	}

	bits := strings.SplitN(string(sealed), ".", 2)
	if len(bits) != 2 {
		return nil, ErrMalformed
	}
	cipher, err := base64.RawURLEncoding.DecodeString(bits[0])
	if err != nil {
		return nil, ErrMalformed
	}
	signature, err := base64.RawURLEncoding.DecodeString(bits[1])
	if err != nil {
		return nil, ErrMalformed
	}

	if !cryptopasta.CheckHMAC(cipher, signature, e.sig) {
		return nil, ErrMalformed
	}
	plain, err := cryptopasta.Decrypt(cipher, e.key)
	if err != nil {
		return nil, ErrMalformed
	}
	return plain, nil
}

func (e *Encrypted) Save(ctx context.Context, key string, payload []byte) error {
	cipher, err := cryptopasta.Encrypt(payload, e.key)
	if err != nil {
		return fmt.Errorf("encrypt %s: %w", key, err)
	}
	signature := cryptopasta.GenerateHMAC(cipher, e.sig)

	sealed := base64.RawURLEncoding.EncodeToString(cipher) +
		"." + base64.RawURLEncoding.EncodeToString(signature)
	return e.inner.Save(ctx, key, []byte(sealed))
}

func (e *Encrypted) Clear(ctx context.Context, key string) error {
	return e.inner.Clear(ctx, key)
}

// NewRandomKey generates a random secret suitable for NewEncrypted.
func NewRandomKey() (string, error) {
	raw := make([]byte, 33)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func toKey(s string) (*[32]byte, error) {
	if len(s) < 32 {
		return nil, fmt.Errorf("key too short, want at least 32 chars")
	}
	key := &[32]byte{}
	copy(key[:], s)
	return key, nil
}
