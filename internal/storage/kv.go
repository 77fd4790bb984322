// Package storage provides the persistence collaborator: a key-value store
// holding serialized collections. Saves are all-or-nothing per call, and a
// never-written key is reported as absent, distinguishable from an empty
// payload.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound reports a key that has never been written (or was cleared).
	ErrNotFound = errors.New("storage: key not found")

	// ErrMalformed reports a payload that exists but cannot be trusted, such
	// as one that fails decryption. Callers treat it like an absent key.
	ErrMalformed = errors.New("storage: malformed payload")
)

// KV is the persistence collaborator consumed by the transaction store.
type KV interface {
	// Load returns the payload stored under key, or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)
	// Save replaces the payload under key in one atomic write.
	Save(ctx context.Context, key string, payload []byte) error
	// Clear removes the key. Clearing an absent key is not an error.
	Clear(ctx context.Context, key string) error
}
