package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no value is stored under a key.
	ErrNotFound = errors.New("store: not found")

	// ErrClosed is returned by every call on a closed backend.
	ErrClosed = errors.New("store: closed")

	// ErrInvalidKey is returned for keys that cannot be stored.
	ErrInvalidKey = errors.New("store: invalid key")

	// ErrCorrupt is returned when a stored frame fails its integrity checks.
	ErrCorrupt = errors.New("store: corrupt frame")

	// ErrUnknownBackend is returned by Open for an unsupported Config.Backend.
	ErrUnknownBackend = errors.New("store: unknown backend")
)

// Backend is a flat key-value store for encoded frames. Implementations are
// safe for concurrent use.
type Backend interface {
	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error
	// Get returns a copy of the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys returns the stored keys starting with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
	// Close releases the backend.
	Close() error
}
