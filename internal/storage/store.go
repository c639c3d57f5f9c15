// internal/storage/store.go
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key has no value.
var ErrNotFound = errors.New("storage: key not found")

// Keys under which session state is persisted. The store is shared by every
// agent instance of the same origin; writes are last-write-wins with no lock,
// matching the backing store's semantics.
const (
	KeySessionState = "session:state"
	KeyAccessToken  = "session:access_token"
)

// Store is the persisted key-value store behind the credential store.
// Implementations: redis.Client (shared across instances), memory.Client
// (single-process dev and tests).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}
