// Package storage provides the flat string-keyed persistent store shared by
// the weather cache and settings persistence. Implementations are expected to
// be best-effort: callers treat every failure mode short of a successful read
// as "missing" and never surface storage errors to users.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get when no value exists for the key.
	ErrNotFound = errors.New("storage: key not found")

	// ErrStoreFull is returned by Set when the backing medium rejects the
	// write for capacity reasons. The cache layer reacts by evicting
	// expired entries and retrying once.
	ErrStoreFull = errors.New("storage: store full")
)

// Store is a flat string-keyed, string-valued store with no transactions.
// All methods must be safe for concurrent use.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set writes key=value, overwriting any existing value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns every stored key beginning with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
