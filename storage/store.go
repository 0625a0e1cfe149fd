// Package storage provides a key/value façade with per-key observers. Values
// are kept as canonical JSON entries in a pluggable Store and every read
// decodes a fresh copy.
//
// Storage is a sibling of state.State, not a layer beneath it: observers here
// run synchronously from Set and their errors are returned to the caller.
package storage

import "context"

// Store persists raw entries. Implementations perform no caching and must be
// safe for concurrent use.
type Store interface {
	// List returns all stored keys in lexical order.
	List(ctx context.Context) ([]string, error)
	// Load retrieves entries for the specified keys. A missing key fails
	// with ErrKeyNotFound.
	Load(ctx context.Context, keys ...string) ([]Entry, error)
	// Save writes entries, creating or overwriting as needed.
	Save(ctx context.Context, entries ...Entry) error
	// Delete removes entries. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
}
