// Package storage persists small per-client string items, the server-side
// equivalent of a browser's localStorage. Each browser client gets its own
// namespace (Backend.Scope); the CLI uses a single file-backed namespace.
//
// The session store keeps exactly one item here: the bearer token under
// TokenKey. Missing items read as the empty string, never as an error.
package storage

import "context"

// TokenKey is the item key under which the bearer token is persisted.
const TokenKey = "token"

// Storage is one client's key/value namespace.
type Storage interface {
	// GetItem returns the stored value, or "" when the key is absent.
	GetItem(ctx context.Context, key string) (string, error)

	// SetItem stores value under key, replacing any previous value.
	SetItem(ctx context.Context, key, value string) error

	// RemoveItem deletes key. Removing an absent key is not an error.
	RemoveItem(ctx context.Context, key string) error
}

// Backend hands out per-client namespaces over shared infrastructure.
type Backend interface {
	Scope(clientID string) Storage
}
