package storage

import "context"

// KV is the narrow contract the core holds on durable key-value
// persistence. Each operation is independently atomic per key; no
// cross-key transactions are required.
type KV interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}
