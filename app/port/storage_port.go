package port

import "context"

// DurableStore is the platform storage primitive behind the key-value
// cache: one opaque blob per process, read at startup and rewritten on
// every mutation.
type DurableStore interface {
	// Load returns the last persisted blob, or nil if none exists.
	Load(ctx context.Context) ([]byte, error)

	// Save replaces the persisted blob.
	Save(ctx context.Context, data []byte) error

	// Clear removes the persisted blob.
	Clear(ctx context.Context) error
}
