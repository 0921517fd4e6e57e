package storage

import "context"

// Store is the minimal contract for nav persistence.
type Store interface {
	Close() error

	// Get returns the value stored under key. An absent key reports
	// ok=false with a nil error; reading before the schema exists is
	// treated as absent rather than a failure.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// GetOrInit returns the value stored under key, persisting and
	// returning def when the key is absent. Two concurrent callers for the
	// same key may race; the contract guarantees a non-corrupt value, not
	// a unique writer.
	GetOrInit(ctx context.Context, key string, def []byte) ([]byte, error)
}
