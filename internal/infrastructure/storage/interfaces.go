package storage

// KV defines the persistent key-value contract consumed by the core.
// Values are opaque string blobs; callers own their own encoding.
// This interface allows swapping implementations (SQLite, PostgreSQL, etc.)
// and makes testing with mocks straightforward.
type KV interface {
	// Get retrieves the blob stored under key. The second return value
	// is false when the key is absent.
	Get(key string) (string, bool, error)

	// Put stores the blob under key, replacing any previous value.
	Put(key, value string) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(key string) error

	Close() error
}
