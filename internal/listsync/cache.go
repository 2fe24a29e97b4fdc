package listsync

import "sync"

// CacheStore is the on-device persistence surface: an opaque blob per user
// key. Implementations own serialization durability; the engine only
// round-trips JSON through it.
type CacheStore interface {
	Get(userKey string) ([]byte, error)
	Set(userKey string, blob []byte) error
	Clear(userKey string) error
}

// NoopCache discards writes and returns nothing. It is the default: list
// state survives process restarts via revalidation, not via the cache.
type NoopCache struct{}

func (NoopCache) Get(string) ([]byte, error) { return nil, nil }

func (NoopCache) Set(string, []byte) error { return nil }

func (NoopCache) Clear(string) error { return nil }

// MemoryCache is an in-process CacheStore for tests
type MemoryCache struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

// NewMemoryCache creates an empty in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{blobs: make(map[string][]byte)}
}

func (m *MemoryCache) Get(userKey string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.blobs[userKey]...), nil
}

func (m *MemoryCache) Set(userKey string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[userKey] = append([]byte(nil), blob...)
	return nil
}

func (m *MemoryCache) Clear(userKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, userKey)
	return nil
}
