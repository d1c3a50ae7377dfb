package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache implements Cache in process. Expired keys are evicted when
// they are next accessed; there is no background sweep.
type MemoryCache struct {
	mu   sync.Mutex
	data map[string]cacheItem
	now  func() time.Time
}

type cacheItem struct {
	value      []byte
	expiration time.Time
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithClock(time.Now)
}

// NewMemoryCacheWithClock creates an in-memory cache reading time from now
func NewMemoryCacheWithClock(now func() time.Time) *MemoryCache {
	return &MemoryCache{
		data: make(map[string]cacheItem),
		now:  now,
	}
}

// Set stores a value in cache, replacing any previous value and expiry
func (m *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = cacheItem{
		value:      value,
		expiration: m.now().Add(ttl),
	}
	return nil
}

// Take retrieves and removes a value
func (m *MemoryCache) Take(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.lookup(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	delete(m.data, key)
	return item.value, nil
}

// Close is a no-op for the memory cache
func (m *MemoryCache) Close() error {
	return nil
}

// lookup must be called with mu held
func (m *MemoryCache) lookup(key string) (cacheItem, bool) {
	item, exists := m.data[key]
	if !exists {
		return cacheItem{}, false
	}
	if !m.now().Before(item.expiration) {
		delete(m.data, key)
		return cacheItem{}, false
	}
	return item, true
}
