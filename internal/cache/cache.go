package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned when a key is absent or expired
var ErrCacheMiss = errors.New("cache miss")

// Cache is a key space of short-lived, single-use values
type Cache interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Take returns the value and removes the key in one step, so concurrent
	// callers never both observe the same value.
	Take(ctx context.Context, key string) ([]byte, error)
	Close() error
}

// Key joins a namespace and an id
func Key(namespace, id string) string {
	return namespace + ":" + id
}
