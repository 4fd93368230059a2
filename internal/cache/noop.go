package cache

import (
	"context"
	"time"

	"rsvp-chunker/internal/chunker"
)

// NoOpCache is a cache implementation that does nothing.
// Used when CACHE_PROVIDER=none or Redis is unreachable: every lookup misses.
type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) GetResult(ctx context.Context, key string) (*chunker.Result, error) {
	return nil, nil
}

func (c *NoOpCache) SetResult(ctx context.Context, key string, result *chunker.Result, ttl time.Duration) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}
