package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"rsvp-chunker/internal/chunker"
)

// Cache stores segmentation results. Segmentation is deterministic, so a result is
// reusable for any job with the same text and target length.
type Cache interface {
	// GetResult returns nil, nil on a miss.
	GetResult(ctx context.Context, key string) (*chunker.Result, error)

	SetResult(ctx context.Context, key string, result *chunker.Result, ttl time.Duration) error

	Close() error
}

// keyVersion changes whenever segmentation rules change, orphaning old entries.
const keyVersion = "v1"

// GenerateCacheKey derives the cache key for a (text, targetLength) pair.
func GenerateCacheKey(text string, targetLength int) string {
	h := sha256.New()
	h.Write([]byte(strconv.Itoa(targetLength)))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return keyVersion + ":" + hex.EncodeToString(h.Sum(nil))
}
