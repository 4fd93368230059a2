package cache

import (
	"context"
	"testing"
	"time"

	"rsvp-chunker/internal/chunker"
)

// TestNoOpCache verifies that NoOpCache never stores anything
func TestNoOpCache(t *testing.T) {
	var c Cache = NewNoOpCache()
	ctx := context.Background()

	result, err := c.GetResult(ctx, "test-key")
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if result != nil {
		t.Errorf("Expected nil result (cache miss), got %v", result)
	}

	err = c.SetResult(ctx, "test-key", &chunker.Result{
		Chunks: []chunker.Chunk{{Text: "今日は", StartToken: 0, EndToken: 1}},
	}, time.Hour)
	if err != nil {
		t.Errorf("Expected no error on SetResult, got %v", err)
	}

	result, err = c.GetResult(ctx, "test-key")
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if result != nil {
		t.Errorf("Expected nil result (no-op cache doesn't store), got %v", result)
	}

	if err := c.Close(); err != nil {
		t.Errorf("Expected no error on Close, got %v", err)
	}
}
