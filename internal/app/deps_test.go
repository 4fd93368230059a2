package app

import (
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rsvp-chunker/internal/cache"
	"rsvp-chunker/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildCache(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name     string
		cfg      config.Config
		wantType any
		wantErr  bool
	}{
		{name: "disabled", cfg: config.Config{CacheProvider: "none"}, wantType: &cache.NoOpCache{}},
		{name: "redis reachable", cfg: config.Config{CacheProvider: "redis", RedisAddr: mr.Addr()}, wantType: &cache.RedisCache{}},
		{name: "redis unreachable falls back", cfg: config.Config{CacheProvider: "redis", RedisAddr: "127.0.0.1:1"}, wantType: &cache.NoOpCache{}},
		{name: "unknown provider", cfg: config.Config{CacheProvider: "memcached"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := buildCache(tt.cfg, discardLogger())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			t.Cleanup(func() { _ = c.Close() })
			assert.IsType(t, tt.wantType, c)
		})
	}
}

func TestBuildStoreAndQueueValidation(t *testing.T) {
	_, err := buildStore(config.Config{StoreProvider: "postgres"}, discardLogger())
	assert.ErrorContains(t, err, "DB_URL")

	_, err = buildStore(config.Config{StoreProvider: "sqlite"}, discardLogger())
	assert.ErrorContains(t, err, "invalid STORE_PROVIDER")

	_, err = buildQueue(config.Config{QueueProvider: "nats"}, discardLogger())
	assert.ErrorContains(t, err, "QUEUE_URL")

	_, err = buildQueue(config.Config{QueueProvider: "kafka"}, discardLogger())
	assert.ErrorContains(t, err, "invalid QUEUE_PROVIDER")
}

func TestBuildTokenizer(t *testing.T) {
	load, err := buildTokenizer(config.Config{Tokenizer: "kagome"}, discardLogger())
	require.NoError(t, err)
	assert.NotNil(t, load)

	_, err = buildTokenizer(config.Config{Tokenizer: "mecab"}, discardLogger())
	assert.Error(t, err)
}

func TestDepsCloseWithNothingOpen(t *testing.T) {
	assert.NoError(t, Deps{}.Close())
}
