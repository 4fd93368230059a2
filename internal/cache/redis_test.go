package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rsvp-chunker/internal/chunker"
)

func setupRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCacheFromClient(client)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func sampleResult() *chunker.Result {
	return &chunker.Result{
		Tokens: []chunker.Token{
			{Surface: "今日", Category: "名詞", Offset: 0},
			{Surface: "は", Category: chunker.CategoryParticle, Offset: 2},
		},
		Chunks: []chunker.Chunk{{Text: "今日は", Line: 0, StartToken: 0, EndToken: 1}},
	}
}

func TestRedisCacheRoundTrip(t *testing.T) {
	c, mr := setupRedisCache(t)
	ctx := context.Background()
	key := GenerateCacheKey("今日は", 10)

	require.NoError(t, c.SetResult(ctx, key, sampleResult(), time.Hour))
	assert.True(t, mr.Exists(cacheKeyPrefix+key))

	got, err := c.GetResult(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, sampleResult(), got)
}

func TestRedisCacheMiss(t *testing.T) {
	c, _ := setupRedisCache(t)

	got, err := c.GetResult(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisCacheExpires(t *testing.T) {
	c, mr := setupRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetResult(ctx, "k", sampleResult(), time.Minute))
	mr.FastForward(2 * time.Minute)

	got, err := c.GetResult(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisCacheCorruptEntry(t *testing.T) {
	c, mr := setupRedisCache(t)
	require.NoError(t, mr.Set(cacheKeyPrefix+"k", "not json"))

	_, err := c.GetResult(context.Background(), "k")
	assert.Error(t, err)
}

func TestRedisCacheServerDown(t *testing.T) {
	c, mr := setupRedisCache(t)
	mr.Close()

	_, err := c.GetResult(context.Background(), "k")
	assert.Error(t, err)
}

func TestNewRedisCacheUnreachable(t *testing.T) {
	_, err := NewRedisCache("127.0.0.1:1", "")
	assert.Error(t, err)
}

func TestGenerateCacheKey(t *testing.T) {
	a := GenerateCacheKey("今日は晴れです。", 10)
	assert.Equal(t, a, GenerateCacheKey("今日は晴れです。", 10), "keys must be stable")
	assert.NotEqual(t, a, GenerateCacheKey("今日は晴れです。", 11))
	assert.NotEqual(t, a, GenerateCacheKey("今日は晴れです", 10))
	// The separator keeps "1"+"0abc" distinct from "10"+"abc".
	assert.NotEqual(t, GenerateCacheKey("0abc", 1), GenerateCacheKey("abc", 10))
}
