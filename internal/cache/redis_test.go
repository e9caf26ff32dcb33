package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fjod/go_cart/superscan/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisCache instance
func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return NewRedisCache(client), mr, cleanup
}

func testCart(sessionID string) *domain.CartSnapshot {
	return &domain.CartSnapshot{
		SessionID: sessionID,
		Lines: []domain.CartLine{
			{ProductID: "pen", Name: "Pen", Price: decimal.RequireFromString("1.99"), Quantity: 2},
		},
		UpdatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestGet_Success(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	cart := testCart("register-1")
	data, _ := json.Marshal(cart)
	require.NoError(t, mr.Set(cacheKey("register-1"), string(data)))

	got, err := cache.Get(context.Background(), "register-1")
	require.NoError(t, err)
	assert.Equal(t, "register-1", got.SessionID)
	require.Len(t, got.Lines, 1)
	assert.True(t, decimal.RequireFromString("1.99").Equal(got.Lines[0].Price))
}

func TestGet_Miss(t *testing.T) {
	cache, _, cleanup := setupTestRedis(t)
	defer cleanup()

	got, err := cache.Get(context.Background(), "nobody")

	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, got)
}

func TestGet_CorruptData(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	require.NoError(t, mr.Set(cacheKey("r"), "{not json"))

	_, err := cache.Get(context.Background(), "r")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestSet_WritesWithTTL(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	require.NoError(t, cache.Set(context.Background(), "register-1", testCart("register-1")))

	assert.True(t, mr.Exists(cacheKey("register-1")))
	ttl := mr.TTL(cacheKey("register-1"))
	assert.GreaterOrEqual(t, ttl, 15*time.Minute)
	assert.Less(t, ttl, 20*time.Minute)

	mr.FastForward(21 * time.Minute)
	_, err := cache.Get(context.Background(), "register-1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestDelete(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "register-1", testCart("register-1")))
	require.NoError(t, cache.Delete(ctx, "register-1"))
	assert.False(t, mr.Exists(cacheKey("register-1")))

	require.NoError(t, cache.Delete(ctx, "never-set"))
}

func TestGet_ServerDown(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	mr.Close()

	_, err := cache.Get(context.Background(), "register-1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}
