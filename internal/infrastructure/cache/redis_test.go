package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/example/storefront/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and a RedisCache pointing to it
func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisCache(client, 5*time.Minute), mr
}

func sampleProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Title: "Tea", Price: decimal.RequireFromString("100.00"), ImageURL: "tea.png"},
		{ID: 2, Title: "Cup", Price: decimal.RequireFromString("50.50")},
	}
}

func TestGetProducts_CacheMiss(t *testing.T) {
	cache, _ := setupTestRedis(t)

	products, err := cache.GetProducts(context.Background())

	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, products)
}

func TestSetThenGetProducts(t *testing.T) {
	cache, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.SetProducts(ctx, sampleProducts()))

	products, err := cache.GetProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Tea", products[0].Title)
	assert.True(t, products[1].Price.Equal(decimal.RequireFromString("50.5")))
}

func TestSetProducts_TTLWithJitter(t *testing.T) {
	cache, mr := setupTestRedis(t)

	require.NoError(t, cache.SetProducts(context.Background(), sampleProducts()))

	ttl := mr.TTL(productsKey)
	assert.GreaterOrEqual(t, ttl, 5*time.Minute)
	assert.Less(t, ttl, 6*time.Minute)
}

func TestGetProducts_Expired(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, cache.SetProducts(ctx, sampleProducts()))

	mr.FastForward(7 * time.Minute)

	_, err := cache.GetProducts(ctx)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestGetProducts_InvalidJSON(t *testing.T) {
	cache, mr := setupTestRedis(t)
	require.NoError(t, mr.Set(productsKey, "{not json"))

	_, err := cache.GetProducts(context.Background())

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestInvalidateProducts(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, cache.SetProducts(ctx, sampleProducts()))

	require.NoError(t, cache.InvalidateProducts(ctx))

	assert.False(t, mr.Exists(productsKey))
}

func TestGetProducts_ServerDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	cache := NewRedisCache(client, time.Minute)
	mr.Close()

	_, err = cache.GetProducts(context.Background())

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}
