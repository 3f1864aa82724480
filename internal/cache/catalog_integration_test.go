//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate redis: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestCachedCatalog_Redis(t *testing.T) {
	client := startRedis(t)
	next := &countingCatalog{}
	cached := NewCachedCatalog(next, client, time.Minute, zap.NewNop())
	ctx := context.Background()
	id := uuid.New()

	first, err := cached.GetProduct(ctx, id)
	require.NoError(t, err)
	second, err := cached.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, next.products)
	assert.Equal(t, first.StockQuantity, second.StockQuantity)
	assert.Equal(t, "Olive Grove", second.VendorName)

	_, err = cached.ListCategories(ctx)
	require.NoError(t, err)
	categories, err := cached.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, next.categories)
	assert.Equal(t, 1, categories[0].ProductCount)

	ttl, err := client.TTL(ctx, productKey(id)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	cached.InvalidateProducts(ctx, []uuid.UUID{id})

	refreshed, err := cached.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, next.products)
	assert.NotEqual(t, first.StockQuantity, refreshed.StockQuantity)
	_, err = cached.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, next.categories)
}
