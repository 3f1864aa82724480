package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/harvesthub/marketplace/internal/domain"
	"github.com/harvesthub/marketplace/internal/repository"
	"github.com/harvesthub/marketplace/internal/service"
)

type countingCatalog struct {
	mu         sync.Mutex
	products   int
	categories int
	lists      int
}

func (c *countingCatalog) ListProducts(ctx context.Context, filter repository.ProductFilter) (*service.ProductListResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists++
	return &service.ProductListResult{Products: []*domain.ProductListing{}}, nil
}

func (c *countingCatalog) GetProduct(ctx context.Context, id uuid.UUID) (*service.ProductDetail, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products++
	return &service.ProductDetail{
		ProductListing: &domain.ProductListing{
			Product:    domain.Product{ID: id, Name: "Olive Oil", StockQuantity: 5 - c.products},
			VendorName: "Olive Grove",
		},
		Reviews: []*domain.Review{},
	}, nil
}

func (c *countingCatalog) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.categories++
	return []*domain.Category{{ID: uuid.New(), Name: "Pantry", Slug: "pantry", ProductCount: c.categories}}, nil
}

func unreachableRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestCachedCatalog_FallsThroughWhenRedisIsDown(t *testing.T) {
	next := &countingCatalog{}
	client := unreachableRedis()
	defer client.Close()
	cached := NewCachedCatalog(next, client, time.Minute, zap.NewNop())
	id := uuid.New()

	for i := 0; i < 2; i++ {
		detail, err := cached.GetProduct(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "Olive Oil", detail.Name)

		categories, err := cached.ListCategories(context.Background())
		require.NoError(t, err)
		assert.Len(t, categories, 1)
	}
	assert.Equal(t, 2, next.products)
	assert.Equal(t, 2, next.categories)

	// eviction errors are logged, never surfaced
	cached.InvalidateProducts(context.Background(), []uuid.UUID{id})
}

func TestCachedCatalog_ListProductsIsNotCached(t *testing.T) {
	next := &countingCatalog{}
	client := unreachableRedis()
	defer client.Close()
	cached := NewCachedCatalog(next, client, 0, zap.NewNop())

	for i := 0; i < 3; i++ {
		_, err := cached.ListProducts(context.Background(), repository.ProductFilter{})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, next.lists)
	assert.Equal(t, 5*time.Minute, cached.ttl)
}

func TestProductKey(t *testing.T) {
	id := uuid.MustParse("6f1c7a52-3d8e-4b59-9a43-1f0b2f5e8c11")
	assert.Equal(t, "product:6f1c7a52-3d8e-4b59-9a43-1f0b2f5e8c11", productKey(id))
}
