// Package cache puts a Redis read-through layer in front of the catalog.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/harvesthub/marketplace/internal/domain"
	"github.com/harvesthub/marketplace/internal/repository"
	"github.com/harvesthub/marketplace/internal/service"
)

const categoriesKey = "categories:active"

func productKey(id uuid.UUID) string {
	return fmt.Sprintf("product:%s", id)
}

// CachedCatalog caches product detail and the category list. Redis failures
// fall through to the wrapped catalog.
type CachedCatalog struct {
	next   service.Catalog
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedCatalog wraps next with a Redis cache
func NewCachedCatalog(next service.Catalog, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedCatalog {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedCatalog{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// ListProducts is not cached; search and pagination make the key space unbounded
func (c *CachedCatalog) ListProducts(ctx context.Context, filter repository.ProductFilter) (*service.ProductListResult, error) {
	return c.next.ListProducts(ctx, filter)
}

func (c *CachedCatalog) GetProduct(ctx context.Context, id uuid.UUID) (*service.ProductDetail, error) {
	key := productKey(id)

	var cached service.ProductDetail
	if c.get(ctx, key, &cached) {
		return &cached, nil
	}

	detail, err := c.next.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, detail)
	return detail, nil
}

func (c *CachedCatalog) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	var cached []*domain.Category
	if c.get(ctx, categoriesKey, &cached) {
		return cached, nil
	}

	categories, err := c.next.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, categoriesKey, categories)
	return categories, nil
}

// InvalidateProducts evicts product entries and the category counts
func (c *CachedCatalog) InvalidateProducts(ctx context.Context, ids []uuid.UUID) {
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, productKey(id))
	}
	keys = append(keys, categoriesKey)

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("Failed to evict catalog cache", zap.Error(err), zap.Int("keys", len(keys)))
	}
}

func (c *CachedCatalog) get(ctx context.Context, key string, dst interface{}) bool {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Catalog cache read failed", zap.Error(err), zap.String("key", key))
		}
		return false
	}
	if err := json.Unmarshal(val, dst); err != nil {
		c.logger.Warn("Discarding undecodable cache entry", zap.Error(err), zap.String("key", key))
		return false
	}
	return true
}

func (c *CachedCatalog) set(ctx context.Context, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Catalog cache write failed", zap.Error(err), zap.String("key", key))
	}
}
