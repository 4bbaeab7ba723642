package repository

import (
	"context"
	"encoding/json"

	"github.com/kevinleven52/Ac.Connect/models"
	"github.com/redis/go-redis/v9"
)

const featuredCacheKey = "featured_products"

// FeaturedCache is the read-through cache for featured products.
type FeaturedCache interface {
	Get(ctx context.Context) ([]models.Product, bool, error)
	Set(ctx context.Context, products []models.Product) error
	Invalidate(ctx context.Context) error
}

// RedisFeaturedCache implements FeaturedCache on Redis. Entries have no TTL;
// the cache is rewritten whenever an admin toggles a featured flag.
type RedisFeaturedCache struct {
	client *redis.Client
}

// NewRedisFeaturedCache creates a new RedisFeaturedCache.
func NewRedisFeaturedCache(client *redis.Client) FeaturedCache {
	return &RedisFeaturedCache{client: client}
}

// Get returns the cached featured products; the second return is false on a
// cache miss.
func (c *RedisFeaturedCache) Get(ctx context.Context) ([]models.Product, bool, error) {
	data, err := c.client.Get(ctx, featuredCacheKey).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var products []models.Product
	if err := json.Unmarshal([]byte(data), &products); err != nil {
		return nil, false, err
	}
	return products, true, nil
}

func (c *RedisFeaturedCache) Set(ctx context.Context, products []models.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, featuredCacheKey, data, 0).Err()
}

func (c *RedisFeaturedCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, featuredCacheKey).Err()
}
