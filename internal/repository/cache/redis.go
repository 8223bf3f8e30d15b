package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Pesokrava/product_reviews/internal/domain"
)

// RedisCache caches review lists per product and order token
type RedisCache struct {
	client         *redis.Client
	reviewsListTTL time.Duration
}

// NewRedisCache creates a new Redis cache instance
func NewRedisCache(client *redis.Client, reviewsListTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:         client,
		reviewsListTTL: reviewsListTTL,
	}
}

func (c *RedisCache) reviewsListKey(productID uuid.UUID, version int64, order string) string {
	return fmt.Sprintf("product:%s:reviews:v%d:order:%s", productID.String(), version, order)
}

func (c *RedisCache) reviewsVersionKey(productID uuid.UUID) string {
	return fmt.Sprintf("product:%s:reviews:version", productID.String())
}

func (c *RedisCache) productCacheKeysSet(productID uuid.UUID) string {
	return fmt.Sprintf("product:%s:cache_keys", productID.String())
}

// ReviewsListVersion returns the current generation of a product's cached
// review lists. It must be read before querying storage: a list is only ever
// stored under the version observed before the query, so a list that misses a
// concurrently created review lands under a version nobody reads anymore.
// The version key has no TTL so it can never go back to an old value.
func (c *RedisCache) ReviewsListVersion(ctx context.Context, productID uuid.UUID) (int64, error) {
	version, err := c.client.Get(ctx, c.reviewsVersionKey(productID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return version, err
}

// GetReviewsList retrieves a cached review list; a miss yields domain.ErrNotFound
func (c *RedisCache) GetReviewsList(ctx context.Context, productID uuid.UUID, version int64, order string) ([]*domain.Review, error) {
	key := c.reviewsListKey(productID, version, order)
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var reviews []*domain.Review
	if err := json.Unmarshal(val, &reviews); err != nil {
		return nil, err
	}

	return reviews, nil
}

// SetReviewsList stores a review list under a version and tracks its key in a per-product SET
func (c *RedisCache) SetReviewsList(ctx context.Context, productID uuid.UUID, version int64, order string, reviews []*domain.Review) error {
	key := c.reviewsListKey(productID, version, order)
	trackingKey := c.productCacheKeysSet(productID)

	data, err := json.Marshal(reviews)
	if err != nil {
		return err
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, key, data, c.reviewsListTTL)
	pipe.SAdd(ctx, trackingKey, key)
	pipe.Expire(ctx, trackingKey, c.reviewsListTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// InvalidateReviewsList bumps the product's list version, then frees every
// list cached so far. Call it after the write it invalidates has committed.
func (c *RedisCache) InvalidateReviewsList(ctx context.Context, productID uuid.UUID) error {
	if err := c.client.Incr(ctx, c.reviewsVersionKey(productID)).Err(); err != nil {
		return err
	}

	trackingKey := c.productCacheKeysSet(productID)
	keys, err := c.client.SMembers(ctx, trackingKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	if len(keys) > 0 {
		keys = append(keys, trackingKey)
		return c.client.Unlink(ctx, keys...).Err()
	}

	return nil
}

// NopCache disables review list caching
type NopCache struct{}

// ReviewsListVersion is always zero
func (NopCache) ReviewsListVersion(ctx context.Context, productID uuid.UUID) (int64, error) {
	return 0, nil
}

// GetReviewsList always misses
func (NopCache) GetReviewsList(ctx context.Context, productID uuid.UUID, version int64, order string) ([]*domain.Review, error) {
	return nil, domain.ErrNotFound
}

// SetReviewsList discards the list
func (NopCache) SetReviewsList(ctx context.Context, productID uuid.UUID, version int64, order string, reviews []*domain.Review) error {
	return nil
}

// InvalidateReviewsList does nothing
func (NopCache) InvalidateReviewsList(ctx context.Context, productID uuid.UUID) error {
	return nil
}
