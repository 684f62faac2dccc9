package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// defaultCacheTTL keeps dashboards fresh while absorbing polling bursts.
const defaultCacheTTL = 60 * time.Second

// RedisCache stores aggregate results as JSON under a (center, period) key.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func cacheKey(centerID int, period Period) string {
	return fmt.Sprintf("dash:%d:%s", centerID, period)
}

func (c *RedisCache) GetResult(ctx context.Context, centerID int, period Period) (Result, bool, error) {
	raw, err := c.rdb.Get(ctx, cacheKey(centerID, period)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Result{}, false, nil
		}
		return Result{}, false, err
	}
	var out Result
	if err := json.Unmarshal(raw, &out); err != nil {
		// A corrupt entry is a miss, not a failure.
		return Result{}, false, nil
	}
	return out, true, nil
}

func (c *RedisCache) SetResult(ctx context.Context, centerID int, period Period, r Result) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, cacheKey(centerID, period), raw, c.ttl).Err()
}
