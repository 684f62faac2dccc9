package traffic

import (
	"context"
	"fmt"
	"time"

	"callcenter-platform/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// seedLockTTL must outlive the slowest realistic reseed of one center.
const seedLockTTL = 5 * time.Minute

// RedisLocker serializes reseeds per center through a shared redis instance,
// so concurrent API replicas cannot interleave delete/insert on one center.
type RedisLocker struct {
	rdb *redis.Client
}

func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{rdb: rdb}
}

func (l *RedisLocker) Acquire(ctx context.Context, centerID int) (func(), bool, error) {
	key := fmt.Sprintf("seed:center:%d", centerID)
	ok, err := utils.AcquireSeedLock(ctx, l.rdb, key, seedLockTTL)
	if err != nil || !ok {
		return nil, ok, err
	}
	release := func() {
		// Release on a fresh context; the run's context may already be done.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = utils.ReleaseSeedLock(releaseCtx, l.rdb, key)
	}
	return release, true, nil
}
