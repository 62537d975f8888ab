package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(url string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL -> %w", err)
	}

	return &RedisCache{
		client: redis.NewClient(opts),
		ttl:    ttl,
	}, nil
}

func balanceKey(memberID uint) string {
	return fmt.Sprintf("points:balance:%d", memberID)
}

// Get treats any Redis failure as a miss. The caller falls back to the
// ledger.
func (c *RedisCache) Get(ctx context.Context, memberID uint) (int, bool) {
	val, err := c.client.Get(ctx, balanceKey(memberID)).Result()
	if err != nil {
		if err != redis.Nil {
			zap.L().Warn("balance cache read failed", zap.Uint("memberID", memberID), zap.Error(err))
		}
		return 0, false
	}

	balance, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}

	return balance, true
}

func (c *RedisCache) Set(ctx context.Context, memberID uint, balance int) {
	err := c.client.Set(ctx, balanceKey(memberID), strconv.Itoa(balance), c.ttl).Err()
	if err != nil {
		zap.L().Warn("balance cache write failed", zap.Uint("memberID", memberID), zap.Error(err))
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, memberID uint) {
	if err := c.client.Del(ctx, balanceKey(memberID)).Err(); err != nil {
		zap.L().Warn("balance cache invalidation failed", zap.Uint("memberID", memberID), zap.Error(err))
	}
}
