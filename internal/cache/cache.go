// Package cache provides the balance read cache. The ledger remains the
// source of truth; every mutation invalidates, never writes through.
package cache

import (
	"context"
	"time"

	"github.com/popcornhub/points-api/internal/config"
)

const defaultBalanceTTL = 5 * time.Minute

type BalanceCache interface {
	Get(ctx context.Context, memberID uint) (int, bool)
	Set(ctx context.Context, memberID uint, balance int)
	Invalidate(ctx context.Context, memberID uint)
}

// New builds the cache from config: Redis when enabled, otherwise an
// in-process TTL map.
func New(conf *config.RedisConfig) (BalanceCache, error) {
	ttl := defaultBalanceTTL
	if conf != nil && conf.BalanceTTL != "" {
		parsed, err := time.ParseDuration(conf.BalanceTTL)
		if err != nil {
			return nil, err
		}
		ttl = parsed
	}

	if conf != nil && conf.Enabled {
		return NewRedisCache(conf.URL, ttl)
	}

	return NewMemoryCache(ttl), nil
}
