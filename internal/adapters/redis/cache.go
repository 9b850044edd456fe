package redisad

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JCCTorres/toplist-backend-sub001/internal/adapters/observability"
)

// Cache keys are namespaced so the read layer can share a Redis DB with
// the token store without colliding.
const cacheKeyPrefix = "toplist:cache:"

// Cache is the Redis-backed JSON cache behind the read layer: listing
// pages and property views use the store TTL, availability/rates/review
// lookups the shorter live TTL.
type Cache struct{ rdb *redis.Client }

func New(addr, pass string, db int) *Cache {
	return &Cache{rdb: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})}
}

// NewWithClient wraps an existing client; tests hand in a miniredis-backed one.
func NewWithClient(c *redis.Client) *Cache { return &Cache{rdb: c} }

func (c *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, err := c.rdb.Get(ctx, cacheKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.ObserveCache("redis", "miss")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	observability.ObserveCache("redis", "hit")
	return true, json.Unmarshal(b, dst)
}

func (c *Cache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	observability.ObserveCache("redis", "set")
	return c.rdb.Set(ctx, cacheKeyPrefix+key, b, time.Duration(ttlSec)*time.Second).Err()
}

func (c *Cache) Del(ctx context.Context, key string) error {
	observability.ObserveCache("redis", "del")
	return c.rdb.Del(ctx, cacheKeyPrefix+key).Err()
}
