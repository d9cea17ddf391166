// Package cache wraps go-redis/v9 as the Manager's optional distributed
// cache tier (provider/cache.go's redisCache), adapted from the
// teacher's generic Redis wrapper to this domain's two operations: bars
// and quotes, read-through with a TTL, nothing else.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient is a thin, JSON-marshaling wrapper over *redis.Client.
// Real-time pub/sub is out of scope here (spec §1's streaming Non-goal
// covers only continuous quote delivery, not this cache tier, but
// nothing in the provider needs a message bus either), so this wrapper
// exposes only what the cache tier actually calls: Get, Set, Delete.
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient dials host:port and pings once; a failed ping returns
// nil so the caller can pass a MemCache to the Manager instead of
// failing startup over an optional dependency.
func NewRedisClient(host, port, password string) *RedisClient {
	addr := fmt.Sprintf("%s:%s", host, port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("cache: redis ping to %s failed: %v, distributed cache tier disabled", addr, err)
		return nil
	}
	return &RedisClient{client: client}
}

// Set stores a JSON-marshaled value under key with the given expiration.
func (r *RedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("cache: redis client not initialized")
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, raw, expiration).Err()
}

// Get unmarshals the value stored at key into dest.
func (r *RedisClient) Get(ctx context.Context, key string, dest interface{}) error {
	if r.client == nil {
		return fmt.Errorf("cache: redis client not initialized")
	}
	raw, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(raw), dest)
}

// Delete removes a cached entry, used by the Manager's InvalidateQuote to
// force the next read to bypass a stale distributed-tier hit.
func (r *RedisClient) Delete(ctx context.Context, key string) error {
	if r.client == nil {
		return fmt.Errorf("cache: redis client not initialized")
	}
	return r.client.Del(ctx, key).Err()
}
