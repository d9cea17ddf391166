package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ashare-chanlun/cache"
	"ashare-chanlun/model"
)

// Cache is the Manager's read-through cache (spec §4.5). A hit bypasses
// the entire failover path.
type Cache interface {
	GetBars(code string, days int) ([]model.Bar, string, bool)
	SetBars(code string, days int, bars []model.Bar, source string, ttl time.Duration)
	GetQuote(code string) (*model.Quote, string, bool)
	SetQuote(code string, quote *model.Quote, source string, ttl time.Duration)
	// InvalidateQuote evicts a cached quote so the next GetRealtimeQuote
	// call bypasses the cache and re-queries the adapter chain.
	InvalidateQuote(code string)
}

type barEntry struct {
	bars      []model.Bar
	source    string
	expiresAt time.Time
}

type quoteEntry struct {
	quote     *model.Quote
	source    string
	expiresAt time.Time
}

// MemCache is the default in-memory implementation: one instance per
// Manager, never a package-level global, per spec §9's guidance that
// the adapter-local cache must be an instance field, not shared state.
type MemCache struct {
	mu     sync.Mutex
	bars   map[string]barEntry
	quotes map[string]quoteEntry
}

// NewMemCache builds an empty in-memory cache.
func NewMemCache() *MemCache {
	return &MemCache{
		bars:   make(map[string]barEntry),
		quotes: make(map[string]quoteEntry),
	}
}

func barKey(code string, days int) string {
	return fmt.Sprintf("%s:%d", code, days)
}

func (c *MemCache) GetBars(code string, days int) ([]model.Bar, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.bars[barKey(code, days)]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, "", false
	}
	return e.bars, e.source, true
}

func (c *MemCache) SetBars(code string, days int, bars []model.Bar, source string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bars[barKey(code, days)] = barEntry{bars: bars, source: source, expiresAt: time.Now().Add(ttl)}
}

func (c *MemCache) GetQuote(code string) (*model.Quote, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.quotes[code]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, "", false
	}
	return e.quote, e.source, true
}

func (c *MemCache) SetQuote(code string, quote *model.Quote, source string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quotes[code] = quoteEntry{quote: quote, source: source, expiresAt: time.Now().Add(ttl)}
}

func (c *MemCache) InvalidateQuote(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.quotes, code)
}

// redisCache is the optional distributed tier, built on the adapted
// teacher Redis client (cache/redis.go). It is selected by the caller
// when Redis configuration is present; the Manager is otherwise unaware
// of which Cache implementation it holds. Staleness between this tier
// and any other Manager's in-memory tier is acceptable per spec §9.
type redisCache struct {
	client *cache.RedisClient
}

// NewRedisCache wraps a connected RedisClient as a Manager Cache.
func NewRedisCache(client *cache.RedisClient) Cache {
	return &redisCache{client: client}
}

type cachedBars struct {
	Bars   []model.Bar
	Source string
}

type cachedQuote struct {
	Quote  *model.Quote
	Source string
}

func (c *redisCache) GetBars(code string, days int) ([]model.Bar, string, bool) {
	var v cachedBars
	ctx := context.Background()
	if err := c.client.Get(ctx, "bars:"+barKey(code, days), &v); err != nil {
		return nil, "", false
	}
	return v.Bars, v.Source, true
}

func (c *redisCache) SetBars(code string, days int, bars []model.Bar, source string, ttl time.Duration) {
	ctx := context.Background()
	_ = c.client.Set(ctx, "bars:"+barKey(code, days), cachedBars{Bars: bars, Source: source}, ttl)
}

func (c *redisCache) GetQuote(code string) (*model.Quote, string, bool) {
	var v cachedQuote
	ctx := context.Background()
	if err := c.client.Get(ctx, "quote:"+code, &v); err != nil {
		return nil, "", false
	}
	return v.Quote, v.Source, true
}

func (c *redisCache) SetQuote(code string, quote *model.Quote, source string, ttl time.Duration) {
	ctx := context.Background()
	_ = c.client.Set(ctx, "quote:"+code, cachedQuote{Quote: quote, Source: source}, ttl)
}

func (c *redisCache) InvalidateQuote(code string) {
	_ = c.client.Delete(context.Background(), "quote:"+code)
}
