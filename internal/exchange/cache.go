package exchange

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tryDmitriyCatch/crypto-api/internal/domain"
)

// RateSource provides spot rates for a currency pair.
type RateSource interface {
	GetRate(ctx context.Context, base, quote string) (domain.ExchangeRate, error)
}

type cacheEntry struct {
	rate      domain.ExchangeRate
	expiresAt time.Time
}

// Cache is a cache-aside layer over a RateSource. Entries expire after the
// freshness window; concurrent misses for the same pair collapse into a
// single upstream fetch. The currency set is tiny and fixed, so expiry is
// time-based only, with no size bound.
type Cache struct {
	source RateSource
	ttl    time.Duration

	mu      sync.RWMutex
	entries map[string]cacheEntry

	group singleflight.Group
}

// NewCache wraps source with a TTL rate cache.
func NewCache(source RateSource, ttl time.Duration) *Cache {
	return &Cache{
		source:  source,
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// cacheKey formats "{base}=>{quote}", e.g. "BTC=>USD".
func cacheKey(base, quote string) string {
	return fmt.Sprintf("%s=>%s", base, quote)
}

// GetRate returns the cached rate when fresh, fetching from the source
// otherwise. Waiters abandoned by context cancellation return ctx.Err()
// without affecting the in-flight fetch for the remaining callers.
func (c *Cache) GetRate(ctx context.Context, base, quote string) (domain.ExchangeRate, error) {
	key := cacheKey(base, quote)
	if rate, ok := c.get(key); ok {
		return rate, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		// Re-check under the flight: a concurrent fetch may have landed.
		if rate, ok := c.get(key); ok {
			return rate, nil
		}
		rate, err := c.source.GetRate(ctx, base, quote)
		if err != nil {
			return domain.ExchangeRate{}, err
		}
		c.set(key, rate)
		return rate, nil
	})

	select {
	case <-ctx.Done():
		return domain.ExchangeRate{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.ExchangeRate{}, res.Err
		}
		return res.Val.(domain.ExchangeRate), nil
	}
}

func (c *Cache) get(key string) (domain.ExchangeRate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return domain.ExchangeRate{}, false
	}
	return entry.rate, true
}

func (c *Cache) set(key string, rate domain.ExchangeRate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		rate:      rate,
		expiresAt: time.Now().Add(c.ttl),
	}
}
