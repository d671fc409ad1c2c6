package money

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/tcgradar/signal-engine/internal/logger"
)

// RateFetcher fetches a live EUR/USD spot rate, e.g. from a forex API.
// Implementations are expected to apply their own per-request timeout.
type RateFetcher interface {
	FetchSpotRate(ctx context.Context) (decimal.Decimal, error)
}

// RateCache is a single-writer, multi-reader cached live-rate accessor in
// front of a spot rate, per SPEC_FULL.md §4.A: on fetch failure or a
// missing fetcher it falls back to a configured static rate, and the
// live value is refreshed at most once per TTL window regardless of how
// many concurrent readers ask for it (deduplicated via singleflight, the
// same mechanism the teacher uses to collapse concurrent PLEX-dashboard
// rebuilds in internal/api/server.go).
type RateCache struct {
	fetcher    RateFetcher
	staticRate decimal.Decimal
	ttl        time.Duration

	mu        sync.RWMutex
	cached     decimal.Decimal
	cachedAt   time.Time
	hasCached  bool

	group singleflight.Group
}

// NewRateCache constructs a RateCache. fetcher may be nil, in which case
// Rate always returns the static fallback.
func NewRateCache(fetcher RateFetcher, staticRate decimal.Decimal, ttl time.Duration) *RateCache {
	return &RateCache{fetcher: fetcher, staticRate: staticRate, ttl: ttl}
}

// Rate returns the current best-known spot rate: the cached live rate if
// still within its TTL, otherwise a fresh fetch (deduplicated across
// concurrent callers), falling back to the static rate on any fetch
// failure or when no fetcher is configured.
func (c *RateCache) Rate(ctx context.Context) decimal.Decimal {
	if c.fetcher == nil {
		return c.staticRate
	}

	c.mu.RLock()
	fresh := c.hasCached && time.Since(c.cachedAt) < c.ttl
	rate := c.cached
	c.mu.RUnlock()
	if fresh {
		return rate
	}

	v, err, _ := c.group.Do("rate", func() (any, error) {
		return c.fetcher.FetchSpotRate(ctx)
	})
	if err != nil {
		logger.Warn("FOREX", "live rate fetch failed, using static fallback", logger.F("error", err.Error()))
		return c.staticRate
	}

	newRate := v.(decimal.Decimal)
	c.mu.Lock()
	c.cached = newRate
	c.cachedAt = time.Now()
	c.hasCached = true
	c.mu.Unlock()
	return newRate
}
