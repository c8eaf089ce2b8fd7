package external

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/opendeed/deedd/internal/ledgercore"
	"github.com/opendeed/deedd/internal/metrics"
)

// CachedRegions wraps a Regions collaborator with an LRU cache, the same
// shape as the teacher's LedgerCache in internal/core/ledger/manager: region
// metadata changes rarely (operator election, tax changes) compared to how
// often list_property/buy_property_token read it, so every primary-path
// operation would otherwise pay a round trip to the external region
// registry on every call.
type CachedRegions struct {
	mu       sync.Mutex
	upstream Regions
	cache    *lru.Cache[ledgercore.RegionID, RegionInfo]

	hits   uint64
	misses uint64
}

// NewCachedRegions wraps upstream with an LRU cache of the given size.
func NewCachedRegions(upstream Regions, size int) (*CachedRegions, error) {
	if size <= 0 {
		size = 256
	}
	c, err := lru.New[ledgercore.RegionID, RegionInfo](size)
	if err != nil {
		return nil, err
	}
	return &CachedRegions{upstream: upstream, cache: c}, nil
}

// Region implements Regions, serving from cache when possible.
func (c *CachedRegions) Region(ctx context.Context, region ledgercore.RegionID) (RegionInfo, bool, error) {
	c.mu.Lock()
	if info, ok := c.cache.Get(region); ok {
		c.hits++
		c.mu.Unlock()
		metrics.RegionCacheHits.Inc()
		return info, true, nil
	}
	c.misses++
	c.mu.Unlock()
	metrics.RegionCacheMisses.Inc()

	info, ok, err := c.upstream.Region(ctx, region)
	if err != nil || !ok {
		return info, ok, err
	}

	c.mu.Lock()
	c.cache.Add(region, info)
	c.mu.Unlock()
	return info, true, nil
}

// LocationRegistered always defers to the upstream collaborator: locations
// are not cached since they are checked once per listing, not once per
// subscription.
func (c *CachedRegions) LocationRegistered(ctx context.Context, region ledgercore.RegionID, location string) (bool, error) {
	return c.upstream.LocationRegistered(ctx, region, location)
}

// IsLawyer defers to the upstream collaborator.
func (c *CachedRegions) IsLawyer(ctx context.Context, region ledgercore.RegionID, account ledgercore.AccountID) (bool, error) {
	return c.upstream.IsLawyer(ctx, region, account)
}

// Stats returns cache hit/miss counters for metrics.
func (c *CachedRegions) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Invalidate drops a region from the cache, used after the (out-of-scope)
// region lifecycle mutates operator or tax settings.
func (c *CachedRegions) Invalidate(region ledgercore.RegionID) {
	c.mu.Lock()
	c.cache.Remove(region)
	c.mu.Unlock()
}
