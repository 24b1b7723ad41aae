// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package validator

import (
	"context"
	"crypto/x509"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/arc/v2"
	"github.com/jonboulle/clockwork"
)

const (
	// maxCRLAge bounds how long a fetched CRL is served, whatever its NextUpdate says.
	maxCRLAge = 24 * time.Hour
	// expiryGrace is how long past NextUpdate an entry is kept before cleanup.
	expiryGrace = time.Hour
)

// CRLCacheEntry represents a cached CRL with metadata
type CRLCacheEntry struct {
	List       *x509.RevocationList
	Size       int       // Size of the encoded CRL in bytes
	FetchedAt  time.Time // When this CRL was fetched
	NextUpdate time.Time // When this CRL expires (from CRL.NextUpdate)
	URL        string    // Source URL for debugging
}

// isFresh reports whether NextUpdate is in the future and the CRL was fetched recently.
func (entry *CRLCacheEntry) isFresh(now time.Time) bool {
	return entry.NextUpdate.After(now) && entry.FetchedAt.After(now.Add(-maxCRLAge))
}

// isExpired reports whether NextUpdate passed more than the grace period ago.
func (entry *CRLCacheEntry) isExpired(now time.Time) bool {
	return entry.NextUpdate.Before(now.Add(-expiryGrace))
}

// CRLCacheConfig holds configuration for the CRL cache
type CRLCacheConfig struct {
	MaxSize         int           // Maximum number of CRLs to cache (default: 100)
	CleanupInterval time.Duration // How often Run removes expired CRLs (default: 1 hour)
}

// DefaultCRLCacheConfig is used for zero fields of a [CRLCacheConfig].
var DefaultCRLCacheConfig = CRLCacheConfig{
	MaxSize:         100,
	CleanupInterval: time.Hour,
}

// CRLCacheMetrics tracks cache performance and usage
type CRLCacheMetrics struct {
	Size        int64 // Current number of cached CRLs
	Hits        int64 // Number of cache hits
	Misses      int64 // Number of cache misses
	Evictions   int64 // Number of entries displaced by the replacement policy
	Cleanups    int64 // Number of expired CRL cleanups
	TotalMemory int64 // Approximate memory usage in bytes
}

// CRLCache keeps parsed CRLs by distribution point URL in a bounded adaptive
// replacement cache.
//
// Thread Safety: Safe for concurrent use.
type CRLCache struct {
	mu    sync.Mutex
	cache *arc.ARCCache[string, *CRLCacheEntry]
	cfg   CRLCacheConfig
	clock clockwork.Clock

	hits, misses, evictions, cleanups atomic.Int64
}

// NewCRLCache creates a CRL cache. A nil clock uses the wall clock.
//
// Parameters:
//   - cfg: Size and cleanup interval; zero fields take [DefaultCRLCacheConfig] values
//   - clock: Time source for freshness decisions
//
// Returns:
//   - *CRLCache: Empty cache
//   - error: Error if the cache cannot be allocated
func NewCRLCache(cfg CRLCacheConfig, clock clockwork.Clock) (*CRLCache, error) {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultCRLCacheConfig.MaxSize
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultCRLCacheConfig.CleanupInterval
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	cache, err := arc.NewARC[string, *CRLCacheEntry](cfg.MaxSize)
	if err != nil {
		return nil, fmt.Errorf("validator: creating CRL cache: %w", err)
	}
	return &CRLCache{cache: cache, cfg: cfg, clock: clock}, nil
}

// Config returns the effective configuration.
func (c *CRLCache) Config() CRLCacheConfig { return c.cfg }

// Get returns the fresh CRL cached for url.
func (c *CRLCache) Get(url string) (*x509.RevocationList, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.cache.Get(url)
	if !ok || !entry.isFresh(c.clock.Now()) {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return entry.List, true
}

// Set caches list, fetched from url now. size is the encoded length.
func (c *CRLCache) Set(url string, list *x509.RevocationList, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.cache.Contains(url) && c.cache.Len() >= c.cfg.MaxSize {
		c.evictions.Add(1)
	}
	c.cache.Add(url, &CRLCacheEntry{
		List:       list,
		Size:       size,
		FetchedAt:  c.clock.Now(),
		NextUpdate: list.NextUpdate,
		URL:        url,
	})
}

// Cleanup removes CRLs that expired beyond the grace period and returns how many.
func (c *CRLCache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	removed := 0
	for _, url := range c.cache.Keys() {
		entry, ok := c.cache.Peek(url)
		if ok && entry.isExpired(now) {
			c.cache.Remove(url)
			removed++
		}
	}
	c.cleanups.Add(int64(removed))
	return removed
}

// Run calls [CRLCache.Cleanup] every cleanup interval until ctx is done.
func (c *CRLCache) Run(ctx context.Context) error {
	t := c.clock.NewTicker(c.cfg.CleanupInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.Chan():
			c.Cleanup()
		}
	}
}

// Purge drops every entry and resets the counters.
func (c *CRLCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Purge()
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
	c.cleanups.Store(0)
}

// Metrics returns current cache metrics.
func (c *CRLCache) Metrics() CRLCacheMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	var totalMemory int64
	for _, entry := range c.cache.Values() {
		totalMemory += int64(entry.Size) + int64(len(entry.URL)) + 24 // Approximate overhead
	}

	return CRLCacheMetrics{
		Size:        int64(c.cache.Len()),
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Evictions:   c.evictions.Load(),
		Cleanups:    c.cleanups.Load(),
		TotalMemory: totalMemory,
	}
}

// Stats returns a formatted string with cache statistics.
func (c *CRLCache) Stats() string {
	metrics := c.Metrics()

	hitRate := float64(0)
	totalRequests := metrics.Hits + metrics.Misses
	if totalRequests > 0 {
		hitRate = float64(metrics.Hits) / float64(totalRequests) * 100
	}

	return fmt.Sprintf("CRL Cache Statistics:\n"+
		"  Size: %d/%d entries\n"+
		"  Memory Usage: %.2f KB\n"+
		"  Hit Rate: %.1f%% (%d hits, %d misses)\n"+
		"  Evictions: %d\n"+
		"  Cleanups: %d\n"+
		"  Cleanup Interval: %v",
		metrics.Size, c.cfg.MaxSize,
		float64(metrics.TotalMemory)/1024,
		hitRate, metrics.Hits, metrics.Misses,
		metrics.Evictions,
		metrics.Cleanups,
		c.cfg.CleanupInterval)
}
