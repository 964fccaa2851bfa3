package propguard

import (
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
)

// ============================================================================
// CONTEXT CACHE
// ============================================================================

// DefaultContextTTL is how long a resolved UserContext stays usable before
// the resolver recomputes it.
const DefaultContextTTL = 5 * time.Minute

// ContextCache memoizes resolved contexts keyed by user id. Implementations
// are last-write-wins; concurrent resolutions for the same user may both
// write and the later one sticks, which is fine because resolution is
// idempotent.
type ContextCache interface {
	Get(userID string) (*UserContext, bool)
	Put(userID string, uc *UserContext)
	// Invalidate drops one user's entry (profile or role change).
	Invalidate(userID string)
	// InvalidateAll clears everything (global sign-out).
	InvalidateAll()
}

type cacheEntry struct {
	uc        *UserContext
	expiresAt time.Time
}

// MemoryContextCache is a TTL map cache. Staleness is resolved by expiry
// comparison on read, not by locking around the resolver; expired entries
// count as misses and are dropped.
type MemoryContextCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryContextCache(ttl time.Duration) *MemoryContextCache {
	if ttl <= 0 {
		ttl = DefaultContextTTL
	}
	return &MemoryContextCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// SetClock replaces the cache's time source. Tests use this to step through
// TTL boundaries deterministically.
func (c *MemoryContextCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *MemoryContextCache) Get(userID string) (*UserContext, bool) {
	c.mu.RLock()
	entry, ok := c.entries[userID]
	now := c.now()
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !now.Before(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, userID)
		c.mu.Unlock()
		return nil, false
	}
	return entry.uc, true
}

func (c *MemoryContextCache) Put(userID string, uc *UserContext) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = cacheEntry{uc: uc, expiresAt: c.now().Add(c.ttl)}
}

func (c *MemoryContextCache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}

func (c *MemoryContextCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		delete(c.entries, k)
	}
}

// RistrettoContextCache backs the context cache with a ristretto cache, for
// processes where context churn is high enough that admission control and
// cost-based eviction matter.
type RistrettoContextCache struct {
	cache *ristretto.Cache
	ttl   time.Duration
}

func NewRistrettoContextCache(numCounters, maxCost, bufferItems int64, ttl time.Duration) (*RistrettoContextCache, error) {
	if numCounters <= 0 {
		numCounters = 1 << 14
	}
	if maxCost <= 0 {
		maxCost = 1 << 20
	}
	if bufferItems <= 0 {
		bufferItems = 64
	}
	if ttl <= 0 {
		ttl = DefaultContextTTL
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: numCounters,
		MaxCost:     maxCost,
		BufferItems: bufferItems,
	})
	if err != nil {
		return nil, err
	}
	return &RistrettoContextCache{cache: c, ttl: ttl}, nil
}

func (c *RistrettoContextCache) Get(userID string) (*UserContext, bool) {
	v, ok := c.cache.Get(userID)
	if !ok {
		return nil, false
	}
	uc, ok := v.(*UserContext)
	return uc, ok
}

func (c *RistrettoContextCache) Put(userID string, uc *UserContext) {
	c.cache.SetWithTTL(userID, uc, 1, c.ttl)
	c.cache.Wait()
}

func (c *RistrettoContextCache) Invalidate(userID string) {
	c.cache.Del(userID)
}

func (c *RistrettoContextCache) InvalidateAll() {
	c.cache.Clear()
}
