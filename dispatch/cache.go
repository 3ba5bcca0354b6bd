package dispatch

import "sync"

// Dispatch cache for Resolve
//
// Entries are keyed by the generic function's version and the signature
// text of the most specific around-or-primary candidate. Any define or
// remove bumps the version, so older entries can never be hit again; they
// are swept the first time a newer version is looked up.

// CacheStats holds dispatch cache statistics.
type CacheStats struct {
	Entries int     // Live entries for the current version
	Hits    uint64  // Total cache hits
	Misses  uint64  // Total cache misses
	Sweeps  uint64  // Number of times stale entries were dropped
	HitRate float64 // Hit rate percentage (0-100)
}

// DispatchCache maps (version, signature) to a Dispatcher.
// It is safe for concurrent use.
type DispatchCache struct {
	mu      sync.Mutex
	version uint64
	entries map[string]*Dispatcher

	hits   uint64
	misses uint64
	sweeps uint64
}

// NewDispatchCache creates an empty cache.
func NewDispatchCache() *DispatchCache {
	return &DispatchCache{entries: make(map[string]*Dispatcher)}
}

// sweepLocked drops entries older than version.
func (c *DispatchCache) sweepLocked(version uint64) {
	if version == c.version {
		return
	}
	if len(c.entries) > 0 {
		c.entries = make(map[string]*Dispatcher)
		c.sweeps++
	}
	c.version = version
}

// Lookup returns the cached dispatcher, or nil on a miss.
func (c *DispatchCache) Lookup(version uint64, signature string) *Dispatcher {
	c.mu.Lock()
	defer c.mu.Unlock()

	if version < c.version {
		c.misses++
		return nil
	}
	c.sweepLocked(version)
	if d := c.entries[signature]; d != nil {
		c.hits++
		return d
	}
	c.misses++
	return nil
}

// Store records d under (version, signature) unless an entry already
// exists, and returns the entry that is now cached. Stores for a stale
// version are not cached and return d unchanged.
func (c *DispatchCache) Store(version uint64, signature string, d *Dispatcher) *Dispatcher {
	c.mu.Lock()
	defer c.mu.Unlock()

	if version < c.version {
		return d
	}
	c.sweepLocked(version)
	if existing := c.entries[signature]; existing != nil {
		return existing
	}
	c.entries[signature] = d
	return d
}

// Stats returns a snapshot of the cache statistics.
func (c *DispatchCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := CacheStats{
		Entries: len(c.entries),
		Hits:    c.hits,
		Misses:  c.misses,
		Sweeps:  c.sweeps,
	}
	if total := c.hits + c.misses; total > 0 {
		stats.HitRate = float64(c.hits) * 100 / float64(total)
	}
	return stats
}

// Reset clears all entries and statistics.
func (c *DispatchCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*Dispatcher)
	c.hits = 0
	c.misses = 0
	c.sweeps = 0
}
