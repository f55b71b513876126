// Package cache provides a bounded in-memory store for remote catalog
// responses, with per-entry expiry and capacity eviction.
package cache

import (
	"sync"
	"time"
)

// entry is a cached value with its bookkeeping timestamps. storedAt drives
// expiry, lastAccess drives capacity eviction.
type entry struct {
	value      any
	storedAt   time.Time
	lastAccess time.Time
}

// Stats holds counters exposed for observability.
type Stats struct {
	Hits        int64
	Misses      int64
	Expirations int64
	Evictions   int64
	CurrentSize int
}

// Memory is a capacity-bounded TTL cache. A stored nil is a valid value
// (negative memoization for lookups known to find nothing) and is reported
// as a hit. All operations hold one mutex so eviction plus insert, and
// expiry check plus read, are each atomic.
type Memory struct {
	mu       sync.Mutex
	entries  map[string]*entry
	capacity int
	ttl      time.Duration
	stats    Stats

	now func() time.Time
}

// NewMemory creates a cache holding at most capacity entries, each valid
// for ttl after it was stored.
func NewMemory(capacity int, ttl time.Duration) *Memory {
	return &Memory{
		entries:  make(map[string]*entry, capacity),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the stored value for key. The second return reports whether a
// live entry was present; a nil value with true means a cached negative
// result. An expired entry is removed and reported as a miss.
func (c *Memory) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}

	now := c.now()
	if now.Sub(e.storedAt) > c.ttl {
		delete(c.entries, key)
		c.stats.Expirations++
		c.stats.Misses++
		return nil, false
	}

	e.lastAccess = now
	c.stats.Hits++
	return e.value, true
}

// Set stores value under key. When the cache is full and key is new, the
// entry with the oldest last access is evicted first.
func (c *Memory) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if e, ok := c.entries[key]; ok {
		e.value = value
		e.storedAt = now
		e.lastAccess = now
		return
	}

	if len(c.entries) >= c.capacity {
		c.evictOldestLocked()
	}

	c.entries[key] = &entry{value: value, storedAt: now, lastAccess: now}
}

// Delete removes the entry for key if present.
func (c *Memory) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear drops all entries.
func (c *Memory) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry, c.capacity)
}

// Len returns the current entry count.
func (c *Memory) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache counters.
func (c *Memory) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.CurrentSize = len(c.entries)
	return s
}

// evictOldestLocked removes the least-recently-accessed entry. Ties go to
// whichever qualifying key the map yields first. Caller holds the mutex.
func (c *Memory) evictOldestLocked() {
	var (
		oldestKey string
		oldest    time.Time
		found     bool
	)
	for key, e := range c.entries {
		if !found || e.lastAccess.Before(oldest) {
			oldestKey = key
			oldest = e.lastAccess
			found = true
		}
	}
	if found {
		delete(c.entries, oldestKey)
		c.stats.Evictions++
	}
}
