// Package ttlcache provides a concurrent in-memory cache with per-entry
// expiry, a soft capacity bound and atomic disk snapshots. One instance is
// meant to back one logical dataset (e.g. TV show details, OMDB ratings).
package ttlcache

import (
	"hash/fnv"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	numShards = 16

	// evictTargetRatio leaves headroom after an eviction pass so the very
	// next Put does not trigger another full scan.
	evictTargetRatio = 0.75

	defaultTTL          = 24 * time.Hour
	defaultCapacity     = 1000
	defaultCleanupEvery = time.Hour
)

type Options struct {
	// Name tags log lines, e.g. "tv_details".
	Name string
	// TTL is the maximum age of an entry before Get stops returning it.
	TTL time.Duration
	// Capacity is a soft bound on the number of entries, enforced by the
	// periodic cleanup pass rather than on every write.
	Capacity int
	// CleanupEvery throttles how often a Put may trigger a cleanup pass.
	CleanupEvery time.Duration
}

type entry[V any] struct {
	value     V
	createdAt time.Time
}

type shard[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
}

// Cache is a sharded string-keyed cache. All methods are safe for concurrent
// use; per-key operations are atomic, global scans only lock one shard at a
// time so they never stall unrelated reads.
type Cache[V any] struct {
	shards       [numShards]*shard[V]
	name         string
	ttl          time.Duration
	capacity     int
	cleanupEvery time.Duration

	lastCleanup atomic.Int64 // unix seconds of the last cleanup pass
	dirty       atomic.Bool  // mutated since the last successful save
	saving      atomic.Bool  // single-flight guard for disk saves

	now func() time.Time
}

func New[V any](opts Options) *Cache[V] {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.Capacity <= 0 {
		opts.Capacity = defaultCapacity
	}
	if opts.CleanupEvery <= 0 {
		opts.CleanupEvery = defaultCleanupEvery
	}
	if opts.Name == "" {
		opts.Name = "cache"
	}

	c := &Cache[V]{
		name:         opts.Name,
		ttl:          opts.TTL,
		capacity:     opts.Capacity,
		cleanupEvery: opts.CleanupEvery,
		now:          time.Now,
	}
	for i := range c.shards {
		c.shards[i] = &shard[V]{entries: make(map[string]entry[V])}
	}
	return c
}

// Name returns the label the cache was created with.
func (c *Cache[V]) Name() string {
	return c.name
}

func (c *Cache[V]) shardFor(key string) *shard[V] {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return c.shards[h.Sum32()%numShards]
}

func (c *Cache[V]) expired(e entry[V], now time.Time) bool {
	return now.Sub(e.createdAt) >= c.ttl
}

// Get returns the cached value if present and not expired. An expired entry
// is removed on the same call, so a subsequent Get never observes stale data.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	s := c.shardFor(key)
	now := c.now()

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return zero, false
	}
	if !c.expired(e, now) {
		return e.value, true
	}

	s.mu.Lock()
	// Re-check under the write lock: a concurrent Put may have refreshed it.
	if e, ok := s.entries[key]; ok && c.expired(e, c.now()) {
		delete(s.entries, key)
		c.dirty.Store(true)
		logrus.Debugf("[CACHE] %s: removed expired entry %q", c.name, key)
	}
	s.mu.Unlock()
	return zero, false
}

// Put inserts or overwrites a value, stamping the current time. It may
// trigger an amortized cleanup pass (at most once per CleanupEvery).
func (c *Cache[V]) Put(key string, value V) {
	s := c.shardFor(key)
	s.mu.Lock()
	s.entries[key] = entry[V]{value: value, createdAt: c.now()}
	s.mu.Unlock()

	c.dirty.Store(true)
	c.maybeCleanup()
}

// Len returns the number of entries, expired ones included until the next
// cleanup or Get touches them.
func (c *Cache[V]) Len() int {
	n := 0
	for _, s := range c.shards {
		s.mu.RLock()
		n += len(s.entries)
		s.mu.RUnlock()
	}
	return n
}

// Flush drops every entry.
func (c *Cache[V]) Flush() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.entries = make(map[string]entry[V])
		s.mu.Unlock()
	}
	c.dirty.Store(true)
}

func (c *Cache[V]) maybeCleanup() {
	now := c.now().Unix()
	last := c.lastCleanup.Load()
	if now-last < int64(c.cleanupEvery.Seconds()) {
		return
	}
	if !c.lastCleanup.CompareAndSwap(last, now) {
		return // another goroutine won the pass
	}
	c.Cleanup()
}

// Cleanup enforces the eviction policy: expired entries are dropped first;
// if the cache is still over capacity, the oldest entries are dropped until
// the size falls to 75% of capacity.
func (c *Cache[V]) Cleanup() {
	now := c.now()
	removed := 0
	for _, s := range c.shards {
		s.mu.Lock()
		for k, e := range s.entries {
			if c.expired(e, now) {
				delete(s.entries, k)
				removed++
			}
		}
		s.mu.Unlock()
	}

	if over := c.Len() - c.capacity; over > 0 {
		removed += c.evictOldest()
	}
	if removed > 0 {
		c.dirty.Store(true)
		logrus.Debugf("[CACHE] %s: cleanup removed %d entries, %d remain", c.name, removed, c.Len())
	}
}

type agedKey struct {
	key       string
	shard     int
	createdAt time.Time
}

func (c *Cache[V]) evictOldest() int {
	var all []agedKey
	for i, s := range c.shards {
		s.mu.RLock()
		for k, e := range s.entries {
			all = append(all, agedKey{key: k, shard: i, createdAt: e.createdAt})
		}
		s.mu.RUnlock()
	}

	target := int(float64(c.capacity) * evictTargetRatio)
	if len(all) <= target {
		return 0
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].createdAt.Before(all[j].createdAt)
	})

	removed := 0
	for _, ak := range all[:len(all)-target] {
		s := c.shards[ak.shard]
		s.mu.Lock()
		// Only drop the entry if it was not refreshed since the scan.
		if e, ok := s.entries[ak.key]; ok && e.createdAt.Equal(ak.createdAt) {
			delete(s.entries, ak.key)
			removed++
		}
		s.mu.Unlock()
	}
	return removed
}
