// CineCheck - LLM Movie Recommendation Validation
// Copyright 2026 CineCheck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinecheck/cinecheck

// Package cache provides the in-memory TTL+LRU cache for movie metadata.
//
// Entries are keyed by a normalized (title, year, source) tuple so that
// case, whitespace, punctuation, and leading-article variants of the same
// title share one entry. Expiry is lazy: a stale entry is discovered and
// removed on lookup, counting as both a miss and an eviction. When the
// cache is full, the least recently used entry (by read or write) is
// evicted.
//
// The cache is a single-process structure; a distributed cache is an
// explicit non-goal. All operations are safe for concurrent use.
package cache

import (
	"sync"
	"time"

	"github.com/cinecheck/cinecheck/internal/logging"
	"github.com/cinecheck/cinecheck/internal/metrics"
)

// entry is a node in the LRU list.
type entry struct {
	key       string
	source    string
	value     any
	createdAt time.Time
	ttl       time.Duration
	hits      int64

	prev *entry
	next *entry
}

// Stats holds cache counters. HitRatio is hits/total_requests, or 0 when no
// requests have been made.
type Stats struct {
	TotalRequests int64   `json:"total_requests"`
	Hits          int64   `json:"hits"`
	Misses        int64   `json:"misses"`
	Evictions     int64   `json:"evictions"`
	CurrentSize   int     `json:"current_size"`
	MaxSize       int     `json:"max_size"`
	HitRatio      float64 `json:"hit_ratio"`
	Enabled       bool    `json:"enabled"`
}

// Config holds cache configuration.
type Config struct {
	// TTL is the default entry lifetime. Default: 24h.
	TTL time.Duration

	// MaxSize is the maximum number of entries. Default: 1000.
	MaxSize int

	// Enabled toggles the cache. When false, Get always misses and
	// Set/Evict are no-ops, but Stats remains callable.
	Enabled bool
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{
		TTL:     24 * time.Hour,
		MaxSize: 1000,
		Enabled: true,
	}
}

// MovieCache is a thread-safe TTL+LRU cache for provider metadata.
//
// It uses a doubly-linked list for recency ordering and a map for O(1)
// lookup. head.next is the most recently used entry; tail.prev is the
// least recently used and the first to be evicted.
type MovieCache struct {
	mu sync.Mutex

	ttl     time.Duration
	maxSize int
	enabled bool

	items map[string]*entry
	head  *entry
	tail  *entry

	totalRequests int64
	hits          int64
	misses        int64
	evictions     int64
}

// New creates a MovieCache. Zero config values fall back to defaults;
// Enabled must be set explicitly (use DefaultConfig for an enabled cache).
func New(cfg Config) *MovieCache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultConfig().MaxSize
	}

	c := &MovieCache{
		ttl:     cfg.TTL,
		maxSize: cfg.MaxSize,
		enabled: cfg.Enabled,
		items:   make(map[string]*entry, cfg.MaxSize),
		head:    &entry{},
		tail:    &entry{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head

	logging.Info().
		Bool("enabled", c.enabled).
		Dur("ttl", c.ttl).
		Int("max_size", c.maxSize).
		Msg("Movie cache initialized")

	return c
}

// Get retrieves a cached value. year may be empty. A hit refreshes the
// entry's recency; a stale entry is removed and counted as a miss plus an
// eviction.
func (c *MovieCache) Get(title, year, source string) (any, bool) {
	if !c.enabled {
		return nil, false
	}

	key := NormalizeKey(title, year, source)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.totalRequests++

	e, ok := c.items[key]
	if !ok {
		c.misses++
		metrics.RecordCacheLookup(source, false)
		return nil, false
	}

	if age := time.Since(e.createdAt); age > e.ttl {
		c.removeEntry(e)
		c.misses++
		c.evictions++
		metrics.RecordCacheLookup(source, false)
		metrics.RecordCacheEvictions(1)
		metrics.SetCacheEntries(len(c.items))
		logging.Debug().Str("key", key).Dur("age", age).Msg("Cache entry expired")
		return nil, false
	}

	c.moveToFront(e)
	e.hits++
	c.hits++
	metrics.RecordCacheLookup(source, true)

	return e.value, true
}

// Set stores a value. An existing key is refreshed in place (value,
// timestamp, TTL, recency) without counting an eviction. A new key on a
// full cache evicts the least recently used entry first. ttl <= 0 uses the
// cache default.
func (c *MovieCache) Set(title string, value any, year, source string, ttl time.Duration) {
	if !c.enabled {
		return
	}

	key := NormalizeKey(title, year, source)
	if ttl <= 0 {
		ttl = c.ttl
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		e.value = value
		e.createdAt = time.Now()
		e.ttl = ttl
		e.source = source
		c.moveToFront(e)
		return
	}

	if len(c.items) >= c.maxSize {
		oldest := c.tail.prev
		if oldest != c.head {
			c.removeEntry(oldest)
			c.evictions++
			metrics.RecordCacheEvictions(1)
			logging.Debug().Str("key", oldest.key).Msg("Cache LRU eviction")
		}
	}

	e := &entry{
		key:       key,
		source:    source,
		value:     value,
		createdAt: time.Now(),
		ttl:       ttl,
	}
	c.addToFront(e)
	c.items[key] = e
	metrics.SetCacheEntries(len(c.items))
}

// Evict removes a single entry. Returns true if it was present.
func (c *MovieCache) Evict(title, year, source string) bool {
	if !c.enabled {
		return false
	}

	key := NormalizeKey(title, year, source)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return false
	}
	c.removeEntry(e)
	c.evictions++
	metrics.RecordCacheEvictions(1)
	metrics.SetCacheEntries(len(c.items))
	return true
}

// Clear removes entries whose source tag matches. An empty source removes
// everything. Returns the number of entries removed.
func (c *MovieCache) Clear(source string) int {
	if !c.enabled {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var removed int
	if source == "" {
		removed = len(c.items)
		c.items = make(map[string]*entry, c.maxSize)
		c.head.next = c.tail
		c.tail.prev = c.head
	} else {
		for e := c.tail.prev; e != c.head; {
			prev := e.prev
			if e.source == source {
				c.removeEntry(e)
				removed++
			}
			e = prev
		}
	}

	metrics.SetCacheEntries(len(c.items))
	logging.Info().Str("source", source).Int("removed", removed).Msg("Cache cleared")
	return removed
}

// CleanupExpired removes all expired entries eagerly. Returns the number
// removed. Intended for the periodic janitor; lazy expiry in Get is the
// primary mechanism.
func (c *MovieCache) CleanupExpired() int {
	if !c.enabled {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for e := c.tail.prev; e != c.head; {
		prev := e.prev
		if now.Sub(e.createdAt) > e.ttl {
			c.removeEntry(e)
			c.evictions++
			removed++
		}
		e = prev
	}

	if removed > 0 {
		metrics.RecordCacheEvictions(removed)
		metrics.SetCacheEntries(len(c.items))
	}
	return removed
}

// Len returns the current number of entries.
func (c *MovieCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns a snapshot of the cache counters.
func (c *MovieCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		TotalRequests: c.totalRequests,
		Hits:          c.hits,
		Misses:        c.misses,
		Evictions:     c.evictions,
		CurrentSize:   len(c.items),
		MaxSize:       c.maxSize,
		Enabled:       c.enabled,
	}
	if s.TotalRequests > 0 {
		s.HitRatio = float64(s.Hits) / float64(s.TotalRequests)
	}
	return s
}

// ResetStats zeroes the counters without touching cached entries.
func (c *MovieCache) ResetStats() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.totalRequests = 0
	c.hits = 0
	c.misses = 0
	c.evictions = 0
}

// Internal list operations (must be called with mu held)

func (c *MovieCache) addToFront(e *entry) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

func (c *MovieCache) moveToFront(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	c.addToFront(e)
}

func (c *MovieCache) removeEntry(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	delete(c.items, e.key)
}
