package cache

import (
	"crypto/md5"
	"encoding/hex"
	"sync"
	"time"
)

type entry struct {
	value      any
	expiresAt  time.Time
	lastAccess time.Time
}

// Cache is an in-memory TTL cache with LRU eviction, sized for analysis
// results: the same description asked twice within the TTL window hits the
// cache instead of the model.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]*entry
	maxSize    int
	defaultTTL time.Duration
}

func New(maxSize int, defaultTTL time.Duration) *Cache {
	if maxSize <= 0 {
		maxSize = 1000
	}
	if defaultTTL <= 0 {
		defaultTTL = 30 * time.Minute
	}
	return &Cache{
		entries:    make(map[string]*entry),
		maxSize:    maxSize,
		defaultTTL: defaultTTL,
	}
}

// Key derives a stable cache key from the given parts.
func Key(parts ...string) string {
	h := md5.New()
	for _, p := range parts {
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	now := time.Now()
	if now.After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	e.lastAccess = now
	return e.value, true
}

func (c *Cache) Set(key string, value any) {
	c.SetTTL(key, value, c.defaultTTL)
}

func (c *Cache) SetTTL(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictLRU()
	}
	now := time.Now()
	c.entries[key] = &entry{
		value:      value,
		expiresAt:  now.Add(ttl),
		lastAccess: now,
	}
}

// evictLRU removes the least recently used entry. Caller holds the lock.
func (c *Cache) evictLRU() {
	var lruKey string
	var lruTime time.Time
	for key, e := range c.entries {
		if lruKey == "" || e.lastAccess.Before(lruTime) {
			lruKey = key
			lruTime = e.lastAccess
		}
	}
	if lruKey != "" {
		delete(c.entries, lruKey)
	}
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

// CleanupExpired drops expired entries and reports how many were removed.
func (c *Cache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}
