package identcache

import (
	"log/slog"
	"sync"
	"time"

	"rolodex/internal/logging"
)

const (
	// DefaultCapacity bounds the number of cached identifier mappings.
	DefaultCapacity = 4096
	// DefaultTTL is how long an entry stays valid after it is stored.
	DefaultTTL = 15 * time.Minute
)

type entry struct {
	contactID string
	expires   time.Time
}

// Cache is a bounded, TTL-based map from normalized identifier key to
// contact id. Safe for concurrent use.
type Cache struct {
	capacity int
	ttl      time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.RWMutex
	entries map[string]entry
}

// Option customizes cache construction.
type Option func(*Cache)

// WithClock overrides the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a cache with the given capacity and TTL. Non-positive values
// fall back to the package defaults.
func New(capacity int, ttl time.Duration, logger *slog.Logger, opts ...Option) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		capacity: capacity,
		ttl:      ttl,
		logger:   logging.NewComponentLogger(logger, "identcache"),
		now:      time.Now,
		entries:  make(map[string]entry, capacity),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup returns the cached contact id for a key, if present and unexpired.
func (c *Cache) Lookup(key string) (string, bool) {
	if key == "" {
		return "", false
	}

	c.mu.RLock()
	e, found := c.entries[key]
	c.mu.RUnlock()

	if !found {
		return "", false
	}
	if c.now().After(e.expires) {
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && cur.expires.Equal(e.expires) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return "", false
	}
	return e.contactID, true
}

// Store records a key to contact-id mapping with a fresh TTL.
func (c *Cache) Store(key, contactID string) {
	if key == "" || contactID == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		c.evictLocked(now)
	}
	c.entries[key] = entry{contactID: contactID, expires: now.Add(c.ttl)}
}

// Invalidate removes the given keys. Merges call this for every identifier
// value they touch while still holding their contact locks.
func (c *Cache) Invalidate(keys ...string) {
	if len(keys) == 0 {
		return
	}

	c.mu.Lock()
	removed := 0
	for _, key := range keys {
		if _, ok := c.entries[key]; ok {
			delete(c.entries, key)
			removed++
		}
	}
	c.mu.Unlock()

	if removed > 0 {
		c.logger.Debug("invalidated resolution cache entries",
			logging.Int("requested", len(keys)),
			logging.Int("removed", removed))
	}
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry, c.capacity)
	c.mu.Unlock()
}

// Len returns the number of live entries, counting any that have expired but
// not yet been evicted.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// evictLocked drops expired entries, or failing that the entry closest to
// expiry, to make room for one insert. Caller holds the write lock.
func (c *Cache) evictLocked(now time.Time) {
	var (
		oldestKey string
		oldest    time.Time
	)
	for key, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, key)
			continue
		}
		if oldestKey == "" || e.expires.Before(oldest) {
			oldestKey = key
			oldest = e.expires
		}
	}
	if len(c.entries) >= c.capacity && oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
