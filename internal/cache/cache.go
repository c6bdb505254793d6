// Package cache provides a two-tier key/value cache with TTL expiry and
// capacity-bounded eviction.
//
// The memory tier is always present and safe for concurrent use. The
// persistent tier (SQLite) is optional; any failure there degrades to
// memory-only behavior rather than propagating, so callers can treat the
// cache as infallible.
package cache

import (
	"sort"
	"sync"
	"time"

	"cci/internal/logging"
)

// DefaultTTL is the expiry applied by Set when no explicit TTL is given
const DefaultTTL = time.Hour

// DefaultMaxMemoryItems bounds the memory tier when no limit is configured
const DefaultMaxMemoryItems = 1000

// Entry is a cache record with bookkeeping metadata
type Entry struct {
	Key       string            `json:"key"`
	Value     interface{}       `json:"value"`
	CreatedAt time.Time         `json:"created_at"`
	ExpiresAt time.Time         `json:"expires_at,omitempty"` // zero = never expires
	HitCount  int               `json:"hit_count"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (e *Entry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// Stats reports cache effectiveness
type Stats struct {
	Hits          int     `json:"hits"`
	Misses        int     `json:"misses"`
	HitRate       float64 `json:"hitRate"`
	MemoryItems   int     `json:"memoryItems"`
	TotalRequests int     `json:"totalRequests"`
}

// Options configures a Cache
type Options struct {
	// TTL is the default entry lifetime; <= 0 means DefaultTTL
	TTL time.Duration
	// MaxMemoryItems bounds the memory tier; <= 0 means DefaultMaxMemoryItems
	MaxMemoryItems int
	// Dir enables the persistent tier when non-empty
	Dir string
	// Logger receives degradation notices; nil discards them
	Logger *logging.Logger
}

// Cache is the two-tier cache
type Cache struct {
	mu       sync.Mutex
	memory   map[string]*Entry
	hits     int
	misses   int
	ttl      time.Duration
	maxItems int
	persist  *persistTier // nil when disabled or degraded
	logger   *logging.Logger
	now      func() time.Time // injectable clock
}

// New creates a cache. When opts.Dir is set, a SQLite-backed persistent tier
// is opened under it; open failures disable the tier and are logged, never
// returned.
func New(opts Options) *Cache {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	maxItems := opts.MaxMemoryItems
	if maxItems <= 0 {
		maxItems = DefaultMaxMemoryItems
	}

	c := &Cache{
		memory:   make(map[string]*Entry),
		ttl:      ttl,
		maxItems: maxItems,
		logger:   logger,
		now:      time.Now,
	}

	if opts.Dir != "" {
		tier, err := openPersistTier(opts.Dir)
		if err != nil {
			logger.Warn("Persistent cache unavailable, continuing memory-only", map[string]interface{}{
				"dir":   opts.Dir,
				"error": err.Error(),
			})
		} else {
			c.persist = tier
		}
	}

	return c
}

// Get returns the cached value for key. Expired entries are purged on read
// and count as misses. A persistent-tier hit is promoted into memory.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()

	if entry, ok := c.memory[key]; ok {
		if entry.expired(now) {
			delete(c.memory, key)
			c.dropPersist(key)
			c.misses++
			return nil, false
		}
		entry.HitCount++
		c.hits++
		return entry.Value, true
	}

	if c.persist != nil {
		entry, err := c.persist.get(key)
		if err != nil {
			c.degrade("read", err)
		} else if entry != nil {
			if entry.expired(now) {
				c.dropPersist(key)
				c.misses++
				return nil, false
			}
			entry.HitCount++
			c.memory[key] = entry
			c.evictIfNeeded()
			c.hits++
			return entry.Value, true
		}
	}

	c.misses++
	return nil, false
}

// Set stores a value with the default TTL
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value. ttl <= 0 stores the entry without expiry.
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	entry := &Entry{
		Key:       key,
		Value:     value,
		CreatedAt: now,
	}
	if ttl > 0 {
		entry.ExpiresAt = now.Add(ttl)
	}

	c.memory[key] = entry
	c.evictIfNeeded()

	if c.persist != nil {
		if err := c.persist.put(entry); err != nil {
			c.degrade("write", err)
		}
	}
}

// Invalidate removes a key from both tiers
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.memory, key)
	c.dropPersist(key)
}

// Clear removes every entry from both tiers
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.memory = make(map[string]*Entry)
	if c.persist != nil {
		if err := c.persist.clear(); err != nil {
			c.degrade("clear", err)
		}
	}
}

// Stats returns a point-in-time snapshot of cache effectiveness
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	rate := 0.0
	if total > 0 {
		rate = float64(c.hits) / float64(total)
	}
	return Stats{
		Hits:          c.hits,
		Misses:        c.misses,
		HitRate:       rate,
		MemoryItems:   len(c.memory),
		TotalRequests: total,
	}
}

// Close releases the persistent tier, if any
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.persist != nil {
		err := c.persist.close()
		c.persist = nil
		return err
	}
	return nil
}

// evictIfNeeded removes the least-hit 10% of entries (minimum 1) when the
// memory tier exceeds its ceiling. Approximate LFU, not strict LRU.
// Caller must hold c.mu.
func (c *Cache) evictIfNeeded() {
	if len(c.memory) <= c.maxItems {
		return
	}

	type rankedEntry struct {
		key  string
		hits int
	}
	ranked := make([]rankedEntry, 0, len(c.memory))
	for key, entry := range c.memory {
		ranked = append(ranked, rankedEntry{key: key, hits: entry.HitCount})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].hits != ranked[j].hits {
			return ranked[i].hits < ranked[j].hits
		}
		return ranked[i].key < ranked[j].key
	})

	remove := len(ranked) / 10
	if remove < 1 {
		remove = 1
	}
	for _, r := range ranked[:remove] {
		delete(c.memory, r.key)
	}
}

// dropPersist best-effort deletes a key from the persistent tier.
// Caller must hold c.mu.
func (c *Cache) dropPersist(key string) {
	if c.persist == nil {
		return
	}
	if err := c.persist.delete(key); err != nil {
		c.degrade("delete", err)
	}
}

// degrade logs a persistent-tier failure. The tier stays attached; a single
// bad row should not disable persistence entirely.
func (c *Cache) degrade(op string, err error) {
	c.logger.Debug("Persistent cache "+op+" failed, treating as miss", map[string]interface{}{
		"error": err.Error(),
	})
}
