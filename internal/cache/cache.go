// Package cache memoizes fetched and derived artifacts for the lifetime of
// the process.
package cache

import (
	"sync"
	"time"
)

// DefaultTTL is the expiry applied to every entry unless configured
const DefaultTTL = 5 * time.Minute

// Key identifies one cached artifact
type Key int

const (
	KeySentiment Key = iota
	KeyPriceHistory
	KeyLongHistory
	KeyPiCycle
)

var keyNames = map[Key]string{
	KeySentiment:    "sentiment",
	KeyPriceHistory: "price_history",
	KeyLongHistory:  "long_history",
	KeyPiCycle:      "pi_cycle",
}

func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "unknown"
}

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache is a TTL key-value store. An entry written at T is returned for
// reads strictly before T+ttl.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]entry
	ttl     time.Duration
	now     func() time.Time
	observe func(key Key, hit bool)
}

// Option configures a Cache
type Option func(*Cache)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// WithObserver registers fn to be called on every Get with its outcome
func WithObserver(fn func(key Key, hit bool)) Option {
	return func(c *Cache) {
		c.observe = fn
	}
}

// New creates a cache with the given TTL; a non-positive ttl uses DefaultTTL
func New(ttl time.Duration, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		entries: make(map[Key]entry),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the configured expiry
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get returns the value for key if present and not expired
func (c *Cache) Get(key Key) (any, bool) {
	v, ok := c.get(key)
	if c.observe != nil {
		c.observe(key, ok)
	}
	return v, ok
}

func (c *Cache) get(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key, expiring ttl from now
func (c *Cache) Set(key Key, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Len returns the number of unexpired entries
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := 0
	for _, e := range c.entries {
		if now.Before(e.expiresAt) {
			n++
		}
	}
	return n
}

// Lookup is a typed Get. A value stored under key with a different type is
// reported as a miss.
func Lookup[T any](c *Cache, key Key) (T, bool) {
	var zero T
	v, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
