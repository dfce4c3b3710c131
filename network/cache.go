package network

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// CacheEntry is one cached response with its freshness metadata.
type CacheEntry struct {
	Response  Response
	MaxAge    time.Duration
	HasMaxAge bool // max-age explicitly set, including max-age=0
	Expires   time.Time
	CachedAt  time.Time
}

// IsExpired returns true once the entry is no longer fresh.
func (e *CacheEntry) IsExpired() bool {
	if e.HasMaxAge {
		return time.Since(e.CachedAt) > e.MaxAge
	}
	if !e.Expires.IsZero() {
		return time.Now().After(e.Expires)
	}
	// Entries without explicit freshness information keep for 5 minutes.
	return time.Since(e.CachedAt) > 5*time.Minute
}

// Cache is an in-memory response cache keyed by URL, with oldest-first
// eviction at capacity.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*CacheEntry
	maxSize int
}

// NewCache creates a cache holding at most maxSize entries.
func NewCache(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &Cache{
		entries: make(map[string]*CacheEntry),
		maxSize: maxSize,
	}
}

// Get returns a fresh cached entry for url, if one exists.
func (c *Cache) Get(url string) (*CacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[url]
	if !ok || entry.IsExpired() {
		return nil, false
	}
	return entry, true
}

// Set stores a response. Responses carrying a no-store directive are not
// cached.
func (c *Cache) Set(url string, resp *Response) {
	cacheControl := resp.Headers.Get("Cache-Control")
	if hasDirective(cacheControl, "no-store") || hasDirective(cacheControl, "no-cache") {
		return
	}

	entry := &CacheEntry{
		Response: *resp,
		CachedAt: time.Now(),
	}
	entry.MaxAge, entry.HasMaxAge = parseMaxAge(cacheControl)

	if !entry.HasMaxAge {
		if expires := resp.Headers.Get("Expires"); expires != "" {
			if t, err := http.ParseTime(expires); err == nil {
				entry.Expires = t
			}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}
	c.entries[url] = entry
}

// Delete removes the entry for url.
func (c *Cache) Delete(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, url)
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*CacheEntry)
}

// Size returns the number of entries.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// evictOldest removes the oldest entry. Caller holds c.mu.
func (c *Cache) evictOldest() {
	var oldestURL string
	var oldestTime time.Time

	for url, entry := range c.entries {
		if oldestURL == "" || entry.CachedAt.Before(oldestTime) {
			oldestURL = url
			oldestTime = entry.CachedAt
		}
	}
	if oldestURL != "" {
		delete(c.entries, oldestURL)
	}
}

func parseMaxAge(cacheControl string) (time.Duration, bool) {
	for _, directive := range strings.Split(cacheControl, ",") {
		directive = strings.TrimSpace(strings.ToLower(directive))
		if value, ok := strings.CutPrefix(directive, "max-age="); ok {
			seconds, err := strconv.Atoi(value)
			if err != nil || seconds < 0 {
				return 0, false
			}
			return time.Duration(seconds) * time.Second, true
		}
	}
	return 0, false
}

func hasDirective(cacheControl, directive string) bool {
	for _, d := range strings.Split(cacheControl, ",") {
		if strings.EqualFold(strings.TrimSpace(d), directive) {
			return true
		}
	}
	return false
}
