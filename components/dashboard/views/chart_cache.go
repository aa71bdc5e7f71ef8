package views

import (
	"crypto/sha1"
	"encoding/hex"
	"sync"
	"time"

	"github.com/goliatone/go-finboard/pkg/jsonkit"
)

// Render cache defaults.
const (
	DefaultChartCacheTTL     = 30 * time.Second
	DefaultChartCacheEntries = 128
)

// RenderCache memoizes rendered chart markup.
type RenderCache interface {
	GetOrRender(key string, render func() (string, error)) (string, error)
}

type chartEntry struct {
	html    string
	expires time.Time
}

// ChartCache is a bounded TTL RenderCache. Rendering errors are never
// cached.
type ChartCache struct {
	ttl time.Duration
	max int

	mu      sync.Mutex
	entries map[string]chartEntry
	order   []string
	now     func() time.Time
}

// NewChartCache builds a cache; non-positive arguments use the defaults.
func NewChartCache(ttl time.Duration, maxEntries int) *ChartCache {
	if ttl <= 0 {
		ttl = DefaultChartCacheTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultChartCacheEntries
	}
	return &ChartCache{
		ttl:     ttl,
		max:     maxEntries,
		entries: map[string]chartEntry{},
		now:     time.Now,
	}
}

// GetOrRender returns the cached markup for key when fresh, otherwise runs
// render and caches the result.
func (c *ChartCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	c.mu.Lock()
	if entry, ok := c.entries[key]; ok && c.now().Before(entry.expires) {
		c.mu.Unlock()
		return entry.html, nil
	}
	c.mu.Unlock()

	html, err := render()
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	if _, ok := c.entries[key]; !ok {
		if len(c.entries) >= c.max {
			c.sweep()
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = chartEntry{html: html, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return html, nil
}

// sweep drops expired entries, then the oldest insertion if still full.
func (c *ChartCache) sweep() {
	now := c.now()
	kept := c.order[:0]
	for _, key := range c.order {
		if entry, ok := c.entries[key]; ok && now.After(entry.expires) {
			delete(c.entries, key)
			continue
		}
		kept = append(kept, key)
	}
	c.order = kept
	if len(c.entries) >= c.max && len(c.order) > 0 {
		delete(c.entries, c.order[0])
		c.order = c.order[1:]
	}
}

// PayloadHash fingerprints a payload so cache keys change whenever the
// underlying data does.
func PayloadHash(v jsonkit.Value) string {
	sum := sha1.Sum([]byte(v.String()))
	return hex.EncodeToString(sum[:])
}
