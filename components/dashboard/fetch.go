package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-finboard/pkg/jsonkit"
)

const apiKeyHeader = "X-Api-Key"

// ClientConfig configures the upstream API client.
type ClientConfig struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Cache      *DataCache
	Logger     *zap.Logger
}

// Client talks to the upstream financial data API. Fetch decodes payloads
// and serves repeats through the data cache; Forward passes raw responses
// through for the proxy endpoint.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	cache   *DataCache
	logger  *zap.Logger
}

// NewClient validates the config and applies defaults: a 15 second HTTP
// timeout and a no-op logger. A nil cache disables caching.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("dashboard: client base URL is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    httpClient,
		cache:   cfg.Cache,
		logger:  logger,
	}, nil
}

// Fetch retrieves and decodes endpoint with params. Identical requests
// within the cache TTL are served from the cache without a network call.
func (c *Client) Fetch(ctx context.Context, endpoint string, params map[string]string) (jsonkit.Value, error) {
	if c.cache == nil {
		return c.fetch(ctx, endpoint, params)
	}
	return c.cache.GetOrFetch(CacheKey(endpoint, params), func() (jsonkit.Value, error) {
		return c.fetch(ctx, endpoint, params)
	})
}

func (c *Client) fetch(ctx context.Context, endpoint string, params map[string]string) (jsonkit.Value, error) {
	req, err := c.newRequest(ctx, endpoint, params)
	if err != nil {
		return jsonkit.Value{}, err
	}
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return jsonkit.Value{}, fmt.Errorf("dashboard: fetch %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("upstream fetch",
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return jsonkit.Value{}, fmt.Errorf("dashboard: fetch %s: upstream status %d: %s",
			endpoint, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	payload, err := jsonkit.Decode(resp.Body)
	if err != nil {
		return jsonkit.Value{}, fmt.Errorf("dashboard: fetch %s: %w", endpoint, err)
	}
	return payload, nil
}

// ForwardResult is an upstream response passed through unmodified.
type ForwardResult struct {
	Status int
	Body   []byte
	// JSON reports whether Body is a valid JSON document.
	JSON bool
}

// Forward performs a raw GET against endpoint and returns the upstream
// status and body untouched. It never consults the cache.
func (c *Client) Forward(ctx context.Context, endpoint string, params map[string]string) (ForwardResult, error) {
	req, err := c.newRequest(ctx, endpoint, params)
	if err != nil {
		return ForwardResult{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return ForwardResult{}, fmt.Errorf("dashboard: forward %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ForwardResult{}, fmt.Errorf("dashboard: forward %s: read body: %w", endpoint, err)
	}
	return ForwardResult{Status: resp.StatusCode, Body: body, JSON: json.Valid(body)}, nil
}

func (c *Client) newRequest(ctx context.Context, endpoint string, params map[string]string) (*http.Request, error) {
	if endpoint == "" || !strings.HasPrefix(endpoint, "/") {
		return nil, fmt.Errorf("dashboard: invalid endpoint %q", endpoint)
	}
	target := c.baseURL + endpoint
	if len(params) > 0 {
		q := url.Values{}
		for k, v := range params {
			if v == "" {
				continue
			}
			q.Set(k, v)
		}
		if encoded := q.Encode(); encoded != "" {
			target += "?" + encoded
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("dashboard: build request for %s: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}
	return req, nil
}

// CacheKey canonicalizes an endpoint and its parameters: keys are sorted
// and empty values dropped, so parameter order never splits cache entries.
func CacheKey(endpoint string, params map[string]string) string {
	if len(params) == 0 {
		return endpoint
	}
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return endpoint
	}
	sort.Strings(keys)
	var sb strings.Builder
	sb.WriteString(endpoint)
	sb.WriteByte('?')
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(k))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(params[k]))
	}
	return sb.String()
}

// Data cache defaults.
const (
	DefaultDataTTL        = 30 * time.Second
	DefaultDataMaxEntries = 256
)

type dataEntry struct {
	value   jsonkit.Value
	expires time.Time
}

// DataCache is a bounded TTL cache for decoded upstream payloads shared by
// every widget bound to the same endpoint and parameters.
type DataCache struct {
	ttl time.Duration
	max int

	mu      sync.Mutex
	entries map[string]dataEntry
	order   []string
	now     func() time.Time
}

// NewDataCache builds a cache. Non-positive ttl or maxEntries fall back to
// the defaults.
func NewDataCache(ttl time.Duration, maxEntries int) *DataCache {
	if ttl <= 0 {
		ttl = DefaultDataTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultDataMaxEntries
	}
	return &DataCache{
		ttl:     ttl,
		max:     maxEntries,
		entries: map[string]dataEntry{},
		now:     time.Now,
	}
}

// GetOrFetch returns the cached value for key when fresh, otherwise runs
// fetch and caches the result. Fetch errors are never cached.
func (c *DataCache) GetOrFetch(key string, fetch func() (jsonkit.Value, error)) (jsonkit.Value, error) {
	if v, ok := c.get(key); ok {
		return v, nil
	}
	v, err := fetch()
	if err != nil {
		return jsonkit.Value{}, err
	}
	c.set(key, v)
	return v, nil
}

// Invalidate drops a single key.
func (c *DataCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(key)
}

// Len reports the live entry count, expired entries included.
func (c *DataCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *DataCache) get(key string) (jsonkit.Value, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return jsonkit.Value{}, false
	}
	if c.now().After(entry.expires) {
		c.remove(key)
		return jsonkit.Value{}, false
	}
	return entry.value, true
}

func (c *DataCache) set(key string, v jsonkit.Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		if len(c.entries) >= c.max {
			c.evict()
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = dataEntry{value: v, expires: c.now().Add(c.ttl)}
}

// evict drops expired entries first, then the oldest insertion if the
// cache is still full.
func (c *DataCache) evict() {
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

func (c *DataCache) remove(key string) {
	if _, ok := c.entries[key]; !ok {
		return
	}
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
