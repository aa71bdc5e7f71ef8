package views

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildChartLine(t *testing.T) {
	payload := mustParse(t, `[{"price":10,"volume":100},{"price":12,"volume":90}]`)
	model, err := BuildChart(payload, ChartOptions{Type: "line", Title: "Prices"})
	require.NoError(t, err)
	assert.False(t, model.Empty)
	assert.Equal(t, ChartKindLine, model.Kind)
	assert.Equal(t, 2, model.Records)
	assert.Equal(t, []string{"price", "volume"}, model.Fields)
	assert.Contains(t, model.HTML, "echarts")
}

func TestBuildChartCandlestick(t *testing.T) {
	payload := mustParse(t, `[{"open":10,"close":12,"low":9,"high":13},{"open":12,"close":11,"low":10,"high":12}]`)
	model, err := BuildChart(payload, ChartOptions{Type: "candlestick"})
	require.NoError(t, err)
	assert.Equal(t, ChartKindKLine, model.Kind)
}

func TestBuildChartCandlestickFallsBackToLine(t *testing.T) {
	payload := mustParse(t, `[{"price":10},{"price":11}]`)
	model, err := BuildChart(payload, ChartOptions{Type: "candlestick"})
	require.NoError(t, err)
	assert.Equal(t, ChartKindLine, model.Kind)
}

func TestBuildChartEmptyPayload(t *testing.T) {
	model, err := BuildChart(mustParse(t, `{"name":"TCS"}`), ChartOptions{})
	require.NoError(t, err)
	assert.True(t, model.Empty)
	assert.Empty(t, model.HTML)
}

func TestBuildChartUsesCache(t *testing.T) {
	cache := &countingCache{inner: NewChartCache(time.Minute, 8)}
	payload := mustParse(t, `[{"v":1}]`)

	first, err := BuildChart(payload, ChartOptions{Cache: cache, CacheKey: "w1"})
	require.NoError(t, err)
	second, err := BuildChart(payload, ChartOptions{Cache: cache, CacheKey: "w1"})
	require.NoError(t, err)
	assert.Equal(t, first.HTML, second.HTML)
	assert.Equal(t, 1, cache.renders)

	// new data means a new cache key
	changed := mustParse(t, `[{"v":2}]`)
	_, err = BuildChart(changed, ChartOptions{Cache: cache, CacheKey: "w1"})
	require.NoError(t, err)
	assert.Equal(t, 2, cache.renders)
}

func TestChartCacheExpiry(t *testing.T) {
	cache := NewChartCache(time.Minute, 8)
	current := time.Unix(1000, 0)
	cache.now = func() time.Time { return current }

	calls := 0
	render := func() (string, error) {
		calls++
		return "html", nil
	}
	if _, err := cache.GetOrRender("k", render); err != nil {
		t.Fatalf("render: %v", err)
	}
	if _, err := cache.GetOrRender("k", render); err != nil {
		t.Fatalf("render: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected cached render, got %d calls", calls)
	}

	current = current.Add(2 * time.Minute)
	if _, err := cache.GetOrRender("k", render); err != nil {
		t.Fatalf("render: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected re-render after expiry, got %d calls", calls)
	}
}

func TestChartCacheBound(t *testing.T) {
	cache := NewChartCache(time.Hour, 2)
	render := func() (string, error) { return "html", nil }
	for _, key := range []string{"a", "b", "c"} {
		if _, err := cache.GetOrRender(key, render); err != nil {
			t.Fatalf("render: %v", err)
		}
	}
	if got := len(cache.entries); got != 2 {
		t.Fatalf("expected 2 entries after eviction, got %d", got)
	}
	if _, ok := cache.entries["a"]; ok {
		t.Fatalf("expected oldest entry to be evicted")
	}
}

func TestChartCacheDoesNotCacheErrors(t *testing.T) {
	cache := NewChartCache(time.Minute, 8)
	calls := 0
	fail := func() (string, error) {
		calls++
		return "", errors.New("boom")
	}
	_, err := cache.GetOrRender("k", fail)
	require.Error(t, err)
	_, err = cache.GetOrRender("k", fail)
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestPickField(t *testing.T) {
	fields := []string{"Open", "closePrice", "low", "dayHigh"}
	assert.Equal(t, "Open", pickField(fields, "open"))
	assert.Equal(t, "closePrice", pickField(fields, "close"))
	assert.Equal(t, "dayHigh", pickField(fields, "high"))
	assert.True(t, hasOHLC(fields))
	assert.False(t, hasOHLC([]string{"price"}))
	assert.Equal(t, "", pickField(fields, "volume"))
}

type countingCache struct {
	inner   *ChartCache
	renders int
}

func (c *countingCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	return c.inner.GetOrRender(key, func() (string, error) {
		c.renders++
		return render()
	})
}
