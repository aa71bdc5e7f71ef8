package dashboard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-finboard/pkg/jsonkit"
)

func TestCacheKeyCanonicalizesParams(t *testing.T) {
	a := CacheKey("/stock", map[string]string{"name": "TCS", "period": "1m"})
	b := CacheKey("/stock", map[string]string{"period": "1m", "name": "TCS"})
	assert.Equal(t, a, b)
	assert.Equal(t, "/stock?name=TCS&period=1m", a)
}

func TestCacheKeyDropsEmptyValues(t *testing.T) {
	assert.Equal(t, "/news", CacheKey("/news", map[string]string{"filter": ""}))
	assert.Equal(t, "/news", CacheKey("/news", nil))
}

func TestCacheKeyEscapesValues(t *testing.T) {
	key := CacheKey("/industry_search", map[string]string{"query": "oil & gas"})
	assert.Equal(t, "/industry_search?query=oil+%26+gas", key)
}

func TestDataCacheServesRepeatsWithinTTL(t *testing.T) {
	cache := NewDataCache(time.Minute, 10)
	calls := 0
	fetch := func() (jsonkit.Value, error) {
		calls++
		return jsonkit.Parse([]byte(`{"n": 1}`))
	}

	for i := 0; i < 3; i++ {
		v, err := cache.GetOrFetch("/trending", fetch)
		require.NoError(t, err)
		assert.Equal(t, jsonkit.Object, v.Kind())
	}
	assert.Equal(t, 1, calls)
}

func TestDataCacheExpiry(t *testing.T) {
	cache := NewDataCache(30*time.Second, 10)
	current := time.Now()
	cache.now = func() time.Time { return current }

	calls := 0
	fetch := func() (jsonkit.Value, error) {
		calls++
		return jsonkit.Parse([]byte(`{}`))
	}

	cache.GetOrFetch("/news", fetch)
	current = current.Add(31 * time.Second)
	cache.GetOrFetch("/news", fetch)
	assert.Equal(t, 2, calls)
}

func TestDataCacheBound(t *testing.T) {
	cache := NewDataCache(time.Minute, 2)
	fetch := func() (jsonkit.Value, error) { return jsonkit.Parse([]byte(`{}`)) }

	cache.GetOrFetch("/a", fetch)
	cache.GetOrFetch("/b", fetch)
	cache.GetOrFetch("/c", fetch)

	assert.Equal(t, 2, cache.Len())
	// oldest insertion evicted
	calls := 0
	cache.GetOrFetch("/a", func() (jsonkit.Value, error) {
		calls++
		return jsonkit.Parse([]byte(`{}`))
	})
	assert.Equal(t, 1, calls)
}

func TestDataCacheNeverCachesErrors(t *testing.T) {
	cache := NewDataCache(time.Minute, 10)
	calls := 0
	_, err := cache.GetOrFetch("/x", func() (jsonkit.Value, error) {
		calls++
		return jsonkit.Value{}, assert.AnError
	})
	require.Error(t, err)
	_, err = cache.GetOrFetch("/x", func() (jsonkit.Value, error) {
		calls++
		return jsonkit.Parse([]byte(`{}`))
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestClientFetchDecodesAndAuthenticates(t *testing.T) {
	var gotKey, gotAccept string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`{"companyName": "Tata Consultancy Services"}`))
	}))
	defer upstream.Close()

	client, err := NewClient(ClientConfig{BaseURL: upstream.URL, APIKey: "secret"})
	require.NoError(t, err)

	v, err := client.Fetch(context.Background(), "/stock", map[string]string{"name": "TCS"})
	require.NoError(t, err)
	name, ok := v.Get("companyName")
	require.True(t, ok)
	assert.Equal(t, "Tata Consultancy Services", name.Str())
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "application/json", gotAccept)
}

func TestClientFetchReportsUpstreamStatus(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("rate limited"))
	}))
	defer upstream.Close()

	client, err := NewClient(ClientConfig{BaseURL: upstream.URL})
	require.NoError(t, err)

	_, err = client.Fetch(context.Background(), "/news", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate limited")
}

func TestClientFetchUsesCache(t *testing.T) {
	var hits atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{}`))
	}))
	defer upstream.Close()

	client, err := NewClient(ClientConfig{
		BaseURL: upstream.URL,
		Cache:   NewDataCache(time.Minute, 10),
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := client.Fetch(context.Background(), "/trending", nil)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestClientRejectsRelativeEndpoints(t *testing.T) {
	client, err := NewClient(ClientConfig{BaseURL: "http://localhost"})
	require.NoError(t, err)

	_, err = client.Fetch(context.Background(), "trending", nil)
	require.Error(t, err)
	_, err = client.Fetch(context.Background(), "", nil)
	require.Error(t, err)
}

func TestClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(ClientConfig{})
	require.Error(t, err)
}

func TestForwardSkipsCache(t *testing.T) {
	var hits atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"ok": true}`))
	}))
	defer upstream.Close()

	client, err := NewClient(ClientConfig{
		BaseURL: upstream.URL,
		Cache:   NewDataCache(time.Minute, 10),
	})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		result, err := client.Forward(context.Background(), "/trending", nil)
		require.NoError(t, err)
		assert.True(t, result.JSON)
		assert.Equal(t, http.StatusOK, result.Status)
	}
	assert.Equal(t, int32(2), hits.Load())
}
