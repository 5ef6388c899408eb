package v1_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexusai/broker/internal/broker"
	"github.com/nexusai/broker/internal/broker/catalog"
	"github.com/nexusai/broker/internal/broker/ratelimit"
	"github.com/nexusai/broker/internal/broker/registry"
	"github.com/nexusai/broker/internal/config"
	"github.com/nexusai/broker/internal/server/middleware"
	v1 "github.com/nexusai/broker/internal/server/v1"
	"github.com/nexusai/broker/internal/store/cache/memory"
	"github.com/nexusai/broker/pkg/api"
)

func newModelEnv(t *testing.T, providers map[string]*fakeProvider, priorities map[string]int) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := registry.New()
	limits := make(map[string]int, len(providers))
	for id, p := range providers {
		cfg := config.ProviderConfig{
			ID: id, Name: id, Kind: "groq", APIKey: "test-key",
			Priority: priorities[id], RateLimit: 30,
		}
		require.NoError(t, reg.Register(context.Background(), cfg, p))
		limits[id] = 30
	}

	lim := ratelimit.New(limits)
	cat := catalog.New(reg)
	cat.Refresh(context.Background())

	dispatcher := broker.NewDispatcher(reg, lim, cat, nil)
	handler := v1.NewModelHandler(cat, reg, lim, dispatcher.Stats(), memory.NewMemoryCache())

	router := gin.New()
	router.Use(middleware.ErrorHandler())
	router.GET("/api/models", handler.ListModels)
	router.POST("/api/models/refresh", handler.RefreshModels)
	router.GET("/api/providers/status", handler.ProviderStatus)

	return &env{router: router, registry: reg, limiter: lim, catalog: cat, dispatcher: dispatcher}
}

func get(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListModels(t *testing.T) {
	e := newModelEnv(t,
		map[string]*fakeProvider{
			"groq":   {id: "groq", models: []api.ModelDescriptor{desc("groq", "llama-3.1-8b-instant", 0.00005)}},
			"openai": {id: "openai", models: []api.ModelDescriptor{desc("openai", "gpt-4o-mini", 0.00015)}},
		},
		map[string]int{"groq": 1, "openai": 2},
	)

	w := get(t, e.router, "/api/models")
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.ModelsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, 2, resp.TotalCount)
	assert.True(t, resp.MultiProviderEnabled)
	assert.Equal(t, "llama-3.1-8b-instant", resp.Models[0].ID)
	assert.Len(t, resp.Providers, 2)
	assert.True(t, resp.Providers["groq"].Enabled)
	assert.Equal(t, 30, resp.Providers["groq"].RateLimit)
}

func TestListModelsFilterByProvider(t *testing.T) {
	e := newModelEnv(t,
		map[string]*fakeProvider{
			"groq":   {id: "groq", models: []api.ModelDescriptor{desc("groq", "llama-3.1-8b-instant", 0.00005)}},
			"openai": {id: "openai", models: []api.ModelDescriptor{desc("openai", "gpt-4o-mini", 0.00015)}},
		},
		map[string]int{"groq": 1, "openai": 2},
	)

	w := get(t, e.router, "/api/models?provider=openai")
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.ModelsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Models, 1)
	assert.Equal(t, "gpt-4o-mini", resp.Models[0].ID)
	assert.Equal(t, 1, resp.TotalCount)
}

func TestRefreshModelsInvalidatesCachedListing(t *testing.T) {
	groq := &fakeProvider{id: "groq", models: []api.ModelDescriptor{desc("groq", "llama-3.1-8b-instant", 0.00005)}}
	e := newModelEnv(t,
		map[string]*fakeProvider{"groq": groq},
		map[string]int{"groq": 1},
	)

	// Prime the cache with the one-model listing.
	w := get(t, e.router, "/api/models")
	require.Equal(t, http.StatusOK, w.Code)

	// The provider grows a model; the cached listing does not see it yet.
	groq.models = append(groq.models, desc("groq", "llama-3.1-70b-versatile", 0.0002))
	w = get(t, e.router, "/api/models")
	var stale api.ModelsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stale))
	assert.Equal(t, 1, stale.TotalCount)

	// Refresh re-lists upstream and busts the cache.
	req := httptest.NewRequest(http.MethodPost, "/api/models/refresh", nil)
	rw := httptest.NewRecorder()
	e.router.ServeHTTP(rw, req)
	require.Equal(t, http.StatusOK, rw.Code)

	var refreshed api.ModelsResponse
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &refreshed))
	assert.Equal(t, 2, refreshed.TotalCount)

	w = get(t, e.router, "/api/models")
	var fresh api.ModelsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fresh))
	assert.Equal(t, 2, fresh.TotalCount)
}

func TestProviderStatusReflectsWindowUsage(t *testing.T) {
	e := newModelEnv(t,
		map[string]*fakeProvider{
			"groq": {id: "groq", models: []api.ModelDescriptor{desc("groq", "llama-3.1-8b-instant", 0.00005)}},
		},
		map[string]int{"groq": 1},
	)

	e.limiter.Allow("groq")
	e.limiter.Allow("groq")

	w := get(t, e.router, "/api/providers/status")
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.ProvidersResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	st, ok := resp.Providers["groq"]
	require.True(t, ok)
	assert.True(t, st.Enabled)
	assert.Equal(t, 2, st.RequestsLastMinute)
	assert.Equal(t, 1, st.Priority)
	assert.False(t, st.Degraded)
}

func TestProviderStatusCarriesDispatchCounters(t *testing.T) {
	groq := &fakeProvider{
		id:     "groq",
		models: []api.ModelDescriptor{desc("groq", "llama-3.1-8b-instant", 0.00005)},
		reply:  "ok",
	}
	e := newModelEnv(t,
		map[string]*fakeProvider{"groq": groq},
		map[string]int{"groq": 1},
	)

	_, err := e.dispatcher.Dispatch(context.Background(), &api.ChatRequest{
		Message: "hi", Model: "llama-3.1-8b-instant",
	})
	require.NoError(t, err)

	w := get(t, e.router, "/api/providers/status")
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.ProvidersResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	st := resp.Providers["groq"]
	assert.Equal(t, int64(1), st.Attempts)
	assert.Equal(t, int64(1), st.Successes)
	assert.Equal(t, int64(0), st.Failures)
	assert.Equal(t, 1, st.RequestsLastMinute)
}
