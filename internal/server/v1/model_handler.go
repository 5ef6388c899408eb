package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nexusai/broker/internal/broker"
	"github.com/nexusai/broker/internal/broker/catalog"
	"github.com/nexusai/broker/internal/broker/ratelimit"
	"github.com/nexusai/broker/internal/broker/registry"
	"github.com/nexusai/broker/internal/store/cache"
	"github.com/nexusai/broker/pkg/api"
)

const (
	modelsCacheKey = "models:listing"
	modelsCacheTTL = 30 * time.Second
)

type ModelHandler struct {
	catalog  *catalog.Catalog
	registry *registry.Registry
	limiter  *ratelimit.Limiter
	stats    *broker.Stats
	cache    cache.CacheService
}

func NewModelHandler(cat *catalog.Catalog, reg *registry.Registry, lim *ratelimit.Limiter, stats *broker.Stats, cs cache.CacheService) *ModelHandler {
	return &ModelHandler{
		catalog:  cat,
		registry: reg,
		limiter:  lim,
		stats:    stats,
		cache:    cs,
	}
}

// ListModels serves GET /api/models from the published snapshot. The
// unfiltered listing is briefly cached; refresh invalidates it.
func (h *ModelHandler) ListModels(c *gin.Context) {
	filter := api.ModelFilter{
		Provider:   c.Query("provider"),
		Capability: c.Query("capability"),
		ID:         c.Query("id"),
	}

	unfiltered := filter == (api.ModelFilter{})
	if unfiltered && h.cache != nil {
		var cached api.ModelsResponse
		if err := h.cache.Get(c.Request.Context(), modelsCacheKey, &cached); err == nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	resp := h.modelsResponse(filter)

	if unfiltered && h.cache != nil {
		_ = h.cache.Set(c.Request.Context(), modelsCacheKey, resp, modelsCacheTTL)
	}

	c.JSON(http.StatusOK, resp)
}

// RefreshModels serves POST /api/models/refresh: a synchronous catalog
// refresh followed by the refreshed listing with degraded flags.
func (h *ModelHandler) RefreshModels(c *gin.Context) {
	h.catalog.Refresh(c.Request.Context())

	if h.cache != nil {
		_ = h.cache.Delete(c.Request.Context(), modelsCacheKey)
	}

	c.JSON(http.StatusOK, h.modelsResponse(api.ModelFilter{}))
}

// ProviderStatus serves GET /api/providers/status.
func (h *ModelHandler) ProviderStatus(c *gin.Context) {
	c.JSON(http.StatusOK, api.ProvidersResponse{Providers: h.providers()})
}

func (h *ModelHandler) modelsResponse(filter api.ModelFilter) api.ModelsResponse {
	models := h.catalog.Models(filter)
	providers := h.providers()

	enabled := 0
	for _, p := range providers {
		if p.Enabled {
			enabled++
		}
	}

	return api.ModelsResponse{
		Status:               "success",
		Models:               models,
		Providers:            providers,
		MultiProviderEnabled: enabled > 1,
		TotalCount:           len(models),
	}
}

func (h *ModelHandler) providers() map[string]api.ProviderStatus {
	out := make(map[string]api.ProviderStatus)
	for _, st := range h.registry.Statuses() {
		id := st.Config.ID
		ps := api.ProviderStatus{
			Name:               st.Config.Name,
			Enabled:            st.Enabled,
			Priority:           st.Config.Priority,
			RequestsLastMinute: h.limiter.Count(id),
			RateLimit:          st.Config.RateLimit,
			Degraded:           h.catalog.Degraded(id),
			DisabledReason:     st.DisabledReason,
		}
		if h.stats != nil {
			ps.Attempts, ps.Successes, ps.Failures = h.stats.Attempts(id)
		}
		out[id] = ps
	}
	return out
}
