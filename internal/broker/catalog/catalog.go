// Package catalog maintains the merged model listing across all
// enabled providers. Refreshes build a new snapshot aside and publish
// it atomically; readers never observe partial state.
package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/nexusai/broker/internal/broker/registry"
	"github.com/nexusai/broker/internal/llm"
	"github.com/nexusai/broker/internal/platform/logger"
	"github.com/nexusai/broker/pkg/api"
)

const listTimeout = 5 * time.Second

// ProviderSource yields the providers to poll. Satisfied by
// *registry.Registry.
type ProviderSource interface {
	EnabledProviders() []registry.Entry
}

// Snapshot is one immutable published state of the catalog.
type Snapshot struct {
	// Models is the merged listing in deterministic order: provider
	// priority ascending, then cost ascending, then model ID.
	Models []api.ModelDescriptor

	// Degraded marks providers whose last refresh failed or timed out
	// and are therefore represented by stale (or no) entries.
	Degraded map[string]bool

	// RefreshedAt is when this snapshot was published.
	RefreshedAt time.Time
}

// Catalog owns the snapshot lifecycle. Refreshes are serialized;
// reads are lock-free.
type Catalog struct {
	source ProviderSource

	snapshot atomic.Pointer[Snapshot]

	// refreshMu serializes refreshes. lastGood keeps each provider's
	// most recent successful listing so one bad poll does not erase
	// known models.
	refreshMu sync.Mutex
	lastGood  map[string][]api.ModelDescriptor
}

func New(source ProviderSource) *Catalog {
	c := &Catalog{
		source:   source,
		lastGood: make(map[string][]api.ModelDescriptor),
	}
	c.snapshot.Store(&Snapshot{Degraded: map[string]bool{}})
	return c
}

type listResult struct {
	providerID string
	priority   int
	models     []api.ModelDescriptor
	err        error
}

// Refresh polls every enabled provider concurrently, each under its
// own timeout, and publishes the merged result. A failed provider
// contributes its last-known-good listing and is flagged degraded;
// one failure never aborts the refresh.
func (c *Catalog) Refresh(ctx context.Context) *Snapshot {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	entries := c.source.EnabledProviders()

	results := make([]listResult, len(entries))
	var wg sync.WaitGroup
	for i, e := range entries {
		wg.Add(1)
		go func(i int, e registry.Entry) {
			defer wg.Done()
			listCtx, cancel := context.WithTimeout(ctx, listTimeout)
			defer cancel()

			models, err := e.Provider.Models(listCtx)
			results[i] = listResult{
				providerID: e.Config.ID,
				priority:   e.Config.Priority,
				models:     models,
				err:        err,
			}
		}(i, e)
	}
	wg.Wait()

	degraded := make(map[string]bool, len(results))
	priorities := make(map[string]int, len(results))
	merged := make([]api.ModelDescriptor, 0)

	for _, res := range results {
		priorities[res.providerID] = res.priority
		if res.err != nil {
			degraded[res.providerID] = true
			logger.Warn("model listing failed, keeping last known good",
				zap.String("provider", res.providerID),
				zap.Error(res.err))
			merged = append(merged, c.lastGood[res.providerID]...)
			continue
		}

		kept := res.models[:0:0]
		for _, m := range res.models {
			if llm.IsChatModel(m.ID) {
				kept = append(kept, m)
			}
		}
		c.lastGood[res.providerID] = kept
		merged = append(merged, kept...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		pi, pj := priorities[merged[i].Provider], priorities[merged[j].Provider]
		if pi != pj {
			return pi < pj
		}
		if merged[i].CostPer1KTokens != merged[j].CostPer1KTokens {
			return merged[i].CostPer1KTokens < merged[j].CostPer1KTokens
		}
		return merged[i].ID < merged[j].ID
	})

	snap := &Snapshot{
		Models:      merged,
		Degraded:    degraded,
		RefreshedAt: time.Now(),
	}
	c.snapshot.Store(snap)

	logger.Info("catalog refreshed",
		zap.Int("models", len(merged)),
		zap.Int("degraded_providers", len(degraded)))
	return snap
}

// Current returns the published snapshot.
func (c *Catalog) Current() *Snapshot {
	return c.snapshot.Load()
}

// Models returns the published listing, optionally filtered. The
// result order is stable across calls against the same snapshot.
func (c *Catalog) Models(filter api.ModelFilter) []api.ModelDescriptor {
	snap := c.snapshot.Load()

	out := make([]api.ModelDescriptor, 0, len(snap.Models))
	for _, m := range snap.Models {
		if filter.Provider != "" && m.Provider != filter.Provider {
			continue
		}
		if filter.ID != "" && m.ID != filter.ID {
			continue
		}
		if filter.Capability != "" && !m.HasCapability(strings.ToLower(filter.Capability)) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Resolve finds the highest-priority provider serving modelID.
func (c *Catalog) Resolve(modelID string) (api.ModelDescriptor, bool) {
	snap := c.snapshot.Load()
	for _, m := range snap.Models {
		if m.ID == modelID {
			return m, true
		}
	}
	return api.ModelDescriptor{}, false
}

// ModelsFor returns the published models of one provider.
func (c *Catalog) ModelsFor(providerID string) []api.ModelDescriptor {
	return c.Models(api.ModelFilter{Provider: providerID})
}

// Serves reports whether providerID publishes modelID.
func (c *Catalog) Serves(providerID, modelID string) bool {
	for _, m := range c.ModelsFor(providerID) {
		if m.ID == modelID {
			return true
		}
	}
	return false
}

// Degraded reports whether providerID failed its last refresh.
func (c *Catalog) Degraded(providerID string) bool {
	return c.snapshot.Load().Degraded[providerID]
}
