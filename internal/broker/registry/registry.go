package registry

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nexusai/broker/internal/config"
	"github.com/nexusai/broker/internal/llm"
	"github.com/nexusai/broker/internal/platform/logger"
)

const probeTimeout = 5 * time.Second

// Entry is the immutable view of one registered provider handed to
// callers. Enablement is read at call time under the entry's state lock.
type Entry struct {
	Config   config.ProviderConfig
	Provider llm.Provider
}

// state carries the mutable enablement of one provider. Each provider
// has its own lock so disabling one never contends with reads of another.
type state struct {
	mu             sync.RWMutex
	cfg            config.ProviderConfig
	provider       llm.Provider
	enabled        bool
	disabledReason string
	order          int
}

// Registry holds the provider roster. Registration happens at startup;
// after that the only mutation is MarkDisabled.
type Registry struct {
	mu     sync.RWMutex
	states map[string]*state
	nextID int
}

func New() *Registry {
	return &Registry{states: make(map[string]*state)}
}

// Register adds a provider under cfg.ID. Duplicate IDs are rejected.
// A provider with invalid static configuration or missing credentials
// is registered disabled rather than failing startup; self-hosted kinds
// are probed for reachability instead of checked for credentials.
func (r *Registry) Register(ctx context.Context, cfg config.ProviderConfig, p llm.Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.states[cfg.ID]; exists {
		return fmt.Errorf("provider %q already registered", cfg.ID)
	}

	st := &state{cfg: cfg, provider: p, order: r.nextID}
	r.nextID++

	st.enabled, st.disabledReason = r.checkEnablement(ctx, cfg, p)
	if !st.enabled {
		logger.Warn("provider registered disabled",
			zap.String("provider", cfg.ID),
			zap.String("reason", st.disabledReason))
	} else {
		logger.Info("provider registered",
			zap.String("provider", cfg.ID),
			zap.Int("priority", cfg.Priority))
	}

	r.states[cfg.ID] = st
	return nil
}

func (r *Registry) checkEnablement(ctx context.Context, cfg config.ProviderConfig, p llm.Provider) (bool, string) {
	if cfg.BaseURL != "" {
		if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
			return false, fmt.Sprintf("invalid base URL: %v", err)
		}
	}

	if p.Kind() == llm.KindOllama {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		defer cancel()
		if err := p.Health(probeCtx); err != nil {
			return false, fmt.Sprintf("unreachable: %v", err)
		}
		return true, ""
	}

	if cfg.APIKey == "" {
		return false, "missing credentials"
	}
	return true, ""
}

// EnabledProviders returns the enabled roster ordered by ascending
// priority, ties broken by registration order.
func (r *Registry) EnabledProviders() []Entry {
	r.mu.RLock()
	states := make([]*state, 0, len(r.states))
	for _, st := range r.states {
		states = append(states, st)
	}
	r.mu.RUnlock()

	var entries []Entry
	orders := make(map[string]int, len(states))
	for _, st := range states {
		st.mu.RLock()
		if st.enabled {
			entries = append(entries, Entry{Config: st.cfg, Provider: st.provider})
			orders[st.cfg.ID] = st.order
		}
		st.mu.RUnlock()
	}

	sort.SliceStable(entries, func(i, j int) bool {
		pi, pj := entries[i].Config.Priority, entries[j].Config.Priority
		if pi != pj {
			return pi < pj
		}
		return orders[entries[i].Config.ID] < orders[entries[j].Config.ID]
	})
	return entries
}

// Get returns the entry for id regardless of enablement.
func (r *Registry) Get(id string) (Entry, bool) {
	r.mu.RLock()
	st, ok := r.states[id]
	r.mu.RUnlock()
	if !ok {
		return Entry{}, false
	}
	st.mu.RLock()
	defer st.mu.RUnlock()
	return Entry{Config: st.cfg, Provider: st.provider}, true
}

// Enabled reports whether id is currently enabled.
func (r *Registry) Enabled(id string) bool {
	r.mu.RLock()
	st, ok := r.states[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.enabled
}

// MarkDisabled takes a provider out of rotation for the rest of the
// process lifetime. Used on auth-class failures.
func (r *Registry) MarkDisabled(id, reason string) {
	r.mu.RLock()
	st, ok := r.states[id]
	r.mu.RUnlock()
	if !ok {
		return
	}

	st.mu.Lock()
	alreadyDisabled := !st.enabled
	st.enabled = false
	st.disabledReason = reason
	st.mu.Unlock()

	if !alreadyDisabled {
		logger.Warn("provider disabled",
			zap.String("provider", id),
			zap.String("reason", reason))
	}
}

// Status is a point-in-time snapshot of one provider's registry state.
type Status struct {
	Config         config.ProviderConfig
	Enabled        bool
	DisabledReason string
}

// Statuses returns a snapshot of every registered provider, enabled or
// not, ordered by priority.
func (r *Registry) Statuses() []Status {
	r.mu.RLock()
	states := make([]*state, 0, len(r.states))
	for _, st := range r.states {
		states = append(states, st)
	}
	r.mu.RUnlock()

	var out []Status
	orders := make(map[string]int, len(states))
	for _, st := range states {
		st.mu.RLock()
		out = append(out, Status{Config: st.cfg, Enabled: st.enabled, DisabledReason: st.disabledReason})
		orders[st.cfg.ID] = st.order
		st.mu.RUnlock()
	}

	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].Config.Priority, out[j].Config.Priority
		if pi != pj {
			return pi < pj
		}
		return orders[out[i].Config.ID] < orders[out[j].Config.ID]
	})
	return out
}
