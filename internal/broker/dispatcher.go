// Package broker ties the registry, rate limiter and catalog into the
// dispatch path: resolve candidates, walk them in priority order, and
// return the first completion.
package broker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/nexusai/broker/internal/broker/catalog"
	"github.com/nexusai/broker/internal/broker/ratelimit"
	"github.com/nexusai/broker/internal/broker/registry"
	"github.com/nexusai/broker/internal/llm"
	"github.com/nexusai/broker/internal/platform/logger"
	"github.com/nexusai/broker/pkg/api"
)

const attemptTimeout = 30 * time.Second

// DispatchRecord is the fire-and-forget audit entry of one completed
// dispatch, handed to the Recorder after the response is already on
// its way back.
type DispatchRecord struct {
	ConversationID string
	Message        string
	Response       string
	ModelUsed      string
	ProviderUsed   string
	Latency        time.Duration
	TotalTokens    int
	Succeeded      bool
	FailureCount   int
	CreatedAt      time.Time
}

// Recorder receives dispatch records asynchronously. Implementations
// must never block the caller.
type Recorder interface {
	Record(rec DispatchRecord)
}

// Result is a successful dispatch.
type Result struct {
	Response     string
	ModelUsed    string
	ProviderUsed string
	Usage        *api.Usage
	Latency      time.Duration
}

// candidate is one (provider, model) pair in the fallback chain.
type candidate struct {
	entry registry.Entry
	model string
}

// Stats keeps per-provider attempt counters. Counter updates are
// atomic; the map itself only grows under the lock.
type Stats struct {
	mu        sync.Mutex
	providers map[string]*providerStats
}

type providerStats struct {
	attempts  atomic.Int64
	successes atomic.Int64
	failures  atomic.Int64
}

func newStats() *Stats {
	return &Stats{providers: make(map[string]*providerStats)}
}

func (s *Stats) get(providerID string) *providerStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps, ok := s.providers[providerID]
	if !ok {
		ps = &providerStats{}
		s.providers[providerID] = ps
	}
	return ps
}

// Attempts returns (attempts, successes, failures) for providerID.
func (s *Stats) Attempts(providerID string) (int64, int64, int64) {
	ps := s.get(providerID)
	return ps.attempts.Load(), ps.successes.Load(), ps.failures.Load()
}

// Dispatcher walks the fallback chain for each chat request.
type Dispatcher struct {
	registry *registry.Registry
	limiter  *ratelimit.Limiter
	catalog  *catalog.Catalog
	recorder Recorder
	stats    *Stats

	// timeout per attempt; variable for tests.
	timeout time.Duration
}

func NewDispatcher(reg *registry.Registry, lim *ratelimit.Limiter, cat *catalog.Catalog, rec Recorder) *Dispatcher {
	return &Dispatcher{
		registry: reg,
		limiter:  lim,
		catalog:  cat,
		recorder: rec,
		stats:    newStats(),
		timeout:  attemptTimeout,
	}
}

// Stats exposes the per-provider counters.
func (d *Dispatcher) Stats() *Stats {
	return d.stats
}

// Dispatch resolves the candidate chain for req and tries each pair
// sequentially until one answers. Every candidate failure is recorded;
// if none answers the aggregated ExhaustedError is returned.
func (d *Dispatcher) Dispatch(ctx context.Context, req *api.ChatRequest) (*Result, error) {
	start := time.Now()

	candidates := d.resolveCandidates(req)
	if len(candidates) == 0 {
		return nil, &ExhaustedError{}
	}

	var failures []AttemptFailure
	for _, cand := range candidates {
		id := cand.entry.Config.ID

		// Disabling can happen mid-dispatch (auth failure on an
		// earlier request); re-check right before the attempt.
		if !d.registry.Enabled(id) {
			failures = append(failures, AttemptFailure{Provider: id, Model: cand.model, Reason: "provider disabled"})
			continue
		}

		// A local denial skips the candidate without consuming window
		// capacity and without contacting the upstream.
		if !d.limiter.Allow(id) {
			failures = append(failures, AttemptFailure{Provider: id, Model: cand.model, Reason: "rate limit exceeded"})
			logger.Debug("candidate skipped by rate limiter",
				zap.String("provider", id), zap.String("model", cand.model))
			continue
		}

		ps := d.stats.get(id)
		ps.attempts.Add(1)

		result, err := d.attempt(ctx, cand, req)
		if err == nil {
			ps.successes.Add(1)
			result.Latency = time.Since(start)
			d.record(req, result, len(failures), true)
			logger.Info("dispatch succeeded",
				zap.String("provider", id),
				zap.String("model", result.ModelUsed),
				zap.Duration("latency", result.Latency),
				zap.Int("fallbacks", len(failures)))
			return result, nil
		}

		ps.failures.Add(1)
		classified := llm.Classify(id, err)
		if classified.Kind == llm.ErrAuth {
			d.registry.MarkDisabled(id, "authentication failure")
		}
		failures = append(failures, AttemptFailure{
			Provider: id,
			Model:    cand.model,
			Reason:   classified.Kind.String() + ": " + classified.Err.Error(),
		})
		logger.Warn("dispatch attempt failed",
			zap.String("provider", id),
			zap.String("model", cand.model),
			zap.String("kind", classified.Kind.String()),
			zap.Error(classified.Err))
	}

	d.record(req, nil, len(failures), false)
	return nil, &ExhaustedError{Attempts: failures}
}

func (d *Dispatcher) attempt(ctx context.Context, cand candidate, req *api.ChatRequest) (*Result, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	completion, err := cand.entry.Provider.Complete(attemptCtx, &llm.CompletionRequest{
		Model:    cand.model,
		Messages: []llm.Message{{Role: "user", Content: req.Message}},
	})
	if err != nil {
		return nil, err
	}

	model := completion.Model
	if model == "" {
		model = cand.model
	}
	return &Result{
		Response:     completion.Content,
		ModelUsed:    model,
		ProviderUsed: cand.entry.Config.ID,
		Usage:        completion.Usage,
	}, nil
}

// resolveCandidates builds the ordered fallback chain. A resolvable
// named model contributes its own (provider, model) pair first; every
// other enabled provider follows in priority order with either the
// same model, when it also serves it, or its default chat model. No
// pair appears twice.
func (d *Dispatcher) resolveCandidates(req *api.ChatRequest) []candidate {
	entries := d.registry.EnabledProviders()
	if len(entries) == 0 {
		return nil
	}

	var candidates []candidate
	firstProvider := ""

	if req.Model != "" && !req.AutoSelect {
		if desc, ok := d.catalog.Resolve(req.Model); ok {
			if entry, found := d.registry.Get(desc.Provider); found {
				candidates = append(candidates, candidate{entry: entry, model: req.Model})
				firstProvider = desc.Provider
			}
		}
	}

	for _, e := range entries {
		if e.Config.ID == firstProvider {
			continue
		}
		model := d.modelFor(e.Config.ID, req.Model)
		if model == "" {
			continue
		}
		candidates = append(candidates, candidate{entry: e, model: model})
	}
	return candidates
}

// modelFor picks the model a fallback provider should serve: the
// requested model when the provider also publishes it, otherwise the
// provider's default chat model.
func (d *Dispatcher) modelFor(providerID, requested string) string {
	if requested != "" && d.catalog.Serves(providerID, requested) {
		return requested
	}
	return d.defaultModel(providerID)
}

// defaultModel walks the preference list against the provider's
// published models, then falls back to its first chat-capable model.
func (d *Dispatcher) defaultModel(providerID string) string {
	models := d.catalog.ModelsFor(providerID)
	if len(models) == 0 {
		return ""
	}

	published := make(map[string]bool, len(models))
	for _, m := range models {
		published[m.ID] = true
	}
	for _, preferred := range llm.DefaultModelPreference {
		if published[preferred] {
			return preferred
		}
	}
	for _, m := range models {
		if llm.IsChatModel(m.ID) {
			return m.ID
		}
	}
	return ""
}

// record hands the dispatch outcome to the recorder. Persistence is
// fire-and-forget; a nil recorder is allowed.
func (d *Dispatcher) record(req *api.ChatRequest, result *Result, failureCount int, succeeded bool) {
	if d.recorder == nil {
		return
	}
	rec := DispatchRecord{
		ConversationID: req.ConversationID,
		Message:        req.Message,
		Succeeded:      succeeded,
		FailureCount:   failureCount,
		CreatedAt:      time.Now(),
	}
	if result != nil {
		rec.Response = result.Response
		rec.ModelUsed = result.ModelUsed
		rec.ProviderUsed = result.ProviderUsed
		rec.Latency = result.Latency
		if result.Usage != nil {
			rec.TotalTokens = result.Usage.TotalTokens
		}
	}
	d.recorder.Record(rec)
}
