// Package ratelimit implements the per-provider dispatch guard: a
// sliding 60 second window of request timestamps, kept in memory and
// reset on restart. It is deliberately best-effort; upstream providers
// enforce their own quotas and answer 429 when this guard undercounts.
package ratelimit

import (
	"sync"
	"time"
)

const windowSize = 60 * time.Second

// window holds the timestamps of recent requests for one provider.
// Pruning happens lazily on every check.
type window struct {
	mu     sync.Mutex
	stamps []time.Time
}

func (w *window) prune(cutoff time.Time) {
	kept := w.stamps[:0]
	for _, t := range w.stamps {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	w.stamps = kept
}

// Limiter tracks one sliding window per provider. Windows are created
// lazily on first use.
type Limiter struct {
	mu      sync.RWMutex
	limits  map[string]int
	windows map[string]*window

	// now is swappable for tests.
	now func() time.Time
}

func New(limits map[string]int) *Limiter {
	l := &Limiter{
		limits:  make(map[string]int, len(limits)),
		windows: make(map[string]*window),
		now:     time.Now,
	}
	for id, limit := range limits {
		l.limits[id] = limit
	}
	return l
}

// SetLimit installs or replaces the limit for a provider.
func (l *Limiter) SetLimit(providerID string, limit int) {
	l.mu.Lock()
	l.limits[providerID] = limit
	l.mu.Unlock()
}

func (l *Limiter) window(providerID string) *window {
	l.mu.RLock()
	w, ok := l.windows[providerID]
	l.mu.RUnlock()
	if ok {
		return w
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	// Re-check under the write lock.
	if w, ok = l.windows[providerID]; ok {
		return w
	}
	w = &window{}
	l.windows[providerID] = w
	return w
}

// Allow records one request against providerID if the trailing window
// has headroom. On denial the window is left unmodified, so a denied
// attempt consumes nothing.
func (l *Limiter) Allow(providerID string) bool {
	l.mu.RLock()
	limit, ok := l.limits[providerID]
	l.mu.RUnlock()
	if !ok {
		// Unknown providers are not limited.
		return true
	}

	now := l.now()
	w := l.window(providerID)

	w.mu.Lock()
	defer w.mu.Unlock()

	w.prune(now.Add(-windowSize))
	if len(w.stamps) >= limit {
		return false
	}
	w.stamps = append(w.stamps, now)
	return true
}

// Count returns the number of requests in the trailing window without
// consuming capacity.
func (l *Limiter) Count(providerID string) int {
	l.mu.RLock()
	_, known := l.windows[providerID]
	l.mu.RUnlock()
	if !known {
		return 0
	}

	now := l.now()
	w := l.window(providerID)

	w.mu.Lock()
	defer w.mu.Unlock()

	w.prune(now.Add(-windowSize))
	return len(w.stamps)
}

// Limit returns the configured limit for providerID, zero if unknown.
func (l *Limiter) Limit(providerID string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.limits[providerID]
}
