package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(limits map[string]int) (*Limiter, *time.Time) {
	l := New(limits)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestAllowUpToLimit(t *testing.T) {
	l, _ := newTestLimiter(map[string]int{"groq": 3})

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("groq"), "request %d should be allowed", i)
	}
	assert.False(t, l.Allow("groq"))
	assert.Equal(t, 3, l.Count("groq"))
}

func TestDenialConsumesNothing(t *testing.T) {
	l, _ := newTestLimiter(map[string]int{"groq": 2})

	require.True(t, l.Allow("groq"))
	require.True(t, l.Allow("groq"))

	// Repeated denials must not extend the window.
	for i := 0; i < 5; i++ {
		assert.False(t, l.Allow("groq"))
	}
	assert.Equal(t, 2, l.Count("groq"))
}

func TestWindowSlides(t *testing.T) {
	l, now := newTestLimiter(map[string]int{"groq": 2})

	require.True(t, l.Allow("groq"))
	require.True(t, l.Allow("groq"))
	require.False(t, l.Allow("groq"))

	// 61 seconds later both stamps have aged out.
	*now = now.Add(61 * time.Second)
	assert.Equal(t, 0, l.Count("groq"))
	assert.True(t, l.Allow("groq"))
}

func TestPartialSlide(t *testing.T) {
	l, now := newTestLimiter(map[string]int{"groq": 2})

	require.True(t, l.Allow("groq"))
	*now = now.Add(30 * time.Second)
	require.True(t, l.Allow("groq"))
	require.False(t, l.Allow("groq"))

	// First stamp expires, second is still live.
	*now = now.Add(31 * time.Second)
	assert.Equal(t, 1, l.Count("groq"))
	assert.True(t, l.Allow("groq"))
	assert.False(t, l.Allow("groq"))
}

func TestProvidersAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(map[string]int{"groq": 1, "openai": 2})

	require.True(t, l.Allow("groq"))
	assert.False(t, l.Allow("groq"))

	assert.True(t, l.Allow("openai"))
	assert.True(t, l.Allow("openai"))
	assert.False(t, l.Allow("openai"))

	assert.Equal(t, 1, l.Count("groq"))
	assert.Equal(t, 2, l.Count("openai"))
}

func TestUnknownProviderUnlimited(t *testing.T) {
	l, _ := newTestLimiter(map[string]int{"groq": 1})

	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow("mystery"))
	}
}

func TestCountIsNonConsuming(t *testing.T) {
	l, _ := newTestLimiter(map[string]int{"groq": 5})

	require.True(t, l.Allow("groq"))
	for i := 0; i < 10; i++ {
		assert.Equal(t, 1, l.Count("groq"))
	}
}

func TestConcurrentAllow(t *testing.T) {
	l := New(map[string]int{"groq": 50})

	var wg sync.WaitGroup
	allowed := make(chan bool, 200)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed <- l.Allow("groq")
		}()
	}
	wg.Wait()
	close(allowed)

	count := 0
	for ok := range allowed {
		if ok {
			count++
		}
	}
	assert.Equal(t, 50, count)
	assert.Equal(t, 50, l.Count("groq"))
}
