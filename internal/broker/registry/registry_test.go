package registry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexusai/broker/internal/broker/registry"
	"github.com/nexusai/broker/internal/config"
	"github.com/nexusai/broker/internal/llm"
	"github.com/nexusai/broker/pkg/api"
)

type fakeProvider struct {
	name      string
	kind      llm.Kind
	healthErr error
}

func (f *fakeProvider) Name() string   { return f.name }
func (f *fakeProvider) Kind() llm.Kind { return f.kind }
func (f *fakeProvider) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.Completion, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeProvider) Models(ctx context.Context) ([]api.ModelDescriptor, error) {
	return nil, nil
}
func (f *fakeProvider) Health(ctx context.Context) error { return f.healthErr }

func hosted(id string, priority int, key string) (config.ProviderConfig, llm.Provider) {
	cfg := config.ProviderConfig{ID: id, Name: id, Kind: "groq", APIKey: key, Priority: priority, RateLimit: 30}
	return cfg, &fakeProvider{name: id, kind: llm.KindGroq}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := registry.New()
	ctx := context.Background()

	cfg, p := hosted("groq", 1, "key")
	require.NoError(t, r.Register(ctx, cfg, p))
	assert.Error(t, r.Register(ctx, cfg, p))
}

func TestCredentialGating(t *testing.T) {
	r := registry.New()
	ctx := context.Background()

	withKey, p1 := hosted("groq", 1, "key")
	noKey, p2 := hosted("openai", 2, "")
	require.NoError(t, r.Register(ctx, withKey, p1))
	require.NoError(t, r.Register(ctx, noKey, p2))

	enabled := r.EnabledProviders()
	require.Len(t, enabled, 1)
	assert.Equal(t, "groq", enabled[0].Config.ID)
	assert.False(t, r.Enabled("openai"))
}

func TestSelfHostedProbeDecidesEnablement(t *testing.T) {
	r := registry.New()
	ctx := context.Background()

	up := config.ProviderConfig{ID: "ollama-up", Kind: "ollama", BaseURL: "http://localhost:11434", Priority: 4}
	require.NoError(t, r.Register(ctx, up, &fakeProvider{name: "ollama-up", kind: llm.KindOllama}))

	down := config.ProviderConfig{ID: "ollama-down", Kind: "ollama", BaseURL: "http://localhost:11435", Priority: 5}
	require.NoError(t, r.Register(ctx, down, &fakeProvider{
		name: "ollama-down", kind: llm.KindOllama, healthErr: errors.New("connection refused"),
	}))

	assert.True(t, r.Enabled("ollama-up"))
	assert.False(t, r.Enabled("ollama-down"))
}

func TestInvalidBaseURLRegistersDisabled(t *testing.T) {
	r := registry.New()
	ctx := context.Background()

	cfg := config.ProviderConfig{ID: "broken", Kind: "groq", APIKey: "key", BaseURL: "::not-a-url", Priority: 1}
	require.NoError(t, r.Register(ctx, cfg, &fakeProvider{name: "broken", kind: llm.KindGroq}))

	assert.False(t, r.Enabled("broken"))

	statuses := r.Statuses()
	require.Len(t, statuses, 1)
	assert.NotEmpty(t, statuses[0].DisabledReason)
}

func TestEnabledProvidersOrdering(t *testing.T) {
	r := registry.New()
	ctx := context.Background()

	// Registration order: priority 3, then two with priority 1, then 2.
	cfgC, pC := hosted("c", 3, "key")
	cfgA1, pA1 := hosted("a1", 1, "key")
	cfgA2, pA2 := hosted("a2", 1, "key")
	cfgB, pB := hosted("b", 2, "key")

	require.NoError(t, r.Register(ctx, cfgC, pC))
	require.NoError(t, r.Register(ctx, cfgA1, pA1))
	require.NoError(t, r.Register(ctx, cfgA2, pA2))
	require.NoError(t, r.Register(ctx, cfgB, pB))

	enabled := r.EnabledProviders()
	require.Len(t, enabled, 4)

	ids := make([]string, len(enabled))
	for i, e := range enabled {
		ids[i] = e.Config.ID
	}
	// Ascending priority; ties resolved by registration order.
	assert.Equal(t, []string{"a1", "a2", "b", "c"}, ids)
}

func TestMarkDisabledIsPermanent(t *testing.T) {
	r := registry.New()
	ctx := context.Background()

	cfg, p := hosted("groq", 1, "key")
	require.NoError(t, r.Register(ctx, cfg, p))
	require.True(t, r.Enabled("groq"))

	r.MarkDisabled("groq", "authentication failure")

	assert.False(t, r.Enabled("groq"))
	assert.Empty(t, r.EnabledProviders())

	statuses := r.Statuses()
	require.Len(t, statuses, 1)
	assert.Equal(t, "authentication failure", statuses[0].DisabledReason)
}

func TestGetReturnsDisabledProviders(t *testing.T) {
	r := registry.New()
	ctx := context.Background()

	cfg, p := hosted("openai", 2, "")
	require.NoError(t, r.Register(ctx, cfg, p))

	entry, ok := r.Get("openai")
	require.True(t, ok)
	assert.Equal(t, "openai", entry.Config.ID)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}
