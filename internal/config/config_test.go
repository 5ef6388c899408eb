package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexusai/broker/internal/config"
)

func TestDefaultProvidersRoster(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gk-test")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OLLAMA_BASE_URL", "")

	providers := config.DefaultProviders()
	require.Len(t, providers, 5)

	byID := make(map[string]config.ProviderConfig, len(providers))
	for _, p := range providers {
		byID[p.ID] = p
	}

	assert.Equal(t, "gk-test", byID["groq"].APIKey)
	assert.Equal(t, 1, byID["groq"].Priority)
	assert.Equal(t, 30, byID["groq"].RateLimit)

	// Providers without credentials are still listed.
	assert.Empty(t, byID["openai"].APIKey)
	assert.Equal(t, 60, byID["openai"].RateLimit)

	assert.Equal(t, "http://localhost:11434", byID["ollama"].BaseURL)
	assert.Equal(t, 100, byID["ollama"].RateLimit)

	assert.Equal(t, 6, byID["google"].Priority)
}

func TestDefaultProvidersOllamaOverride(t *testing.T) {
	t.Setenv("OLLAMA_BASE_URL", "http://ollama.internal:11434")

	providers := config.DefaultProviders()
	for _, p := range providers {
		if p.ID == "ollama" {
			assert.Equal(t, "http://ollama.internal:11434", p.BaseURL)
			return
		}
	}
	t.Fatal("ollama provider missing from roster")
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, "broker.db", cfg.Database.Path)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 10.0, cfg.RateLimit.RequestsPerSecond)

	// With no config file the standard roster applies.
	require.Len(t, cfg.Providers, 5)
	assert.Equal(t, "groq", cfg.Providers[0].ID)
}
