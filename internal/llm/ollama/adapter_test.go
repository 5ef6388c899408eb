package ollama_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexusai/broker/internal/config"
	"github.com/nexusai/broker/internal/llm/ollama"
)

func TestOllamaModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{
			"models": [
				{
					"name": "llama3.2:3b",
					"size": 2147483648,
					"details": {"family": "llama", "parameter_size": "3.2B"}
				}
			]
		}`))
	}))
	defer server.Close()

	adapter, err := ollama.NewAdapter(config.ProviderConfig{
		ID: "ollama", Name: "Ollama", Kind: "ollama", BaseURL: server.URL,
	})
	require.NoError(t, err)

	models, err := adapter.Models(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 1)

	m := models[0]
	assert.Equal(t, "llama3.2:3b", m.ID)
	assert.Equal(t, 0.0, m.CostPer1KTokens)
	assert.Contains(t, m.Capabilities, "local")
	assert.Contains(t, m.Description, "Llama")
	assert.Contains(t, m.Description, "3.2B")
	assert.Contains(t, m.Description, "2.0GB")
}

func TestOllamaHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/version", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"version": "0.5.4"}`))
	}))
	defer server.Close()

	adapter, err := ollama.NewAdapter(config.ProviderConfig{
		ID: "ollama", Kind: "ollama", BaseURL: server.URL,
	})
	require.NoError(t, err)
	assert.NoError(t, adapter.Health(context.Background()))
}

func TestOllamaHealthUnreachable(t *testing.T) {
	adapter, err := ollama.NewAdapter(config.ProviderConfig{
		ID: "ollama", Kind: "ollama", BaseURL: "http://127.0.0.1:1",
	})
	require.NoError(t, err)
	assert.Error(t, adapter.Health(context.Background()))
}
