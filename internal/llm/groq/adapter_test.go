package groq_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexusai/broker/internal/config"
	"github.com/nexusai/broker/internal/llm"
	"github.com/nexusai/broker/internal/llm/groq"
)

func TestGroqComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{
			"model": "llama-3.1-8b-instant",
			"choices": [{
				"message": {"role": "assistant", "content": "Hello there!"}
			}],
			"usage": {"prompt_tokens": 9, "completion_tokens": 12, "total_tokens": 21}
		}`))
	}))
	defer server.Close()

	adapter, err := groq.NewAdapter(config.ProviderConfig{
		ID:      "groq",
		Kind:    "groq",
		APIKey:  "test-key",
		BaseURL: server.URL,
	})
	require.NoError(t, err)

	resp, err := adapter.Complete(context.Background(), &llm.CompletionRequest{
		Model:    "llama-3.1-8b-instant",
		Messages: []llm.Message{{Role: "user", Content: "Hi"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "Hello there!", resp.Content)
	assert.Equal(t, "llama-3.1-8b-instant", resp.Model)
	assert.Equal(t, 21, resp.Usage.TotalTokens)
	assert.Equal(t, "groq", adapter.Name())
}

func TestGroqModelsFiltersNonChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{
			"data": [
				{"id": "llama-3.1-8b-instant"},
				{"id": "whisper-large-v3"},
				{"id": "mixtral-8x7b-32768"}
			]
		}`))
	}))
	defer server.Close()

	adapter, err := groq.NewAdapter(config.ProviderConfig{
		ID: "groq", Name: "Groq", Kind: "groq", APIKey: "test-key", BaseURL: server.URL,
	})
	require.NoError(t, err)

	models, err := adapter.Models(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)

	assert.Equal(t, "llama-3.1-8b-instant", models[0].ID)
	assert.Equal(t, 131072, models[0].ContextLength)
	assert.Equal(t, 0.00005, models[0].CostPer1KTokens)
	assert.Contains(t, models[0].Capabilities, "chat")

	assert.Equal(t, "mixtral-8x7b-32768", models[1].ID)
	assert.Equal(t, 32768, models[1].ContextLength)
	assert.Contains(t, models[1].Capabilities, "multilingual")
}

func TestGroqCompleteClassifiesErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "invalid api key"}}`))
	}))
	defer server.Close()

	adapter, err := groq.NewAdapter(config.ProviderConfig{
		ID: "groq", Kind: "groq", APIKey: "bad-key", BaseURL: server.URL,
	})
	require.NoError(t, err)

	_, err = adapter.Complete(context.Background(), &llm.CompletionRequest{
		Model:    "llama-3.1-8b-instant",
		Messages: []llm.Message{{Role: "user", Content: "Hi"}},
	})

	require.Error(t, err)
	var classified *llm.Error
	require.ErrorAs(t, err, &classified)
	assert.Equal(t, llm.ErrAuth, classified.Kind)
}
