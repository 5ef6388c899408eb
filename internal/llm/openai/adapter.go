package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nexusai/broker/internal/config"
	"github.com/nexusai/broker/internal/httpclient"
	"github.com/nexusai/broker/internal/llm"
	"github.com/nexusai/broker/pkg/api"
)

func init() {
	llm.Register(llm.KindOpenAI, NewAdapter)
}

type Adapter struct {
	config config.ProviderConfig
	client *http.Client
}

func NewAdapter(cfg config.ProviderConfig) (llm.Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	return &Adapter{
		config: cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (a *Adapter) Name() string   { return a.config.ID }
func (a *Adapter) Kind() llm.Kind { return llm.KindOpenAI }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type modelList struct {
	Data []struct {
		ID      string `json:"id"`
		OwnedBy string `json:"owned_by"`
	} `json:"data"`
}

func (a *Adapter) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + a.config.APIKey,
	}
}

func (a *Adapter) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.Completion, error) {
	body := chatRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	for _, m := range req.Messages {
		body.Messages = append(body.Messages, chatMessage{Role: m.Role, Content: m.Content})
	}

	var resp chatResponse
	url := fmt.Sprintf("%s/chat/completions", strings.TrimRight(a.config.BaseURL, "/"))
	if err := httpclient.SendRequest(ctx, a.client, "POST", url, a.headers(), body, &resp); err != nil {
		return nil, llm.Classify(a.config.ID, err)
	}

	if len(resp.Choices) == 0 {
		return nil, llm.Classify(a.config.ID, fmt.Errorf("empty choices in completion response"))
	}

	return &llm.Completion{
		Content: resp.Choices[0].Message.Content,
		Model:   resp.Model,
		Usage: &api.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// Models fetches the live listing, keeps only gpt-* chat models, and
// fills pricing and context windows from the static tables.
func (a *Adapter) Models(ctx context.Context) ([]api.ModelDescriptor, error) {
	var list modelList
	url := fmt.Sprintf("%s/models", strings.TrimRight(a.config.BaseURL, "/"))
	if err := httpclient.SendRequest(ctx, a.client, "GET", url, a.headers(), nil, &list); err != nil {
		return nil, llm.Classify(a.config.ID, err)
	}

	var models []api.ModelDescriptor
	for _, m := range list.Data {
		if !strings.HasPrefix(m.ID, "gpt-") || !llm.IsChatModel(m.ID) {
			continue
		}
		models = append(models, api.ModelDescriptor{
			ID:              m.ID,
			Name:            m.ID,
			Provider:        a.config.ID,
			ProviderName:    a.config.Name,
			ContextLength:   contextLength(m.ID),
			CostPer1KTokens: cost(m.ID),
			Capabilities:    capabilities(m.ID),
			Description:     description(m.ID),
		})
	}
	return models, nil
}

func (a *Adapter) Health(ctx context.Context) error {
	url := fmt.Sprintf("%s/models", strings.TrimRight(a.config.BaseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+a.config.APIKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status: %d", resp.StatusCode)
	}
	return nil
}
