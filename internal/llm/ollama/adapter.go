package ollama

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
	llm.Register(llm.KindOllama, NewAdapter)
}

type Adapter struct {
	config config.ProviderConfig
	client *http.Client
}

func NewAdapter(cfg config.ProviderConfig) (llm.Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	return &Adapter{
		config: cfg,
		client: &http.Client{Timeout: 120 * time.Second},
	}, nil
}

func (a *Adapter) Name() string   { return a.config.ID }
func (a *Adapter) Kind() llm.Kind { return llm.KindOllama }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Ollama exposes an OpenAI-compatible completion endpoint under /v1.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	Stream      bool          `json:"stream"`
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

type tagsResponse struct {
	Models []struct {
		Name    string `json:"name"`
		Size    int64  `json:"size"`
		Details struct {
			Family        string `json:"family"`
			ParameterSize string `json:"parameter_size"`
		} `json:"details"`
	} `json:"models"`
}

func (a *Adapter) base() string {
	return strings.TrimRight(a.config.BaseURL, "/")
}

func (a *Adapter) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.Completion, error) {
	body := chatRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Stream:      false,
	}
	for _, m := range req.Messages {
		body.Messages = append(body.Messages, chatMessage{Role: m.Role, Content: m.Content})
	}

	var resp chatResponse
	url := a.base() + "/v1/chat/completions"
	if err := httpclient.SendRequest(ctx, a.client, "POST", url, nil, body, &resp); err != nil {
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

// Models lists the locally pulled models via the native tags endpoint.
// Local models cost nothing; the description carries family and size.
func (a *Adapter) Models(ctx context.Context) ([]api.ModelDescriptor, error) {
	var tags tagsResponse
	if err := httpclient.SendRequest(ctx, a.client, "GET", a.base()+"/api/tags", nil, nil, &tags); err != nil {
		return nil, llm.Classify(a.config.ID, err)
	}

	var models []api.ModelDescriptor
	for _, m := range tags.Models {
		sizeGB := float64(m.Size) / (1 << 30)
		family := m.Details.Family
		if family == "" {
			family = "unknown"
		}
		paramSize := m.Details.ParameterSize
		if paramSize == "" {
			paramSize = "unknown"
		}
		models = append(models, api.ModelDescriptor{
			ID:              m.Name,
			Name:            m.Name,
			Provider:        a.config.ID,
			ProviderName:    a.config.Name,
			ContextLength:   4096,
			CostPer1KTokens: 0,
			Capabilities:    []string{"chat", "reasoning", "local"},
			Description:     fmt.Sprintf("Local %s model (%s, %.1fGB)", title(family), paramSize, sizeGB),
		})
	}
	return models, nil
}

// Health probes the version endpoint. Reachability decides whether the
// registry enables a self-hosted provider at all.
func (a *Adapter) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", a.base()+"/api/version", nil)
	if err != nil {
		return err
	}

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

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
