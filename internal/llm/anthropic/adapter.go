package anthropic

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

const apiVersion = "2023-06-01"

func init() {
	llm.Register(llm.KindAnthropic, NewAdapter)
}

type Adapter struct {
	config config.ProviderConfig
	client *http.Client
}

func NewAdapter(cfg config.ProviderConfig) (llm.Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com/v1"
	}
	return &Adapter{
		config: cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (a *Adapter) Name() string   { return a.config.ID }
func (a *Adapter) Kind() llm.Kind { return llm.KindAnthropic }

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	System      string    `json:"system,omitempty"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature,omitempty"`
}

type response struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// toRequest converts the neutral form to the native messages shape.
// System turns are hoisted into the top-level system field.
func toRequest(req *llm.CompletionRequest) request {
	ar := request{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if ar.MaxTokens == 0 {
		ar.MaxTokens = 4096
	}
	for _, m := range req.Messages {
		if m.Role == "system" {
			ar.System += m.Content + "\n"
			continue
		}
		ar.Messages = append(ar.Messages, message{Role: m.Role, Content: m.Content})
	}
	return ar
}

func (a *Adapter) headers() map[string]string {
	return map[string]string{
		"x-api-key":         a.config.APIKey,
		"anthropic-version": apiVersion,
	}
}

func (a *Adapter) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.Completion, error) {
	body := toRequest(req)

	var resp response
	url := fmt.Sprintf("%s/messages", strings.TrimRight(a.config.BaseURL, "/"))
	if err := httpclient.SendRequest(ctx, a.client, "POST", url, a.headers(), body, &resp); err != nil {
		return nil, llm.Classify(a.config.ID, err)
	}

	var text strings.Builder
	for _, c := range resp.Content {
		if c.Type == "text" {
			text.WriteString(c.Text)
		}
	}

	return &llm.Completion{
		Content: text.String(),
		Model:   resp.Model,
		Usage: &api.Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
	}, nil
}

// Models returns the known-model roster. There is no public listing
// endpoint, so the descriptors are static.
func (a *Adapter) Models(ctx context.Context) ([]api.ModelDescriptor, error) {
	return []api.ModelDescriptor{
		{
			ID:              "claude-3-5-sonnet-20241022",
			Name:            "claude-3-5-sonnet-20241022",
			Provider:        a.config.ID,
			ProviderName:    a.config.Name,
			ContextLength:   200000,
			CostPer1KTokens: 0.003,
			Capabilities:    []string{"chat", "reasoning", "code", "analysis", "vision", "multimodal"},
			Description:     "Latest Claude 3.5 Sonnet with enhanced capabilities and vision",
		},
		{
			ID:              "claude-3-5-haiku-20241022",
			Name:            "claude-3-5-haiku-20241022",
			Provider:        a.config.ID,
			ProviderName:    a.config.Name,
			ContextLength:   200000,
			CostPer1KTokens: 0.00025,
			Capabilities:    []string{"chat", "reasoning", "fast-response"},
			Description:     "Fast and efficient Claude 3.5 Haiku model",
		},
		{
			ID:              "claude-3-haiku-20240307",
			Name:            "claude-3-haiku-20240307",
			Provider:        a.config.ID,
			ProviderName:    a.config.Name,
			ContextLength:   200000,
			CostPer1KTokens: 0.00025,
			Capabilities:    []string{"chat", "reasoning"},
			Description:     "Fast and efficient Claude 3 Haiku model",
		},
	}, nil
}

func (a *Adapter) Health(ctx context.Context) error {
	url := fmt.Sprintf("%s/models?limit=1", strings.TrimRight(a.config.BaseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("x-api-key", a.config.APIKey)
	req.Header.Set("anthropic-version", apiVersion)

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
