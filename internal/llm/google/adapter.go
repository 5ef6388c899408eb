package google

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
	llm.Register(llm.KindGoogle, NewAdapter)
}

type Adapter struct {
	config config.ProviderConfig
	client *http.Client
}

func NewAdapter(cfg config.ProviderConfig) (llm.Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	return &Adapter{
		config: cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (a *Adapter) Name() string   { return a.config.ID }
func (a *Adapter) Kind() llm.Kind { return llm.KindGoogle }

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type request struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature,omitempty"`
}

type response struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

// toRequest converts the neutral form to the Gemini shape. Gemini uses
// "model" where the neutral form says "assistant", and carries system
// turns in a dedicated field.
func toRequest(req *llm.CompletionRequest) request {
	gr := request{}
	if req.MaxTokens > 0 || req.Temperature > 0 {
		gr.GenerationConfig = &generationConfig{
			MaxOutputTokens: req.MaxTokens,
			Temperature:     req.Temperature,
		}
	}
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			if gr.SystemInstruction == nil {
				gr.SystemInstruction = &content{}
			}
			gr.SystemInstruction.Parts = append(gr.SystemInstruction.Parts, part{Text: m.Content})
		case "assistant":
			gr.Contents = append(gr.Contents, content{Role: "model", Parts: []part{{Text: m.Content}}})
		default:
			gr.Contents = append(gr.Contents, content{Role: "user", Parts: []part{{Text: m.Content}}})
		}
	}
	return gr
}

func (a *Adapter) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.Completion, error) {
	body := toRequest(req)

	var resp response
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(a.config.BaseURL, "/"), req.Model, a.config.APIKey)
	if err := httpclient.SendRequest(ctx, a.client, "POST", url, nil, body, &resp); err != nil {
		return nil, llm.Classify(a.config.ID, err)
	}

	if len(resp.Candidates) == 0 {
		return nil, llm.Classify(a.config.ID, fmt.Errorf("empty candidates in completion response"))
	}

	var text strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}

	return &llm.Completion{
		Content: text.String(),
		Model:   req.Model,
		Usage: &api.Usage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		},
	}, nil
}

// Models returns the static Gemini roster.
func (a *Adapter) Models(ctx context.Context) ([]api.ModelDescriptor, error) {
	return []api.ModelDescriptor{
		{
			ID:              "gemini-1.5-pro",
			Name:            "gemini-1.5-pro",
			Provider:        a.config.ID,
			ProviderName:    a.config.Name,
			ContextLength:   2000000,
			CostPer1KTokens: 0.00125,
			Capabilities:    []string{"chat", "reasoning", "code", "vision", "analysis"},
			Description:     "Google's most capable Gemini model",
		},
		{
			ID:              "gemini-1.5-flash",
			Name:            "gemini-1.5-flash",
			Provider:        a.config.ID,
			ProviderName:    a.config.Name,
			ContextLength:   1000000,
			CostPer1KTokens: 0.000075,
			Capabilities:    []string{"chat", "reasoning", "code"},
			Description:     "Fast Gemini model optimized for speed",
		},
	}, nil
}

func (a *Adapter) Health(ctx context.Context) error {
	url := fmt.Sprintf("%s/models?key=%s&pageSize=1", strings.TrimRight(a.config.BaseURL, "/"), a.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
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
