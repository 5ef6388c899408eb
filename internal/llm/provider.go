package llm

import (
	"context"

	"github.com/nexusai/broker/pkg/api"
)

// Kind identifies a provider family. Adapters register themselves
// under their kind; configuration refers to kinds by these names.
type Kind string

const (
	KindGroq      Kind = "groq"
	KindOpenAI    Kind = "openai"
	KindAnthropic Kind = "anthropic"
	KindOllama    Kind = "ollama"
	KindGoogle    Kind = "google"
)

// Message is a single turn of a conversation in provider-neutral form.
type Message struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

// CompletionRequest is the normalized input handed to an adapter.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Completion is the normalized output of a single completion call.
type Completion struct {
	Content string
	Model   string
	Usage   *api.Usage
}

// Provider is the contract every upstream adapter implements.
// Implementations must be safe for concurrent use.
type Provider interface {
	// Name returns the configured instance name (e.g. "groq").
	Name() string

	// Kind returns the adapter family.
	Kind() Kind

	// Complete performs one chat completion. The passed context carries
	// the per-attempt deadline.
	Complete(ctx context.Context, req *CompletionRequest) (*Completion, error)

	// Models lists the chat-capable models the provider currently
	// serves, with normalized metadata.
	Models(ctx context.Context) ([]api.ModelDescriptor, error)

	// Health reports reachability. Only meaningful for self-hosted
	// providers; hosted adapters may return nil without a probe.
	Health(ctx context.Context) error
}
