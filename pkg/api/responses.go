package api

// ChatResponse is always well-formed: a guardrail block or provider
// exhaustion is reported through structured fields, never as a bare
// transport failure.
type ChatResponse struct {
	Response     string `json:"response,omitempty"`
	ModelUsed    string `json:"model_used,omitempty"`
	ProviderUsed string `json:"provider_used,omitempty"`

	// Wall-clock latency of the winning attempt, in seconds.
	ResponseTime float64 `json:"response_time"`

	ConversationID string `json:"conversation_id,omitempty"`

	Usage *Usage `json:"usage,omitempty"`

	Blocked     bool   `json:"blocked,omitempty"`
	BlockReason string `json:"block_reason,omitempty"`

	Error string `json:"error,omitempty"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ProviderStatus is the per-provider entry of the status views.
type ProviderStatus struct {
	Name               string `json:"name"`
	Enabled            bool   `json:"enabled"`
	Priority           int    `json:"priority"`
	RequestsLastMinute int    `json:"requests_last_minute"`
	RateLimit          int    `json:"rate_limit"`
	Attempts           int64  `json:"attempts"`
	Successes          int64  `json:"successes"`
	Failures           int64  `json:"failures"`
	Degraded           bool   `json:"degraded,omitempty"`
	DisabledReason     string `json:"disabled_reason,omitempty"`
}

// ModelsResponse is shared by the list and refresh endpoints.
type ModelsResponse struct {
	Status               string                    `json:"status"`
	Models               []ModelDescriptor         `json:"models"`
	Providers            map[string]ProviderStatus `json:"providers"`
	MultiProviderEnabled bool                      `json:"multi_provider_enabled"`
	TotalCount           int                       `json:"total_count"`
}

// ProvidersResponse carries only the providers map.
type ProvidersResponse struct {
	Providers map[string]ProviderStatus `json:"providers"`
}
