package api

// ModelDescriptor is the normalized metadata record for one callable
// model. The ID is unique within a provider but may collide across
// providers; the uniqueness key is (Provider, ID).
type ModelDescriptor struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Provider     string `json:"provider"`
	ProviderName string `json:"provider_name"`

	ContextLength int `json:"context_length"`

	// Cost per 1K tokens in USD. Zero means free (local models).
	CostPer1KTokens float64 `json:"cost_per_1k_tokens"`

	Capabilities []string `json:"capabilities"`
	Description  string   `json:"description"`

	MaxOutputTokens int `json:"max_output_tokens,omitempty"`
}

// HasCapability reports whether the descriptor advertises cap.
func (m ModelDescriptor) HasCapability(cap string) bool {
	for _, c := range m.Capabilities {
		if c == cap {
			return true
		}
	}
	return false
}
