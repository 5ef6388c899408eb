package api

// ChatRequest is the inbound contract for a single chat turn.
type ChatRequest struct {
	// The raw user message. Required.
	Message string `json:"message" binding:"required"`

	// Target model ID (e.g. "llama-3.1-8b-instant"). Optional; when empty
	// or when AutoSelect is set, the broker picks a default chat model.
	Model string `json:"model,omitempty"`

	// AutoSelect lets the broker ignore Model and choose the best
	// available chat model by provider priority.
	AutoSelect bool `json:"auto_select,omitempty"`

	// GuardrailsEnabled controls the content-safety check before
	// dispatch. Unset means enabled; clients opt out explicitly.
	GuardrailsEnabled *bool `json:"guardrails_enabled,omitempty"`

	// ConversationID threads this turn into a stored conversation.
	// A fresh one is assigned when empty and returned in the response.
	ConversationID string `json:"conversation_id,omitempty"`
}

// ModelFilter narrows the model listing.
type ModelFilter struct {
	Provider   string `form:"provider"`
	Capability string `form:"capability"`
	ID         string `form:"id"`
}
