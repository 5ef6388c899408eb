package model

import "time"

// Dispatch is the persisted record of one chat dispatch, successful
// or exhausted.
type Dispatch struct {
	ID           string    `db:"id" json:"id"`
	Message      string    `db:"message" json:"message"`
	ProviderUsed string    `db:"provider_used" json:"provider_used"`
	ModelUsed    string    `db:"model_used" json:"model_used"`
	LatencyMs    int64     `db:"latency_ms" json:"latency_ms"`
	TotalTokens  int       `db:"total_tokens" json:"total_tokens"`
	Succeeded    bool      `db:"succeeded" json:"succeeded"`
	FailureCount int       `db:"failure_count" json:"failure_count"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ConversationMessage is one stored turn of a conversation.
type ConversationMessage struct {
	ID             string    `db:"id" json:"id"`
	ConversationID string    `db:"conversation_id" json:"conversation_id"`
	Role           string    `db:"role" json:"role"`
	Content        string    `db:"content" json:"content"`
	Model          string    `db:"model" json:"model,omitempty"`
	Provider       string    `db:"provider" json:"provider,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// DailyStats is an aggregated per-day dispatch summary.
type DailyStats struct {
	Day          string `db:"day" json:"day"`
	Dispatches   int    `db:"dispatches" json:"dispatches"`
	Succeeded    int    `db:"succeeded" json:"succeeded"`
	TotalTokens  int    `db:"total_tokens" json:"total_tokens"`
	AvgLatencyMs int    `db:"avg_latency_ms" json:"avg_latency_ms"`
}
