package store

import (
	"context"

	"github.com/nexusai/broker/internal/store/model"
)

// Repository is the main contract for the data layer.
type Repository interface {
	Dispatches() DispatchRepository
	Conversations() ConversationRepository

	// transaction support
	WithTx(ctx context.Context, fn func(repo Repository) error) error

	Close() error
}

type DispatchRepository interface {
	// Log stores one completed dispatch.
	Log(ctx context.Context, rec *model.Dispatch) error
	// GetRecent returns the last N dispatch records.
	GetRecent(ctx context.Context, limit int) ([]model.Dispatch, error)
	// GetDailyStats returns aggregated stats grouped by day.
	GetDailyStats(ctx context.Context, days int) ([]model.DailyStats, error)
}

type ConversationRepository interface {
	// Append adds a message to a conversation.
	Append(ctx context.Context, msg *model.ConversationMessage) error
	// History returns a conversation's messages, oldest first.
	History(ctx context.Context, conversationID string, limit int) ([]model.ConversationMessage, error)
}
