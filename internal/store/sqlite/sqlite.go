package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/nexusai/broker/internal/store"
	"github.com/nexusai/broker/internal/store/model"
)

// DB defines the interface for database operations (satisfied by *sqlx.DB and *sqlx.Tx)
type DB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// SqliteRepository implements store.Repository
type SqliteRepository struct {
	db       *sqlx.DB // Required for starting new transactions
	executor DB       // Used for actual queries (can be *sqlx.DB or *sqlx.Tx)
}

func NewSqliteRepository(db *sqlx.DB) *SqliteRepository {
	return &SqliteRepository{
		db:       db,
		executor: db,
	}
}

func (r *SqliteRepository) Close() error {
	return r.db.Close()
}

func (r *SqliteRepository) WithTx(ctx context.Context, fn func(repo store.Repository) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	txRepo := &SqliteRepository{
		db:       r.db,
		executor: tx,
	}

	if err := fn(txRepo); err != nil {
		// attempt rollback, but prioritize original error
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (r *SqliteRepository) Dispatches() store.DispatchRepository {
	return &dispatchRepo{db: r.executor}
}

func (r *SqliteRepository) Conversations() store.ConversationRepository {
	return &conversationRepo{db: r.executor}
}

type dispatchRepo struct {
	db DB
}

func (r *dispatchRepo) Log(ctx context.Context, rec *model.Dispatch) error {
	query := `
	INSERT INTO dispatches (
		id, message, provider_used, model_used, latency_ms,
		total_tokens, succeeded, failure_count, created_at
	) VALUES (
		:id, :message, :provider_used, :model_used, :latency_ms,
		:total_tokens, :succeeded, :failure_count, :created_at
	)`
	_, err := r.db.NamedExecContext(ctx, query, rec)
	return err
}

func (r *dispatchRepo) GetRecent(ctx context.Context, limit int) ([]model.Dispatch, error) {
	var recs []model.Dispatch
	query := `SELECT * FROM dispatches ORDER BY created_at DESC LIMIT ?`
	err := r.db.SelectContext(ctx, &recs, query, limit)
	return recs, err
}

func (r *dispatchRepo) GetDailyStats(ctx context.Context, days int) ([]model.DailyStats, error) {
	var stats []model.DailyStats
	query := `
	SELECT
		date(created_at) AS day,
		COUNT(*) AS dispatches,
		SUM(CASE WHEN succeeded THEN 1 ELSE 0 END) AS succeeded,
		COALESCE(SUM(total_tokens), 0) AS total_tokens,
		COALESCE(CAST(AVG(latency_ms) AS INTEGER), 0) AS avg_latency_ms
	FROM dispatches
	WHERE created_at >= date('now', ?)
	GROUP BY date(created_at)
	ORDER BY day DESC`
	err := r.db.SelectContext(ctx, &stats, query, fmt.Sprintf("-%d days", days))
	return stats, err
}

type conversationRepo struct {
	db DB
}

func (r *conversationRepo) Append(ctx context.Context, msg *model.ConversationMessage) error {
	query := `
	INSERT INTO conversation_messages (
		id, conversation_id, role, content, model, provider, created_at
	) VALUES (
		:id, :conversation_id, :role, :content, :model, :provider, :created_at
	)`
	_, err := r.db.NamedExecContext(ctx, query, msg)
	return err
}

func (r *conversationRepo) History(ctx context.Context, conversationID string, limit int) ([]model.ConversationMessage, error) {
	var msgs []model.ConversationMessage
	query := `
	SELECT * FROM conversation_messages
	WHERE conversation_id = ?
	ORDER BY created_at ASC
	LIMIT ?`
	err := r.db.SelectContext(ctx, &msgs, query, conversationID, limit)
	return msgs, err
}
