package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nexusai/broker/internal/broker"
	"github.com/nexusai/broker/internal/store"
	"github.com/nexusai/broker/internal/store/model"
)

// Ingestor handles the asynchronous persistence of dispatch records
// and their conversation turns. Record never blocks; under pressure
// records are dropped, not queued.
type Ingestor interface {
	Record(rec broker.DispatchRecord)
	Start(ctx context.Context)
	Stop()
}

// entry is one dispatch plus the conversation turns it produced.
type entry struct {
	dispatch *model.Dispatch
	turns    []*model.ConversationMessage
}

type ingestor struct {
	logger    *zap.Logger
	repo      store.Repository
	recChan   chan *entry
	batchSize int
	flushTime time.Duration
}

func NewIngestor(logger *zap.Logger, repo store.Repository) Ingestor {
	return &ingestor{
		logger:    logger,
		repo:      repo,
		recChan:   make(chan *entry, 10000),
		batchSize: 50,
		flushTime: 5 * time.Second,
	}
}

func (i *ingestor) Record(rec broker.DispatchRecord) {
	e := &entry{
		dispatch: &model.Dispatch{
			ID:           uuid.NewString(),
			Message:      rec.Message,
			ProviderUsed: rec.ProviderUsed,
			ModelUsed:    rec.ModelUsed,
			LatencyMs:    rec.Latency.Milliseconds(),
			TotalTokens:  rec.TotalTokens,
			Succeeded:    rec.Succeeded,
			FailureCount: rec.FailureCount,
			CreatedAt:    rec.CreatedAt,
		},
	}

	// A successful dispatch appends both turns of the exchange; the
	// assistant turn is stamped at completion time so history keeps
	// its order.
	if rec.Succeeded && rec.ConversationID != "" {
		e.turns = []*model.ConversationMessage{
			{
				ID:             uuid.NewString(),
				ConversationID: rec.ConversationID,
				Role:           "user",
				Content:        rec.Message,
				CreatedAt:      rec.CreatedAt,
			},
			{
				ID:             uuid.NewString(),
				ConversationID: rec.ConversationID,
				Role:           "assistant",
				Content:        rec.Response,
				Model:          rec.ModelUsed,
				Provider:       rec.ProviderUsed,
				CreatedAt:      rec.CreatedAt.Add(rec.Latency),
			},
		}
	}

	select {
	case i.recChan <- e:
	default:
		i.logger.Warn("analytics buffer full, dropping dispatch record", zap.String("id", e.dispatch.ID))
	}
}

func (i *ingestor) Start(ctx context.Context) {
	go i.worker(ctx)
}

func (i *ingestor) Stop() {
	close(i.recChan)
}

func (i *ingestor) worker(ctx context.Context) {
	batch := make([]*entry, 0, i.batchSize)
	ticker := time.NewTicker(i.flushTime)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		for _, e := range batch {
			if err := i.repo.Dispatches().Log(context.Background(), e.dispatch); err != nil {
				i.logger.Error("failed to persist dispatch record", zap.String("id", e.dispatch.ID), zap.Error(err))
			}
			for _, turn := range e.turns {
				if err := i.repo.Conversations().Append(context.Background(), turn); err != nil {
					i.logger.Error("failed to persist conversation turn", zap.String("id", turn.ID), zap.Error(err))
				}
			}
		}
		batch = batch[:0]
	}

	for {
		select {
		case e, ok := <-i.recChan:
			if !ok {
				flush()
				return
			}
			batch = append(batch, e)
			if len(batch) >= i.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-ctx.Done():
			flush()
			return
		}
	}
}
