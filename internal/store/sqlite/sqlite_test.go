package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexusai/broker/internal/store"
	"github.com/nexusai/broker/internal/store/model"
	"github.com/nexusai/broker/internal/store/sqlite"
)

func newTestRepo(t *testing.T) store.Repository {
	t.Helper()
	repo, err := sqlite.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func dispatch(succeeded bool) *model.Dispatch {
	return &model.Dispatch{
		ID:           uuid.NewString(),
		Message:      "hello",
		ProviderUsed: "groq",
		ModelUsed:    "llama-3.1-8b-instant",
		LatencyMs:    120,
		TotalTokens:  21,
		Succeeded:    succeeded,
		CreatedAt:    time.Now().UTC(),
	}
}

func TestDispatchLogAndGetRecent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := dispatch(true)
	first.CreatedAt = time.Now().UTC().Add(-time.Minute)
	second := dispatch(false)

	require.NoError(t, repo.Dispatches().Log(ctx, first))
	require.NoError(t, repo.Dispatches().Log(ctx, second))

	recent, err := repo.Dispatches().GetRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	// Newest first.
	assert.Equal(t, second.ID, recent[0].ID)
	assert.Equal(t, "groq", recent[0].ProviderUsed)
	assert.False(t, recent[0].Succeeded)
	assert.Equal(t, first.ID, recent[1].ID)
}

func TestGetDailyStats(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Dispatches().Log(ctx, dispatch(true)))
	require.NoError(t, repo.Dispatches().Log(ctx, dispatch(true)))
	require.NoError(t, repo.Dispatches().Log(ctx, dispatch(false)))

	stats, err := repo.Dispatches().GetDailyStats(ctx, 7)
	require.NoError(t, err)
	require.Len(t, stats, 1)

	assert.Equal(t, 3, stats[0].Dispatches)
	assert.Equal(t, 2, stats[0].Succeeded)
	assert.Equal(t, 63, stats[0].TotalTokens)
	assert.Equal(t, 120, stats[0].AvgLatencyMs)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	err := repo.WithTx(ctx, func(txRepo store.Repository) error {
		if err := txRepo.Dispatches().Log(ctx, dispatch(true)); err != nil {
			return err
		}
		return errors.New("forced failure")
	})
	require.Error(t, err)

	recent, err := repo.Dispatches().GetRecent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestConversationAppendAndHistory(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	convID := uuid.NewString()

	turns := []*model.ConversationMessage{
		{ID: uuid.NewString(), ConversationID: convID, Role: "user", Content: "Hi", CreatedAt: time.Now().UTC().Add(-2 * time.Second)},
		{ID: uuid.NewString(), ConversationID: convID, Role: "assistant", Content: "Hello!", Model: "llama-3.1-8b-instant", Provider: "groq", CreatedAt: time.Now().UTC()},
	}
	for _, turn := range turns {
		require.NoError(t, repo.Conversations().Append(ctx, turn))
	}

	// A different conversation stays out of the history.
	require.NoError(t, repo.Conversations().Append(ctx, &model.ConversationMessage{
		ID: uuid.NewString(), ConversationID: uuid.NewString(), Role: "user", Content: "other", CreatedAt: time.Now().UTC(),
	}))

	history, err := repo.Conversations().History(ctx, convID, 50)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "assistant", history[1].Role)
	assert.Equal(t, "groq", history[1].Provider)
}
