package memory

import (
	"context"
	"testing"
	"time"

	"pecunia-backend/internal/models"
	"pecunia-backend/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreTranscriptLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	id := uuid.New()
	start := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, s.CreateTranscript(ctx, id, start))
	assert.Error(t, s.CreateTranscript(ctx, id, start), "duplicate transcript")

	require.NoError(t, s.AppendMessage(ctx, id, models.NewUserMessage("hi", start)))
	require.NoError(t, s.AppendMessage(ctx, id, models.NewAssistantMessage("hello", start)))
	require.NoError(t, s.UpdateTranscriptStatus(ctx, id, models.TranscriptStatusEnded))

	tr, err := s.GetTranscript(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.TranscriptStatusEnded, tr.Status)
	assert.Equal(t, start, tr.CreatedAt)

	msgs, err := tr.DecodeMessages()
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hi", msgs[0].Body)
	assert.Equal(t, models.OriginAssistant, msgs[1].Origin)
}

func TestMemoryStoreNotFound(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	id := uuid.New()

	_, err := s.GetTranscript(ctx, id)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.AppendMessage(ctx, id, models.NewUserMessage("x", time.Now())), store.ErrNotFound)
	assert.ErrorIs(t, s.UpdateTranscriptStatus(ctx, id, models.TranscriptStatusEnded), store.ErrNotFound)
}

func TestMemoryStoreListTranscripts(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	clock := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for _, id := range ids {
		require.NoError(t, s.CreateTranscript(ctx, id, clock))
	}
	for _, id := range ids {
		clock = clock.Add(time.Minute)
		require.NoError(t, s.AppendMessage(ctx, id, models.NewUserMessage("x", clock)))
	}
	require.NoError(t, s.AppendMessage(ctx, ids[2], models.NewAssistantMessage("y", clock)))

	all, err := s.ListTranscripts(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].SessionID, "most recently updated first")
	assert.Equal(t, 2, all[0].MessageCount)
	assert.Equal(t, 1, all[1].MessageCount)
	assert.Equal(t, models.TranscriptStatusActive, all[0].Status)

	page, err := s.ListTranscripts(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ids[1], page[0].SessionID)

	empty, err := s.ListTranscripts(ctx, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
