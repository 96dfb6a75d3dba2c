package services

import (
	"context"
	"testing"
	"time"

	"pecunia-backend/internal/models"
	"pecunia-backend/internal/session"
	"pecunia-backend/internal/store"
	"pecunia-backend/internal/store/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSessionLifecycleArchivesMessages(t *testing.T) {
	registry := session.NewRegistry(nil)
	archive := memory.NewMemoryStore()
	sessions := NewSessionService(registry, archive, zap.NewNop())
	assistant := NewAssistantService(registry, newFakeGateway(), nil, zap.NewNop())
	ctx := context.Background()

	started, err := sessions.Start(ctx)
	require.NoError(t, err)
	id := started.Session.ID
	assert.Equal(t, WelcomeText, started.Welcome.Body)
	assert.Equal(t, 46000.0, started.Session.NetWorth)
	assert.Equal(t, "idle", started.Session.State)

	_, err = assistant.HandleMessage(ctx, id, "Give me a comprehensive overview")
	require.NoError(t, err)

	timeline, err := sessions.Timeline(ctx, id)
	require.NoError(t, err)
	require.Len(t, timeline, 3)

	tr, err := sessions.Transcript(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.TranscriptStatusActive, tr.Status)
	require.Len(t, tr.Messages, 3)
	assert.Equal(t, timeline[2].ID, tr.Messages[2].ID)

	require.NoError(t, sessions.End(ctx, id))
	_, err = sessions.Get(ctx, id)
	assert.ErrorIs(t, err, session.ErrNotFound)
	assert.ErrorIs(t, sessions.End(ctx, id), session.ErrNotFound)

	tr, err = sessions.Transcript(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.TranscriptStatusEnded, tr.Status)

	list, err := sessions.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 3, list[0].MessageCount)
}

func TestSessionGetReportsLastError(t *testing.T) {
	registry := session.NewRegistry(nil)
	sessions := NewSessionService(registry, memory.NewMemoryStore(), zap.NewNop())
	ctx := context.Background()

	started, err := sessions.Start(ctx)
	require.NoError(t, err)
	sess, err := registry.Get(started.Session.ID)
	require.NoError(t, err)
	sess.SetLastError(assert.AnError)

	got, err := sessions.Get(ctx, sess.ID())
	require.NoError(t, err)
	require.NotNil(t, got.LastError)
	assert.Equal(t, assert.AnError.Error(), *got.LastError)
	assert.Equal(t, 1, got.MessageCount)
}

func TestSessionSubscribe(t *testing.T) {
	registry := session.NewRegistry(nil)
	sessions := NewSessionService(registry, memory.NewMemoryStore(), zap.NewNop())
	ctx := context.Background()

	started, err := sessions.Start(ctx)
	require.NoError(t, err)

	var got []string
	unsubscribe, _, err := sessions.Subscribe(ctx, started.Session.ID, func(m models.Message) { got = append(got, m.Body) })
	require.NoError(t, err)
	defer unsubscribe()

	sess, _ := registry.Get(started.Session.ID)
	sess.AppendMessage(models.NewUserMessage("ping", time.Now()))
	assert.Equal(t, []string{"ping"}, got)

	_, _, err = sessions.Subscribe(ctx, uuid.New(), func(models.Message) {})
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestSessionSubscribeDoneOnEnd(t *testing.T) {
	sessions := NewSessionService(session.NewRegistry(nil), memory.NewMemoryStore(), zap.NewNop())
	ctx := context.Background()

	started, err := sessions.Start(ctx)
	require.NoError(t, err)
	unsubscribe, done, err := sessions.Subscribe(ctx, started.Session.ID, func(models.Message) {})
	require.NoError(t, err)
	defer unsubscribe()

	require.NoError(t, sessions.End(ctx, started.Session.ID))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("subscription not released when the session ended")
	}
}

func TestTranscriptNotFound(t *testing.T) {
	sessions := NewSessionService(session.NewRegistry(nil), memory.NewMemoryStore(), zap.NewNop())
	_, err := sessions.Transcript(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEvictIdleEndsTranscripts(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	registry := session.NewRegistry(clock)
	archive := memory.NewMemoryStore()
	sessions := NewSessionService(registry, archive, zap.NewNop())
	ctx := context.Background()

	started, err := sessions.Start(ctx)
	require.NoError(t, err)

	now = now.Add(3 * time.Hour)
	assert.Equal(t, 1, sessions.EvictIdle(2*time.Hour))
	assert.Equal(t, 0, registry.Len())

	tr, err := sessions.Transcript(ctx, started.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TranscriptStatusEnded, tr.Status)
}
