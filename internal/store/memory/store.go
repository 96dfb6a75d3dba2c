// Package memory is the in-process transcript archive used when no database
// is configured.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"pecunia-backend/internal/models"
	"pecunia-backend/internal/store"

	"github.com/google/uuid"
)

// Compile-time check to ensure MemoryStore implements store.Store
var _ store.Store = (*MemoryStore)(nil)

type transcript struct {
	messages  []models.Message
	status    models.TranscriptStatus
	createdAt time.Time
	updatedAt time.Time
}

type MemoryStore struct {
	mu          sync.RWMutex
	transcripts map[uuid.UUID]*transcript
	now         func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		transcripts: make(map[uuid.UUID]*transcript),
		now:         time.Now,
	}
}

func (s *MemoryStore) CreateTranscript(_ context.Context, sessionID uuid.UUID, createdAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.transcripts[sessionID]; exists {
		return fmt.Errorf("transcript for session %s already exists", sessionID)
	}
	s.transcripts[sessionID] = &transcript{
		messages:  []models.Message{},
		status:    models.TranscriptStatusActive,
		createdAt: createdAt,
		updatedAt: createdAt,
	}
	return nil
}

func (s *MemoryStore) AppendMessage(_ context.Context, sessionID uuid.UUID, msg models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transcripts[sessionID]
	if !ok {
		return store.ErrNotFound
	}
	t.messages = append(t.messages, msg)
	t.updatedAt = s.now()
	return nil
}

func (s *MemoryStore) UpdateTranscriptStatus(_ context.Context, sessionID uuid.UUID, status models.TranscriptStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transcripts[sessionID]
	if !ok {
		return store.ErrNotFound
	}
	t.status = status
	t.updatedAt = s.now()
	return nil
}

func (s *MemoryStore) GetTranscript(_ context.Context, sessionID uuid.UUID) (*models.Transcript, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transcripts[sessionID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return toModel(sessionID, t)
}

func (s *MemoryStore) ListTranscripts(_ context.Context, limit, offset int) ([]models.TranscriptSummary, error) {
	s.mu.RLock()
	out := make([]models.TranscriptSummary, 0, len(s.transcripts))
	for id, t := range s.transcripts {
		out = append(out, models.TranscriptSummary{
			SessionID:    id,
			Status:       t.status,
			MessageCount: len(t.messages),
			UpdatedAt:    t.updatedAt,
		})
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if offset >= len(out) {
		return []models.TranscriptSummary{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Close() {}

// toModel encodes the log the same way the postgres store keeps it in JSONB.
func toModel(id uuid.UUID, t *transcript) (*models.Transcript, error) {
	data, err := json.Marshal(t.messages)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transcript messages: %w", err)
	}
	return &models.Transcript{
		SessionID: id,
		Messages:  data,
		Status:    t.status,
		CreatedAt: t.createdAt,
		UpdatedAt: t.updatedAt,
	}, nil
}
