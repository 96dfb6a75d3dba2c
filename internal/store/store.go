package store

import (
	"context"
	"errors"
	"time"

	"pecunia-backend/internal/models"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a specific record is not found.
var ErrNotFound = errors.New("record not found")

// Store defines the interface for the transcript archive.
// Sessions live in memory; the archive keeps their message logs after teardown.
type Store interface {
	// CreateTranscript starts an empty ACTIVE transcript for a session.
	CreateTranscript(ctx context.Context, sessionID uuid.UUID, createdAt time.Time) error
	// AppendMessage adds msg to the end of the session's transcript.
	AppendMessage(ctx context.Context, sessionID uuid.UUID, msg models.Message) error
	UpdateTranscriptStatus(ctx context.Context, sessionID uuid.UUID, status models.TranscriptStatus) error
	GetTranscript(ctx context.Context, sessionID uuid.UUID) (*models.Transcript, error)
	// ListTranscripts summarizes transcripts, most recently updated first,
	// without loading their message logs.
	ListTranscripts(ctx context.Context, limit, offset int) ([]models.TranscriptSummary, error)
	Close()
}
