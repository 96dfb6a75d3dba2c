package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pecunia-backend/internal/models"
	"pecunia-backend/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Compile-time check to ensure PostgresStore implements store.Store
var _ store.Store = (*PostgresStore)(nil)

type PostgresStore struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgresStore(db *pgxpool.Pool, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger.Named("postgres")}
}

const schema = `
CREATE TABLE IF NOT EXISTS transcripts (
    session_id UUID PRIMARY KEY,
    messages   JSONB NOT NULL DEFAULT '[]'::jsonb,
    status     TEXT NOT NULL DEFAULT 'ACTIVE',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS transcripts_updated_at_idx ON transcripts (updated_at DESC);
`

// Migrate creates the transcripts table if it does not exist yet.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply transcript schema: %w", err)
	}
	return nil
}

const createTranscript = `
INSERT INTO transcripts (session_id, messages, status, created_at, updated_at)
VALUES ($1, '[]'::jsonb, $2, $3, $3);
`

func (s *PostgresStore) CreateTranscript(ctx context.Context, sessionID uuid.UUID, createdAt time.Time) error {
	_, err := s.db.Exec(ctx, createTranscript, sessionID, models.TranscriptStatusActive, createdAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("transcript for session %s already exists: %w", sessionID, err)
		}
		return fmt.Errorf("failed to insert transcript: %w", err)
	}
	return nil
}

// AppendMessage appends one message to the messages JSONB array. The
// concatenation happens in SQL so concurrent appends never overwrite each other.
func (s *PostgresStore) AppendMessage(ctx context.Context, sessionID uuid.UUID, msg models.Message) error {
	data, err := json.Marshal([]models.Message{msg})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	const appendMessage = `
		UPDATE transcripts
		SET messages = messages || $1::jsonb, updated_at = NOW()
		WHERE session_id = $2;
	`

	tag, err := s.db.Exec(ctx, appendMessage, data, sessionID)
	if err != nil {
		return fmt.Errorf("failed to append transcript message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// UpdateTranscriptStatus updates the status of a transcript.
func (s *PostgresStore) UpdateTranscriptStatus(ctx context.Context, sessionID uuid.UUID, status models.TranscriptStatus) error {
	if status != models.TranscriptStatusActive && status != models.TranscriptStatusEnded {
		return fmt.Errorf("invalid status: %s", status)
	}

	const updateStatus = `
		UPDATE transcripts
		SET status = $1, updated_at = NOW()
		WHERE session_id = $2;
	`

	tag, err := s.db.Exec(ctx, updateStatus, status, sessionID)
	if err != nil {
		return fmt.Errorf("failed to update transcript status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

const getTranscript = `
SELECT session_id, messages, status, created_at, updated_at
FROM transcripts
WHERE session_id = $1;
`

func (s *PostgresStore) GetTranscript(ctx context.Context, sessionID uuid.UUID) (*models.Transcript, error) {
	var t models.Transcript
	err := s.db.QueryRow(ctx, getTranscript, sessionID).Scan(
		&t.SessionID,
		&t.Messages,
		&t.Status,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		s.logger.Error("failed to scan transcript", zap.Stringer("session_id", sessionID), zap.Error(err))
		return nil, fmt.Errorf("error scanning transcript: %w", err)
	}
	return &t, nil
}

const listTranscripts = `
SELECT session_id, status, jsonb_array_length(messages), updated_at
FROM transcripts
ORDER BY updated_at DESC
LIMIT $1 OFFSET $2;
`

func (s *PostgresStore) ListTranscripts(ctx context.Context, limit, offset int) ([]models.TranscriptSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.Query(ctx, listTranscripts, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("error querying transcripts: %w", err)
	}
	defer rows.Close()

	summaries := []models.TranscriptSummary{}
	for rows.Next() {
		var t models.TranscriptSummary
		if err := rows.Scan(&t.SessionID, &t.Status, &t.MessageCount, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning transcript row: %w", err)
		}
		summaries = append(summaries, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transcript rows: %w", err)
	}
	return summaries, nil
}

func (s *PostgresStore) Close() {
	s.db.Close()
}
