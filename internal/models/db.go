package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TranscriptStatus tracks whether a session archive is still receiving messages.
type TranscriptStatus string

const (
	TranscriptStatusActive TranscriptStatus = "ACTIVE"
	TranscriptStatusEnded  TranscriptStatus = "ENDED"
)

// Transcript corresponds to the transcripts table.
type Transcript struct {
	SessionID uuid.UUID        `db:"session_id"`
	Messages  json.RawMessage  `db:"messages"` // JSONB array of Message
	Status    TranscriptStatus `db:"status"`
	CreatedAt time.Time        `db:"created_at"`
	UpdatedAt time.Time        `db:"updated_at"`
}

// DecodeMessages unmarshals the stored JSONB array.
func (t *Transcript) DecodeMessages() ([]Message, error) {
	if len(t.Messages) == 0 {
		return []Message{}, nil
	}
	var msgs []Message
	if err := json.Unmarshal(t.Messages, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}
