package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Origin identifies who sent a message.
type Origin string

const (
	OriginUser      Origin = "user"
	OriginAssistant Origin = "assistant"
)

// Message represents a single entry in a session's conversation log.
// Messages are immutable once appended.
type Message struct {
	ID           uuid.UUID       `json:"id"`
	Origin       Origin          `json:"origin"`
	Body         string          `json:"body"`
	CreatedAt    time.Time       `json:"created_at"`
	TaskCategory *TaskCategory   `json:"task_category,omitempty"` // Set on assistant replies produced by an analysis
	RawResult    json.RawMessage `json:"raw_result,omitempty"`    // Opaque backend result the body was rendered from
	QuickActions []QuickAction   `json:"quick_actions,omitempty"`
}

// QuickAction is a suggested follow-up shown under an assistant reply.
type QuickAction struct {
	Label    string `json:"label"`
	ActionID string `json:"action_id"`
	Prompt   string `json:"prompt"` // Text sent back as a user message when the action is chosen
}

// NewUserMessage creates a message authored by the user.
func NewUserMessage(body string, at time.Time) Message {
	return Message{
		ID:        uuid.New(),
		Origin:    OriginUser,
		Body:      body,
		CreatedAt: at,
	}
}

// NewAssistantMessage creates a plain assistant message with no analysis attached.
func NewAssistantMessage(body string, at time.Time) Message {
	return Message{
		ID:        uuid.New(),
		Origin:    OriginAssistant,
		Body:      body,
		CreatedAt: at,
	}
}
