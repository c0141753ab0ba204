package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types recorded in the outbox and replayed to clients.
const (
	EventTypeSessionCreated   = "SessionCreated"
	EventTypeAnswerSubmitted  = "AnswerSubmitted"
	EventTypeSessionCompleted = "SessionCompleted"
	EventTypeTurnReminder     = "TurnReminder"
)

// OutboxEvent represents an outbox event for the application layer
type OutboxEvent struct {
	ID        uuid.UUID       `json:"id"`
	SessionID uuid.UUID       `json:"session_id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	SentAt    *time.Time      `json:"sent_at,omitempty"`
}
