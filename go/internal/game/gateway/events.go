package gateway

import (
	"encoding/json"
	"time"

	"github.com/pairplay/pairplay/go/internal/game/events"
)

// GameEvent represents the base structure for all game events pushed to clients
type GameEvent struct {
	ID        string          `json:"id"`         // Event UUID
	SessionID string          `json:"session_id"` // Game session UUID
	Type      EventType       `json:"type"`       // Event type
	Timestamp time.Time       `json:"timestamp"`  // Event creation time
	Data      json.RawMessage `json:"data"`       // Event-specific payload
}

// EventType represents the type of game event
type EventType string

const (
	EventTypeSessionCreated   EventType = "SessionCreated"
	EventTypeAnswerSubmitted  EventType = "AnswerSubmitted"
	EventTypeSessionCompleted EventType = "SessionCompleted"
	EventTypeTurnReminder     EventType = "TurnReminder"
)

// ParseEventPayload parses event data into the appropriate payload struct
func ParseEventPayload(event *GameEvent) (interface{}, error) {
	switch event.Type {
	case EventTypeSessionCreated:
		var payload events.SessionCreatedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeAnswerSubmitted:
		var payload events.AnswerSubmittedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeSessionCompleted:
		var payload events.SessionCompletedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeTurnReminder:
		var payload events.TurnReminderPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	default:
		return nil, nil // Unknown event type
	}
}
