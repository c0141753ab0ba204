package events

import (
	"time"

	"github.com/pairplay/pairplay/go/internal/models"
)

// Event payload types shared between the game and gateway packages.
// Every payload that carries State carries the full post-transition
// snapshot; consumers treat it as idempotent, not as a delta.

// SessionCreatedPayload is the payload for a SessionCreated event
type SessionCreatedPayload struct {
	SessionID      string           `json:"session_id"`
	CoupleID       string           `json:"couple_id"`
	GameType       string           `json:"game_type"`
	TotalQuestions int              `json:"total_questions"`
	CreatedBy      string           `json:"created_by"`
	CreatedAt      time.Time        `json:"created_at"`
	State          models.GameState `json:"state"`
}

// AnswerSubmittedPayload is the payload for an AnswerSubmitted event
type AnswerSubmittedPayload struct {
	SessionID     string            `json:"session_id"`
	Slot          models.PlayerSlot `json:"slot"`
	QuestionIndex int               `json:"question_index"`
	SubmittedAt   time.Time         `json:"submitted_at"`
	State         models.GameState  `json:"state"`
}

// SessionCompletedPayload is the payload for a SessionCompleted event
type SessionCompletedPayload struct {
	SessionID   string           `json:"session_id"`
	GameType    string           `json:"game_type"`
	CompletedAt time.Time        `json:"completed_at"`
	State       models.GameState `json:"state"`
}

// TurnReminderPayload is the payload for a TurnReminder event
type TurnReminderPayload struct {
	SessionID string            `json:"session_id"`
	Slot      models.PlayerSlot `json:"slot"`
	IdleSince time.Time         `json:"idle_since"`
	NudgedAt  time.Time         `json:"nudged_at"`
}
