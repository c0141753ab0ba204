package session

import (
	"github.com/google/uuid"
	"github.com/pairplay/pairplay/go/internal/models"
)

// CreateSessionRequest represents a request to create a new game session
type CreateSessionRequest struct {
	ID        uuid.UUID         `json:"id"`
	CoupleID  uuid.UUID         `json:"couple_id"`
	GameType  models.GameType   `json:"game_type"`
	Questions []models.Question `json:"questions"`
	CreatedBy uuid.UUID         `json:"created_by"`
}

// UpdateStateRequest carries a guarded state replacement for a session.
// The expected counts pin both slots' answer counts at read time. The
// replacement writes the whole state document, so a concurrent submission
// from either slot must fail the guard and rebuild from a fresh read.
type UpdateStateRequest struct {
	State                  models.GameState `json:"state"`
	ExpectedPlayer1Answers int              `json:"expected_player1_answers"`
	ExpectedPlayer2Answers int              `json:"expected_player2_answers"`
}
