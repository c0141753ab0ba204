package models

import (
	"time"

	"github.com/google/uuid"
)

// GameType defines the type of couples mini-game.
type GameType string

const (
	GameTypeTrivia         GameType = "trivia"
	GameTypeWouldYouRather GameType = "would_you_rather"
	GameTypeWhosMoreLikely GameType = "whos_more_likely"
)

// GamePhase defines the lifecycle phase of a game session.
type GamePhase string

const (
	GamePhaseInProgress GamePhase = "in_progress"
	GamePhaseCompleted  GamePhase = "completed"
)

// PlayerSlot identifies one of the two fixed slots in a couple.
type PlayerSlot string

const (
	PlayerSlotOne PlayerSlot = "player1"
	PlayerSlotTwo PlayerSlot = "player2"
)

// Other returns the opposite slot.
func (s PlayerSlot) Other() PlayerSlot {
	if s == PlayerSlotOne {
		return PlayerSlotTwo
	}
	return PlayerSlotOne
}

// GameState holds the mutable progress of a session. It is persisted as a
// single JSONB document and pushed to clients as an idempotent snapshot.
type GameState struct {
	Phase                GamePhase  `json:"phase"`
	CurrentTurn          PlayerSlot `json:"current_turn"`
	CurrentQuestionIndex int        `json:"current_question_index"`
	Player1Answers       []Answer   `json:"player1_answers"`
	Player2Answers       []Answer   `json:"player2_answers"`
	Player1Score         *int       `json:"player1_score,omitempty"` // trivia
	Player2Score         *int       `json:"player2_score,omitempty"` // trivia
	TotalQuestions       int        `json:"total_questions"`
}

// AnswersFor returns the answer sequence for a slot.
func (gs *GameState) AnswersFor(slot PlayerSlot) []Answer {
	if slot == PlayerSlotOne {
		return gs.Player1Answers
	}
	return gs.Player2Answers
}

// AppendAnswer appends an answer to the slot's sequence.
func (gs *GameState) AppendAnswer(slot PlayerSlot, ans Answer) {
	if slot == PlayerSlotOne {
		gs.Player1Answers = append(gs.Player1Answers, ans)
	} else {
		gs.Player2Answers = append(gs.Player2Answers, ans)
	}
}

// ScoreFor returns the trivia score for a slot, zero when unset.
func (gs *GameState) ScoreFor(slot PlayerSlot) int {
	var score *int
	if slot == PlayerSlotOne {
		score = gs.Player1Score
	} else {
		score = gs.Player2Score
	}
	if score == nil {
		return 0
	}
	return *score
}

// SetScore sets the trivia score for a slot.
func (gs *GameState) SetScore(slot PlayerSlot, score int) {
	if slot == PlayerSlotOne {
		gs.Player1Score = &score
	} else {
		gs.Player2Score = &score
	}
}

// GameSession represents one game between the two members of a couple.
// The question set is immutable once the session is created; only State
// changes over the session's lifetime.
type GameSession struct {
	ID        uuid.UUID  `json:"id"`
	CoupleID  uuid.UUID  `json:"couple_id"`
	GameType  GameType   `json:"game_type"`
	Questions []Question `json:"questions"`
	State     GameState  `json:"state"`
	CreatedBy uuid.UUID  `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
