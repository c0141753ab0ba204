package models

import "time"

// Answer choices for the swipe games. Trivia answers carry the chosen
// option text instead.
const (
	ChoiceOptionA = "option_a"
	ChoiceOptionB = "option_b"
	ChoicePlayer1 = "player1"
	ChoicePlayer2 = "player2"
)

// Answer is one accepted answer within a player's sequence.
type Answer struct {
	QuestionIndex int       `json:"question_index"`
	Answer        string    `json:"answer"`
	IsCorrect     *bool     `json:"is_correct,omitempty"` // trivia only
	Timestamp     time.Time `json:"timestamp"`
}
