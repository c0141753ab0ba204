package answer

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/pairplay/pairplay/go/internal/game/session"
	"github.com/pairplay/pairplay/go/internal/models"
)

// SubmitAnswerRequest represents a request to submit one answer
type SubmitAnswerRequest struct {
	SessionID     uuid.UUID `json:"session_id"`
	UserID        uuid.UUID `json:"user_id"`
	QuestionIndex int       `json:"question_index"`
	RawAnswer     string    `json:"raw_answer"`
}

// validateRawAnswer checks the raw answer against the session's game type
// at the submission boundary, so unrecognized payloads are rejected before
// any state is touched.
func validateRawAnswer(sess *models.GameSession, questionIndex int, raw string) error {
	if raw == "" {
		return fmt.Errorf("answer must not be empty: %w", session.ErrInvalidInput)
	}

	switch sess.GameType {
	case models.GameTypeTrivia:
		if questionIndex < len(sess.Questions) {
			q := sess.Questions[questionIndex]
			if !slices.Contains(q.Options, raw) {
				return fmt.Errorf("answer %q is not an option for question %d: %w", raw, questionIndex, session.ErrInvalidInput)
			}
		}
	case models.GameTypeWouldYouRather:
		if raw != models.ChoiceOptionA && raw != models.ChoiceOptionB {
			return fmt.Errorf("answer %q is not a would-you-rather choice: %w", raw, session.ErrInvalidInput)
		}
	case models.GameTypeWhosMoreLikely:
		if raw != models.ChoicePlayer1 && raw != models.ChoicePlayer2 {
			return fmt.Errorf("answer %q is not a player pick: %w", raw, session.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("unknown game type %q: %w", sess.GameType, session.ErrInvalidInput)
	}
	return nil
}
