package answer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pairplay/pairplay/go/internal/game/events"
	"github.com/pairplay/pairplay/go/internal/game/session"
	"github.com/pairplay/pairplay/go/internal/models"
	"github.com/rs/zerolog/log"
)

// SessionApp defines what the submission layer needs from the session app
type SessionApp interface {
	GetSession(ctx context.Context, id uuid.UUID) (*models.GameSession, error)
	ResolvePlayerSlot(ctx context.Context, sess *models.GameSession, userID uuid.UUID) (models.PlayerSlot, error)
	UpdateState(ctx context.Context, id uuid.UUID, req session.UpdateStateRequest) (*models.GameSession, error)
}

// OutboxApp defines what the submission layer needs from the outbox
type OutboxApp interface {
	InsertAnswerSubmitted(ctx context.Context, sessionID uuid.UUID, payload []byte) error
	InsertSessionCompleted(ctx context.Context, sessionID uuid.UUID, payload []byte) error
}

// ReminderApp defines what the submission layer needs from the turn
// reminder scheduler
type ReminderApp interface {
	RescheduleNudge(ctx context.Context, sessionID uuid.UUID) error
	ClearNudge(ctx context.Context, sessionID uuid.UUID) error
}

// App validates and atomically applies one answer to a session.
type App struct {
	sessions  SessionApp
	outbox    OutboxApp
	reminders ReminderApp
	clock     clockwork.Clock
}

// NewApp creates a new answer submission App
func NewApp(sessions SessionApp, outbox OutboxApp, reminders ReminderApp) *App {
	return &App{
		sessions:  sessions,
		outbox:    outbox,
		reminders: reminders,
		clock:     clockwork.NewRealClock(),
	}
}

// WithClock overrides the clock, used by tests.
func (a *App) WithClock(clock clockwork.Clock) *App {
	a.clock = clock
	return a
}

// Submit validates one answer against the session's rules, applies it,
// persists the new state and enqueues the resulting push events. Local
// state is never mutated before the persist confirms, so a failed
// submission is safely retryable with the same question index.
func (a *App) Submit(ctx context.Context, req SubmitAnswerRequest) (*models.GameState, error) {
	sess, err := a.sessions.GetSession(ctx, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	slot, err := a.sessions.ResolvePlayerSlot(ctx, sess, req.UserID)
	if err != nil {
		return nil, err
	}

	rules := session.ForGameType(sess.GameType)
	if err := a.checkConstraints(sess, slot, rules, req); err != nil {
		return nil, err
	}
	if err := validateRawAnswer(sess, req.QuestionIndex, req.RawAnswer); err != nil {
		return nil, err
	}

	now := a.clock.Now().UTC()
	ans := models.Answer{
		QuestionIndex: req.QuestionIndex,
		Answer:        req.RawAnswer,
		Timestamp:     now,
	}

	next := sess.State
	if sess.GameType == models.GameTypeTrivia {
		correct := sess.Questions[req.QuestionIndex].CorrectAnswer == req.RawAnswer
		ans.IsCorrect = &correct
		score := next.ScoreFor(slot)
		if correct {
			score++
		}
		next.SetScore(slot, score)
	}

	expected1 := len(next.Player1Answers)
	expected2 := len(next.Player2Answers)
	next.AppendAnswer(slot, ans)
	next = rules.Advance(next, slot)

	updated, err := a.sessions.UpdateState(ctx, sess.ID, session.UpdateStateRequest{
		State:                  next,
		ExpectedPlayer1Answers: expected1,
		ExpectedPlayer2Answers: expected2,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist submission: %w", err)
	}

	a.emitEvents(ctx, updated, slot, req.QuestionIndex, now)
	a.updateNudge(ctx, updated)

	log.Info().
		Str("session_id", sess.ID.String()).
		Str("slot", string(slot)).
		Int("question_index", req.QuestionIndex).
		Str("phase", string(updated.State.Phase)).
		Msg("answer accepted")

	return &updated.State, nil
}

// checkConstraints applies the submission checks in spec order: closed
// session, exhausted slot, turn ownership, sequence.
func (a *App) checkConstraints(sess *models.GameSession, slot models.PlayerSlot, rules session.Ruleset, req SubmitAnswerRequest) error {
	if sess.State.Phase != models.GamePhaseInProgress {
		return fmt.Errorf("session %s: %w", sess.ID, session.ErrSessionClosed)
	}

	answered := len(sess.State.AnswersFor(slot))
	if answered >= sess.State.TotalQuestions {
		return fmt.Errorf("slot %s: %w", slot, session.ErrAlreadyComplete)
	}

	if rules.TurnGated() && sess.State.CurrentTurn != slot {
		return fmt.Errorf("turn belongs to %s: %w", sess.State.CurrentTurn, session.ErrNotYourTurn)
	}

	if req.QuestionIndex != answered {
		return fmt.Errorf("expected question index %d, got %d: %w", answered, req.QuestionIndex, session.ErrOutOfSequence)
	}
	return nil
}

// emitEvents enqueues the push notifications for a persisted submission.
// Outbox failures are logged, not returned; clients reload on reconnect.
func (a *App) emitEvents(ctx context.Context, sess *models.GameSession, slot models.PlayerSlot, questionIndex int, submittedAt time.Time) {
	payload, err := json.Marshal(events.AnswerSubmittedPayload{
		SessionID:     sess.ID.String(),
		Slot:          slot,
		QuestionIndex: questionIndex,
		SubmittedAt:   submittedAt,
		State:         sess.State,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal AnswerSubmitted payload")
		return
	}
	if err := a.outbox.InsertAnswerSubmitted(ctx, sess.ID, payload); err != nil {
		log.Error().Err(err).Str("session_id", sess.ID.String()).Msg("failed to enqueue AnswerSubmitted event")
	}

	if sess.State.Phase != models.GamePhaseCompleted {
		return
	}

	completed, err := json.Marshal(events.SessionCompletedPayload{
		SessionID:   sess.ID.String(),
		GameType:    string(sess.GameType),
		CompletedAt: submittedAt,
		State:       sess.State,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal SessionCompleted payload")
		return
	}
	if err := a.outbox.InsertSessionCompleted(ctx, sess.ID, completed); err != nil {
		log.Error().Err(err).Str("session_id", sess.ID.String()).Msg("failed to enqueue SessionCompleted event")
	}
}

// updateNudge moves or clears the idle-turn reminder deadline after an
// accepted submission.
func (a *App) updateNudge(ctx context.Context, sess *models.GameSession) {
	var err error
	if sess.State.Phase == models.GamePhaseCompleted || !session.ForGameType(sess.GameType).TurnGated() {
		err = a.reminders.ClearNudge(ctx, sess.ID)
	} else {
		err = a.reminders.RescheduleNudge(ctx, sess.ID)
	}
	if err != nil {
		log.Error().Err(err).Str("session_id", sess.ID.String()).Msg("failed to update reminder deadline")
	}
}
