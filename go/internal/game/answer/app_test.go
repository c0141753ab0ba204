package answer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pairplay/pairplay/go/internal/game/session"
	"github.com/pairplay/pairplay/go/internal/models"
)

// fakeSessions backs the submission app with an in-memory session and the
// same guarded-update semantics the repository enforces.
type fakeSessions struct {
	sess    *models.GameSession
	player1 uuid.UUID
	player2 uuid.UUID

	// When set, the next GetSession serves this snapshot instead of the
	// current session, simulating a read that interleaved with another
	// writer's persist.
	stale *models.GameSession
}

func (f *fakeSessions) GetSession(ctx context.Context, id uuid.UUID) (*models.GameSession, error) {
	if f.stale != nil {
		cp := *f.stale
		f.stale = nil
		return &cp, nil
	}
	if f.sess == nil || f.sess.ID != id {
		return nil, session.ErrSessionNotFound
	}
	cp := *f.sess
	return &cp, nil
}

func (f *fakeSessions) ResolvePlayerSlot(ctx context.Context, sess *models.GameSession, userID uuid.UUID) (models.PlayerSlot, error) {
	switch userID {
	case f.player1:
		return models.PlayerSlotOne, nil
	case f.player2:
		return models.PlayerSlotTwo, nil
	default:
		return "", session.ErrNotAMember
	}
}

func (f *fakeSessions) UpdateState(ctx context.Context, id uuid.UUID, req session.UpdateStateRequest) (*models.GameSession, error) {
	if f.sess == nil || f.sess.ID != id {
		return nil, session.ErrSessionNotFound
	}
	// Mirror the guarded UPDATE: phase pinned in progress, both slots'
	// answer counts pinned at read time.
	if f.sess.State.Phase != models.GamePhaseInProgress {
		return nil, session.ErrStore
	}
	if len(f.sess.State.Player1Answers) != req.ExpectedPlayer1Answers ||
		len(f.sess.State.Player2Answers) != req.ExpectedPlayer2Answers {
		return nil, session.ErrStore
	}
	f.sess.State = req.State
	f.sess.UpdatedAt = time.Now()
	cp := *f.sess
	return &cp, nil
}

type fakeOutbox struct {
	answerEvents    int
	completedEvents int
}

func (f *fakeOutbox) InsertAnswerSubmitted(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	f.answerEvents++
	return nil
}

func (f *fakeOutbox) InsertSessionCompleted(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	f.completedEvents++
	return nil
}

type fakeReminders struct {
	rescheduled int
	cleared     int
}

func (f *fakeReminders) RescheduleNudge(ctx context.Context, sessionID uuid.UUID) error {
	f.rescheduled++
	return nil
}

func (f *fakeReminders) ClearNudge(ctx context.Context, sessionID uuid.UUID) error {
	f.cleared++
	return nil
}

type fixture struct {
	app       *App
	sessions  *fakeSessions
	outbox    *fakeOutbox
	reminders *fakeReminders
	clock     *clockwork.FakeClock
}

func newFixture(t *testing.T, gameType models.GameType, questions []models.Question) *fixture {
	t.Helper()
	sessions := &fakeSessions{
		sess: &models.GameSession{
			ID:        uuid.New(),
			CoupleID:  uuid.New(),
			GameType:  gameType,
			Questions: questions,
			State:     session.NewGameState(len(questions)),
		},
		player1: uuid.New(),
		player2: uuid.New(),
	}
	outbox := &fakeOutbox{}
	reminders := &fakeReminders{}
	clock := clockwork.NewFakeClock()
	app := NewApp(sessions, outbox, reminders).WithClock(clock)
	return &fixture{app: app, sessions: sessions, outbox: outbox, reminders: reminders, clock: clock}
}

func wyrQuestions(n int) []models.Question {
	qs := make([]models.Question, n)
	for i := range qs {
		qs[i] = models.Question{OptionA: "mountains", OptionB: "beach"}
	}
	return qs
}

func triviaQuestions(n int) []models.Question {
	qs := make([]models.Question, n)
	for i := range qs {
		qs[i] = models.Question{
			Prompt:        "q",
			Options:       []string{"right", "wrong"},
			CorrectAnswer: "right",
			Category:      "general",
		}
	}
	return qs
}

func (fx *fixture) submit(t *testing.T, userID uuid.UUID, index int, raw string) *models.GameState {
	t.Helper()
	state, err := fx.app.Submit(context.Background(), SubmitAnswerRequest{
		SessionID:     fx.sessions.sess.ID,
		UserID:        userID,
		QuestionIndex: index,
		RawAnswer:     raw,
	})
	if err != nil {
		t.Fatalf("Submit(%d) failed: %v", index, err)
	}
	return state
}

func TestSubmitTurnGatedGame(t *testing.T) {
	fx := newFixture(t, models.GameTypeWouldYouRather, wyrQuestions(2))
	p1 := fx.sessions.player1
	p2 := fx.sessions.player2

	// Player2 may not open the game.
	_, err := fx.app.Submit(context.Background(), SubmitAnswerRequest{
		SessionID: fx.sessions.sess.ID, UserID: p2, QuestionIndex: 0, RawAnswer: models.ChoiceOptionA,
	})
	if !errors.Is(err, session.ErrNotYourTurn) {
		t.Fatalf("Submit out of turn error = %v, want ErrNotYourTurn", err)
	}

	state := fx.submit(t, p1, 0, models.ChoiceOptionA)
	if state.CurrentTurn != models.PlayerSlotTwo {
		t.Fatalf("CurrentTurn = %q, want player2", state.CurrentTurn)
	}
	if len(state.Player1Answers) != 1 {
		t.Fatalf("Player1Answers = %d, want 1", len(state.Player1Answers))
	}
	if got := state.Player1Answers[0].Timestamp; !got.Equal(fx.clock.Now().UTC()) {
		t.Fatalf("answer timestamp = %v, want fake clock time %v", got, fx.clock.Now().UTC())
	}

	// Repeating the same index is out of sequence now.
	_, err = fx.app.Submit(context.Background(), SubmitAnswerRequest{
		SessionID: fx.sessions.sess.ID, UserID: p2, QuestionIndex: 1, RawAnswer: models.ChoiceOptionA,
	})
	if !errors.Is(err, session.ErrOutOfSequence) {
		t.Fatalf("Submit skipping ahead error = %v, want ErrOutOfSequence", err)
	}

	fx.submit(t, p2, 0, models.ChoiceOptionB)
	fx.submit(t, p1, 1, models.ChoiceOptionB)
	state = fx.submit(t, p2, 1, models.ChoiceOptionA)

	if state.Phase != models.GamePhaseCompleted {
		t.Fatalf("Phase = %q, want completed", state.Phase)
	}
	if fx.outbox.answerEvents != 4 {
		t.Errorf("AnswerSubmitted events = %d, want 4", fx.outbox.answerEvents)
	}
	if fx.outbox.completedEvents != 1 {
		t.Errorf("SessionCompleted events = %d, want 1", fx.outbox.completedEvents)
	}
	if fx.reminders.cleared == 0 {
		t.Error("completion should clear the reminder nudge")
	}

	// The session is closed now.
	_, err = fx.app.Submit(context.Background(), SubmitAnswerRequest{
		SessionID: fx.sessions.sess.ID, UserID: p1, QuestionIndex: 2, RawAnswer: models.ChoiceOptionA,
	})
	if !errors.Is(err, session.ErrSessionClosed) {
		t.Fatalf("Submit after completion error = %v, want ErrSessionClosed", err)
	}
}

func TestSubmitTriviaScoring(t *testing.T) {
	fx := newFixture(t, models.GameTypeTrivia, triviaQuestions(3))
	p1 := fx.sessions.player1
	p2 := fx.sessions.player2

	// Trivia is not turn gated: player1 races through all questions.
	fx.submit(t, p1, 0, "right")
	fx.submit(t, p1, 1, "wrong")
	state := fx.submit(t, p1, 2, "right")

	if state.Phase != models.GamePhaseCompleted {
		// player2 has not finished
		if got := state.ScoreFor(models.PlayerSlotOne); got != 2 {
			t.Fatalf("player1 score = %d, want 2", got)
		}
	} else {
		t.Fatal("session completed with only one player finished")
	}

	if state.Player1Answers[0].IsCorrect == nil || !*state.Player1Answers[0].IsCorrect {
		t.Fatal("correct answer should be marked IsCorrect=true")
	}
	if state.Player1Answers[1].IsCorrect == nil || *state.Player1Answers[1].IsCorrect {
		t.Fatal("wrong answer should be marked IsCorrect=false")
	}

	// Player1 ran out of questions.
	_, err := fx.app.Submit(context.Background(), SubmitAnswerRequest{
		SessionID: fx.sessions.sess.ID, UserID: p1, QuestionIndex: 3, RawAnswer: "right",
	})
	if !errors.Is(err, session.ErrAlreadyComplete) {
		t.Fatalf("Submit past the end error = %v, want ErrAlreadyComplete", err)
	}

	fx.submit(t, p2, 0, "right")
	fx.submit(t, p2, 1, "right")
	state = fx.submit(t, p2, 2, "right")

	if state.Phase != models.GamePhaseCompleted {
		t.Fatalf("Phase = %q, want completed", state.Phase)
	}
	if got := state.ScoreFor(models.PlayerSlotTwo); got != 3 {
		t.Fatalf("player2 score = %d, want 3", got)
	}
	if fx.outbox.completedEvents != 1 {
		t.Errorf("SessionCompleted events = %d, want 1", fx.outbox.completedEvents)
	}
}

func TestSubmitValidatesRawAnswer(t *testing.T) {
	tests := []struct {
		name      string
		gameType  models.GameType
		questions []models.Question
		raw       string
	}{
		{"empty answer", models.GameTypeWouldYouRather, wyrQuestions(1), ""},
		{"bad wyr choice", models.GameTypeWouldYouRather, wyrQuestions(1), "option_c"},
		{"bad trivia option", models.GameTypeTrivia, triviaQuestions(1), "maybe"},
		{"bad player pick", models.GameTypeWhosMoreLikely, []models.Question{{Prompt: "who"}}, "me"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t, tt.gameType, tt.questions)
			_, err := fx.app.Submit(context.Background(), SubmitAnswerRequest{
				SessionID:     fx.sessions.sess.ID,
				UserID:        fx.sessions.player1,
				QuestionIndex: 0,
				RawAnswer:     tt.raw,
			})
			if !errors.Is(err, session.ErrInvalidInput) {
				t.Fatalf("Submit error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestSubmitRejectsStranger(t *testing.T) {
	fx := newFixture(t, models.GameTypeWouldYouRather, wyrQuestions(1))
	_, err := fx.app.Submit(context.Background(), SubmitAnswerRequest{
		SessionID:     fx.sessions.sess.ID,
		UserID:        uuid.New(),
		QuestionIndex: 0,
		RawAnswer:     models.ChoiceOptionA,
	})
	if !errors.Is(err, session.ErrNotAMember) {
		t.Fatalf("Submit error = %v, want ErrNotAMember", err)
	}
}

func TestSubmitReschedulesNudgeMidGame(t *testing.T) {
	fx := newFixture(t, models.GameTypeWhosMoreLikely, []models.Question{{Prompt: "a"}, {Prompt: "b"}})

	fx.submit(t, fx.sessions.player1, 0, models.ChoicePlayer1)
	if fx.reminders.rescheduled != 1 {
		t.Fatalf("rescheduled = %d, want 1", fx.reminders.rescheduled)
	}
	if fx.reminders.cleared != 0 {
		t.Fatalf("cleared = %d, want 0 mid-game", fx.reminders.cleared)
	}
}

func TestSubmitStaleReadCannotLosePartnerAnswer(t *testing.T) {
	fx := newFixture(t, models.GameTypeTrivia, triviaQuestions(3))
	p1 := fx.sessions.player1
	p2 := fx.sessions.player2

	// Both players read the fresh session before either writes.
	preWrite := *fx.sessions.sess

	fx.submit(t, p1, 0, "right")

	// Player2's submission is built from the pre-write snapshot, so its
	// state document would erase player1's persisted answer. The guard
	// must reject it instead.
	fx.sessions.stale = &preWrite
	_, err := fx.app.Submit(context.Background(), SubmitAnswerRequest{
		SessionID:     fx.sessions.sess.ID,
		UserID:        p2,
		QuestionIndex: 0,
		RawAnswer:     "right",
	})
	if !errors.Is(err, session.ErrStore) {
		t.Fatalf("stale write err = %v, want ErrStore guard failure", err)
	}

	if got := len(fx.sessions.sess.State.Player1Answers); got != 1 {
		t.Fatalf("player1 answers = %d, want 1 after the losing writer is rejected", got)
	}
	if got := len(fx.sessions.sess.State.Player2Answers); got != 0 {
		t.Fatalf("player2 answers = %d, want 0 for the rejected submission", got)
	}

	// After a fresh read the same index goes through.
	state := fx.submit(t, p2, 0, "right")
	if len(state.Player1Answers) != 1 || len(state.Player2Answers) != 1 {
		t.Fatalf("answers = %d/%d after retry, want 1/1", len(state.Player1Answers), len(state.Player2Answers))
	}
}
