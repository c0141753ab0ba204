package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pairplay/pairplay/go/internal/models"
)

type fakeRepo struct {
	created   *models.GameSession
	active    *models.GameSession
	createErr error
}

func (f *fakeRepo) CreateSession(ctx context.Context, req CreateSessionRequest) (*models.GameSession, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	sess := &models.GameSession{
		ID:        req.ID,
		CoupleID:  req.CoupleID,
		GameType:  req.GameType,
		Questions: req.Questions,
		State:     NewGameState(len(req.Questions)),
		CreatedBy: req.CreatedBy,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.created = sess
	return sess, nil
}

func (f *fakeRepo) GetSession(ctx context.Context, id uuid.UUID) (*models.GameSession, error) {
	if f.created != nil && f.created.ID == id {
		return f.created, nil
	}
	return nil, ErrSessionNotFound
}

func (f *fakeRepo) LoadActiveSession(ctx context.Context, coupleID uuid.UUID, gameType models.GameType) (*models.GameSession, error) {
	if f.active == nil {
		return nil, ErrSessionNotFound
	}
	return f.active, nil
}

func (f *fakeRepo) UpdateState(ctx context.Context, id uuid.UUID, req UpdateStateRequest) (*models.GameSession, error) {
	if f.created == nil || f.created.ID != id {
		return nil, ErrSessionNotFound
	}
	f.created.State = req.State
	return f.created, nil
}

type fakeCouples struct {
	couple *models.Couple
}

func (f *fakeCouples) GetCoupleMembers(ctx context.Context, coupleID uuid.UUID) (*models.Couple, error) {
	if f.couple == nil || f.couple.ID != coupleID {
		return nil, errors.New("couple not found")
	}
	return f.couple, nil
}

func testCouple() *models.Couple {
	return &models.Couple{
		ID:        uuid.New(),
		Player1ID: uuid.New(),
		Player2ID: uuid.New(),
	}
}

func triviaQuestions(n int) []models.Question {
	qs := make([]models.Question, n)
	for i := range qs {
		qs[i] = models.Question{
			Prompt:        "q",
			Options:       []string{"a", "b"},
			CorrectAnswer: "a",
			Category:      "general",
		}
	}
	return qs
}

func TestCreateSessionValidation(t *testing.T) {
	couple := testCouple()
	app := NewApp(&fakeRepo{}, &fakeCouples{couple: couple})

	valid := CreateSessionRequest{
		ID:        uuid.New(),
		CoupleID:  couple.ID,
		GameType:  models.GameTypeTrivia,
		Questions: triviaQuestions(3),
		CreatedBy: couple.Player1ID,
	}

	tests := []struct {
		name   string
		mutate func(*CreateSessionRequest)
	}{
		{"missing id", func(r *CreateSessionRequest) { r.ID = uuid.Nil }},
		{"missing couple id", func(r *CreateSessionRequest) { r.CoupleID = uuid.Nil }},
		{"missing creator", func(r *CreateSessionRequest) { r.CreatedBy = uuid.Nil }},
		{"bad game type", func(r *CreateSessionRequest) { r.GameType = "charades" }},
		{"no questions", func(r *CreateSessionRequest) { r.Questions = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			if _, err := app.CreateSession(context.Background(), req); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("CreateSession error = %v, want ErrInvalidInput", err)
			}
		})
	}

	if _, err := app.CreateSession(context.Background(), valid); err != nil {
		t.Fatalf("CreateSession with valid request failed: %v", err)
	}
}

func TestCreateSessionRejectsNonMember(t *testing.T) {
	couple := testCouple()
	app := NewApp(&fakeRepo{}, &fakeCouples{couple: couple})

	req := CreateSessionRequest{
		ID:        uuid.New(),
		CoupleID:  couple.ID,
		GameType:  models.GameTypeWouldYouRather,
		Questions: []models.Question{{OptionA: "x", OptionB: "y"}},
		CreatedBy: uuid.New(), // stranger
	}

	if _, err := app.CreateSession(context.Background(), req); !errors.Is(err, ErrNotAMember) {
		t.Fatalf("CreateSession error = %v, want ErrNotAMember", err)
	}
}

func TestCreateSessionResumesActive(t *testing.T) {
	couple := testCouple()
	active := &models.GameSession{
		ID:       uuid.New(),
		CoupleID: couple.ID,
		GameType: models.GameTypeTrivia,
		State:    NewGameState(3),
	}
	repo := &fakeRepo{active: active, createErr: ErrActiveSessionExists}
	app := NewApp(repo, &fakeCouples{couple: couple})

	got, err := app.CreateSession(context.Background(), CreateSessionRequest{
		ID:        uuid.New(),
		CoupleID:  couple.ID,
		GameType:  models.GameTypeTrivia,
		Questions: triviaQuestions(3),
		CreatedBy: couple.Player2ID,
	})
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if got.ID != active.ID {
		t.Fatalf("CreateSession returned %s, want active session %s", got.ID, active.ID)
	}
}

func TestResolvePlayerSlot(t *testing.T) {
	couple := testCouple()
	app := NewApp(&fakeRepo{}, &fakeCouples{couple: couple})
	sess := &models.GameSession{ID: uuid.New(), CoupleID: couple.ID}

	slot, err := app.ResolvePlayerSlot(context.Background(), sess, couple.Player1ID)
	if err != nil || slot != models.PlayerSlotOne {
		t.Fatalf("ResolvePlayerSlot(player1) = %q, %v", slot, err)
	}

	slot, err = app.ResolvePlayerSlot(context.Background(), sess, couple.Player2ID)
	if err != nil || slot != models.PlayerSlotTwo {
		t.Fatalf("ResolvePlayerSlot(player2) = %q, %v", slot, err)
	}

	if _, err := app.ResolvePlayerSlot(context.Background(), sess, uuid.New()); !errors.Is(err, ErrNotAMember) {
		t.Fatalf("ResolvePlayerSlot(stranger) error = %v, want ErrNotAMember", err)
	}
}

func TestNewGameState(t *testing.T) {
	state := NewGameState(5)
	if state.Phase != models.GamePhaseInProgress {
		t.Errorf("Phase = %q, want %q", state.Phase, models.GamePhaseInProgress)
	}
	if state.CurrentTurn != models.PlayerSlotOne {
		t.Errorf("CurrentTurn = %q, want %q", state.CurrentTurn, models.PlayerSlotOne)
	}
	if state.CurrentQuestionIndex != 0 {
		t.Errorf("CurrentQuestionIndex = %d, want 0", state.CurrentQuestionIndex)
	}
	if state.TotalQuestions != 5 {
		t.Errorf("TotalQuestions = %d, want 5", state.TotalQuestions)
	}
	if state.Player1Answers == nil || state.Player2Answers == nil {
		t.Error("answer slices should be initialized empty, not nil")
	}
}
