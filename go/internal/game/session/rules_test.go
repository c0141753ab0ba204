package session

import (
	"testing"

	"github.com/pairplay/pairplay/go/internal/models"
)

func stateWith(total, p1, p2 int, turn models.PlayerSlot) models.GameState {
	state := models.GameState{
		Phase:          models.GamePhaseInProgress,
		CurrentTurn:    turn,
		TotalQuestions: total,
		Player1Answers: make([]models.Answer, 0, p1),
		Player2Answers: make([]models.Answer, 0, p2),
	}
	for i := 0; i < p1; i++ {
		state.Player1Answers = append(state.Player1Answers, models.Answer{QuestionIndex: i, Answer: "a"})
	}
	for i := 0; i < p2; i++ {
		state.Player2Answers = append(state.Player2Answers, models.Answer{QuestionIndex: i, Answer: "a"})
	}
	return state
}

func TestForGameType(t *testing.T) {
	if ForGameType(models.GameTypeTrivia).TurnGated() {
		t.Fatal("trivia should not be turn gated")
	}
	if !ForGameType(models.GameTypeWouldYouRather).TurnGated() {
		t.Fatal("would_you_rather should be turn gated")
	}
	if !ForGameType(models.GameTypeWhosMoreLikely).TurnGated() {
		t.Fatal("whos_more_likely should be turn gated")
	}
}

func TestTurnGatedAdvance(t *testing.T) {
	rules := ForGameType(models.GameTypeWouldYouRather)

	tests := []struct {
		name      string
		state     models.GameState // state after the answer was appended
		slot      models.PlayerSlot
		wantTurn  models.PlayerSlot
		wantIndex int
		wantPhase models.GamePhase
	}{
		{
			name:      "first answer flips turn to player2",
			state:     stateWith(3, 1, 0, models.PlayerSlotOne),
			slot:      models.PlayerSlotOne,
			wantTurn:  models.PlayerSlotTwo,
			wantIndex: 0,
			wantPhase: models.GamePhaseInProgress,
		},
		{
			name:      "second answer flips back to player1",
			state:     stateWith(3, 1, 1, models.PlayerSlotTwo),
			slot:      models.PlayerSlotTwo,
			wantTurn:  models.PlayerSlotOne,
			wantIndex: 1,
			wantPhase: models.GamePhaseInProgress,
		},
		{
			name:      "turn stays with the slot that has questions left",
			state:     stateWith(3, 1, 3, models.PlayerSlotTwo),
			slot:      models.PlayerSlotTwo,
			wantTurn:  models.PlayerSlotTwo,
			wantIndex: 1,
			wantPhase: models.GamePhaseInProgress,
		},
		{
			name:      "last answer completes the session",
			state:     stateWith(3, 3, 3, models.PlayerSlotOne),
			slot:      models.PlayerSlotOne,
			wantTurn:  models.PlayerSlotOne,
			wantIndex: 3,
			wantPhase: models.GamePhaseCompleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rules.Advance(tt.state, tt.slot)
			if got.CurrentTurn != tt.wantTurn {
				t.Errorf("CurrentTurn = %q, want %q", got.CurrentTurn, tt.wantTurn)
			}
			if got.CurrentQuestionIndex != tt.wantIndex {
				t.Errorf("CurrentQuestionIndex = %d, want %d", got.CurrentQuestionIndex, tt.wantIndex)
			}
			if got.Phase != tt.wantPhase {
				t.Errorf("Phase = %q, want %q", got.Phase, tt.wantPhase)
			}
		})
	}

	// When the slot on turn changes, the wait flips; the turn points at
	// player2's next unanswered question here.
	got := rules.Advance(stateWith(3, 2, 1, models.PlayerSlotOne), models.PlayerSlotOne)
	if got.CurrentTurn != models.PlayerSlotTwo {
		t.Fatalf("CurrentTurn = %q, want %q", got.CurrentTurn, models.PlayerSlotTwo)
	}
	if got.CurrentQuestionIndex != 1 {
		t.Fatalf("CurrentQuestionIndex = %d, want 1", got.CurrentQuestionIndex)
	}
}

func TestTurnGatedAlternatesFullGame(t *testing.T) {
	rules := ForGameType(models.GameTypeWhosMoreLikely)
	state := NewGameState(8)

	slot := models.PlayerSlotOne
	for i := 0; i < 16; i++ {
		if state.CurrentTurn != slot {
			t.Fatalf("round %d: CurrentTurn = %q, want %q", i, state.CurrentTurn, slot)
		}
		state.AppendAnswer(slot, models.Answer{QuestionIndex: len(state.AnswersFor(slot)), Answer: models.ChoicePlayer1})
		state = rules.Advance(state, slot)
		slot = slot.Other()
	}

	if state.Phase != models.GamePhaseCompleted {
		t.Fatalf("Phase = %q, want %q", state.Phase, models.GamePhaseCompleted)
	}
	if len(state.Player1Answers) != 8 || len(state.Player2Answers) != 8 {
		t.Fatalf("answers = %d/%d, want 8/8", len(state.Player1Answers), len(state.Player2Answers))
	}
}

func TestIndependentPaceAdvance(t *testing.T) {
	rules := ForGameType(models.GameTypeTrivia)

	tests := []struct {
		name      string
		state     models.GameState
		slot      models.PlayerSlot
		wantIndex int
		wantPhase models.GamePhase
	}{
		{
			name:      "player1 races ahead without completing",
			state:     stateWith(5, 4, 1, models.PlayerSlotOne),
			slot:      models.PlayerSlotOne,
			wantIndex: 1,
			wantPhase: models.GamePhaseInProgress,
		},
		{
			name:      "one finished player does not complete the session",
			state:     stateWith(5, 5, 2, models.PlayerSlotOne),
			slot:      models.PlayerSlotOne,
			wantIndex: 2,
			wantPhase: models.GamePhaseInProgress,
		},
		{
			name:      "both finished completes the session",
			state:     stateWith(5, 5, 5, models.PlayerSlotTwo),
			slot:      models.PlayerSlotTwo,
			wantIndex: 5,
			wantPhase: models.GamePhaseCompleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rules.Advance(tt.state, tt.slot)
			if got.CurrentQuestionIndex != tt.wantIndex {
				t.Errorf("CurrentQuestionIndex = %d, want %d", got.CurrentQuestionIndex, tt.wantIndex)
			}
			if got.Phase != tt.wantPhase {
				t.Errorf("Phase = %q, want %q", got.Phase, tt.wantPhase)
			}
		})
	}
}
