package insights

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/pairplay/pairplay/go/internal/models"
)

func answers(raw ...string) []models.Answer {
	out := make([]models.Answer, len(raw))
	for i, r := range raw {
		out[i] = models.Answer{QuestionIndex: i, Answer: r}
	}
	return out
}

func gradedAnswers(correct ...bool) []models.Answer {
	out := make([]models.Answer, len(correct))
	for i := range correct {
		c := correct[i]
		out[i] = models.Answer{QuestionIndex: i, Answer: "x", IsCorrect: &c}
	}
	return out
}

func TestMatchPercentage(t *testing.T) {
	tests := []struct {
		name string
		p1   []models.Answer
		p2   []models.Answer
		want int
	}{
		{"no answers", nil, nil, 0},
		{"four of five match", answers("a", "b", "c", "d", "e"), answers("a", "b", "c", "d", "x"), 80},
		{"all match", answers("a", "b"), answers("a", "b"), 100},
		{"none match", answers("a", "b"), answers("x", "y"), 0},
		{"uneven lengths use shorter", answers("a", "b", "c"), answers("a"), 100},
		{"one of three rounds", answers("a", "b", "c"), answers("a", "x", "y"), 33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchPercentage(tt.p1, tt.p2); got != tt.want {
				t.Errorf("MatchPercentage = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	sess := &models.GameSession{
		ID:       uuid.New(),
		GameType: models.GameTypeWouldYouRather,
		State: models.GameState{
			Phase:          models.GamePhaseCompleted,
			TotalQuestions: 3,
			Player1Answers: answers(models.ChoiceOptionA, models.ChoiceOptionB, models.ChoiceOptionA),
			Player2Answers: answers(models.ChoiceOptionA, models.ChoiceOptionA, models.ChoiceOptionA),
		},
	}

	first := Compute(sess)
	second := Compute(sess)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Compute is not deterministic: %+v vs %+v", first, second)
	}
}

func TestCategoryStrengths(t *testing.T) {
	questions := []models.Question{
		{Category: "history"},
		{Category: "history"},
		{Category: "music"},
		{Category: "music"},
		{Category: "film"},
	}

	p1 := gradedAnswers(true, true, true, true, true)
	p2 := gradedAnswers(true, true, true, false, true)

	// history: both 2/2. music: p2 only 1 correct. film: only one question,
	// nobody can reach two.
	got := CategoryStrengths(questions, p1, p2)
	want := []string{"history"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("CategoryStrengths = %v, want %v", got, want)
	}
}

func TestCategoryStrengthsOrderAndDedup(t *testing.T) {
	questions := []models.Question{
		{Category: "music"},
		{Category: "history"},
		{Category: "music"},
		{Category: "history"},
	}

	p1 := gradedAnswers(true, true, true, true)
	p2 := gradedAnswers(true, true, true, true)

	got := CategoryStrengths(questions, p1, p2)
	want := []string{"music", "history"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("CategoryStrengths = %v, want %v", got, want)
	}
}

func TestAdventurousnessRatio(t *testing.T) {
	p1 := answers(models.ChoiceOptionA, models.ChoiceOptionA, models.ChoiceOptionB)
	p2 := answers(models.ChoiceOptionB, models.ChoiceOptionA, models.ChoiceOptionB)

	got := AdventurousnessRatio(p1, p2)
	if got != 0.5 {
		t.Fatalf("AdventurousnessRatio = %v, want 0.5", got)
	}
	if AdventurousnessRatio(nil, nil) != 0 {
		t.Fatal("AdventurousnessRatio with no answers should be 0")
	}
}

func TestSelfAwarenessRatio(t *testing.T) {
	p1 := answers(models.ChoicePlayer1, models.ChoicePlayer2, models.ChoicePlayer1, models.ChoicePlayer1)
	p2 := answers(models.ChoicePlayer1, models.ChoicePlayer1, models.ChoicePlayer1, models.ChoicePlayer2)

	got := SelfAwarenessRatio(p1, p2)
	if got != 0.5 {
		t.Fatalf("SelfAwarenessRatio = %v, want 0.5", got)
	}
}

func TestComputePerGameType(t *testing.T) {
	base := models.GameState{
		Phase:          models.GamePhaseCompleted,
		TotalQuestions: 2,
	}

	t.Run("trivia", func(t *testing.T) {
		score1, score2 := 2, 1
		state := base
		state.Player1Answers = gradedAnswers(true, true)
		state.Player2Answers = gradedAnswers(true, false)
		state.Player1Score = &score1
		state.Player2Score = &score2

		sess := &models.GameSession{
			GameType:  models.GameTypeTrivia,
			Questions: []models.Question{{Category: "history"}, {Category: "history"}},
			State:     state,
		}
		ins := Compute(sess)
		if ins.Player1Score == nil || *ins.Player1Score != 2 {
			t.Errorf("Player1Score = %v, want 2", ins.Player1Score)
		}
		if ins.Player2Score == nil || *ins.Player2Score != 1 {
			t.Errorf("Player2Score = %v, want 1", ins.Player2Score)
		}
		if ins.AdventurousnessPct != nil || ins.SelfAwarenessPct != nil {
			t.Error("trivia insights must not carry other game types' fields")
		}
	})

	t.Run("would_you_rather", func(t *testing.T) {
		state := base
		state.Player1Answers = answers(models.ChoiceOptionA, models.ChoiceOptionA)
		state.Player2Answers = answers(models.ChoiceOptionA, models.ChoiceOptionB)

		ins := Compute(&models.GameSession{GameType: models.GameTypeWouldYouRather, State: state})
		if ins.AdventurousnessPct == nil || *ins.AdventurousnessPct != 75 {
			t.Errorf("AdventurousnessPct = %v, want 75", ins.AdventurousnessPct)
		}
		if ins.MatchPercentage != 50 {
			t.Errorf("MatchPercentage = %d, want 50", ins.MatchPercentage)
		}
	})

	t.Run("whos_more_likely", func(t *testing.T) {
		state := base
		state.Player1Answers = answers(models.ChoicePlayer1, models.ChoicePlayer2)
		state.Player2Answers = answers(models.ChoicePlayer1, models.ChoicePlayer2)

		ins := Compute(&models.GameSession{GameType: models.GameTypeWhosMoreLikely, State: state})
		if ins.SelfAwarenessPct == nil || *ins.SelfAwarenessPct != 100 {
			t.Errorf("SelfAwarenessPct = %v, want 100", ins.SelfAwarenessPct)
		}
	})
}
