package insights

import (
	"math"

	"github.com/pairplay/pairplay/go/internal/models"
)

// Insights is the derived result view for a completed session. Every field
// is recomputable from the session's answers and questions; nothing here is
// authoritative state.
type Insights struct {
	MatchPercentage     int      `json:"match_percentage"`
	CategoryStrengths   []string `json:"category_strengths,omitempty"`   // trivia
	AdventurousnessPct  *int     `json:"adventurousness_pct,omitempty"`  // would_you_rather
	SelfAwarenessPct    *int     `json:"self_awareness_pct,omitempty"`   // whos_more_likely
	Player1Score        *int     `json:"player1_score,omitempty"`        // trivia
	Player2Score        *int     `json:"player2_score,omitempty"`        // trivia
}

// Compute derives the insight view for a completed session.
func Compute(sess *models.GameSession) Insights {
	ins := Insights{
		MatchPercentage: MatchPercentage(sess.State.Player1Answers, sess.State.Player2Answers),
	}

	switch sess.GameType {
	case models.GameTypeTrivia:
		ins.CategoryStrengths = CategoryStrengths(sess.Questions, sess.State.Player1Answers, sess.State.Player2Answers)
		ins.Player1Score = sess.State.Player1Score
		ins.Player2Score = sess.State.Player2Score
	case models.GameTypeWouldYouRather:
		pct := ratioPct(AdventurousnessRatio(sess.State.Player1Answers, sess.State.Player2Answers))
		ins.AdventurousnessPct = &pct
	case models.GameTypeWhosMoreLikely:
		pct := ratioPct(SelfAwarenessRatio(sess.State.Player1Answers, sess.State.Player2Answers))
		ins.SelfAwarenessPct = &pct
	}
	return ins
}

// MatchPercentage is the share of index-wise equal answers over the shorter
// sequence length, scaled to 0-100 and rounded to the nearest integer.
func MatchPercentage(p1, p2 []models.Answer) int {
	total := min(len(p1), len(p2))
	if total == 0 {
		return 0
	}
	matches := 0
	for i := 0; i < total; i++ {
		if p1[i].Answer == p2[i].Answer {
			matches++
		}
	}
	return int(math.Round(float64(matches) / float64(total) * 100))
}

// CategoryStrengths returns the trivia categories in which both players
// answered correctly at least twice, in question order without duplicates.
func CategoryStrengths(questions []models.Question, p1, p2 []models.Answer) []string {
	type tally struct{ p1, p2 int }
	counts := make(map[string]*tally)
	order := make([]string, 0)

	countCorrect := func(answers []models.Answer, pick func(*tally) *int) {
		for _, ans := range answers {
			if ans.QuestionIndex >= len(questions) || ans.IsCorrect == nil || !*ans.IsCorrect {
				continue
			}
			category := questions[ans.QuestionIndex].Category
			if category == "" {
				continue
			}
			t, ok := counts[category]
			if !ok {
				t = &tally{}
				counts[category] = t
				order = append(order, category)
			}
			*pick(t)++
		}
	}
	countCorrect(p1, func(t *tally) *int { return &t.p1 })
	countCorrect(p2, func(t *tally) *int { return &t.p2 })

	var strengths []string
	for _, category := range order {
		if t := counts[category]; t.p1 >= 2 && t.p2 >= 2 {
			strengths = append(strengths, category)
		}
	}
	return strengths
}

// AdventurousnessRatio is the fraction of "first option" picks across both
// players' would-you-rather answers.
func AdventurousnessRatio(p1, p2 []models.Answer) float64 {
	total := len(p1) + len(p2)
	if total == 0 {
		return 0
	}
	first := 0
	for _, ans := range p1 {
		if ans.Answer == models.ChoiceOptionA {
			first++
		}
	}
	for _, ans := range p2 {
		if ans.Answer == models.ChoiceOptionA {
			first++
		}
	}
	return float64(first) / float64(total)
}

// SelfAwarenessRatio is the fraction of index-wise matching picks in
// who's-more-likely.
func SelfAwarenessRatio(p1, p2 []models.Answer) float64 {
	total := min(len(p1), len(p2))
	if total == 0 {
		return 0
	}
	matches := 0
	for i := 0; i < total; i++ {
		if p1[i].Answer == p2[i].Answer {
			matches++
		}
	}
	return float64(matches) / float64(total)
}

func ratioPct(ratio float64) int {
	return int(math.Round(ratio * 100))
}
