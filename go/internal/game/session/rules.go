package session

import (
	"github.com/pairplay/pairplay/go/internal/models"
)

// Ruleset captures how a game type advances turn and phase after an
// accepted answer. The two families share the completion rule (both slots
// at totalQuestions) but differ in whether the current turn gates
// submissions.
type Ruleset interface {
	// TurnGated reports whether submissions must match the current turn.
	TurnGated() bool

	// Advance recomputes turn, question index and phase after the given
	// slot's answer has been appended to state.
	Advance(state models.GameState, slot models.PlayerSlot) models.GameState
}

// ForGameType returns the ruleset for a game type.
func ForGameType(gameType models.GameType) Ruleset {
	switch gameType {
	case models.GameTypeTrivia:
		return independentPaceRules{}
	default:
		return turnGatedRules{}
	}
}

// turnGatedRules implements the alternating-turn games (would_you_rather,
// whos_more_likely). After each accepted answer the turn flips to the other
// slot only while that slot still has unanswered questions; once one slot
// is exhausted the turn stays with the slot that has questions remaining.
type turnGatedRules struct{}

func (turnGatedRules) TurnGated() bool { return true }

func (turnGatedRules) Advance(state models.GameState, slot models.PlayerSlot) models.GameState {
	other := slot.Other()
	otherRemaining := len(state.AnswersFor(other)) < state.TotalQuestions
	selfRemaining := len(state.AnswersFor(slot)) < state.TotalQuestions

	switch {
	case otherRemaining:
		state.CurrentTurn = other
	case selfRemaining:
		state.CurrentTurn = slot
	default:
		state.Phase = models.GamePhaseCompleted
	}

	// Next index the slot on turn must answer.
	state.CurrentQuestionIndex = len(state.AnswersFor(state.CurrentTurn))
	return state
}

// independentPaceRules implements trivia: both players advance through
// their own question index concurrently and the turn never gates.
type independentPaceRules struct{}

func (independentPaceRules) TurnGated() bool { return false }

func (independentPaceRules) Advance(state models.GameState, slot models.PlayerSlot) models.GameState {
	p1 := len(state.Player1Answers)
	p2 := len(state.Player2Answers)
	if p1 >= state.TotalQuestions && p2 >= state.TotalQuestions {
		state.Phase = models.GamePhaseCompleted
	}

	// Not gating for trivia; tracks the slower player's progress.
	state.CurrentQuestionIndex = min(p1, p2)
	return state
}
