package session

import "errors"

// Submission and construction failures callers are expected to branch on.
var (
	// ErrInvalidInput is returned for bad construction or submission args.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotAMember is returned when a user id does not belong to the couple.
	ErrNotAMember = errors.New("user is not a member of this couple")

	// ErrSessionClosed is returned for submissions against a completed session.
	ErrSessionClosed = errors.New("game session is closed")

	// ErrAlreadyComplete is returned when the submitting slot has already
	// answered every question.
	ErrAlreadyComplete = errors.New("player has already answered all questions")

	// ErrNotYourTurn is returned for turn-gated games when the submitting
	// slot does not hold the current turn.
	ErrNotYourTurn = errors.New("not your turn")

	// ErrOutOfSequence is returned when the submitted question index is not
	// the next unanswered index for the slot.
	ErrOutOfSequence = errors.New("answer out of sequence")

	// ErrSessionNotFound is returned when no session exists for the id.
	ErrSessionNotFound = errors.New("game session not found")

	// ErrActiveSessionExists is returned by the store when the couple already
	// has an in-progress session of the same game type.
	ErrActiveSessionExists = errors.New("active session already exists for couple and game type")

	// ErrStore marks transient persistence failures; callers should retry
	// with backoff.
	ErrStore = errors.New("session store failure")
)
