package questions

import "errors"

// ErrFetch marks transient question bank failures; callers should retry
// with backoff.
var ErrFetch = errors.New("question fetch failure")

// ErrEmptyBank is returned when the bank holds fewer questions than
// requested for a game type.
var ErrEmptyBank = errors.New("not enough questions in bank")
