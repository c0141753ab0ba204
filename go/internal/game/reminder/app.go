package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// ReminderRepository defines what the reminder app layer needs from storage
type ReminderRepository interface {
	FetchNextNudgeDeadline(ctx context.Context) (*NextDeadline, error)
	FetchSessionsDueForNudge(ctx context.Context, asOf time.Time, limit int32) ([]uuid.UUID, error)
	UpdateNextNudge(ctx context.Context, sessionID uuid.UUID, deadline time.Time) error
	ClearNextNudge(ctx context.Context, sessionID uuid.UUID) error
}

// App schedules turn reminder nudges. Every accepted answer pushes the
// session's nudge deadline out by the idle window; a completed session
// clears it.
type App struct {
	repo   ReminderRepository
	clock  clockwork.Clock
	window time.Duration
	wakeCh chan struct{}
}

// NewApp creates a new reminder App. window is how long a player may sit on
// their turn before a nudge fires.
func NewApp(repo ReminderRepository, window time.Duration) *App {
	return &App{
		repo:   repo,
		clock:  clockwork.NewRealClock(),
		window: window,
		wakeCh: make(chan struct{}, 1),
	}
}

// WithClock overrides the clock, used by tests.
func (a *App) WithClock(clock clockwork.Clock) *App {
	a.clock = clock
	return a
}

// RescheduleNudge pushes the session's nudge deadline to now plus the idle
// window and wakes the scheduler in case the new deadline is soonest.
func (a *App) RescheduleNudge(ctx context.Context, sessionID uuid.UUID) error {
	deadline := a.clock.Now().Add(a.window)
	if err := a.repo.UpdateNextNudge(ctx, sessionID, deadline); err != nil {
		return fmt.Errorf("failed to reschedule nudge: %w", err)
	}
	a.wake()
	return nil
}

// ClearNudge removes the session's pending nudge
func (a *App) ClearNudge(ctx context.Context, sessionID uuid.UUID) error {
	if err := a.repo.ClearNextNudge(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to clear nudge: %w", err)
	}
	return nil
}

// NextDeadline returns the soonest pending nudge across active sessions
func (a *App) NextDeadline(ctx context.Context) (*NextDeadline, error) {
	return a.repo.FetchNextNudgeDeadline(ctx)
}

// DueSessions returns sessions whose nudge deadline has passed
func (a *App) DueSessions(ctx context.Context, limit int32) ([]uuid.UUID, error) {
	return a.repo.FetchSessionsDueForNudge(ctx, a.clock.Now(), limit)
}

// wake nudges the scheduler loop without blocking
func (a *App) wake() {
	select {
	case a.wakeCh <- struct{}{}:
	default:
	}
}

// WakeCh exposes the wake channel to the scheduler
func (a *App) WakeCh() <-chan struct{} {
	return a.wakeCh
}
