package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

type fakeRepo struct {
	deadlines map[uuid.UUID]time.Time
	updateErr error
	clearErr  error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{deadlines: make(map[uuid.UUID]time.Time)}
}

func (f *fakeRepo) FetchNextNudgeDeadline(ctx context.Context) (*NextDeadline, error) {
	var soonest *NextDeadline
	for id, dl := range f.deadlines {
		if soonest == nil || dl.Before(soonest.Deadline) {
			soonest = &NextDeadline{SessionID: id, Deadline: dl}
		}
	}
	return soonest, nil
}

func (f *fakeRepo) FetchSessionsDueForNudge(ctx context.Context, asOf time.Time, limit int32) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for id, dl := range f.deadlines {
		if !dl.After(asOf) {
			ids = append(ids, id)
		}
		if int32(len(ids)) == limit {
			break
		}
	}
	return ids, nil
}

func (f *fakeRepo) UpdateNextNudge(ctx context.Context, sessionID uuid.UUID, deadline time.Time) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.deadlines[sessionID] = deadline
	return nil
}

func (f *fakeRepo) ClearNextNudge(ctx context.Context, sessionID uuid.UUID) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	delete(f.deadlines, sessionID)
	return nil
}

func TestRescheduleNudge(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	clock := clockwork.NewFakeClock()
	app := NewApp(repo, 24*time.Hour).WithClock(clock)
	sessionID := uuid.New()

	if err := app.RescheduleNudge(ctx, sessionID); err != nil {
		t.Fatalf("RescheduleNudge failed: %v", err)
	}

	want := clock.Now().Add(24 * time.Hour)
	if got := repo.deadlines[sessionID]; !got.Equal(want) {
		t.Errorf("deadline = %v, want %v", got, want)
	}

	// The scheduler must be woken so it can re-evaluate its sleep.
	select {
	case <-app.WakeCh():
	default:
		t.Error("RescheduleNudge did not signal the wake channel")
	}
}

func TestRescheduleNudgeSlidesDeadline(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	clock := clockwork.NewFakeClock()
	app := NewApp(repo, time.Hour).WithClock(clock)
	sessionID := uuid.New()

	if err := app.RescheduleNudge(ctx, sessionID); err != nil {
		t.Fatalf("RescheduleNudge failed: %v", err)
	}
	first := repo.deadlines[sessionID]

	clock.Advance(30 * time.Minute)
	if err := app.RescheduleNudge(ctx, sessionID); err != nil {
		t.Fatalf("RescheduleNudge failed: %v", err)
	}

	if got := repo.deadlines[sessionID]; !got.Equal(first.Add(30 * time.Minute)) {
		t.Errorf("deadline = %v, want %v", got, first.Add(30*time.Minute))
	}
}

func TestRescheduleNudgeRepositoryError(t *testing.T) {
	repo := newFakeRepo()
	repo.updateErr = errors.New("db down")
	app := NewApp(repo, time.Hour)

	if err := app.RescheduleNudge(context.Background(), uuid.New()); err == nil {
		t.Fatal("expected error from failing repository")
	}

	select {
	case <-app.WakeCh():
		t.Error("wake signaled even though the write failed")
	default:
	}
}

func TestClearNudge(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	app := NewApp(repo, time.Hour)
	sessionID := uuid.New()
	repo.deadlines[sessionID] = time.Now()

	if err := app.ClearNudge(ctx, sessionID); err != nil {
		t.Fatalf("ClearNudge failed: %v", err)
	}
	if _, ok := repo.deadlines[sessionID]; ok {
		t.Error("deadline still present after ClearNudge")
	}
}

func TestDueSessionsUsesClock(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	clock := clockwork.NewFakeClock()
	app := NewApp(repo, time.Hour).WithClock(clock)

	dueID := uuid.New()
	futureID := uuid.New()
	repo.deadlines[dueID] = clock.Now().Add(-time.Minute)
	repo.deadlines[futureID] = clock.Now().Add(time.Hour)

	ids, err := app.DueSessions(ctx, 10)
	if err != nil {
		t.Fatalf("DueSessions failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != dueID {
		t.Fatalf("DueSessions = %v, want only %s", ids, dueID)
	}

	clock.Advance(2 * time.Hour)
	ids, err = app.DueSessions(ctx, 10)
	if err != nil {
		t.Fatalf("DueSessions failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("DueSessions after advance returned %d ids, want 2", len(ids))
	}
}

func TestNextDeadlineReturnsSoonest(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	app := NewApp(repo, time.Hour)

	soonID := uuid.New()
	lateID := uuid.New()
	base := time.Now().UTC()
	repo.deadlines[soonID] = base.Add(time.Minute)
	repo.deadlines[lateID] = base.Add(time.Hour)

	nd, err := app.NextDeadline(ctx)
	if err != nil {
		t.Fatalf("NextDeadline failed: %v", err)
	}
	if nd == nil || nd.SessionID != soonID {
		t.Fatalf("NextDeadline = %+v, want session %s", nd, soonID)
	}
}
