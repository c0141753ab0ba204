package reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pairplay/pairplay/go/internal/game/events"
	"github.com/pairplay/pairplay/go/internal/game/session"
	"github.com/pairplay/pairplay/go/internal/models"
	"github.com/rs/zerolog/log"
)

// SessionApp defines what the scheduler needs from the session app
type SessionApp interface {
	GetSession(ctx context.Context, id uuid.UUID) (*models.GameSession, error)
}

// OutboxApp defines what the scheduler needs from the outbox
type OutboxApp interface {
	InsertTurnReminder(ctx context.Context, sessionID uuid.UUID, payload []byte) error
}

// Scheduler loops over pending nudge deadlines, sleeping until the soonest
// one and firing reminders through a worker pool.
type Scheduler struct {
	app        *App
	sessions   SessionApp
	outbox     OutboxApp
	batchSize  int32
	instanceID string

	// Worker pool configuration
	numWorkers int
	workCh     chan uuid.UUID

	// Track in-flight work to prevent duplicate processing
	inFlight   map[uuid.UUID]bool
	inFlightMu sync.Mutex
}

// NewScheduler creates a new reminder Scheduler
func NewScheduler(app *App, sessions SessionApp, outbox OutboxApp, batchSize int32) *Scheduler {
	numWorkers := 4
	return &Scheduler{
		app:        app,
		sessions:   sessions,
		outbox:     outbox,
		batchSize:  batchSize,
		instanceID: uuid.New().String()[:8], // short ID for logging

		numWorkers: numWorkers,
		workCh:     make(chan uuid.UUID, numWorkers*2),
		inFlight:   make(map[uuid.UUID]bool),
	}
}

// Run loops forever, sleeping until the next nudge deadline and firing
// reminders for sessions whose deadline has passed.
func (s *Scheduler) Run(ctx context.Context) error {
	log.Info().Str("instance", s.instanceID).Int("workers", s.numWorkers).Msg("reminder scheduler started")

	var wg sync.WaitGroup
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	for i := 0; i < s.numWorkers; i++ {
		wg.Add(1)
		go s.worker(workerCtx, &wg, i)
	}

	defer func() {
		cancelWorkers()
		close(s.workCh)
		wg.Wait()
		log.Info().Str("instance", s.instanceID).Msg("all reminder workers shut down")
	}()

	clock := s.app.clock
	timer := clock.NewTimer(0)
	defer timer.Stop()

	const idlePollDuration = 30 * time.Second
	retryCount := 0
	const maxRetries = 3

	for {
		select {
		case <-s.app.WakeCh():
			log.Debug().Str("instance", s.instanceID).Msg("drained wake channel")
		default:
		}

		nd, err := s.app.NextDeadline(ctx)
		if err != nil {
			retryCount++
			if retryCount <= maxRetries {
				log.Error().
					Err(err).
					Int("retry", retryCount).
					Str("instance", s.instanceID).
					Msg("error fetching next nudge deadline, retrying")
				timer.Reset(time.Second * time.Duration(retryCount))
				select {
				case <-timer.Chan():
					continue
				case <-ctx.Done():
					return nil
				}
			}
			log.Error().Err(err).Str("instance", s.instanceID).Msg("error fetching next nudge deadline after retries")
			return err
		}
		retryCount = 0

		if nd == nil {
			// No pending nudges - idle with timer reuse
			timer.Reset(idlePollDuration)
			select {
			case <-timer.Chan():
				continue
			case <-ctx.Done():
				log.Info().Str("instance", s.instanceID).Msg("shutdown during idle")
				return nil
			case <-s.app.WakeCh():
				log.Debug().Str("instance", s.instanceID).Msg("woken up from idle")
				continue
			}
		}

		wait := nd.Deadline.Sub(clock.Now())
		if wait > 0 {
			timer.Reset(wait)
			select {
			case <-timer.Chan():
				log.Debug().Str("instance", s.instanceID).Msg("timer fired - fetching due sessions")
			case <-ctx.Done():
				log.Info().Str("instance", s.instanceID).Msg("shutdown during wait")
				return nil
			case <-s.app.WakeCh():
				log.Debug().Str("instance", s.instanceID).Msg("woken up early - new sooner deadline")
				continue
			}
		}

		due, err := s.app.DueSessions(ctx, s.batchSize)
		if err != nil {
			log.Error().Err(err).Str("instance", s.instanceID).Msg("error fetching due sessions")
			timer.Reset(time.Second)
			select {
			case <-timer.Chan():
				continue
			case <-ctx.Done():
				return nil
			}
		}

		for _, sessionID := range due {
			s.inFlightMu.Lock()
			if s.inFlight[sessionID] {
				s.inFlightMu.Unlock()
				continue
			}
			s.inFlight[sessionID] = true
			s.inFlightMu.Unlock()

			select {
			case <-ctx.Done():
				s.inFlightMu.Lock()
				delete(s.inFlight, sessionID)
				s.inFlightMu.Unlock()
				log.Info().Str("instance", s.instanceID).Msg("shutdown while queueing nudges")
				return nil
			case s.workCh <- sessionID:
				log.Debug().Str("session_id", sessionID.String()).Str("instance", s.instanceID).Msg("queued nudge for worker")
			}
		}
	}
}

// worker processes session nudges from the work channel
func (s *Scheduler) worker(ctx context.Context, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case sessionID, ok := <-s.workCh:
			if !ok {
				return
			}

			if err := s.handleNudge(ctx, sessionID); err != nil {
				log.Error().
					Err(err).
					Str("session_id", sessionID.String()).
					Str("instance", s.instanceID).
					Int("worker_id", workerID).
					Msg("nudge handling failed")
			}

			// Clean up in-flight tracking regardless of success/failure
			s.inFlightMu.Lock()
			delete(s.inFlight, sessionID)
			s.inFlightMu.Unlock()
		}
	}
}

// handleNudge emits a TurnReminder for one idle session and pushes its
// deadline out another window. Sessions that finished since the deadline was
// set only get their nudge cleared.
func (s *Scheduler) handleNudge(ctx context.Context, sessionID uuid.UUID) error {
	sess, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session for nudge: %w", err)
	}

	if sess.State.Phase != models.GamePhaseInProgress {
		return s.app.ClearNudge(ctx, sessionID)
	}

	slot := waitingSlot(sess)
	payload, err := json.Marshal(events.TurnReminderPayload{
		SessionID: sess.ID.String(),
		Slot:      slot,
		IdleSince: sess.UpdatedAt,
		NudgedAt:  s.app.clock.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal TurnReminder payload: %w", err)
	}

	if err := s.outbox.InsertTurnReminder(ctx, sessionID, payload); err != nil {
		return fmt.Errorf("failed to enqueue TurnReminder event: %w", err)
	}

	log.Info().
		Str("session_id", sessionID.String()).
		Str("slot", string(slot)).
		Str("instance", s.instanceID).
		Msg("turn reminder fired")

	// Keep nudging every window until the player answers
	return s.app.RescheduleNudge(ctx, sessionID)
}

// waitingSlot picks the player a reminder should target: the player on the
// clock for turn-gated games, otherwise whichever player has answered less.
func waitingSlot(sess *models.GameSession) models.PlayerSlot {
	if session.ForGameType(sess.GameType).TurnGated() {
		return sess.State.CurrentTurn
	}
	if len(sess.State.Player2Answers) < len(sess.State.Player1Answers) {
		return models.PlayerSlotTwo
	}
	return models.PlayerSlotOne
}
