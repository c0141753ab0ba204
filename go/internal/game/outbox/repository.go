package outbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pairplay/pairplay/go/internal/sqlutil"
)

type Repository struct {
	db sqlutil.DBTX
}

func NewRepository(db sqlutil.DBTX) *Repository {
	return &Repository{
		db: db,
	}
}

// WithTx returns a copy of the repository bound to the transaction.
func (r *Repository) WithTx(tx *sql.Tx) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) insert(ctx context.Context, eventType string, sessionID uuid.UUID, payload []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO game_outbox (id, session_id, event_type, payload)
		VALUES ($1, $2, $3, $4)`,
		uuid.New(), sessionID, eventType, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to insert %s outbox event: %w", eventType, err)
	}
	return nil
}

func (r *Repository) InsertSessionCreated(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	return r.insert(ctx, EventTypeSessionCreated, sessionID, payload)
}

func (r *Repository) InsertAnswerSubmitted(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	return r.insert(ctx, EventTypeAnswerSubmitted, sessionID, payload)
}

func (r *Repository) InsertSessionCompleted(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	return r.insert(ctx, EventTypeSessionCompleted, sessionID, payload)
}

func (r *Repository) InsertTurnReminder(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	return r.insert(ctx, EventTypeTurnReminder, sessionID, payload)
}

// FetchUnsentOutbox claims up to limit unsent events in creation order.
// SKIP LOCKED keeps concurrent workers off each other's batches.
func (r *Repository) FetchUnsentOutbox(ctx context.Context, limit int32) ([]OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, event_type, payload, created_at
		FROM game_outbox
		WHERE sent_at IS NULL
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unsent outbox events: %w", err)
	}
	defer rows.Close()

	var events []OutboxEvent
	for rows.Next() {
		var ev OutboxEvent
		if err := rows.Scan(&ev.ID, &ev.SessionID, &ev.EventType, &ev.Payload, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read outbox rows: %w", err)
	}
	return events, nil
}

func (r *Repository) MarkOutboxSent(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE game_outbox
		SET sent_at = $2
		WHERE id = ANY($1)`,
		pq.Array(ids), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to mark outbox events as sent: %w", err)
	}
	return nil
}

func (r *Repository) FetchOutboxByID(ctx context.Context, id uuid.UUID) (*OutboxEvent, error) {
	var ev OutboxEvent
	err := r.db.QueryRowContext(ctx, `
		SELECT id, session_id, event_type, payload, created_at
		FROM game_outbox
		WHERE id = $1 AND sent_at IS NULL`,
		id,
	).Scan(&ev.ID, &ev.SessionID, &ev.EventType, &ev.Payload, &ev.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("outbox event not found or already sent")
		}
		return nil, fmt.Errorf("failed to fetch outbox event by ID: %w", err)
	}
	return &ev, nil
}
