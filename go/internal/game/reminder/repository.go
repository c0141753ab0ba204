package reminder

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pairplay/pairplay/go/internal/sqlutil"
)

// NextDeadline is the soonest pending nudge across all active sessions
type NextDeadline struct {
	SessionID uuid.UUID
	Deadline  time.Time
}

// Repository reads and writes the nudge deadline column on game sessions
type Repository struct {
	db sqlutil.DBTX
}

// NewRepository creates a new reminder Repository
func NewRepository(db sqlutil.DBTX) *Repository {
	return &Repository{db: db}
}

// FetchNextNudgeDeadline returns the soonest scheduled nudge, or nil when no
// active session has one pending.
func (r *Repository) FetchNextNudgeDeadline(ctx context.Context) (*NextDeadline, error) {
	const query = `
		SELECT id, next_nudge_at
		FROM game_sessions
		WHERE next_nudge_at IS NOT NULL
		  AND state->>'phase' = 'in_progress'
		ORDER BY next_nudge_at ASC
		LIMIT 1`

	var nd NextDeadline
	err := r.db.QueryRowContext(ctx, query).Scan(&nd.SessionID, &nd.Deadline)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch next nudge deadline: %w", err)
	}
	return &nd, nil
}

// FetchSessionsDueForNudge returns ids of active sessions whose nudge
// deadline has passed.
func (r *Repository) FetchSessionsDueForNudge(ctx context.Context, asOf time.Time, limit int32) ([]uuid.UUID, error) {
	const query = `
		SELECT id
		FROM game_sessions
		WHERE next_nudge_at IS NOT NULL
		  AND next_nudge_at <= $1
		  AND state->>'phase' = 'in_progress'
		ORDER BY next_nudge_at ASC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, asOf.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch due sessions: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpdateNextNudge sets the nudge deadline for a session
func (r *Repository) UpdateNextNudge(ctx context.Context, sessionID uuid.UUID, deadline time.Time) error {
	const query = `
		UPDATE game_sessions
		SET next_nudge_at = $2
		WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, sessionID, deadline.UTC()); err != nil {
		return fmt.Errorf("failed to update nudge deadline: %w", err)
	}
	return nil
}

// ClearNextNudge removes the nudge deadline for a session
func (r *Repository) ClearNextNudge(ctx context.Context, sessionID uuid.UUID) error {
	const query = `
		UPDATE game_sessions
		SET next_nudge_at = NULL
		WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, sessionID); err != nil {
		return fmt.Errorf("failed to clear nudge deadline: %w", err)
	}
	return nil
}
