package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pairplay/pairplay/go/internal/models"
	"github.com/pairplay/pairplay/go/internal/sqlutil"
	"github.com/sqlc-dev/pqtype"
)

// uniqueViolation is the Postgres error code raised by the partial unique
// index on (couple_id, game_type) where phase = in_progress.
const uniqueViolation = "23505"

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

func (r *Repository) CreateSession(ctx context.Context, req CreateSessionRequest) (*models.GameSession, error) {
	questionsBytes, err := json.Marshal(req.Questions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal questions: %w", err)
	}
	stateBytes, err := json.Marshal(NewGameState(len(req.Questions)))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO game_sessions (id, couple_id, game_type, questions, state, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, couple_id, game_type, questions, state, created_by, created_at, updated_at`,
		req.ID, req.CoupleID, string(req.GameType), questionsBytes, stateBytes, req.CreatedBy,
	)

	sess, err := r.scanSession(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, ErrActiveSessionExists
		}
		return nil, fmt.Errorf("failed to create session: %w: %v", ErrStore, err)
	}
	return sess, nil
}

func (r *Repository) GetSession(ctx context.Context, id uuid.UUID) (*models.GameSession, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, couple_id, game_type, questions, state, created_by, created_at, updated_at
		FROM game_sessions
		WHERE id = $1`,
		id,
	)

	sess, err := r.scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w: %v", ErrStore, err)
	}
	return sess, nil
}

func (r *Repository) LoadActiveSession(ctx context.Context, coupleID uuid.UUID, gameType models.GameType) (*models.GameSession, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, couple_id, game_type, questions, state, created_by, created_at, updated_at
		FROM game_sessions
		WHERE couple_id = $1
		  AND game_type = $2
		  AND state->>'phase' = 'in_progress'`,
		coupleID, string(gameType),
	)

	sess, err := r.scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load active session: %w: %v", ErrStore, err)
	}
	return sess, nil
}

// UpdateState replaces the state document. The WHERE clause pins the
// session to in_progress and both slots' answer counts to the values
// observed at read time. The replacement is whole-document, so a write
// racing a partner's submission (legal in trivia, where slots advance
// independently) must lose the guard rather than clobber the partner's
// just-persisted answer.
func (r *Repository) UpdateState(ctx context.Context, id uuid.UUID, req UpdateStateRequest) (*models.GameSession, error) {
	stateBytes, err := json.Marshal(req.State)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}

	row := r.db.QueryRowContext(ctx, `
		UPDATE game_sessions
		SET state = $2, updated_at = now()
		WHERE id = $1
		  AND state->>'phase' = 'in_progress'
		  AND jsonb_array_length(state->'player1_answers') = $3
		  AND jsonb_array_length(state->'player2_answers') = $4
		RETURNING id, couple_id, game_type, questions, state, created_by, created_at, updated_at`,
		id, stateBytes, req.ExpectedPlayer1Answers, req.ExpectedPlayer2Answers,
	)

	sess, err := r.scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Either the session closed or a concurrent submission from
			// either slot won; both are retryable after reloading.
			return nil, fmt.Errorf("state update lost guard check: %w", ErrStore)
		}
		return nil, fmt.Errorf("failed to update session state: %w: %v", ErrStore, err)
	}
	return sess, nil
}

// SaveInsights caches computed insights on a completed session row.
func (r *Repository) SaveInsights(ctx context.Context, id uuid.UUID, insights []byte) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE game_sessions
		SET insights = $2, updated_at = now()
		WHERE id = $1`,
		id, sqlutil.ToNullRawMessage(insights),
	)
	if err != nil {
		return fmt.Errorf("failed to save insights: %w: %v", ErrStore, err)
	}
	return nil
}

// LoadInsights returns the cached insights JSON, or nil when not computed.
func (r *Repository) LoadInsights(ctx context.Context, id uuid.UUID) (json.RawMessage, error) {
	var insights pqtype.NullRawMessage
	err := r.db.QueryRowContext(ctx, `
		SELECT insights FROM game_sessions WHERE id = $1`,
		id,
	).Scan(&insights)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load insights: %w: %v", ErrStore, err)
	}
	return sqlutil.FromNullRawMessage(insights), nil
}

// rowScanner lets scanSession work for both QueryRow results and Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scanSession(row rowScanner) (*models.GameSession, error) {
	var (
		sess           models.GameSession
		gameType       string
		questionsBytes []byte
		stateBytes     []byte
		createdAt      time.Time
		updatedAt      time.Time
	)
	if err := row.Scan(&sess.ID, &sess.CoupleID, &gameType, &questionsBytes, &stateBytes, &sess.CreatedBy, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	sess.GameType = models.GameType(gameType)
	sess.CreatedAt = createdAt
	sess.UpdatedAt = updatedAt
	if err := json.Unmarshal(questionsBytes, &sess.Questions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questions: %w", err)
	}
	if err := json.Unmarshal(stateBytes, &sess.State); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return &sess, nil
}
