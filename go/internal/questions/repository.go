package questions

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pairplay/pairplay/go/internal/models"
	"github.com/pairplay/pairplay/go/internal/sqlutil"
)

// Repository reads the question bank. Question payloads are stored as
// JSONB documents keyed by game type.
type Repository struct {
	db sqlutil.DBTX
}

// NewRepository creates a new question bank repository
func NewRepository(db sqlutil.DBTX) *Repository {
	return &Repository{
		db: db,
	}
}

// FetchRandomQuestions selects count random questions for a game type.
func (r *Repository) FetchRandomQuestions(ctx context.Context, gameType models.GameType, count int) ([]models.Question, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT payload
		FROM questions
		WHERE game_type = $1
		ORDER BY random()
		LIMIT $2`,
		string(gameType), count,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query question bank: %w: %v", ErrFetch, err)
	}
	defer rows.Close()

	var out []models.Question
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w: %v", ErrFetch, err)
		}
		var q models.Question
		if err := json.Unmarshal(payload, &q); err != nil {
			return nil, fmt.Errorf("failed to unmarshal question: %w", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read question rows: %w: %v", ErrFetch, err)
	}
	return out, nil
}
