package couples

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pairplay/pairplay/go/internal/models"
	"github.com/pairplay/pairplay/go/internal/sqlutil"
)

// ErrCoupleNotFound is returned when no couple exists for the id.
var ErrCoupleNotFound = errors.New("couple not found")

// Repository implements couple data access operations
type Repository struct {
	db sqlutil.DBTX
}

// NewRepository creates a new couples repository
func NewRepository(db sqlutil.DBTX) *Repository {
	return &Repository{
		db: db,
	}
}

// CreateCouple creates a new couple
func (r *Repository) CreateCouple(ctx context.Context, req CreateCoupleRequest) (*models.Couple, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO couples (id, player1_id, player2_id)
		VALUES ($1, $2, $3)
		RETURNING id, player1_id, player2_id, created_at`,
		req.ID, req.Player1ID, req.Player2ID,
	)

	couple, err := scanCouple(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create couple: %w", err)
	}
	return couple, nil
}

// GetCouple retrieves a couple by ID
func (r *Repository) GetCouple(ctx context.Context, id uuid.UUID) (*models.Couple, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, player1_id, player2_id, created_at
		FROM couples
		WHERE id = $1`,
		id,
	)

	couple, err := scanCouple(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCoupleNotFound
		}
		return nil, fmt.Errorf("failed to get couple: %w", err)
	}
	return couple, nil
}

func scanCouple(row *sql.Row) (*models.Couple, error) {
	var couple models.Couple
	if err := row.Scan(&couple.ID, &couple.Player1ID, &couple.Player2ID, &couple.CreatedAt); err != nil {
		return nil, err
	}
	return &couple, nil
}
