package couples

import "github.com/google/uuid"

// CreateCoupleRequest represents a request to link two users
type CreateCoupleRequest struct {
	ID        uuid.UUID `json:"id"`
	Player1ID uuid.UUID `json:"player1_id"`
	Player2ID uuid.UUID `json:"player2_id"`
}
