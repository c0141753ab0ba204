package models

import (
	"time"

	"github.com/google/uuid"
)

// Couple links two user accounts. Player1 is the member who created the
// couple; slot resolution for game sessions follows this ordering.
type Couple struct {
	ID        uuid.UUID `json:"id"`
	Player1ID uuid.UUID `json:"player1_id"`
	Player2ID uuid.UUID `json:"player2_id"`
	CreatedAt time.Time `json:"created_at"`
}

// SlotFor maps a user id to its fixed slot, or false when the user is not
// a member of the couple.
func (c *Couple) SlotFor(userID uuid.UUID) (PlayerSlot, bool) {
	switch userID {
	case c.Player1ID:
		return PlayerSlotOne, true
	case c.Player2ID:
		return PlayerSlotTwo, true
	default:
		return "", false
	}
}
