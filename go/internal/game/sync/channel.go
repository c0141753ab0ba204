// Package sync delivers game state snapshots to in-process subscribers.
// Subscribers are addressed only through the handle returned by Subscribe;
// the channel never tracks client identity beyond it.
package sync

import (
	"github.com/google/uuid"
	"github.com/pairplay/pairplay/go/internal/models"
)

// UpdateFunc receives a state snapshot. Snapshots are idempotent and
// arrive in persist order for a given session; no ordering holds across
// sessions. Delivery is skipped entirely while a subscriber is offline,
// so clients reload on (re)connect.
type UpdateFunc func(state models.GameState)

// Channel is the subscription surface for realtime state updates.
type Channel interface {
	Subscribe(sessionID uuid.UUID, onUpdate UpdateFunc) (*Subscription, error)
	Unsubscribe(sub *Subscription)
}

// Subscription is the caller-owned handle for one subscription. Close is
// idempotent and safe to defer at acquisition.
type Subscription struct {
	id        uuid.UUID
	sessionID uuid.UUID
	onUpdate  UpdateFunc
	owner     *Bus
}

// SessionID returns the session this subscription listens to.
func (s *Subscription) SessionID() uuid.UUID {
	return s.sessionID
}

// Close stops delivery. Calling Close more than once is a no-op.
func (s *Subscription) Close() {
	if s == nil || s.owner == nil {
		return
	}
	s.owner.Unsubscribe(s)
}
