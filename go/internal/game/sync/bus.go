package sync

import (
	stdsync "sync"

	"github.com/google/uuid"
	"github.com/pairplay/pairplay/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Bus is an in-process Channel implementation. Publish runs handlers
// synchronously under a per-session ordering lock, so updates for one
// session are delivered in the order they are published.
type Bus struct {
	mu       stdsync.RWMutex
	sessions map[uuid.UUID]map[uuid.UUID]*Subscription

	// Serializes delivery per session without blocking other sessions.
	orderMu map[uuid.UUID]*stdsync.Mutex
}

// NewBus creates an empty subscription bus.
func NewBus() *Bus {
	return &Bus{
		sessions: make(map[uuid.UUID]map[uuid.UUID]*Subscription),
		orderMu:  make(map[uuid.UUID]*stdsync.Mutex),
	}
}

// Subscribe registers onUpdate for a session's state snapshots.
func (b *Bus) Subscribe(sessionID uuid.UUID, onUpdate UpdateFunc) (*Subscription, error) {
	sub := &Subscription{
		id:        uuid.New(),
		sessionID: sessionID,
		onUpdate:  onUpdate,
		owner:     b,
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sessions[sessionID] == nil {
		b.sessions[sessionID] = make(map[uuid.UUID]*Subscription)
		b.orderMu[sessionID] = &stdsync.Mutex{}
	}
	b.sessions[sessionID][sub.id] = sub

	log.Debug().
		Str("session_id", sessionID.String()).
		Int("subscribers", len(b.sessions[sessionID])).
		Msg("subscription registered")
	return sub, nil
}

// Unsubscribe stops delivery for the handle. Safe to call repeatedly.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.sessions[sub.sessionID]
	if !ok {
		return
	}
	if _, ok := subs[sub.id]; !ok {
		return
	}
	delete(subs, sub.id)
	if len(subs) == 0 {
		delete(b.sessions, sub.sessionID)
		delete(b.orderMu, sub.sessionID)
	}
}

// Publish delivers a snapshot to every subscriber of the session.
func (b *Bus) Publish(sessionID uuid.UUID, state models.GameState) {
	b.mu.RLock()
	order, ok := b.orderMu[sessionID]
	if !ok {
		b.mu.RUnlock()
		return
	}
	targets := make([]*Subscription, 0, len(b.sessions[sessionID]))
	for _, sub := range b.sessions[sessionID] {
		targets = append(targets, sub)
	}
	b.mu.RUnlock()

	order.Lock()
	defer order.Unlock()
	for _, sub := range targets {
		sub.onUpdate(state)
	}
}
