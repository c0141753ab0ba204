package sync

import (
	"testing"

	"github.com/google/uuid"
	"github.com/pairplay/pairplay/go/internal/models"
)

func TestBusDeliversInOrder(t *testing.T) {
	bus := NewBus()
	sessionID := uuid.New()

	var seen []int
	sub, err := bus.Subscribe(sessionID, func(state models.GameState) {
		seen = append(seen, state.CurrentQuestionIndex)
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Close()

	for i := 0; i < 5; i++ {
		bus.Publish(sessionID, models.GameState{CurrentQuestionIndex: i})
	}

	if len(seen) != 5 {
		t.Fatalf("delivered %d updates, want 5", len(seen))
	}
	for i, got := range seen {
		if got != i {
			t.Fatalf("update %d carried index %d, want %d", i, got, i)
		}
	}
}

func TestBusIsolatesSessions(t *testing.T) {
	bus := NewBus()
	sessionA := uuid.New()
	sessionB := uuid.New()

	deliveredA := 0
	subA, _ := bus.Subscribe(sessionA, func(models.GameState) { deliveredA++ })
	defer subA.Close()

	bus.Publish(sessionB, models.GameState{})
	if deliveredA != 0 {
		t.Fatalf("session A received %d updates for session B", deliveredA)
	}

	bus.Publish(sessionA, models.GameState{})
	if deliveredA != 1 {
		t.Fatalf("session A received %d updates, want 1", deliveredA)
	}
}

func TestBusMultipleSubscribers(t *testing.T) {
	bus := NewBus()
	sessionID := uuid.New()

	first, second := 0, 0
	subA, _ := bus.Subscribe(sessionID, func(models.GameState) { first++ })
	subB, _ := bus.Subscribe(sessionID, func(models.GameState) { second++ })
	defer subA.Close()
	defer subB.Close()

	bus.Publish(sessionID, models.GameState{})
	if first != 1 || second != 1 {
		t.Fatalf("deliveries = %d/%d, want 1/1", first, second)
	}
}

func TestSubscriptionCloseIsIdempotent(t *testing.T) {
	bus := NewBus()
	sessionID := uuid.New()

	delivered := 0
	sub, _ := bus.Subscribe(sessionID, func(models.GameState) { delivered++ })

	sub.Close()
	sub.Close() // second close is a no-op
	bus.Unsubscribe(sub)

	bus.Publish(sessionID, models.GameState{})
	if delivered != 0 {
		t.Fatalf("closed subscription received %d updates", delivered)
	}

	var nilSub *Subscription
	nilSub.Close() // nil handle is also safe
}

func TestSubscriptionSessionID(t *testing.T) {
	bus := NewBus()
	sessionID := uuid.New()
	sub, _ := bus.Subscribe(sessionID, func(models.GameState) {})
	defer sub.Close()

	if sub.SessionID() != sessionID {
		t.Fatalf("SessionID = %s, want %s", sub.SessionID(), sessionID)
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	bus := NewBus()
	// Must not panic.
	bus.Publish(uuid.New(), models.GameState{})
}
