package insights

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/pairplay/pairplay/go/internal/models"
	"github.com/rs/zerolog/log"
)

// InsightsStore defines what the insights app layer needs from the session
// repository: a cache slot per session.
type InsightsStore interface {
	SaveInsights(ctx context.Context, id uuid.UUID, insights []byte) error
	LoadInsights(ctx context.Context, id uuid.UUID) (json.RawMessage, error)
}

// App serves cached insight views, computing and caching them on first read.
type App struct {
	store InsightsStore
}

// NewApp creates a new insights App
func NewApp(store InsightsStore) *App {
	return &App{store: store}
}

// ForSession returns the insight view for a session. Completed sessions are
// served from the store cache when present; a cache miss computes the view
// and writes it back best-effort. Results for an in-progress session are
// computed fresh and never cached, so a later completed read cannot pin a
// partial view.
func (a *App) ForSession(ctx context.Context, sess *models.GameSession) (Insights, error) {
	if sess.State.Phase != models.GamePhaseCompleted {
		return Compute(sess), nil
	}

	cached, err := a.store.LoadInsights(ctx, sess.ID)
	if err != nil {
		return Insights{}, fmt.Errorf("failed to load insights: %w", err)
	}
	if cached != nil {
		var ins Insights
		if err := json.Unmarshal(cached, &ins); err == nil {
			return ins, nil
		}
		// Unreadable cache entry, fall through and recompute
		log.Warn().Str("session_id", sess.ID.String()).Msg("discarding unreadable cached insights")
	}

	ins := Compute(sess)
	raw, err := json.Marshal(ins)
	if err != nil {
		return Insights{}, fmt.Errorf("failed to marshal insights: %w", err)
	}
	if err := a.store.SaveInsights(ctx, sess.ID, raw); err != nil {
		// Serving the computed view matters more than caching it
		log.Warn().Err(err).Str("session_id", sess.ID.String()).Msg("failed to cache insights")
	}
	return ins, nil
}
