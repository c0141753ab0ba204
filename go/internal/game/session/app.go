package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pairplay/pairplay/go/internal/models"
	"github.com/rs/zerolog/log"
)

// SessionRepository defines what the session app layer needs from the
// session repository
type SessionRepository interface {
	CreateSession(ctx context.Context, req CreateSessionRequest) (*models.GameSession, error)
	GetSession(ctx context.Context, id uuid.UUID) (*models.GameSession, error)
	LoadActiveSession(ctx context.Context, coupleID uuid.UUID, gameType models.GameType) (*models.GameSession, error)
	UpdateState(ctx context.Context, id uuid.UUID, req UpdateStateRequest) (*models.GameSession, error)
}

// CouplesApp defines what the session app layer needs from couple resolution
type CouplesApp interface {
	GetCoupleMembers(ctx context.Context, coupleID uuid.UUID) (*models.Couple, error)
}

// App handles game session business logic
type App struct {
	repo    SessionRepository
	couples CouplesApp
}

// NewApp creates a new session App
func NewApp(repo SessionRepository, couples CouplesApp) *App {
	return &App{
		repo:    repo,
		couples: couples,
	}
}

// CreateSession creates a new game session with validation. When the couple
// already has an in-progress session of this game type, that session is
// returned instead; the store enforces the at-most-one-active invariant.
func (a *App) CreateSession(ctx context.Context, req CreateSessionRequest) (*models.GameSession, error) {
	if err := a.validateCreateSessionRequest(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	couple, err := a.couples.GetCoupleMembers(ctx, req.CoupleID)
	if err != nil {
		return nil, fmt.Errorf("couple not found: %w", err)
	}
	if _, ok := couple.SlotFor(req.CreatedBy); !ok {
		return nil, fmt.Errorf("creator %s: %w", req.CreatedBy, ErrNotAMember)
	}

	sess, err := a.repo.CreateSession(ctx, req)
	if err != nil {
		if errors.Is(err, ErrActiveSessionExists) {
			return a.repo.LoadActiveSession(ctx, req.CoupleID, req.GameType)
		}
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.Info().
		Str("session_id", sess.ID.String()).
		Str("couple_id", req.CoupleID.String()).
		Str("game_type", string(req.GameType)).
		Int("questions", len(req.Questions)).
		Msg("created game session")
	return sess, nil
}

// GetSession retrieves a session by ID
func (a *App) GetSession(ctx context.Context, id uuid.UUID) (*models.GameSession, error) {
	sess, err := a.repo.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return sess, nil
}

// LoadActiveSession retrieves the in-progress session for a couple and game
// type, or ErrSessionNotFound when none is active.
func (a *App) LoadActiveSession(ctx context.Context, coupleID uuid.UUID, gameType models.GameType) (*models.GameSession, error) {
	sess, err := a.repo.LoadActiveSession(ctx, coupleID, gameType)
	if err != nil {
		return nil, fmt.Errorf("failed to load active session: %w", err)
	}
	return sess, nil
}

// ResolvePlayerSlot maps a user id to its fixed slot within the session's
// couple.
func (a *App) ResolvePlayerSlot(ctx context.Context, sess *models.GameSession, userID uuid.UUID) (models.PlayerSlot, error) {
	couple, err := a.couples.GetCoupleMembers(ctx, sess.CoupleID)
	if err != nil {
		return "", fmt.Errorf("couple not found: %w", err)
	}
	slot, ok := couple.SlotFor(userID)
	if !ok {
		return "", fmt.Errorf("user %s: %w", userID, ErrNotAMember)
	}
	return slot, nil
}

// UpdateState applies a guarded state replacement for a session.
func (a *App) UpdateState(ctx context.Context, id uuid.UUID, req UpdateStateRequest) (*models.GameSession, error) {
	sess, err := a.repo.UpdateState(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update session state: %w", err)
	}
	return sess, nil
}

// Validation methods

func (a *App) validateCreateSessionRequest(req CreateSessionRequest) error {
	if req.ID == uuid.Nil {
		return fmt.Errorf("id is required: %w", ErrInvalidInput)
	}
	if req.CoupleID == uuid.Nil {
		return fmt.Errorf("couple_id is required: %w", ErrInvalidInput)
	}
	if req.CreatedBy == uuid.Nil {
		return fmt.Errorf("created_by is required: %w", ErrInvalidInput)
	}
	if err := a.validateGameType(req.GameType); err != nil {
		return err
	}
	if len(req.Questions) == 0 {
		return fmt.Errorf("questions must not be empty: %w", ErrInvalidInput)
	}
	return nil
}

func (a *App) validateGameType(gameType models.GameType) error {
	switch gameType {
	case models.GameTypeTrivia, models.GameTypeWouldYouRather, models.GameTypeWhosMoreLikely:
		return nil
	default:
		return fmt.Errorf("invalid game type %q: %w", gameType, ErrInvalidInput)
	}
}

// NewGameState returns the initial state for a fresh session.
func NewGameState(totalQuestions int) models.GameState {
	return models.GameState{
		Phase:                models.GamePhaseInProgress,
		CurrentTurn:          models.PlayerSlotOne,
		CurrentQuestionIndex: 0,
		Player1Answers:       []models.Answer{},
		Player2Answers:       []models.Answer{},
		TotalQuestions:       totalQuestions,
	}
}
