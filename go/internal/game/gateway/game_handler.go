package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/pairplay/pairplay/go/internal/couples"
	"github.com/pairplay/pairplay/go/internal/game/answer"
	"github.com/pairplay/pairplay/go/internal/game/events"
	"github.com/pairplay/pairplay/go/internal/game/insights"
	"github.com/pairplay/pairplay/go/internal/game/session"
	"github.com/pairplay/pairplay/go/internal/models"
	"github.com/pairplay/pairplay/go/internal/questions"
	"github.com/rs/zerolog/log"
)

// SessionService defines what the HTTP surface needs from the session app
type SessionService interface {
	CreateSession(ctx context.Context, req session.CreateSessionRequest) (*models.GameSession, error)
	GetSession(ctx context.Context, id uuid.UUID) (*models.GameSession, error)
	LoadActiveSession(ctx context.Context, coupleID uuid.UUID, gameType models.GameType) (*models.GameSession, error)
}

// AnswerService defines what the HTTP surface needs from answer submission
type AnswerService interface {
	Submit(ctx context.Context, req answer.SubmitAnswerRequest) (*models.GameState, error)
}

// QuestionService defines what the HTTP surface needs from the question bank
type QuestionService interface {
	FetchRandomQuestions(ctx context.Context, gameType models.GameType, count int) ([]models.Question, error)
}

// InsightsService defines what the HTTP surface needs from derived results
type InsightsService interface {
	ForSession(ctx context.Context, sess *models.GameSession) (insights.Insights, error)
}

// CoupleService defines what the HTTP surface needs from couple management
type CoupleService interface {
	CreateCouple(ctx context.Context, req couples.CreateCoupleRequest) (*models.Couple, error)
	GetCoupleMembers(ctx context.Context, coupleID uuid.UUID) (*models.Couple, error)
}

// OutboxService defines the event enqueue used on session creation
type OutboxService interface {
	InsertSessionCreated(ctx context.Context, sessionID uuid.UUID, payload []byte) error
}

// ReminderService defines the nudge scheduling used on session creation
type ReminderService interface {
	RescheduleNudge(ctx context.Context, sessionID uuid.UUID) error
}

// GameHandlerConfig holds HTTP surface tuning
type GameHandlerConfig struct {
	// Questions drawn per session, by game type; DefaultQuestionCount
	// covers types with no explicit entry
	QuestionCounts       map[models.GameType]int
	DefaultQuestionCount int
}

// DefaultGameHandlerConfig returns default HTTP surface configuration
func DefaultGameHandlerConfig() GameHandlerConfig {
	return GameHandlerConfig{
		QuestionCounts:       map[models.GameType]int{},
		DefaultQuestionCount: 8,
	}
}

func (c GameHandlerConfig) questionCount(gameType models.GameType) int {
	if n, ok := c.QuestionCounts[gameType]; ok && n > 0 {
		return n
	}
	return c.DefaultQuestionCount
}

// GameHandler handles the JSON API for couples and game sessions
type GameHandler struct {
	sessions  SessionService
	answers   AnswerService
	questions QuestionService
	insights  InsightsService
	couples   CoupleService
	outbox    OutboxService
	reminders ReminderService
	config    GameHandlerConfig
}

// NewGameHandler creates a new game API handler
func NewGameHandler(
	sessions SessionService,
	answers AnswerService,
	questions QuestionService,
	insightsApp InsightsService,
	couplesApp CoupleService,
	outbox OutboxService,
	reminders ReminderService,
	config GameHandlerConfig,
) *GameHandler {
	return &GameHandler{
		sessions:  sessions,
		answers:   answers,
		questions: questions,
		insights:  insightsApp,
		couples:   couplesApp,
		outbox:    outbox,
		reminders: reminders,
		config:    config,
	}
}

// CreateGameRequest is the POST /api/games body
type CreateGameRequest struct {
	CoupleID  uuid.UUID       `json:"couple_id"`
	GameType  models.GameType `json:"game_type"`
	CreatedBy uuid.UUID       `json:"created_by"`
}

// CreateGameResponse wraps the session with whether an existing one was resumed
type CreateGameResponse struct {
	Session *models.GameSession `json:"session"`
	Resumed bool                `json:"resumed"`
}

// SubmitAnswerBody is the POST /api/games/{id}/answers body
type SubmitAnswerBody struct {
	UserID        uuid.UUID `json:"user_id"`
	QuestionIndex int       `json:"question_index"`
	Answer        string    `json:"answer"`
}

// ResultsResponse is the GET /api/games/{id}/results body
type ResultsResponse struct {
	SessionID string            `json:"session_id"`
	GameType  models.GameType   `json:"game_type"`
	Phase     models.GamePhase  `json:"phase"`
	Insights  insights.Insights `json:"insights"`
}

// HandleCreateGame handles POST /api/games: create a session, or resume the
// couple's in-progress session of the same game type.
func (h *GameHandler) HandleCreateGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	count := h.config.questionCount(req.GameType)
	qs, err := h.questions.FetchRandomQuestions(r.Context(), req.GameType, count)
	if err != nil {
		writeAppError(w, err)
		return
	}

	sessionID := uuid.New()
	sess, err := h.sessions.CreateSession(r.Context(), session.CreateSessionRequest{
		ID:        sessionID,
		CoupleID:  req.CoupleID,
		GameType:  req.GameType,
		Questions: qs,
		CreatedBy: req.CreatedBy,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}

	resumed := sess.ID != sessionID
	status := http.StatusCreated
	if resumed {
		status = http.StatusOK
	} else {
		h.emitSessionCreated(r, sess)
	}

	writeJSON(w, status, CreateGameResponse{Session: sess, Resumed: resumed})
}

// emitSessionCreated enqueues the creation event and schedules the first
// nudge. Neither failure blocks the response; the session is already stored.
func (h *GameHandler) emitSessionCreated(r *http.Request, sess *models.GameSession) {
	payload, err := json.Marshal(events.SessionCreatedPayload{
		SessionID:      sess.ID.String(),
		CoupleID:       sess.CoupleID.String(),
		GameType:       string(sess.GameType),
		TotalQuestions: sess.State.TotalQuestions,
		CreatedBy:      sess.CreatedBy.String(),
		CreatedAt:      sess.CreatedAt,
		State:          sess.State,
	})
	if err != nil {
		log.Error().Err(err).Str("session_id", sess.ID.String()).Msg("failed to marshal SessionCreated payload")
		return
	}
	if err := h.outbox.InsertSessionCreated(r.Context(), sess.ID, payload); err != nil {
		log.Error().Err(err).Str("session_id", sess.ID.String()).Msg("failed to enqueue SessionCreated event")
	}
	if err := h.reminders.RescheduleNudge(r.Context(), sess.ID); err != nil {
		log.Error().Err(err).Str("session_id", sess.ID.String()).Msg("failed to schedule first nudge")
	}
}

// HandleGetGame handles GET /api/games/{id}
func (h *GameHandler) HandleGetGame(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) {
	sess, err := h.sessions.GetSession(r.Context(), sessionID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// HandleGetActiveGame handles GET /api/games/active?couple_id=&game_type=
func (h *GameHandler) HandleGetActiveGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	coupleID, err := uuid.Parse(r.URL.Query().Get("couple_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid couple_id")
		return
	}
	gameType := models.GameType(r.URL.Query().Get("game_type"))

	sess, err := h.sessions.LoadActiveSession(r.Context(), coupleID, gameType)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// HandleSubmitAnswer handles POST /api/games/{id}/answers
func (h *GameHandler) HandleSubmitAnswer(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body SubmitAnswerBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	state, err := h.answers.Submit(r.Context(), answer.SubmitAnswerRequest{
		SessionID:     sessionID,
		UserID:        body.UserID,
		QuestionIndex: body.QuestionIndex,
		RawAnswer:     body.Answer,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// HandleGetResults handles GET /api/games/{id}/results
func (h *GameHandler) HandleGetResults(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) {
	sess, err := h.sessions.GetSession(r.Context(), sessionID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	if sess.State.Phase != models.GamePhaseCompleted {
		writeError(w, http.StatusConflict, "session is not complete")
		return
	}

	ins, err := h.insights.ForSession(r.Context(), sess)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ResultsResponse{
		SessionID: sess.ID.String(),
		GameType:  sess.GameType,
		Phase:     sess.State.Phase,
		Insights:  ins,
	})
}

// HandleCreateCouple handles POST /api/couples
func (h *GameHandler) HandleCreateCouple(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req couples.CreateCoupleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}

	couple, err := h.couples.CreateCouple(r.Context(), req)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, couple)
}

// HandleGetCouple handles GET /api/couples/{id}
func (h *GameHandler) HandleGetCouple(w http.ResponseWriter, r *http.Request, coupleID uuid.UUID) {
	couple, err := h.couples.GetCoupleMembers(r.Context(), coupleID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, couple)
}

// RegisterRoutes registers the JSON API routes with an HTTP mux
func (h *GameHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/games", h.HandleCreateGame)
	mux.HandleFunc("/api/games/active", h.HandleGetActiveGame)
	mux.HandleFunc("/api/games/", h.dispatchGameRoute)
	mux.HandleFunc("/api/couples", h.HandleCreateCouple)
	mux.HandleFunc("/api/couples/", h.dispatchCoupleRoute)
}

// dispatchGameRoute routes /api/games/{id}[/answers|/results]
func (h *GameHandler) dispatchGameRoute(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/games/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}

	sessionID, err := uuid.Parse(parts[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	switch {
	case len(parts) == 1:
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.HandleGetGame(w, r, sessionID)
	case len(parts) == 2 && parts[1] == "answers":
		h.HandleSubmitAnswer(w, r, sessionID)
	case len(parts) == 2 && parts[1] == "results":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.HandleGetResults(w, r, sessionID)
	default:
		http.NotFound(w, r)
	}
}

// dispatchCoupleRoute routes /api/couples/{id}
func (h *GameHandler) dispatchCoupleRoute(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/couples/"), "/")
	coupleID, err := uuid.Parse(rest)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid couple id")
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.HandleGetCouple(w, r, coupleID)
}

// writeAppError maps app-layer sentinel errors to HTTP statuses
func writeAppError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, session.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNotAMember):
		return http.StatusForbidden
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, couples.ErrCoupleNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrNotYourTurn),
		errors.Is(err, session.ErrOutOfSequence),
		errors.Is(err, session.ErrAlreadyComplete),
		errors.Is(err, session.ErrSessionClosed),
		errors.Is(err, session.ErrActiveSessionExists),
		errors.Is(err, questions.ErrEmptyBank):
		return http.StatusConflict
	case errors.Is(err, questions.ErrFetch):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

