package questions

import (
	"context"
	"fmt"

	"github.com/pairplay/pairplay/go/internal/models"
)

// QuestionRepository defines what the questions app layer needs from the
// question bank repository
type QuestionRepository interface {
	FetchRandomQuestions(ctx context.Context, gameType models.GameType, count int) ([]models.Question, error)
}

// App supplies immutable question sets for new sessions
type App struct {
	repo QuestionRepository
}

// NewApp creates a new questions App
func NewApp(repo QuestionRepository) *App {
	return &App{
		repo: repo,
	}
}

// FetchRandomQuestions returns count random questions for a game type.
func (a *App) FetchRandomQuestions(ctx context.Context, gameType models.GameType, count int) ([]models.Question, error) {
	if count <= 0 {
		return nil, fmt.Errorf("count must be greater than 0")
	}

	qs, err := a.repo.FetchRandomQuestions(ctx, gameType, count)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch questions: %w", err)
	}
	if len(qs) < count {
		return nil, fmt.Errorf("bank has %d of %d %s questions: %w", len(qs), count, gameType, ErrEmptyBank)
	}
	return qs, nil
}
