package couples

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/pairplay/pairplay/go/internal/models"
)

// CoupleRepository defines what the couples app layer needs from the
// couples repository
type CoupleRepository interface {
	CreateCouple(ctx context.Context, req CreateCoupleRequest) (*models.Couple, error)
	GetCouple(ctx context.Context, id uuid.UUID) (*models.Couple, error)
}

// App handles couple membership logic
type App struct {
	repo CoupleRepository
}

// NewApp creates a new couples App
func NewApp(repo CoupleRepository) *App {
	return &App{
		repo: repo,
	}
}

// CreateCouple links two users with validation
func (a *App) CreateCouple(ctx context.Context, req CreateCoupleRequest) (*models.Couple, error) {
	if req.ID == uuid.Nil {
		return nil, fmt.Errorf("id is required")
	}
	if req.Player1ID == uuid.Nil || req.Player2ID == uuid.Nil {
		return nil, fmt.Errorf("both member ids are required")
	}
	if req.Player1ID == req.Player2ID {
		return nil, fmt.Errorf("members must be distinct users")
	}

	couple, err := a.repo.CreateCouple(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create couple: %w", err)
	}

	log.Printf("Created couple: %s", couple.ID)
	return couple, nil
}

// GetCoupleMembers retrieves a couple's fixed member ordering by ID
func (a *App) GetCoupleMembers(ctx context.Context, coupleID uuid.UUID) (*models.Couple, error) {
	couple, err := a.repo.GetCouple(ctx, coupleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get couple: %w", err)
	}
	return couple, nil
}
