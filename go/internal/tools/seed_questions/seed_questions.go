package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pairplay/pairplay/go/internal/dbconfig"
	"github.com/pairplay/pairplay/go/internal/models"
)

// SeedQuestion mirrors the question bank JSON structure
type SeedQuestion struct {
	ID            string   `json:"id"`
	GameType      string   `json:"game_type"`
	Prompt        string   `json:"prompt,omitempty"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
	Category      string   `json:"category,omitempty"`
	OptionA       string   `json:"option_a,omitempty"`
	OptionB       string   `json:"option_b,omitempty"`
}

func main() {
	// 1) Load the JSON snapshot
	path := "go/internal/assets/questions.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read JSON: %v\n", err)
		os.Exit(1)
	}
	var seedQuestions []SeedQuestion
	if err := json.Unmarshal(data, &seedQuestions); err != nil {
		fmt.Fprintf(os.Stderr, "unmarshal JSON: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect using shared dbconfig
	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(context.Background(), cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 3) Upsert and count
	var (
		total    = len(seedQuestions)
		inserted int
		skipped  int
		errs     int
	)

	for _, q := range seedQuestions {
		id := q.ID
		if id == "" {
			id = uuid.New().String()
		}

		// The payload column carries only the game-type specific shape
		payload, err := json.Marshal(models.Question{
			Prompt:        q.Prompt,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Category:      q.Category,
			OptionA:       q.OptionA,
			OptionB:       q.OptionB,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "marshal payload for %s: %v\n", id, err)
			errs++
			continue
		}

		cmdTag, err := pool.Exec(context.Background(), `
            INSERT INTO questions (id, game_type, payload)
            VALUES ($1, $2, $3)
            ON CONFLICT (id) DO NOTHING
        `, id, q.GameType, payload)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error inserting question %s: %v\n", id, err)
			errs++
			continue
		}
		if cmdTag.RowsAffected() == 1 {
			inserted++
		} else {
			skipped++
		}
	}

	// 4) Print summary
	fmt.Printf(
		"Questions seed complete: %d total, %d inserted, %d skipped, %d errors\n",
		total, inserted, skipped, errs,
	)
}
