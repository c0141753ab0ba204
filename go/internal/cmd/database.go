package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"
	"github.com/pairplay/pairplay/go/internal/dbconfig"
)

func setupDatabase() (*sql.DB, string, error) {
	cfg := dbconfig.NewConfigFromEnv()
	dsn := cfg.DSN()

	database, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create database connection: %w", err)
	}

	database.SetMaxOpenConns(cfg.MaxOpenConns)
	database.SetMaxIdleConns(cfg.MaxIdleConns)
	database.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := database.Ping(); err != nil {
		return nil, "", fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Connected to database: %s", cfg.Addr())
	return database, dsn, nil
}
