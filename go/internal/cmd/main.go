package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	cfg, err := loadConfig(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Printf("Warning: %v, using defaults", err)
		cfg = defaultConfig()
	}

	database, dsn, err := setupDatabase()
	if err != nil {
		log.Fatalf("Failed to setup database: %v", err)
	}
	defer database.Close()

	services, err := setupServices(database, dsn, cfg)
	if err != nil {
		log.Fatalf("Failed to setup services: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Outbox relay: listener for low latency, polling worker as fallback
	if err := services.OutboxWorker.Start(ctx); err != nil {
		log.Fatalf("Failed to start outbox worker: %v", err)
	}
	go func() {
		if err := services.OutboxListener.Start(ctx); err != nil {
			zlog.Error().Err(err).Msg("outbox listener failed")
		}
	}()

	// Gateway: JetStream consumer feeding WebSocket clients
	go func() {
		if err := services.Gateway.Start(ctx); err != nil {
			zlog.Error().Err(err).Msg("game gateway failed")
		}
	}()

	// In-process sync channel over the event stream
	go func() {
		if err := services.SyncChannel.Start(ctx); err != nil {
			zlog.Error().Err(err).Msg("sync channel failed")
		}
	}()

	// Turn reminder scheduler
	go func() {
		if err := services.ReminderScheduler.Run(ctx); err != nil {
			zlog.Error().Err(err).Msg("reminder scheduler failed")
		}
	}()

	server := setupServer(services)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zlog.Error().Err(err).Msg("server shutdown failed")
		}
		if err := services.OutboxWorker.Stop(); err != nil {
			zlog.Error().Err(err).Msg("outbox worker stop failed")
		}
		if err := services.SyncChannel.Stop(); err != nil {
			zlog.Error().Err(err).Msg("sync channel stop failed")
		}
	}()

	log.Printf("Listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
}
