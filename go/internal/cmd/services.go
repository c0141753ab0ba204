package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/pairplay/pairplay/go/internal/couples"
	"github.com/pairplay/pairplay/go/internal/game/answer"
	"github.com/pairplay/pairplay/go/internal/game/gateway"
	"github.com/pairplay/pairplay/go/internal/game/insights"
	"github.com/pairplay/pairplay/go/internal/game/outbox"
	"github.com/pairplay/pairplay/go/internal/game/reminder"
	"github.com/pairplay/pairplay/go/internal/game/session"
	gamesync "github.com/pairplay/pairplay/go/internal/game/sync"
	"github.com/pairplay/pairplay/go/internal/questions"
)

type Services struct {
	Couples   *couples.App
	Questions *questions.App
	Sessions  *session.App
	Answers   *answer.App
	Insights  *insights.App
	Reminders *reminder.App

	Gateway           *gateway.Service
	ReminderScheduler *reminder.Scheduler
	OutboxWorker      *outbox.Worker
	OutboxListener    *outbox.Listener
	SyncChannel       *gamesync.JetStreamChannel
}

func setupServices(database *sql.DB, dsn string, config *Config) (*Services, error) {
	// Wire up dependency injection chain
	// Database layer → Repository layer → App layer → Gateway layer

	// Couples
	couplesRepo := couples.NewRepository(database)
	couplesApp := couples.NewApp(couplesRepo)

	// Question bank
	questionsRepo := questions.NewRepository(database)
	questionsApp := questions.NewApp(questionsRepo)

	// Sessions
	sessionRepo := session.NewRepository(database)
	sessionApp := session.NewApp(sessionRepo, couplesApp)

	// Outbox
	outboxRepo := outbox.NewRepository(database)

	// Turn reminders
	reminderRepo := reminder.NewRepository(database)
	reminderApp := reminder.NewApp(reminderRepo, config.reminderWindow())
	reminderScheduler := reminder.NewScheduler(reminderApp, sessionApp, outboxRepo, config.Reminders.BatchSize)

	// Answer submission
	answerApp := answer.NewApp(sessionApp, outboxRepo, reminderApp)

	// Insights
	insightsApp := insights.NewApp(sessionRepo)

	// Outbox relay: JetStream publisher fed by LISTEN/NOTIFY plus a polling
	// fallback worker
	natsURL := getEnv("NATS_URL", outbox.DefaultJetStreamConfig().URL)

	publisherCfg := outbox.DefaultJetStreamConfig()
	publisherCfg.URL = natsURL
	publisher, err := outbox.NewJetStreamPublisher(publisherCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create outbox publisher: %w", err)
	}

	listenerCfg := outbox.DefaultListenerConfig()
	listenerCfg.DatabaseURL = dsn
	outboxListener, err := outbox.NewListener(database, publisher, listenerCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create outbox listener: %w", err)
	}

	outboxWorker := outbox.NewWorker(database, publisher, outbox.DefaultConfig(), slog.Default())

	// In-process subscription surface over the same event stream, for
	// embedded consumers that want state snapshots without a WebSocket
	syncCfg := gamesync.DefaultJetStreamChannelConfig()
	syncCfg.URL = natsURL
	syncChannel, err := gamesync.NewJetStreamChannel(syncCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync channel: %w", err)
	}

	// Gateway: WebSocket fan-out plus the JSON API
	gatewayConfig := gateway.DefaultConfig()
	gatewayConfig.JetStreamConfig.URL = natsURL
	gatewayConfig.HandlerConfig = gateway.GameHandlerConfig{
		QuestionCounts:       config.questionCounts(),
		DefaultQuestionCount: config.Games.DefaultQuestionCount,
	}
	gatewayService, err := gateway.NewService(
		gatewayConfig,
		sessionApp,
		answerApp,
		questionsApp,
		insightsApp,
		couplesApp,
		outboxRepo,
		reminderApp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create game gateway: %w", err)
	}

	return &Services{
		Couples:   couplesApp,
		Questions: questionsApp,
		Sessions:  sessionApp,
		Answers:   answerApp,
		Insights:  insightsApp,
		Reminders: reminderApp,

		Gateway:           gatewayService,
		ReminderScheduler: reminderScheduler,
		OutboxWorker:      outboxWorker,
		OutboxListener:    outboxListener,
		SyncChannel:       syncChannel,
	}, nil
}
