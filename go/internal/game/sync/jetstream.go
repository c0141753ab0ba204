package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/pairplay/pairplay/go/internal/models"
	"github.com/rs/zerolog/log"
)

// JetStreamChannelConfig holds configuration for the JetStream-backed channel
type JetStreamChannelConfig struct {
	URL           string
	StreamName    string
	ConsumerName  string
	SubjectFilter string        // e.g., "game.events.>"
	MaxDeliver    int           // Max delivery attempts
	AckWait       time.Duration // How long to wait for ack
	MaxAckPending int           // Max messages pending ack
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultJetStreamChannelConfig returns default channel configuration
func DefaultJetStreamChannelConfig() JetStreamChannelConfig {
	return JetStreamChannelConfig{
		URL:           nats.DefaultURL,
		StreamName:    "GAME_EVENTS",
		ConsumerName:  "game-sync",
		SubjectFilter: "game.events.>",
		MaxDeliver:    5,
		AckWait:       30 * time.Second,
		MaxAckPending: 100,
		MaxReconnects: -1, // Infinite
		ReconnectWait: 2 * time.Second,
	}
}

// JetStreamChannel implements Channel over the game event stream: it
// consumes persisted state snapshots from JetStream and fans them out to
// local subscription handles through an embedded Bus.
type JetStreamChannel struct {
	*Bus
	nc       *nats.Conn
	js       jetstream.JetStream
	consumer jetstream.Consumer
	config   JetStreamChannelConfig
}

// NewJetStreamChannel connects to NATS and binds a durable consumer.
func NewJetStreamChannel(config JetStreamChannelConfig) (*JetStreamChannel, error) {
	opts := []nats.Option{
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	ch := &JetStreamChannel{
		Bus:    NewBus(),
		nc:     nc,
		js:     js,
		config: config,
	}

	if err := ch.ensureConsumer(context.Background()); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure consumer: %w", err)
	}

	return ch, nil
}

func (ch *JetStreamChannel) ensureConsumer(ctx context.Context) error {
	stream, err := ch.js.Stream(ctx, ch.config.StreamName)
	if err != nil {
		return fmt.Errorf("get stream: %w", err)
	}

	consumerConfig := jetstream.ConsumerConfig{
		Name:          ch.config.ConsumerName,
		Durable:       ch.config.ConsumerName,
		Description:   "Game sync channel consumer",
		FilterSubject: ch.config.SubjectFilter,
		DeliverPolicy: jetstream.DeliverLastPerSubjectPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
		MaxDeliver:    ch.config.MaxDeliver,
		AckWait:       ch.config.AckWait,
		MaxAckPending: ch.config.MaxAckPending,
		ReplayPolicy:  jetstream.ReplayInstantPolicy,
	}

	consumer, err := stream.Consumer(ctx, ch.config.ConsumerName)
	if err != nil {
		consumer, err = stream.CreateConsumer(ctx, consumerConfig)
		if err != nil {
			return fmt.Errorf("create consumer: %w", err)
		}
		log.Info().
			Str("consumer", ch.config.ConsumerName).
			Str("stream", ch.config.StreamName).
			Msg("created JetStream consumer")
	}

	ch.consumer = consumer
	return nil
}

// Start consumes events until ctx is cancelled, publishing each carried
// state snapshot to local subscribers.
func (ch *JetStreamChannel) Start(ctx context.Context) error {
	log.Info().
		Str("consumer", ch.config.ConsumerName).
		Str("stream", ch.config.StreamName).
		Msg("starting sync channel consumer")

	consumeCtx, err := ch.consumer.Consume(func(msg jetstream.Msg) {
		if err := ch.processMessage(msg); err != nil {
			log.Error().Err(err).Str("subject", msg.Subject()).Msg("failed to process message")
			if nakErr := msg.Nak(); nakErr != nil {
				log.Error().Err(nakErr).Msg("failed to NAK message")
			}
			return
		}
		if ackErr := msg.Ack(); ackErr != nil {
			log.Error().Err(ackErr).Msg("failed to ACK message")
		}
	})
	if err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}
	defer consumeCtx.Stop()

	<-ctx.Done()
	log.Info().Msg("sync channel consumer shutting down")
	return nil
}

func (ch *JetStreamChannel) processMessage(msg jetstream.Msg) error {
	var envelope struct {
		EventID   string          `json:"eventId"`
		EventType string          `json:"eventType"`
		SessionID string          `json:"sessionId"`
		Timestamp time.Time       `json:"timestamp"`
		Payload   json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(msg.Data(), &envelope); err != nil {
		return fmt.Errorf("unmarshal event envelope: %w", err)
	}

	sessionID, err := uuid.Parse(envelope.SessionID)
	if err != nil {
		return fmt.Errorf("parse session ID: %w", err)
	}

	// Reminder events carry no snapshot; nothing to fan out here.
	var snapshot struct {
		State *models.GameState `json:"state"`
	}
	if err := json.Unmarshal(envelope.Payload, &snapshot); err != nil {
		return fmt.Errorf("unmarshal event payload: %w", err)
	}
	if snapshot.State == nil {
		return nil
	}

	ch.Publish(sessionID, *snapshot.State)
	return nil
}

// Stop closes the NATS connection.
func (ch *JetStreamChannel) Stop() error {
	if ch.nc != nil {
		ch.nc.Close()
	}
	return nil
}
