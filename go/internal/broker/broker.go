// Package broker connects to NATS and keeps the engine's JetStream stream in
// the expected shape.
package broker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

type Config struct {
	URL             string
	StreamName      string
	Subjects        []string
	MaxReconnects   int
	ReconnectWait   time.Duration
	MaxAge          time.Duration // How long to keep messages
	MaxMsgs         int64         // Max number of messages to keep
	Replicas        int
	DuplicateWindow time.Duration // Window for duplicate detection
}

func DefaultConfig() Config {
	return Config{
		URL:             nats.DefaultURL,
		StreamName:      "STINT_EVENTS",
		Subjects:        []string{"stint.>", "robots.>"},
		MaxReconnects:   -1, // Infinite
		ReconnectWait:   2 * time.Second,
		MaxAge:          24 * time.Hour,
		MaxMsgs:         -1, // No limit
		Replicas:        1,
		DuplicateWindow: 2 * time.Hour,
	}
}

// Broker is an open NATS connection with its JetStream context.
type Broker struct {
	Conn      *nats.Conn
	JetStream jetstream.JetStream
	cfg       Config
}

// Connect dials NATS and makes sure the stream exists.
func Connect(ctx context.Context, cfg Config) (*Broker, error) {
	opts := []nats.Option{
		nats.Name("stintd"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	b := &Broker{Conn: nc, JetStream: js, cfg: cfg}
	if err := b.ensureStream(ctx); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream: %w", err)
	}
	return b, nil
}

// StreamConfig is the stream definition derived from cfg.
func (c Config) StreamConfig() jetstream.StreamConfig {
	return jetstream.StreamConfig{
		Name:        c.StreamName,
		Description: "Stint session notifications and robot signals",
		Subjects:    c.Subjects,
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      c.MaxAge,
		MaxMsgs:     c.MaxMsgs,
		Storage:     jetstream.FileStorage,
		Replicas:    c.Replicas,
		Duplicates:  c.DuplicateWindow,
	}
}

func (b *Broker) ensureStream(ctx context.Context) error {
	sc := b.cfg.StreamConfig()

	stream, err := b.JetStream.Stream(ctx, sc.Name)
	if errors.Is(err, jetstream.ErrStreamNotFound) {
		if _, err = b.JetStream.CreateStream(ctx, sc); err != nil {
			return fmt.Errorf("create stream: %w", err)
		}
		log.Info().
			Str("stream", sc.Name).
			Msg("created JetStream stream")
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup stream: %w", err)
	}

	info, err := stream.Info(ctx)
	if err != nil {
		return fmt.Errorf("get stream info: %w", err)
	}
	if !streamConfigEqual(info.Config, sc) {
		if _, err = b.JetStream.UpdateStream(ctx, sc); err != nil {
			return fmt.Errorf("update stream: %w", err)
		}
		log.Info().
			Str("stream", sc.Name).
			Msg("updated JetStream stream")
	}
	return nil
}

// Connected reports whether the NATS connection is currently up.
func (b *Broker) Connected() bool {
	return b.Conn != nil && b.Conn.IsConnected()
}

// Close drains the connection so in-flight publishes finish.
func (b *Broker) Close() error {
	if b.Conn == nil {
		return nil
	}
	return b.Conn.Drain()
}

func streamConfigEqual(a, b jetstream.StreamConfig) bool {
	if len(a.Subjects) != len(b.Subjects) {
		return false
	}
	for i := range a.Subjects {
		if a.Subjects[i] != b.Subjects[i] {
			return false
		}
	}
	return a.Name == b.Name &&
		a.MaxAge == b.MaxAge &&
		a.MaxMsgs == b.MaxMsgs &&
		a.Replicas == b.Replicas &&
		a.Duplicates == b.Duplicates
}
