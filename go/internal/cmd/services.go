package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/stint/go/internal/broker"
	"github.com/mcdev12/stint/go/internal/metrics"
	"github.com/mcdev12/stint/go/internal/stint/catalog"
	"github.com/mcdev12/stint/go/internal/stint/engine"
	"github.com/mcdev12/stint/go/internal/stint/liveness"
	"github.com/mcdev12/stint/go/internal/stint/outbox"
	"github.com/mcdev12/stint/go/internal/stint/repository"
	stintdb "github.com/mcdev12/stint/go/internal/stint/repository/db"
	"github.com/mcdev12/stint/go/internal/stint/robots"
	"github.com/mcdev12/stint/go/internal/stint/service"
	"github.com/mcdev12/stint/go/internal/stint/store"
)

type Services struct {
	Engine  *engine.Context
	Stints  *service.Service
	Sweeper *liveness.Sweeper
	Metrics *metrics.Registry
	Health  http.Handler

	// Set only when the matching backend is configured.
	DB     *sql.DB
	Broker *broker.Broker
	Relay  *outbox.Relay
}

func setupServices(ctx context.Context, cfg *Config) (_ *Services, err error) {
	// Wire up dependency injection chain
	// Database → Store / Outbox → Engine context → Service
	s := &Services{Metrics: metrics.New()}
	defer func() {
		if err != nil {
			s.Close()
		}
	}()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	clock := clockwork.NewRealClock()

	ec := &engine.Context{
		Store:    store.NewMemory(),
		Catalog:  cat,
		Notifier: outbox.LogSink{},
		Clock:    clock,
		Locks:    engine.NewLocks(),
	}

	if cfg.Store == storePostgres {
		if s.DB, err = setupDatabase(cfg.DB); err != nil {
			return nil, err
		}
		ec.Store = repository.NewRepository(s.DB)
	}

	if cfg.NATSURL != "" {
		bcfg := broker.DefaultConfig()
		bcfg.URL = cfg.NATSURL
		bcfg.StreamName = cfg.NATSStream
		if s.Broker, err = broker.Connect(ctx, bcfg); err != nil {
			return nil, err
		}
		ec.Robots = robots.NewSignaler(s.Broker.JetStream)
	}

	if s.DB != nil && s.Broker != nil {
		outboxRepo := outbox.NewRepository(stintdb.New(s.DB))
		ec.Notifier = outbox.NewSink(outboxRepo)

		rcfg := outbox.DefaultRelayConfig()
		rcfg.DatabaseURL = cfg.DB.DSN()
		rcfg.FallbackInterval = cfg.FallbackInterval
		publisher := outbox.NewJetStreamPublisher(s.Broker.JetStream, cfg.NATSStream)
		s.Relay = outbox.NewRelay(outboxRepo, publisher, s.Metrics, clock, rcfg)
		s.Health = outbox.NewHealthChecker(s.Relay, s.DB, s.Broker.Connected, clock, 2*cfg.FallbackInterval)
	} else {
		log.Warn().
			Str("store", cfg.Store).
			Bool("nats", s.Broker != nil).
			Msg("outbox relay disabled, notifications are only logged")
		s.Health = http.HandlerFunc(healthOK)
	}

	s.Engine = ec
	s.Stints = service.New(ec, s.Metrics)
	s.Sweeper = liveness.NewSweeper(ec, s.Metrics)
	return s, nil
}

// requireDatabase is for commands that act on persisted stints.
func (s *Services) requireDatabase() error {
	if s.DB == nil {
		return fmt.Errorf("command needs STINT_STORE=%s", storePostgres)
	}
	return nil
}

func (s *Services) Close() {
	if s.Broker != nil {
		if err := s.Broker.Close(); err != nil {
			log.Error().Err(err).Msg("close broker")
		}
	}
	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}
}
