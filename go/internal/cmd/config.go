package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	"github.com/mcdev12/stint/go/internal/dbconfig"
)

const (
	storeMemory   = "memory"
	storePostgres = "postgres"
)

type Config struct {
	DB dbconfig.Config

	Store         string        `env:"STINT_STORE" envDefault:"memory"`
	CatalogPath   string        `env:"STINT_CATALOG" envDefault:"catalog.yaml"`
	SweepInterval time.Duration `env:"STINT_SWEEP_INTERVAL" envDefault:"15s"`
	OpsAddr       string        `env:"STINT_OPS_ADDR" envDefault:":8090"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`

	// NATS is optional; without it notifications are only logged.
	NATSURL          string        `env:"NATS_URL"`
	NATSStream       string        `env:"NATS_STREAM" envDefault:"STINT_EVENTS"`
	FallbackInterval time.Duration `env:"OUTBOX_FALLBACK_INTERVAL" envDefault:"30s"`
}

func loadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Store != storeMemory && cfg.Store != storePostgres {
		return nil, fmt.Errorf("unknown STINT_STORE %q (want %s or %s)", cfg.Store, storeMemory, storePostgres)
	}
	if cfg.SweepInterval <= 0 {
		return nil, fmt.Errorf("STINT_SWEEP_INTERVAL must be positive, got %s", cfg.SweepInterval)
	}
	return &cfg, nil
}

func setupLogging(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}
