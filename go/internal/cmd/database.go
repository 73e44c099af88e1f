package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/stint/go/internal/dbconfig"
	"github.com/mcdev12/stint/go/internal/stint/repository"
)

func setupDatabase(cfg dbconfig.Config) (*sql.DB, error) {
	database, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}

	if err := database.Ping(); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("connected to database")
	return database, nil
}

// migrate applies the schema. Every statement in it is idempotent.
func migrate(ctx context.Context, cfg dbconfig.Config) error {
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to create pool: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, repository.Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	log.Info().Str("database", cfg.Database).Msg("schema applied")
	return nil
}
