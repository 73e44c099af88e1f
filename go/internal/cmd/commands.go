package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mcdev12/stint/go/internal/models"
	"github.com/mcdev12/stint/go/internal/stint/catalog"
	"github.com/mcdev12/stint/go/internal/stint/liveness"
)

func newRootCmd() *cobra.Command {
	cfg := &Config{}

	root := &cobra.Command{
		Use:           "stintd",
		Short:         "Stint execution engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := loadConfig()
			if err != nil {
				return err
			}
			*cfg = *loaded
			return setupLogging(cfg.LogLevel)
		},
	}

	root.AddCommand(
		newServeCmd(cfg),
		newSweepCmd(cfg),
		newMigrateCmd(cfg),
		newCatalogCmd(cfg),
		newStintCmd(cfg),
	)
	return root
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
}

func newServeCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the liveness monitor, the outbox relay and the ops server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd)
			defer stop()

			services, err := setupServices(ctx, cfg)
			if err != nil {
				return err
			}
			defer services.Close()

			server := setupServer(cfg.OpsAddr, services)
			monitor := liveness.NewMonitor(services.Sweeper, services.Engine.Clock, cfg.SweepInterval)

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return monitor.Run(ctx)
			})
			if services.Relay != nil {
				g.Go(func() error {
					return services.Relay.Run(ctx)
				})
			}
			g.Go(func() error {
				log.Info().Str("addr", server.Addr).Msg("ops server starting")
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("ops server: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				log.Info().Msg("shutdown signal received")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			})

			if err := g.Wait(); err != nil {
				return err
			}
			log.Info().Msg("graceful shutdown complete")
			return nil
		},
	}
}

func newSweepCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Time out idle hands once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd)
			defer stop()

			services, err := setupServices(ctx, cfg)
			if err != nil {
				return err
			}
			defer services.Close()

			report, err := services.Sweeper.Sweep(ctx)
			if report != nil {
				log.Info().
					Int("stints", report.Stints).
					Int("timed_out", len(report.TimedOut)).
					Int("cancelled", len(report.Cancelled)).
					Int("skipped", len(report.Skipped)).
					Int("failed", len(report.Failed)).
					Msg("sweep complete")
			}
			return err
		},
	}
}

func newMigrateCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the stint tables and the outbox trigger",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd)
			defer stop()
			return migrate(ctx, cfg.DB)
		},
	}
}

func newCatalogCmd(cfg *Config) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect stint catalogs",
	}
	catalogCmd.AddCommand(&cobra.Command{
		Use:   "validate [path]",
		Short: "Load and validate a catalog file (defaults to STINT_CATALOG)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfg.CatalogPath
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := catalog.Load(path); err != nil {
				return err
			}
			log.Info().Str("path", path).Msg("catalog is valid")
			return nil
		},
	})
	return catalogCmd
}

func newStintCmd(cfg *Config) *cobra.Command {
	var actor string

	stintCmd := &cobra.Command{
		Use:   "stint",
		Short: "Operate on persisted stints",
	}
	stintCmd.PersistentFlags().StringVar(&actor, "actor", "", "user id recorded as starter or stopper")

	run := func(op func(ctx context.Context, s *Services, id uuid.UUID, actor *uuid.UUID) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid stint id: %w", err)
			}
			var actorID *uuid.UUID
			if actor != "" {
				parsed, err := uuid.Parse(actor)
				if err != nil {
					return fmt.Errorf("invalid actor id: %w", err)
				}
				actorID = &parsed
			}

			ctx, stop := signalContext(cmd)
			defer stop()

			services, err := setupServices(ctx, cfg)
			if err != nil {
				return err
			}
			defer services.Close()
			if err := services.requireDatabase(); err != nil {
				return err
			}

			if err := op(ctx, services, id, actorID); err != nil {
				return err
			}
			log.Info().Str("stint_id", id.String()).Str("command", cmd.Name()).Msg("done")
			return nil
		}
	}

	stintCmd.AddCommand(
		&cobra.Command{
			Use:   "start <stint-id>",
			Short: "Start a stint with the hands already joined",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(ctx context.Context, s *Services, id uuid.UUID, actor *uuid.UUID) error {
				return s.Stints.Start(ctx, id, actor)
			}),
		},
		&cobra.Command{
			Use:   "stop <stint-id>",
			Short: "Finish a running stint",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(ctx context.Context, s *Services, id uuid.UUID, actor *uuid.UUID) error {
				return s.Stints.Stop(ctx, id, actor)
			}),
		},
		&cobra.Command{
			Use:   "cancel <stint-id>",
			Short: "Cancel a stint and its active hands",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(ctx context.Context, s *Services, id uuid.UUID, actor *uuid.UUID) error {
				return s.Stints.SetStatus(ctx, id, models.StintStatusCancelled, actor)
			}),
		},
	)
	return stintCmd
}
