// Package liveness times out hands whose participants stopped showing up.
package liveness

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/stint/go/internal/models"
	"github.com/mcdev12/stint/go/internal/stint/engine"
	"github.com/mcdev12/stint/go/internal/stint/hands"
	"github.com/mcdev12/stint/go/internal/stint/orchestrator"
)

// Metrics receives one observation per sweep.
type Metrics interface {
	RecordSweep(d time.Duration, timedOut int)
}

type noopMetrics struct{}

func (noopMetrics) RecordSweep(time.Duration, int) {}

// Report summarizes one sweep.
type Report struct {
	Stints    int
	TimedOut  []uuid.UUID
	Cancelled []uuid.UUID
	// Skipped holds stints another sweep was still working on.
	Skipped []uuid.UUID
	// Failed holds stints whose sweep returned an error.
	Failed []uuid.UUID
}

// Sweeper checks running stints for idle hands. A stint is never swept by two
// calls at once.
type Sweeper struct {
	ec      *engine.Context
	metrics Metrics

	mu       sync.Mutex
	sweeping map[uuid.UUID]struct{}
}

// NewSweeper creates a sweeper. metrics may be nil.
func NewSweeper(ec *engine.Context, metrics Metrics) *Sweeper {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Sweeper{
		ec:       ec,
		metrics:  metrics,
		sweeping: make(map[uuid.UUID]struct{}),
	}
}

func (s *Sweeper) claim(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sweeping[id]; ok {
		return false
	}
	s.sweeping[id] = struct{}{}
	return true
}

func (s *Sweeper) release(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sweeping, id)
}

// Sweep times out every active hand of a running stint that has not been
// seen for at least its module's hand timeout, and applies the resulting
// cascades. Modules without a timeout are never swept.
func (s *Sweeper) Sweep(ctx context.Context) (*Report, error) {
	began := s.ec.Clock.Now()
	stints, err := s.ec.Store.ListStintsByStatus(ctx, models.StintStatusRunning)
	if err != nil {
		return nil, fmt.Errorf("failed to list running stints: %w", err)
	}

	report := &Report{Stints: len(stints)}
	var failed []error
	for _, stint := range stints {
		if !s.claim(stint.ID) {
			log.Warn().Str("stint_id", stint.ID.String()).Msg("stint is already being swept")
			report.Skipped = append(report.Skipped, stint.ID)
			continue
		}
		err := s.sweepStint(ctx, stint, report)
		s.release(stint.ID)
		if err != nil {
			log.Error().Err(err).Str("stint_id", stint.ID.String()).Msg("failed to sweep stint")
			report.Failed = append(report.Failed, stint.ID)
			failed = append(failed, fmt.Errorf("stint %s: %w", stint.ID, err))
		}
	}

	s.metrics.RecordSweep(s.ec.Clock.Since(began), len(report.TimedOut))
	if len(report.TimedOut) > 0 || len(failed) > 0 {
		log.Info().
			Int("stints", report.Stints).
			Int("timed_out", len(report.TimedOut)).
			Int("cancelled", len(report.Cancelled)).
			Int("failed", len(failed)).
			Msg("liveness sweep finished")
	}
	return report, errors.Join(failed...)
}

func (s *Sweeper) sweepStint(ctx context.Context, stint *models.Stint, report *Report) error {
	defs, err := s.ec.Resolve(stint)
	if err != nil {
		return err
	}
	all, err := s.ec.Store.ListHands(ctx, stint.ID)
	if err != nil {
		return fmt.Errorf("failed to list hands: %w", err)
	}

	now := s.ec.Now()
	for _, h := range all {
		if h.Status != models.HandStatusActive || h.LastSeen == nil || h.CurrentModuleID == nil {
			continue
		}
		mod, err := s.ec.Store.GetModule(ctx, *h.CurrentModuleID)
		if err != nil {
			return fmt.Errorf("failed to load module: %w", err)
		}
		ms := defs.Specification.ModuleSpecification(mod.ModuleDefinitionID)
		if ms == nil || ms.HandTimeout == 0 {
			continue
		}
		if now.Sub(*h.LastSeen) < ms.HandTimeout {
			continue
		}

		// the snapshot may be stale; TimeOut decides under the stint lock
		cascade, timedOut, err := hands.TimeOut(ctx, s.ec, stint.ID, h.ID, now, ms.HandTimeout)
		if err != nil {
			return err
		}
		if !timedOut {
			continue
		}
		report.TimedOut = append(report.TimedOut, h.ID)
		log.Info().
			Str("stint_id", stint.ID.String()).
			Str("hand_id", h.ID.String()).
			Dur("idle", now.Sub(*h.LastSeen)).
			Msg("hand timed out")

		if cascade == hands.CascadeNone && ms.StopsOnQuit() {
			cascade = hands.CascadeForceCancel
		}
		cancelled, err := orchestrator.ApplyCascade(ctx, s.ec, stint.ID, cascade)
		if err != nil {
			return err
		}
		if cancelled {
			report.Cancelled = append(report.Cancelled, stint.ID)
			return nil
		}
	}
	return nil
}

// Monitor runs a sweep at a fixed interval until its context ends.
type Monitor struct {
	sweeper  *Sweeper
	clock    clockwork.Clock
	interval time.Duration
}

// NewMonitor creates a monitor ticking on clock.
func NewMonitor(sweeper *Sweeper, clock clockwork.Clock, interval time.Duration) *Monitor {
	return &Monitor{sweeper: sweeper, clock: clock, interval: interval}
}

// Run blocks until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := m.clock.NewTicker(m.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", m.interval).Msg("liveness monitor started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("liveness monitor stopped")
			return nil
		case <-ticker.Chan():
			if _, err := m.sweeper.Sweep(ctx); err != nil {
				log.Error().Err(err).Msg("liveness sweep failed")
			}
		}
	}
}
