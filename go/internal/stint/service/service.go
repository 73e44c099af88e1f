// Package service is the entry point for everything that happens to a
// stint: participant actions, lifecycle commands and the notifications they
// produce.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/stint/go/internal/models"
	"github.com/mcdev12/stint/go/internal/stint/engine"
	"github.com/mcdev12/stint/go/internal/stint/errs"
	"github.com/mcdev12/stint/go/internal/stint/events"
	"github.com/mcdev12/stint/go/internal/stint/hands"
	"github.com/mcdev12/stint/go/internal/stint/orchestrator"
)

// Metrics receives lifecycle and notification counts.
type Metrics interface {
	RecordStintStatus(status string)
	RecordCascade(cascade string)
	RecordNotification(ok bool)
}

type noopMetrics struct{}

func (noopMetrics) RecordStintStatus(string) {}
func (noopMetrics) RecordCascade(string)     {}
func (noopMetrics) RecordNotification(bool)  {}

// Service serializes operations through the engine's locks and publishes
// their notifications once they committed.
type Service struct {
	ec      *engine.Context
	metrics Metrics
}

// New creates a service. metrics may be nil.
func New(ec *engine.Context, metrics Metrics) *Service {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Service{ec: ec, metrics: metrics}
}

// guard turns a panic inside fn into a PanicError.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errs.Panic("recovered: %v", r)
		}
	}()
	return fn()
}

// panicked moves the stint to panicked after an action failed with a
// PanicError.
func (s *Service) panicked(ctx context.Context, stintID uuid.UUID, cause error) {
	log.Error().
		Err(cause).
		Str("stint_id", stintID.String()).
		Msg("stint panicked")
	if err := orchestrator.SetStatus(ctx, s.ec, stintID, models.StintStatusPanicked, nil); err != nil {
		log.Error().Err(err).Str("stint_id", stintID.String()).Msg("failed to mark stint panicked")
		return
	}
	s.metrics.RecordStintStatus(string(models.StintStatusPanicked))
}

// lifecycle runs a stint level operation under the panic guard.
func (s *Service) lifecycle(ctx context.Context, stintID uuid.UUID, fn func() error) error {
	err := guard(fn)
	if errors.Is(err, errs.ErrPanic) {
		s.panicked(ctx, stintID, err)
	}
	return err
}

func (s *Service) cascade(ctx context.Context, stintID uuid.UUID, c hands.Cascade) error {
	cancelled, err := orchestrator.ApplyCascade(ctx, s.ec, stintID, c)
	if err != nil {
		return err
	}
	if cancelled {
		s.metrics.RecordCascade(c.String())
		s.metrics.RecordStintStatus(string(models.StintStatusCancelled))
	}
	return nil
}

// setHandStatus changes a hand's status outside of any held lock and applies
// the cascade it produced.
func (s *Service) setHandStatus(ctx context.Context, hand *models.Hand, status models.HandStatus) error {
	c, err := hands.SetStatus(ctx, s.ec, hand, status)
	if err != nil {
		return err
	}
	return s.cascade(ctx, hand.StintID, c)
}

// publish sends one session's events. The state change they describe is
// already committed, so a failure is reported as a TransportError and leaves
// the state alone.
func (s *Service) publish(ctx context.Context, stintID, handID uuid.UUID, evs []events.Event) error {
	if len(evs) == 0 || s.ec.Notifier == nil {
		return nil
	}
	key := events.SessionKey(stintID, handID)
	err := s.ec.Notifier.Publish(ctx, key, events.Ordered(evs))
	s.metrics.RecordNotification(err == nil)
	if err != nil {
		log.Error().
			Err(err).
			Str("session", key).
			Int("events", len(evs)).
			Msg("failed to publish notifications")
		return errs.Transport(err, "publish notifications for %s", key)
	}
	return nil
}

func (s *Service) publishPlacement(ctx context.Context, p *orchestrator.Placement) error {
	evs, err := p.Transition.Events(ctx, s.ec, p.Hand)
	if err != nil {
		return err
	}
	return s.publish(ctx, p.Hand.StintID, p.Hand.ID, evs)
}

// Start starts a stint and sends every hand its first module and stage. A
// TransportError means the stint started but some hands were not notified.
func (s *Service) Start(ctx context.Context, stintID uuid.UUID, initiator *uuid.UUID) error {
	var placed []orchestrator.Placement
	err := s.lifecycle(ctx, stintID, func() error {
		var err error
		placed, err = orchestrator.Start(ctx, s.ec, stintID, initiator)
		return err
	})
	if err != nil {
		return err
	}
	s.metrics.RecordStintStatus(string(models.StintStatusRunning))
	var failed []error
	for i := range placed {
		if err := s.publishPlacement(ctx, &placed[i]); err != nil {
			failed = append(failed, err)
		}
	}
	return errors.Join(failed...)
}

// Stop ends a stint on behalf of actor, or automatically when actor is nil.
func (s *Service) Stop(ctx context.Context, stintID uuid.UUID, actor *uuid.UUID) error {
	return s.lifecycle(ctx, stintID, func() error {
		return orchestrator.Stop(ctx, s.ec, stintID, actor)
	})
}

// SetStatus changes the stint's status.
func (s *Service) SetStatus(ctx context.Context, stintID uuid.UUID, status models.StintStatus, actor *uuid.UUID) error {
	err := s.lifecycle(ctx, stintID, func() error {
		return orchestrator.SetStatus(ctx, s.ec, stintID, status, actor)
	})
	if err != nil {
		return err
	}
	s.metrics.RecordStintStatus(string(status))
	return nil
}

// JoinUser adds a late participant and sends it its first stage. When only
// the notification fails, the joined hand is returned with a TransportError.
func (s *Service) JoinUser(ctx context.Context, stintID uuid.UUID, p models.Participant, frontend models.Frontend) (*models.Hand, error) {
	var placed *orchestrator.Placement
	err := s.lifecycle(ctx, stintID, func() error {
		var err error
		placed, err = orchestrator.JoinUser(ctx, s.ec, stintID, p, frontend)
		return err
	})
	if err != nil {
		return nil, err
	}
	return placed.Hand, s.publishPlacement(ctx, placed)
}

// ResetHand restarts a hand from scratch.
func (s *Service) ResetHand(ctx context.Context, handID uuid.UUID) error {
	hand, err := s.ec.Store.GetHand(ctx, handID)
	if err != nil {
		return fmt.Errorf("failed to load hand: %w", err)
	}
	var placed *orchestrator.Placement
	err = s.lifecycle(ctx, hand.StintID, func() error {
		var err error
		placed, err = orchestrator.ResetHand(ctx, s.ec, handID)
		return err
	})
	if err != nil {
		return err
	}
	return s.publishPlacement(ctx, placed)
}
