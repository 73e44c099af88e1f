package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mcdev12/stint/go/internal/models"
	"github.com/mcdev12/stint/go/internal/stint/engine"
	"github.com/mcdev12/stint/go/internal/stint/errs"
	"github.com/mcdev12/stint/go/internal/stint/events"
	"github.com/mcdev12/stint/go/internal/stint/hands"
	"github.com/mcdev12/stint/go/internal/stint/variables"
)

// batch collects what one hand action produced.
type batch struct {
	own      []events.Event
	others   map[uuid.UUID][]events.Event
	order    []uuid.UUID
	finished bool
}

func (b *batch) add(handID uuid.UUID, ev events.Event) {
	if b.others == nil {
		b.others = make(map[uuid.UUID][]events.Event)
	}
	if _, ok := b.others[handID]; !ok {
		b.order = append(b.order, handID)
	}
	b.others[handID] = append(b.others[handID], ev)
}

func (b *batch) transition(ctx context.Context, ec *engine.Context, hand *models.Hand, tr *hands.Transition) error {
	if tr == nil {
		return nil
	}
	evs, err := tr.Events(ctx, ec, hand)
	if err != nil {
		return err
	}
	b.own = append(b.own, evs...)
	if tr.Finished {
		b.finished = true
	}
	return nil
}

// changed records an UpdateVar for the hand and, for shared variables, for
// every other active hand that sees the same value.
func (b *batch) changed(ctx context.Context, ec *engine.Context, hand *models.Hand, def *models.VariableDefinition, v *models.Variable) error {
	ev := events.UpdateVar{Name: def.Name, Value: v.Value, Scope: def.Scope}
	b.own = append(b.own, ev)

	var audience []*models.Hand
	var err error
	switch def.Scope {
	case models.ScopeTeam:
		audience, err = ec.Store.ListTeamHands(ctx, v.OwnerID)
	case models.ScopeModule:
		audience, err = ec.Store.ListHands(ctx, hand.StintID)
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to list hands sharing %s: %w", def.ID, err)
	}
	for _, h := range audience {
		if h.ID == hand.ID || h.Status != models.HandStatusActive {
			continue
		}
		if def.Scope == models.ScopeModule && (h.CurrentModuleID == nil || *h.CurrentModuleID != v.ModuleID) {
			continue
		}
		b.add(h.ID, ev)
	}
	return nil
}

// act runs fn on an active hand in one store transaction, holding the
// stint's read lock, the hand's lock and the lock of the hand's team. Any
// error from fn rolls back everything it wrote. Notifications go out and a
// finished hand is retired after the locks are released.
func (s *Service) act(ctx context.Context, handID uuid.UUID, fn func(ec *engine.Context, hand *models.Hand, b *batch) error) error {
	hand, err := s.ec.Store.GetHand(ctx, handID)
	if err != nil {
		return fmt.Errorf("failed to load hand: %w", err)
	}

	b := &batch{}
	err = func() error {
		unlockStint := s.ec.Locks.Stints.RLock(hand.StintID)
		defer unlockStint()
		unlockHand := s.ec.Locks.Hands.Lock(hand.ID)
		defer unlockHand()

		hand, err = s.ec.Store.GetHand(ctx, handID)
		if err != nil {
			return fmt.Errorf("failed to load hand: %w", err)
		}
		switch hand.Status {
		case models.HandStatusActive:
		case models.HandStatusNone:
			return fmt.Errorf("hand %s: %w", hand.ID, engine.ErrHandNotStarted)
		default:
			return errs.InvalidStatus("hand %s is %s", hand.ID, hand.Status)
		}
		if hand.CurrentTeamID != nil {
			unlockTeam := s.ec.Locks.Teams.Lock(*hand.CurrentTeamID)
			defer unlockTeam()
		}
		return guard(func() error {
			return s.ec.Atomic(ctx, func(tx *engine.Context) error {
				return fn(tx, hand, b)
			})
		})
	}()
	if err != nil {
		if errors.Is(err, errs.ErrPanic) {
			s.panicked(ctx, hand.StintID, err)
		}
		return err
	}

	failed := []error{s.publish(ctx, hand.StintID, hand.ID, b.own)}
	for _, id := range b.order {
		failed = append(failed, s.publish(ctx, hand.StintID, id, b.others[id]))
	}
	if b.finished {
		failed = append(failed, s.setHandStatus(ctx, hand, models.HandStatusFinished))
	}
	return errors.Join(failed...)
}

// Submit advances the hand past its current stage.
func (s *Service) Submit(ctx context.Context, handID uuid.UUID) error {
	return s.act(ctx, handID, func(ec *engine.Context, hand *models.Hand, b *batch) error {
		tr, err := hands.Submit(ctx, ec, hand)
		if err != nil {
			return err
		}
		return b.transition(ctx, ec, hand, tr)
	})
}

// Back returns the hand to its previous stage when the stage allows it.
func (s *Service) Back(ctx context.Context, handID uuid.UUID) error {
	return s.act(ctx, handID, func(ec *engine.Context, hand *models.Hand, b *batch) error {
		tr, err := hands.Back(ctx, ec, hand)
		if err != nil {
			return err
		}
		return b.transition(ctx, ec, hand, tr)
	})
}

// SetVariable writes a variable of the hand's current module by name.
func (s *Service) SetVariable(ctx context.Context, handID uuid.UUID, name string, raw any) error {
	return s.act(ctx, handID, func(ec *engine.Context, hand *models.Hand, b *batch) error {
		return s.setVariable(ctx, ec, hand, b, name, raw)
	})
}

func (s *Service) setVariable(ctx context.Context, ec *engine.Context, hand *models.Hand, b *batch, name string, raw any) error {
	v, def, err := variables.ByName(ctx, ec, hand, name)
	if err != nil {
		return err
	}
	changed, err := variables.Set(ctx, ec, v, raw)
	if err != nil || !changed {
		return err
	}
	return b.changed(ctx, ec, hand, def, v)
}

// TriggerAction runs an authored action and applies the changes it asks for
// in order.
func (s *Service) TriggerAction(ctx context.Context, handID uuid.UUID, action string) error {
	return s.act(ctx, handID, func(ec *engine.Context, hand *models.Hand, b *batch) error {
		if ec.Actions == nil {
			return errs.Validation("no action runner configured for %q", action)
		}
		changes, err := ec.Actions.RunAction(ctx, action, hand)
		if err != nil {
			return fmt.Errorf("action %s: %w", action, err)
		}
		for _, c := range changes {
			if c.Variable != "" {
				if err := s.setVariable(ctx, ec, hand, b, c.Variable, c.Value); err != nil {
					return err
				}
			}
			if c.Stage == "" {
				continue
			}
			_, modDef, err := ec.HandModule(ctx, hand)
			if err != nil {
				return err
			}
			target := modDef.Stage(c.Stage)
			if target == nil {
				return errs.Value("module %s has no stage %q", modDef.Slug, c.Stage)
			}
			tr, err := hands.SetStage(ctx, ec, hand, hands.Target{Definition: target})
			if err != nil {
				return err
			}
			if err := b.transition(ctx, ec, hand, tr); err != nil {
				return err
			}
		}
		return nil
	})
}

// Touch records participant activity for the liveness sweep.
func (s *Service) Touch(ctx context.Context, handID uuid.UUID) error {
	return s.act(ctx, handID, func(ec *engine.Context, hand *models.Hand, b *batch) error {
		return hands.Touch(ctx, ec, hand)
	})
}

// Pay credits the hand's payoff and returns the amount.
func (s *Service) Pay(ctx context.Context, handID uuid.UUID) (float64, error) {
	var amount float64
	err := s.act(ctx, handID, func(ec *engine.Context, hand *models.Hand, b *batch) error {
		var err error
		amount, err = hands.Pay(ctx, ec, hand)
		return err
	})
	return amount, err
}

// OptOut quits the hand.
func (s *Service) OptOut(ctx context.Context, handID uuid.UUID) error {
	hand, err := s.ec.Store.GetHand(ctx, handID)
	if err != nil {
		return fmt.Errorf("failed to load hand: %w", err)
	}
	c, err := hands.OptOut(ctx, s.ec, hand)
	if err != nil {
		return err
	}
	return s.cascade(ctx, hand.StintID, c)
}
