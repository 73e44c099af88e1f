// Package orchestrator drives the stint lifecycle: start, stop, status
// changes, cascades and late joiners.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/stint/go/internal/models"
	"github.com/mcdev12/stint/go/internal/stint/engine"
	"github.com/mcdev12/stint/go/internal/stint/errs"
	"github.com/mcdev12/stint/go/internal/stint/hands"
	"github.com/mcdev12/stint/go/internal/stint/teams"
)

// Placement is a hand put on its first stage.
type Placement struct {
	Hand       *models.Hand
	Transition *hands.Transition
}

// Start forms teams, realizes modules and variables, signals the robot
// runner and places every hand on the first stage. It runs in one store
// transaction; any failure leaves the stint unstarted.
func Start(ctx context.Context, ec *engine.Context, stintID uuid.UUID, initiator *uuid.UUID) ([]Placement, error) {
	unlock := ec.Locks.Stints.Lock(stintID)
	defer unlock()

	var placed []Placement
	err := ec.Atomic(ctx, func(tx *engine.Context) error {
		var err error
		placed, err = start(ctx, tx, stintID, initiator)
		return err
	})
	if err != nil {
		log.Error().Err(err).Str("stint_id", stintID.String()).Msg("failed to start stint")
		return nil, err
	}
	log.Info().
		Str("stint_id", stintID.String()).
		Int("hands", len(placed)).
		Msg("stint started")
	return placed, nil
}

func start(ctx context.Context, ec *engine.Context, stintID uuid.UUID, initiator *uuid.UUID) ([]Placement, error) {
	stint, err := ec.Store.GetStint(ctx, stintID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stint: %w", err)
	}
	if stint.Status != models.StintStatusNone {
		return nil, errs.AlreadyStarted("stint %s is already %s", stint.ID, stint.Status)
	}
	defs, err := ec.Resolve(stint)
	if err != nil {
		return nil, err
	}
	if err := defs.Specification.Validate(); err != nil {
		return nil, err
	}

	stint.Status = models.StintStatusStarting
	stint.StartedBy = initiator
	if err := ec.Store.UpdateStint(ctx, stint); err != nil {
		return nil, fmt.Errorf("failed to update stint: %w", err)
	}

	all, err := ec.Store.ListHands(ctx, stint.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list hands: %w", err)
	}
	if _, err := teams.Form(ctx, ec, stint, all, defs.Specification.TeamSize); err != nil {
		return nil, err
	}
	if _, err := realizeModules(ctx, ec, stint, defs); err != nil {
		return nil, err
	}

	if ec.Robots != nil {
		if err := ec.Robots.Signal(ctx, stint.ID); err != nil {
			return nil, errs.Transport(err, "signal robot runner for stint %s", stint.ID)
		}
	}

	placed := make([]Placement, 0, len(all))
	for _, h := range all {
		tr, err := hands.Initialize(ctx, ec, h)
		if err != nil {
			return nil, err
		}
		placed = append(placed, Placement{Hand: h, Transition: tr})
	}

	now := ec.Now()
	stint.Status = models.StintStatusRunning
	stint.Started = &now
	if err := ec.Store.UpdateStint(ctx, stint); err != nil {
		return nil, fmt.Errorf("failed to update stint: %w", err)
	}
	return placed, nil
}

// Stop ends a started stint. Active hands are cancelled only when the stint
// is already in a terminal status.
func Stop(ctx context.Context, ec *engine.Context, stintID uuid.UUID, actor *uuid.UUID) error {
	unlock := ec.Locks.Stints.Lock(stintID)
	defer unlock()

	stint, err := ec.Store.GetStint(ctx, stintID)
	if err != nil {
		return fmt.Errorf("failed to load stint: %w", err)
	}
	return stop(ctx, ec, stint, actor)
}

func stop(ctx context.Context, ec *engine.Context, stint *models.Stint, actor *uuid.UUID) error {
	if stint.Status == models.StintStatusNone {
		return errs.NotStarted("stint %s has not been started", stint.ID)
	}
	if stint.Status.Terminal() {
		all, err := ec.Store.ListHands(ctx, stint.ID)
		if err != nil {
			return fmt.Errorf("failed to list hands: %w", err)
		}
		for _, h := range all {
			if h.Status != models.HandStatusActive {
				continue
			}
			if _, err := hands.ApplyStatus(ctx, ec, h, models.HandStatusCancelled); err != nil {
				return err
			}
		}
	}

	now := ec.Now()
	stint.StoppedBy = actor
	stint.Ended = &now
	if err := ec.Store.UpdateStint(ctx, stint); err != nil {
		return fmt.Errorf("failed to update stint: %w", err)
	}
	log.Info().
		Str("stint_id", stint.ID.String()).
		Str("status", string(stint.Status)).
		Msg("stint stopped")
	return nil
}

// SetStatus moves the stint to status. Terminal statuses stop the stint;
// running reactivates every hand that has not ended. A stint never moves
// back to an earlier status, and once terminal it stays in that status;
// repeating it is a no-op.
func SetStatus(ctx context.Context, ec *engine.Context, stintID uuid.UUID, status models.StintStatus, actor *uuid.UUID) error {
	if !status.Valid() || status == models.StintStatusNone {
		return errs.InvalidStatus("unknown stint status %q", status)
	}
	unlock := ec.Locks.Stints.Lock(stintID)
	defer unlock()

	stint, err := ec.Store.GetStint(ctx, stintID)
	if err != nil {
		return fmt.Errorf("failed to load stint: %w", err)
	}
	return applyStatus(ctx, ec, stint, status, actor)
}

// progress orders stint statuses; every terminal status shares the last rank.
func progress(s models.StintStatus) int {
	switch {
	case s.Terminal():
		return 3
	case s == models.StintStatusRunning:
		return 2
	case s == models.StintStatusStarting:
		return 1
	}
	return 0
}

func applyStatus(ctx context.Context, ec *engine.Context, stint *models.Stint, status models.StintStatus, actor *uuid.UUID) error {
	previous := stint.Status
	if previous.Terminal() {
		if previous == status {
			return nil
		}
		return errs.InvalidStatus("stint %s is already %s", stint.ID, previous)
	}
	if progress(status) < progress(previous) {
		return errs.InvalidStatus("stint %s cannot go from %s back to %s", stint.ID, previous, status)
	}
	stint.Status = status
	if err := ec.Store.UpdateStint(ctx, stint); err != nil {
		return fmt.Errorf("failed to update stint status: %w", err)
	}
	log.Info().
		Str("stint_id", stint.ID.String()).
		Str("from", string(previous)).
		Str("status", string(status)).
		Msg("stint status changed")

	switch {
	case status.Terminal():
		return stop(ctx, ec, stint, actor)
	case status == models.StintStatusRunning:
		all, err := ec.Store.ListHands(ctx, stint.ID)
		if err != nil {
			return fmt.Errorf("failed to list hands: %w", err)
		}
		for _, h := range all {
			if h.Status.Terminal() {
				continue
			}
			if _, err := hands.ApplyStatus(ctx, ec, h, models.HandStatusActive); err != nil {
				return err
			}
		}
	}
	return nil
}

// ApplyCascade cancels the stint when a hand status change asked for it. It
// reports whether the stint was cancelled; repeated calls are no-ops.
func ApplyCascade(ctx context.Context, ec *engine.Context, stintID uuid.UUID, c hands.Cascade) (bool, error) {
	if c == hands.CascadeNone {
		return false, nil
	}
	unlock := ec.Locks.Stints.Lock(stintID)
	defer unlock()

	stint, err := ec.Store.GetStint(ctx, stintID)
	if err != nil {
		return false, fmt.Errorf("failed to load stint: %w", err)
	}
	switch c {
	case hands.CascadeCancel:
		if stint.Status == models.StintStatusNone || stint.Status.Terminal() {
			return false, nil
		}
	case hands.CascadeForceCancel:
		if stint.Status != models.StintStatusRunning {
			return false, nil
		}
	}
	log.Info().
		Str("stint_id", stint.ID.String()).
		Str("cascade", c.String()).
		Msg("cancelling stint")
	if err := applyStatus(ctx, ec, stint, models.StintStatusCancelled, nil); err != nil {
		return false, err
	}
	return true, nil
}

// JoinUser adds a participant to a running late arrival stint. The new hand
// joins the first team and starts at the beginning.
func JoinUser(ctx context.Context, ec *engine.Context, stintID uuid.UUID, p models.Participant, frontend models.Frontend) (*Placement, error) {
	if !p.Valid() {
		return nil, errs.Validation("a participant is either a user or a robot")
	}
	if frontend != models.FrontendWeb && frontend != models.FrontendSMS {
		return nil, errs.Validation("unknown frontend %q", frontend)
	}
	unlock := ec.Locks.Stints.Lock(stintID)
	defer unlock()

	var placed *Placement
	err := ec.Atomic(ctx, func(tx *engine.Context) error {
		stint, err := tx.Store.GetStint(ctx, stintID)
		if err != nil {
			return fmt.Errorf("failed to load stint: %w", err)
		}
		if !stint.LateArrival {
			return errs.Validation("stint %s does not allow late arrival", stint.ID)
		}
		if stint.Status == models.StintStatusNone {
			return errs.NotStarted("stint %s has not been started", stint.ID)
		}
		if stint.Status.Terminal() {
			return errs.Validation("stint %s has already ended", stint.ID)
		}
		defs, err := tx.Resolve(stint)
		if err != nil {
			return err
		}
		teamList, err := tx.Store.ListTeams(ctx, stint.ID)
		if err != nil {
			return fmt.Errorf("failed to list teams: %w", err)
		}
		if len(teamList) == 0 {
			return errs.Invariant("running stint %s has no team", stint.ID)
		}

		hand := &models.Hand{
			ID:        uuid.New(),
			StintID:   stint.ID,
			UserID:    p.UserID,
			RobotID:   p.RobotID,
			Frontend:  frontend,
			CreatedAt: tx.Now(),
		}
		if err := tx.Store.CreateHand(ctx, hand); err != nil {
			return fmt.Errorf("failed to create hand: %w", err)
		}
		if err := teams.Join(ctx, tx, teamList[0], hand); err != nil {
			return err
		}
		if err := realizeHandVariables(ctx, tx, hand, defs); err != nil {
			return err
		}
		tr, err := hands.Initialize(ctx, tx, hand)
		if err != nil {
			return err
		}
		placed = &Placement{Hand: hand, Transition: tr}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("stint_id", stintID.String()).
		Str("hand_id", placed.Hand.ID.String()).
		Msg("hand joined")
	return placed, nil
}

// ResetHand discards a hand's variables and puts it back at the beginning.
func ResetHand(ctx context.Context, ec *engine.Context, handID uuid.UUID) (*Placement, error) {
	hand, err := ec.Store.GetHand(ctx, handID)
	if err != nil {
		return nil, fmt.Errorf("failed to load hand: %w", err)
	}
	unlock := ec.Locks.Stints.Lock(hand.StintID)
	defer unlock()

	var placed *Placement
	err = ec.Atomic(ctx, func(tx *engine.Context) error {
		hand, err := tx.Store.GetHand(ctx, handID)
		if err != nil {
			return fmt.Errorf("failed to load hand: %w", err)
		}
		stint, err := tx.Store.GetStint(ctx, hand.StintID)
		if err != nil {
			return fmt.Errorf("failed to load stint: %w", err)
		}
		if stint.Status != models.StintStatusRunning {
			return errs.NotStarted("stint %s is not running", stint.ID)
		}
		defs, err := tx.Resolve(stint)
		if err != nil {
			return err
		}
		if err := tx.Store.DeleteVariables(ctx, hand.ID); err != nil {
			return fmt.Errorf("failed to delete hand variables: %w", err)
		}
		if err := realizeHandVariables(ctx, tx, hand, defs); err != nil {
			return err
		}
		tr, err := hands.Initialize(ctx, tx, hand)
		if err != nil {
			return err
		}
		placed = &Placement{Hand: hand, Transition: tr}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("stint_id", hand.StintID.String()).
		Str("hand_id", handID.String()).
		Msg("hand reset")
	return placed, nil
}
