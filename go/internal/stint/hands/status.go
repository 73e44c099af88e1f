// Package hands is the per-participant state machine: status, module, stage,
// era and payoff of a hand.
//
// Apart from SetStatus and TimeOut, every function expects the caller to hold
// the stint's read lock, the hand's lock and the lock of the hand's team.
package hands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/stint/go/internal/models"
	"github.com/mcdev12/stint/go/internal/stint/engine"
	"github.com/mcdev12/stint/go/internal/stint/errs"
)

// Cascade is the stint level consequence of a hand status change. The
// orchestrator applies it; applying a cascade twice is harmless.
type Cascade int

const (
	CascadeNone Cascade = iota
	// CascadeCancel: no active hand is left in a stint without late arrival.
	CascadeCancel
	// CascadeForceCancel: the liveness sweep timed out a hand of a module
	// that stops on quit.
	CascadeForceCancel
)

func (c Cascade) String() string {
	switch c {
	case CascadeCancel:
		return "cancel"
	case CascadeForceCancel:
		return "force_cancel"
	}
	return "none"
}

// SetStatus moves hand to status inside the stint's critical section, so the
// check for remaining active hands sees every concurrent status write.
func SetStatus(ctx context.Context, ec *engine.Context, hand *models.Hand, status models.HandStatus) (Cascade, error) {
	if !status.Valid() {
		return CascadeNone, errs.InvalidStatus("unknown hand status %q", status)
	}
	unlockStint := ec.Locks.Stints.Lock(hand.StintID)
	defer unlockStint()
	unlockHand := ec.Locks.Hands.Lock(hand.ID)
	defer unlockHand()

	return ApplyStatus(ctx, ec, hand, status)
}

// ApplyStatus is SetStatus for callers that already hold the stint's write
// lock.
func ApplyStatus(ctx context.Context, ec *engine.Context, hand *models.Hand, status models.HandStatus) (Cascade, error) {
	if !status.Valid() {
		return CascadeNone, errs.InvalidStatus("unknown hand status %q", status)
	}
	current, err := ec.Store.GetHand(ctx, hand.ID)
	if err != nil {
		return CascadeNone, fmt.Errorf("failed to load hand: %w", err)
	}
	previous := current.Status
	if previous == status {
		*hand = *current
		return CascadeNone, nil
	}
	if previous.Terminal() {
		return CascadeNone, errs.InvalidStatus("hand %s is already %s", current.ID, previous)
	}
	current.Status = status
	if err := ec.Store.UpdateHand(ctx, current); err != nil {
		return CascadeNone, fmt.Errorf("failed to update hand status: %w", err)
	}
	*hand = *current

	log.Info().
		Str("stint_id", hand.StintID.String()).
		Str("hand_id", hand.ID.String()).
		Str("from", string(previous)).
		Str("status", string(status)).
		Msg("hand status changed")

	if !status.Terminal() {
		return CascadeNone, nil
	}
	return cascadeFor(ctx, ec, hand)
}

// cascadeFor cancels the stint once its last active hand is gone. Stints
// with late arrival stay open for new participants.
func cascadeFor(ctx context.Context, ec *engine.Context, hand *models.Hand) (Cascade, error) {
	stint, err := ec.Store.GetStint(ctx, hand.StintID)
	if err != nil {
		return CascadeNone, fmt.Errorf("failed to load stint: %w", err)
	}
	if stint.Status == models.StintStatusNone || stint.Status.Terminal() || stint.LateArrival {
		return CascadeNone, nil
	}

	all, err := ec.Store.ListHands(ctx, stint.ID)
	if err != nil {
		return CascadeNone, fmt.Errorf("failed to list hands: %w", err)
	}
	for _, h := range all {
		if h.Status == models.HandStatusActive {
			return CascadeNone, nil
		}
	}
	return CascadeCancel, nil
}

// TimeOut moves the hand to timedout if, inside the stint's critical
// section, it is still active and has not been seen for at least timeout.
// It reports whether the hand was timed out.
func TimeOut(ctx context.Context, ec *engine.Context, stintID, handID uuid.UUID, now time.Time, timeout time.Duration) (Cascade, bool, error) {
	unlockStint := ec.Locks.Stints.Lock(stintID)
	defer unlockStint()
	unlockHand := ec.Locks.Hands.Lock(handID)
	defer unlockHand()

	hand, err := ec.Store.GetHand(ctx, handID)
	if err != nil {
		return CascadeNone, false, fmt.Errorf("failed to load hand: %w", err)
	}
	if hand.Status != models.HandStatusActive || hand.LastSeen == nil || now.Sub(*hand.LastSeen) < timeout {
		return CascadeNone, false, nil
	}
	c, err := ApplyStatus(ctx, ec, hand, models.HandStatusTimedOut)
	if err != nil {
		return CascadeNone, false, err
	}
	return c, true, nil
}
