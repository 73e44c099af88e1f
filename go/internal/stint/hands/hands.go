package hands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/stint/go/internal/models"
	"github.com/mcdev12/stint/go/internal/stint/engine"
	"github.com/mcdev12/stint/go/internal/stint/teams"
)

// SetModule points the hand at module and reports whether it changed.
func SetModule(ctx context.Context, ec *engine.Context, hand *models.Hand, module *models.Module) (bool, error) {
	if hand.CurrentModuleID != nil && *hand.CurrentModuleID == module.ID {
		return false, nil
	}
	id := module.ID
	hand.CurrentModuleID = &id
	if err := ec.Store.UpdateHand(ctx, hand); err != nil {
		return false, fmt.Errorf("failed to update hand module: %w", err)
	}
	log.Info().
		Str("hand_id", hand.ID.String()).
		Str("module", module.ModuleDefinitionID).
		Msg("hand module changed")
	return true, nil
}

// SetEra writes the hand's era and lets its team catch up.
func SetEra(ctx context.Context, ec *engine.Context, hand *models.Hand, era string) error {
	hand.EraID = era
	if err := ec.Store.UpdateHand(ctx, hand); err != nil {
		return fmt.Errorf("failed to update hand era: %w", err)
	}
	if hand.CurrentTeamID == nil {
		return nil
	}
	if _, err := teams.Synchronize(ctx, ec, *hand.CurrentTeamID, era); err != nil {
		return err
	}
	return nil
}

// Initialize places the hand on the start stage of the stint's first module
// and marks it active.
func Initialize(ctx context.Context, ec *engine.Context, hand *models.Hand) (*Transition, error) {
	mods, err := ec.Store.ListModules(ctx, hand.StintID)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	if len(mods) == 0 {
		return nil, fmt.Errorf("stint %s has no modules", hand.StintID)
	}
	first := mods[0]
	def, err := ec.Catalog.ModuleDefinition(first.ModuleDefinitionID)
	if err != nil {
		return nil, err
	}

	now := ec.Now()
	hand.Status = models.HandStatusActive
	hand.LastSeen = &now
	hand.StageID = nil
	hand.CurrentBreadcrumbID = nil
	if _, err := SetModule(ctx, ec, hand, first); err != nil {
		return nil, err
	}
	if err := ec.Store.UpdateHand(ctx, hand); err != nil {
		return nil, fmt.Errorf("failed to update hand: %w", err)
	}
	if era := def.EraID(def.StartEra); era != "" {
		if err := SetEra(ctx, ec, hand, era); err != nil {
			return nil, err
		}
	}

	tr, err := SetStage(ctx, ec, hand, Target{Definition: def.Stage(def.StartStage)})
	if err != nil {
		return nil, err
	}
	tr.Module = def
	tr.Changed = true

	log.Info().
		Str("stint_id", hand.StintID.String()).
		Str("hand_id", hand.ID.String()).
		Str("module", def.Slug).
		Msg("hand initialized")
	return tr, nil
}

// Touch records that the hand's participant was just seen.
func Touch(ctx context.Context, ec *engine.Context, hand *models.Hand) error {
	now := ec.Now()
	hand.LastSeen = &now
	if err := ec.Store.UpdateHand(ctx, hand); err != nil {
		return fmt.Errorf("failed to update last seen: %w", err)
	}
	return nil
}

// OptOut quits the hand.
func OptOut(ctx context.Context, ec *engine.Context, hand *models.Hand) (Cascade, error) {
	return SetStatus(ctx, ec, hand, models.HandStatusQuit)
}
