package hands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/stint/go/internal/models"
	"github.com/mcdev12/stint/go/internal/stint/engine"
	"github.com/mcdev12/stint/go/internal/stint/events"
	"github.com/mcdev12/stint/go/internal/stint/navigation"
	"github.com/mcdev12/stint/go/internal/stint/variables"
)

// Target is where SetStage moves a hand: either a node of its breadcrumb
// trail, whose stage instance is reused, or a definition to realize a new
// stage instance from.
type Target struct {
	Crumb      *models.StageBreadcrumb
	Definition *models.StageDefinition
}

// Transition describes what SetStage changed.
type Transition struct {
	Stage      *models.Stage
	Definition *models.StageDefinition
	// Module is set when the hand switched module.
	Module *models.ModuleDefinition
	// Changed is false when the hand was already on Stage.
	Changed bool
	// Finished is set when the hand reached the end stage of the last
	// module. The caller moves the hand to finished.
	Finished bool
}

// SetStage moves the hand to target. Reaching an end stage continues with the
// next module's start stage; on the last module the hand stays on the end
// stage and the transition reports Finished.
func SetStage(ctx context.Context, ec *engine.Context, hand *models.Hand, target Target) (*Transition, error) {
	curMod, curModDef, err := ec.HandModule(ctx, hand)
	if err != nil {
		return nil, err
	}

	var stage *models.Stage
	def := target.Definition
	crumb := target.Crumb
	if crumb != nil {
		stage, err = ec.Store.GetStage(ctx, crumb.StageID)
		if err != nil {
			return nil, fmt.Errorf("failed to load breadcrumb stage: %w", err)
		}
		def, err = ec.Catalog.StageDefinition(stage.StageDefinitionID)
		if err != nil {
			return nil, err
		}
	}
	if def == nil {
		return nil, fmt.Errorf("set stage for hand %s: no target", hand.ID)
	}

	tr := &Transition{}
	if def.EndStage {
		next, err := nextModule(ctx, ec, hand.StintID, curMod)
		if err != nil {
			return nil, err
		}
		if next != nil {
			nextDef, err := ec.Catalog.ModuleDefinition(next.ModuleDefinitionID)
			if err != nil {
				return nil, err
			}
			def = nextDef.Stage(nextDef.StartStage)
			stage, crumb = nil, nil
		} else {
			tr.Finished = true
		}
	}

	if stage == nil {
		stage = &models.Stage{ID: uuid.New(), StageDefinitionID: def.ID}
		if err := ec.Store.CreateStage(ctx, stage); err != nil {
			return nil, fmt.Errorf("failed to create stage: %w", err)
		}
	}

	modDef := curModDef
	if def.ModuleDefinition != curModDef.Slug {
		mod, err := moduleOf(ctx, ec, hand.StintID, def.ModuleDefinition)
		if err != nil {
			return nil, err
		}
		if _, err := SetModule(ctx, ec, hand, mod); err != nil {
			return nil, err
		}
		modDef, err = ec.Catalog.ModuleDefinition(mod.ModuleDefinitionID)
		if err != nil {
			return nil, err
		}
		tr.Module = modDef
	}

	if def.PreAction != "" && !stage.PreActionStarted && ec.Actions != nil {
		stage.PreActionStarted = true
		if err := ec.Store.UpdateStage(ctx, stage); err != nil {
			return nil, fmt.Errorf("failed to mark pre-action: %w", err)
		}
		if err := ec.Actions.RunPreAction(ctx, def, hand); err != nil {
			return nil, fmt.Errorf("pre-action %s: %w", def.PreAction, err)
		}
	}

	previous := hand.StageID
	stageID := stage.ID
	hand.StageID = &stageID
	if err := ec.Store.UpdateHand(ctx, hand); err != nil {
		return nil, fmt.Errorf("failed to update hand stage: %w", err)
	}
	tr.Stage = stage
	tr.Definition = def
	tr.Changed = tr.Module != nil || previous == nil || *previous != stage.ID

	if crumb != nil {
		err = navigation.Move(ctx, ec, hand, crumb)
	} else {
		_, err = navigation.CreateBreadcrumb(ctx, ec, hand, stage)
	}
	if err != nil {
		return nil, err
	}

	era := modDef.EraID(def.Era)
	if era == "" && tr.Module != nil {
		era = modDef.EraID(modDef.StartEra)
	}
	if era != "" && era != hand.EraID {
		if err := SetEra(ctx, ec, hand, era); err != nil {
			return nil, err
		}
	}

	log.Debug().
		Str("hand_id", hand.ID.String()).
		Str("stage", def.ID).
		Bool("changed", tr.Changed).
		Bool("finished", tr.Finished).
		Msg("hand stage set")
	return tr, nil
}

// Events returns the notifications a transition produces for its hand.
func (tr *Transition) Events(ctx context.Context, ec *engine.Context, hand *models.Hand) ([]events.Event, error) {
	if tr == nil || !tr.Changed {
		return nil, nil
	}
	var evs []events.Event
	if tr.Module != nil {
		snapshot, err := variables.Snapshot(ctx, ec, hand)
		if err != nil {
			return nil, err
		}
		evs = append(evs,
			events.CurrentModule{Name: tr.Module.Slug},
			events.UpdateAllVars{Snapshot: snapshot},
		)
	}
	evs = append(evs, events.CurrentStage{StageID: tr.Stage.ID, Name: tr.Definition.Slug})
	return evs, nil
}

func nextModule(ctx context.Context, ec *engine.Context, stintID uuid.UUID, current *models.Module) (*models.Module, error) {
	mods, err := ec.Store.ListModules(ctx, stintID)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	for i, m := range mods {
		if m.ID == current.ID && i+1 < len(mods) {
			return mods[i+1], nil
		}
	}
	return nil, nil
}

func moduleOf(ctx context.Context, ec *engine.Context, stintID uuid.UUID, definition string) (*models.Module, error) {
	mods, err := ec.Store.ListModules(ctx, stintID)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	for _, m := range mods {
		if m.ModuleDefinitionID == definition {
			return m, nil
		}
	}
	return nil, fmt.Errorf("stint %s has no module %s", stintID, definition)
}
