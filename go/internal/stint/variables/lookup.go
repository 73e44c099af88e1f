package variables

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mcdev12/stint/go/internal/models"
	"github.com/mcdev12/stint/go/internal/stint/engine"
	"github.com/mcdev12/stint/go/internal/stint/errs"
)

// Owner returns the id of the entity that owns def's variable for hand.
func Owner(ctx context.Context, ec *engine.Context, hand *models.Hand, def *models.VariableDefinition) (uuid.UUID, error) {
	switch def.Scope {
	case models.ScopeHand:
		return hand.ID, nil
	case models.ScopeTeam:
		if hand.CurrentTeamID == nil {
			return uuid.Nil, errs.Scope("hand %s has no team for %s", hand.ID, def.ID)
		}
		return *hand.CurrentTeamID, nil
	case models.ScopeModule:
		mods, err := ec.Store.ListModules(ctx, hand.StintID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to list modules: %w", err)
		}
		for _, m := range mods {
			if m.ModuleDefinitionID == def.ModuleDefinition {
				return m.ID, nil
			}
		}
		return uuid.Nil, errs.Scope("stint %s has no module %s", hand.StintID, def.ModuleDefinition)
	}
	return uuid.Nil, errs.Scope("unknown scope %q", def.Scope)
}

// Lookup returns the variable of def visible to hand.
func Lookup(ctx context.Context, ec *engine.Context, hand *models.Hand, def *models.VariableDefinition) (*models.Variable, error) {
	owner, err := Owner(ctx, ec, hand, def)
	if err != nil {
		return nil, err
	}
	v, err := ec.Store.GetVariable(ctx, owner, def.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load variable %s: %w", def.ID, err)
	}
	return v, nil
}

// ByName resolves a variable of the hand's current module by name.
func ByName(ctx context.Context, ec *engine.Context, hand *models.Hand, name string) (*models.Variable, *models.VariableDefinition, error) {
	_, modDef, err := ec.HandModule(ctx, hand)
	if err != nil {
		return nil, nil, err
	}
	def := modDef.Variable(name)
	if def == nil {
		return nil, nil, errs.Validation("module %s has no variable %q", modDef.Slug, name)
	}
	v, err := Lookup(ctx, ec, hand, def)
	if err != nil {
		return nil, nil, err
	}
	return v, def, nil
}

// Snapshot returns every variable of the hand's current module visible to the
// hand, keyed by name. Team values shadow module values and hand values shadow
// both.
func Snapshot(ctx context.Context, ec *engine.Context, hand *models.Hand) (map[string]any, error) {
	mod, _, err := ec.HandModule(ctx, hand)
	if err != nil {
		return nil, err
	}
	owners := []uuid.UUID{mod.ID}
	if hand.CurrentTeamID != nil {
		owners = append(owners, *hand.CurrentTeamID)
	}
	owners = append(owners, hand.ID)

	out := make(map[string]any)
	for _, owner := range owners {
		vars, err := ec.Store.ListVariables(ctx, owner)
		if err != nil {
			return nil, fmt.Errorf("failed to list variables: %w", err)
		}
		for _, v := range vars {
			if v.ModuleID != mod.ID {
				continue
			}
			def, err := ec.Catalog.VariableDefinition(v.DefinitionID)
			if err != nil {
				return nil, err
			}
			out[def.Name] = v.Value
		}
	}
	return out, nil
}
