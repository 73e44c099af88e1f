package orchestrator

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mcdev12/stint/go/internal/models"
	"github.com/mcdev12/stint/go/internal/stint/engine"
	"github.com/mcdev12/stint/go/internal/stint/errs"
	"github.com/mcdev12/stint/go/internal/stint/variables"
)

// values resolves what outranks a variable's default: a dataset cell of the
// same name, then the specification's value.
type values struct {
	spec *models.StintSpecification
	row  map[string]string
}

func newValues(spec *models.StintSpecification) (*values, error) {
	if spec.Dataset != nil && len(spec.Dataset.Rows) == 0 {
		return nil, errs.Validation("specification %s: dataset has no value rows", spec.Slug)
	}
	return &values{spec: spec, row: spec.Dataset.LastRow()}, nil
}

func (v *values) realization(def *models.VariableDefinition) variables.Realization {
	var r variables.Realization
	if raw, ok := v.spec.SpecValue(def); ok {
		r.Spec, r.HasSpec = raw, true
	}
	if raw, ok := v.row[def.Name]; ok {
		r.Override, r.HasOverride = raw, true
	}
	return r
}

// realizeModules creates the stint's modules in definition order together
// with their module, team and hand variables.
func realizeModules(ctx context.Context, ec *engine.Context, stint *models.Stint, defs *engine.Definitions) ([]*models.Module, error) {
	vals, err := newValues(defs.Specification)
	if err != nil {
		return nil, err
	}
	teamList, err := ec.Store.ListTeams(ctx, stint.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	handList, err := ec.Store.ListHands(ctx, stint.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list hands: %w", err)
	}

	mods := make([]*models.Module, 0, len(defs.Stint.Modules))
	for i, slug := range defs.Stint.Modules {
		modDef, err := ec.Catalog.ModuleDefinition(slug)
		if err != nil {
			return nil, err
		}
		mod := &models.Module{
			ID:                 uuid.New(),
			StintID:            stint.ID,
			ModuleDefinitionID: slug,
			Order:              i,
		}
		if err := ec.Store.CreateModule(ctx, mod); err != nil {
			return nil, fmt.Errorf("failed to create module: %w", err)
		}

		for j := range modDef.Variables {
			def := &modDef.Variables[j]
			var owners []uuid.UUID
			switch def.Scope {
			case models.ScopeModule:
				owners = []uuid.UUID{mod.ID}
			case models.ScopeTeam:
				for _, t := range teamList {
					owners = append(owners, t.ID)
				}
			case models.ScopeHand:
				for _, h := range handList {
					owners = append(owners, h.ID)
				}
			}
			if len(owners) == 0 {
				continue
			}
			if _, err := variables.Realize(ctx, ec, def, mod.ID, owners, vals.realization(def)); err != nil {
				return nil, err
			}
		}
		mods = append(mods, mod)
	}
	return mods, nil
}

// realizeHandVariables gives a hand that joined or was reset its hand scoped
// variables in every module.
func realizeHandVariables(ctx context.Context, ec *engine.Context, hand *models.Hand, defs *engine.Definitions) error {
	vals, err := newValues(defs.Specification)
	if err != nil {
		return err
	}
	mods, err := ec.Store.ListModules(ctx, hand.StintID)
	if err != nil {
		return fmt.Errorf("failed to list modules: %w", err)
	}
	for _, mod := range mods {
		modDef, err := ec.Catalog.ModuleDefinition(mod.ModuleDefinitionID)
		if err != nil {
			return err
		}
		for j := range modDef.Variables {
			def := &modDef.Variables[j]
			if def.Scope != models.ScopeHand {
				continue
			}
			if _, err := variables.Realize(ctx, ec, def, mod.ID, []uuid.UUID{hand.ID}, vals.realization(def)); err != nil {
				return err
			}
		}
	}
	return nil
}
