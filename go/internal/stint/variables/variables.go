// Package variables realizes and mutates typed, scoped stint variables.
package variables

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/stint/go/internal/models"
	"github.com/mcdev12/stint/go/internal/stint/engine"
	"github.com/mcdev12/stint/go/internal/stint/errs"
	"github.com/mcdev12/stint/go/internal/stint/store"
)

// Realization carries the values that outrank a definition's default, highest
// priority first.
type Realization struct {
	Override    any
	HasOverride bool
	Spec        any
	HasSpec     bool
}

func (r Realization) raw(def *models.VariableDefinition) any {
	switch {
	case r.HasOverride:
		return r.Override
	case r.HasSpec:
		return r.Spec
	}
	return def.Default
}

// Validate checks a cast value against the definition and returns its stored
// form. Choice values are normalized to the matching choice item.
func Validate(ec *engine.Context, def *models.VariableDefinition, value any) (any, error) {
	switch def.DataType {
	case models.DataTypeChoice:
		s, _ := value.(string)
		lowered := strings.ToLower(s)
		matched := false
		for _, item := range def.Choices {
			if item == lowered {
				matched = true
				break
			}
		}
		if !matched {
			return nil, errs.Value("%s: %q is not one of %v", def.Name, s, def.Choices)
		}
		value = lowered
	case models.DataTypeStage:
		mod, err := ec.Catalog.ModuleDefinition(def.ModuleDefinition)
		if err != nil {
			return nil, err
		}
		if s, _ := value.(string); mod.Stage(s) == nil {
			return nil, errs.Value("%s: %q is not a stage of %s", def.Name, s, mod.Slug)
		}
	}

	if def.Validator == "" {
		return value, nil
	}
	v, ok := ec.Validators[def.Validator]
	if !ok {
		return nil, errs.Validation("%s: validator %q is not registered", def.Name, def.Validator)
	}
	if err := v.Validate(def, value); err != nil {
		if errs.KindOf(err) != errs.KindUnknown {
			return nil, err
		}
		return nil, &errs.Error{Kind: errs.KindValue, Msg: def.Name, Err: err}
	}
	return value, nil
}

// empty reports whether raw means "no value", which resets to the default.
func empty(raw any) bool {
	if raw == nil {
		return true
	}
	s, ok := raw.(string)
	return ok && s == ""
}

// resolve casts and validates raw, falling back to the default for empty
// input. A definition without a default resolves empty input to nil.
func resolve(ec *engine.Context, def *models.VariableDefinition, raw any) (any, error) {
	if empty(raw) {
		raw = def.Default
		if empty(raw) {
			return nil, nil
		}
	}
	value, err := Cast(def, raw)
	if err != nil {
		return nil, err
	}
	return Validate(ec, def, value)
}

// Realize creates one variable of def for every owner that lacks one. It
// returns the variables it created.
func Realize(ctx context.Context, ec *engine.Context, def *models.VariableDefinition, moduleID uuid.UUID, owners []uuid.UUID, r Realization) ([]*models.Variable, error) {
	if len(owners) == 0 {
		return nil, errs.Scope("%s: no %s owners to realize %s scoped variable for", def.Name, def.Scope, def.Scope)
	}
	value, err := resolve(ec, def, r.raw(def))
	if err != nil {
		return nil, fmt.Errorf("realize %s: %w", def.ID, err)
	}

	var created []*models.Variable
	for _, owner := range owners {
		_, err := ec.Store.GetVariable(ctx, owner, def.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up variable %s: %w", def.ID, err)
		}
		v := &models.Variable{
			ID:           uuid.New(),
			DefinitionID: def.ID,
			Scope:        def.Scope,
			ModuleID:     moduleID,
			OwnerID:      owner,
			Value:        value,
		}
		if err := ec.Store.CreateVariable(ctx, v); err != nil {
			return nil, fmt.Errorf("failed to create variable %s: %w", def.ID, err)
		}
		created = append(created, v)
	}
	return created, nil
}

// Set casts and validates raw and writes it only if it differs from the
// current value. v is updated in place with the stored value.
func Set(ctx context.Context, ec *engine.Context, v *models.Variable, raw any) (bool, error) {
	def, err := ec.Catalog.VariableDefinition(v.DefinitionID)
	if err != nil {
		return false, err
	}
	value, err := resolve(ec, def, raw)
	if err != nil {
		return false, err
	}

	unlock := ec.Locks.Variables.Lock(v.ID)
	defer unlock()

	current, err := ec.Store.GetVariable(ctx, v.OwnerID, v.DefinitionID)
	if err != nil {
		return false, fmt.Errorf("failed to load variable %s: %w", v.DefinitionID, err)
	}
	if same(def, current.Value, value) {
		v.Value = value
		return false, nil
	}

	current.Value = value
	if err := ec.Store.UpdateVariable(ctx, current); err != nil {
		return false, fmt.Errorf("failed to update variable %s: %w", v.DefinitionID, err)
	}
	v.Value = value

	log.Debug().
		Str("variable", def.ID).
		Str("owner_id", v.OwnerID.String()).
		Interface("value", value).
		Msg("variable changed")
	return true, nil
}

// same compares a stored value with a freshly resolved one. Stored values are
// recast first so storage round trips (JSON numbers) do not count as changes.
func same(def *models.VariableDefinition, stored, value any) bool {
	if stored == nil || value == nil {
		return stored == nil && value == nil
	}
	normalized, err := Cast(def, stored)
	if err != nil {
		return false
	}
	if def.DataType == models.DataTypeChoice {
		if s, ok := normalized.(string); ok {
			normalized = strings.ToLower(s)
		}
	}
	return reflect.DeepEqual(normalized, value)
}

// ResetPayoff zeroes a payoff variable.
func ResetPayoff(ctx context.Context, ec *engine.Context, v *models.Variable) error {
	def, err := ec.Catalog.VariableDefinition(v.DefinitionID)
	if err != nil {
		return err
	}
	if !def.Payoff() {
		return errs.Invariant("%s is not a payoff variable", def.ID)
	}
	if _, err := Set(ctx, ec, v, float64(0)); err != nil {
		return fmt.Errorf("reset payoff %s: %w", def.ID, err)
	}
	return nil
}
