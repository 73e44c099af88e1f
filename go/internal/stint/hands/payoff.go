package hands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/stint/go/internal/models"
	"github.com/mcdev12/stint/go/internal/stint/engine"
	"github.com/mcdev12/stint/go/internal/stint/variables"
)

func clamp(v float64, min, max *float64) float64 {
	if min != nil && v < *min {
		return *min
	}
	if max != nil && v > *max {
		return *max
	}
	return v
}

func payoffVariables(ctx context.Context, ec *engine.Context, hand *models.Hand) ([]*models.Variable, error) {
	vars, err := ec.Store.ListVariables(ctx, hand.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list hand variables: %w", err)
	}
	var out []*models.Variable
	for _, v := range vars {
		def, err := ec.Catalog.VariableDefinition(v.DefinitionID)
		if err != nil {
			return nil, err
		}
		if def.Payoff() {
			out = append(out, v)
		}
	}
	return out, nil
}

// Payoff sums the hand's payoff variables. With a module only that module's
// variables count and the sum is clamped to the module's earnings bounds
// first. The result is always clamped to the stint's earnings bounds.
func Payoff(ctx context.Context, ec *engine.Context, hand *models.Hand, module *models.Module) (float64, error) {
	vars, err := payoffVariables(ctx, ec, hand)
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, v := range vars {
		if module != nil && v.ModuleID != module.ID {
			continue
		}
		def, err := ec.Catalog.VariableDefinition(v.DefinitionID)
		if err != nil {
			return 0, err
		}
		if v.Value == nil {
			continue
		}
		f, err := variables.Cast(def, v.Value)
		if err != nil {
			return 0, err
		}
		sum += f.(float64)
	}

	stint, err := ec.Store.GetStint(ctx, hand.StintID)
	if err != nil {
		return 0, fmt.Errorf("failed to load stint: %w", err)
	}
	defs, err := ec.Resolve(stint)
	if err != nil {
		return 0, err
	}
	spec := defs.Specification
	if module != nil {
		if ms := spec.ModuleSpecification(module.ModuleDefinitionID); ms != nil {
			sum = clamp(sum, ms.MinEarnings, ms.MaxEarnings)
		}
	}
	return clamp(sum, spec.MinEarnings, spec.MaxEarnings), nil
}

// Pay adds the hand's payoff to its running total and zeroes its payoff
// variables. It returns the amount paid.
func Pay(ctx context.Context, ec *engine.Context, hand *models.Hand) (float64, error) {
	amount, err := Payoff(ctx, ec, hand, nil)
	if err != nil {
		return 0, err
	}
	hand.CurrentPayoff += amount
	if err := ec.Store.UpdateHand(ctx, hand); err != nil {
		return 0, fmt.Errorf("failed to update hand payoff: %w", err)
	}

	vars, err := payoffVariables(ctx, ec, hand)
	if err != nil {
		return 0, err
	}
	for _, v := range vars {
		if err := variables.ResetPayoff(ctx, ec, v); err != nil {
			return 0, err
		}
	}

	log.Info().
		Str("stint_id", hand.StintID.String()).
		Str("hand_id", hand.ID.String()).
		Float64("amount", amount).
		Float64("current_payoff", hand.CurrentPayoff).
		Msg("hand paid")
	return amount, nil
}
