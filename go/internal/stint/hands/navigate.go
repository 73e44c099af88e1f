package hands

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/mcdev12/stint/go/internal/models"
	"github.com/mcdev12/stint/go/internal/stint/engine"
	"github.com/mcdev12/stint/go/internal/stint/navigation"
)

// ErrNoRedirect is returned when no redirect of the current stage applies.
var ErrNoRedirect = errors.New("no matching redirect")

// Submit advances the hand from its current stage. A stage that does not
// redirect on submit is left alone and Submit returns a nil transition.
func Submit(ctx context.Context, ec *engine.Context, hand *models.Hand) (*Transition, error) {
	_, def, err := ec.HandStage(ctx, hand)
	if err != nil {
		return nil, err
	}
	if !def.SubmitRedirects() {
		return nil, nil
	}

	if def.Policy() == models.BreadcrumbAll {
		next, err := navigation.Forward(ctx, ec, hand)
		if err != nil {
			return nil, err
		}
		if next != nil {
			return SetStage(ctx, ec, hand, Target{Crumb: next})
		}
	}

	target, err := Redirect(ctx, ec, hand, def)
	if err != nil {
		return nil, err
	}
	return SetStage(ctx, ec, hand, Target{Definition: target})
}

// Redirect returns the first redirect target of def, by ascending order,
// whose condition holds for hand. Unconditional redirects always hold.
func Redirect(ctx context.Context, ec *engine.Context, hand *models.Hand, def *models.StageDefinition) (*models.StageDefinition, error) {
	redirects := append([]models.Redirect(nil), def.Redirects...)
	sort.SliceStable(redirects, func(i, j int) bool {
		return redirects[i].Order < redirects[j].Order
	})

	for _, r := range redirects {
		if r.Condition != "" {
			if ec.Conditions == nil {
				continue
			}
			ok, err := ec.Conditions.Evaluate(ctx, r.Condition, hand)
			if err != nil {
				return nil, fmt.Errorf("condition %s: %w", r.Condition, err)
			}
			if !ok {
				continue
			}
		}
		target, err := ec.Catalog.StageDefinition(models.QualifiedID(def.ModuleDefinition, r.NextStage))
		if err != nil {
			return nil, err
		}
		return target, nil
	}
	return nil, fmt.Errorf("stage %s: %w", def.ID, ErrNoRedirect)
}

// Back returns the hand to the previous node of its trail. It returns a nil
// transition when the current stage does not allow going back.
func Back(ctx context.Context, ec *engine.Context, hand *models.Hand) (*Transition, error) {
	prev, err := navigation.Back(ctx, ec, hand)
	if err != nil {
		return nil, err
	}
	if prev == nil {
		return nil, nil
	}
	return SetStage(ctx, ec, hand, Target{Crumb: prev})
}
