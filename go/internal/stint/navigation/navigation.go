// Package navigation keeps each hand's breadcrumb trail through stages.
package navigation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/stint/go/internal/models"
	"github.com/mcdev12/stint/go/internal/stint/engine"
)

func policyOf(ctx context.Context, ec *engine.Context, stageID uuid.UUID) (models.BreadcrumbPolicy, error) {
	stage, err := ec.Store.GetStage(ctx, stageID)
	if err != nil {
		return "", fmt.Errorf("failed to load stage: %w", err)
	}
	def, err := ec.Catalog.StageDefinition(stage.StageDefinitionID)
	if err != nil {
		return "", err
	}
	return def.Policy(), nil
}

// CreateBreadcrumb appends a node for stage to the hand's trail and makes it
// the hand's current node. The node links back to the previous current node
// when stage's policy allows it, and the previous node links forward to it
// when the previous stage's policy is all.
func CreateBreadcrumb(ctx context.Context, ec *engine.Context, hand *models.Hand, stage *models.Stage) (*models.StageBreadcrumb, error) {
	def, err := ec.Catalog.StageDefinition(stage.StageDefinitionID)
	if err != nil {
		return nil, err
	}

	crumb := &models.StageBreadcrumb{
		ID:      uuid.New(),
		HandID:  hand.ID,
		StageID: stage.ID,
	}

	var last *models.StageBreadcrumb
	if hand.CurrentBreadcrumbID != nil {
		last, err = ec.Store.GetBreadcrumb(ctx, *hand.CurrentBreadcrumbID)
		if err != nil {
			return nil, fmt.Errorf("failed to load current breadcrumb: %w", err)
		}
		if def.Policy().Linked() {
			prev := last.ID
			crumb.PreviousID = &prev
		}
	}
	if err := ec.Store.CreateBreadcrumb(ctx, crumb); err != nil {
		return nil, fmt.Errorf("failed to create breadcrumb: %w", err)
	}

	if last != nil {
		policy, err := policyOf(ctx, ec, last.StageID)
		if err != nil {
			return nil, err
		}
		if policy == models.BreadcrumbAll {
			next := crumb.ID
			last.NextID = &next
			if err := ec.Store.UpdateBreadcrumb(ctx, last); err != nil {
				return nil, fmt.Errorf("failed to link breadcrumb: %w", err)
			}
		}
	}

	if err := Move(ctx, ec, hand, crumb); err != nil {
		return nil, err
	}
	return crumb, nil
}

// Move points the hand at an existing node of its trail.
func Move(ctx context.Context, ec *engine.Context, hand *models.Hand, crumb *models.StageBreadcrumb) error {
	id := crumb.ID
	hand.CurrentBreadcrumbID = &id
	if err := ec.Store.UpdateHand(ctx, hand); err != nil {
		return fmt.Errorf("failed to update hand breadcrumb: %w", err)
	}
	log.Debug().
		Str("hand_id", hand.ID.String()).
		Str("breadcrumb_id", id.String()).
		Msg("breadcrumb moved")
	return nil
}

func current(ctx context.Context, ec *engine.Context, hand *models.Hand) (*models.StageBreadcrumb, models.BreadcrumbPolicy, error) {
	_, def, err := ec.HandStage(ctx, hand)
	if err != nil {
		return nil, "", err
	}
	if hand.CurrentBreadcrumbID == nil {
		return nil, def.Policy(), nil
	}
	crumb, err := ec.Store.GetBreadcrumb(ctx, *hand.CurrentBreadcrumbID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load current breadcrumb: %w", err)
	}
	return crumb, def.Policy(), nil
}

// Back returns the node before the hand's current one, or nil when the
// current stage does not allow going back or there is nowhere to go.
func Back(ctx context.Context, ec *engine.Context, hand *models.Hand) (*models.StageBreadcrumb, error) {
	crumb, policy, err := current(ctx, ec, hand)
	if err != nil {
		return nil, err
	}
	if crumb == nil || !policy.Linked() || crumb.PreviousID == nil {
		return nil, nil
	}
	prev, err := ec.Store.GetBreadcrumb(ctx, *crumb.PreviousID)
	if err != nil {
		return nil, fmt.Errorf("failed to load previous breadcrumb: %w", err)
	}
	return prev, nil
}

// Forward returns the node after the hand's current one. Only stages with
// policy all keep forward links.
func Forward(ctx context.Context, ec *engine.Context, hand *models.Hand) (*models.StageBreadcrumb, error) {
	crumb, policy, err := current(ctx, ec, hand)
	if err != nil {
		return nil, err
	}
	if crumb == nil || policy != models.BreadcrumbAll || crumb.NextID == nil {
		return nil, nil
	}
	next, err := ec.Store.GetBreadcrumb(ctx, *crumb.NextID)
	if err != nil {
		return nil, fmt.Errorf("failed to load next breadcrumb: %w", err)
	}
	return next, nil
}
