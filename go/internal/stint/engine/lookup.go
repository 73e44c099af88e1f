package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/mcdev12/stint/go/internal/models"
)

// ErrHandNotStarted is returned for actions on a hand that was never placed
// on a module and stage.
var ErrHandNotStarted = errors.New("hand has not been started")

// HandModule resolves the hand's current module and its definition.
func (c *Context) HandModule(ctx context.Context, hand *models.Hand) (*models.Module, *models.ModuleDefinition, error) {
	if hand.CurrentModuleID == nil {
		return nil, nil, fmt.Errorf("hand %s: %w", hand.ID, ErrHandNotStarted)
	}
	mod, err := c.Store.GetModule(ctx, *hand.CurrentModuleID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load module: %w", err)
	}
	def, err := c.Catalog.ModuleDefinition(mod.ModuleDefinitionID)
	if err != nil {
		return nil, nil, err
	}
	return mod, def, nil
}

// HandStage resolves the hand's current stage and its definition.
func (c *Context) HandStage(ctx context.Context, hand *models.Hand) (*models.Stage, *models.StageDefinition, error) {
	if hand.StageID == nil {
		return nil, nil, fmt.Errorf("hand %s: %w", hand.ID, ErrHandNotStarted)
	}
	stage, err := c.Store.GetStage(ctx, *hand.StageID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load stage: %w", err)
	}
	def, err := c.Catalog.StageDefinition(stage.StageDefinitionID)
	if err != nil {
		return nil, nil, err
	}
	return stage, def, nil
}
