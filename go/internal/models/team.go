package models

import "github.com/google/uuid"

// Team groups hands that advance through eras together.
type Team struct {
	ID      uuid.UUID `json:"id"`
	StintID uuid.UUID `json:"stint_id"`
	Name    string    `json:"name"`
	EraID   string    `json:"era_id,omitempty"`
}

// Module is a realized module definition inside a stint.
type Module struct {
	ID                 uuid.UUID `json:"id"`
	StintID            uuid.UUID `json:"stint_id"`
	ModuleDefinitionID string    `json:"module_definition_id"`
	Order              int       `json:"order"`
}

// Stage is a realized stage definition. A stage instance is reused when a hand
// navigates back to it, which is what keeps its pre-action from running twice.
type Stage struct {
	ID                uuid.UUID `json:"id"`
	StageDefinitionID string    `json:"stage_definition_id"`
	PreActionStarted  bool      `json:"preaction_started"`
}

// StageBreadcrumb is a node in a hand's navigation trail.
type StageBreadcrumb struct {
	ID         uuid.UUID  `json:"id"`
	HandID     uuid.UUID  `json:"hand_id"`
	StageID    uuid.UUID  `json:"stage_id"`
	PreviousID *uuid.UUID `json:"previous_id,omitempty"`
	NextID     *uuid.UUID `json:"next_id,omitempty"`
}
