package models

import (
	"time"

	"github.com/google/uuid"
)

// HandStatus defines the status of a participant session.
type HandStatus string

const (
	HandStatusNone      HandStatus = ""
	HandStatusActive    HandStatus = "active"
	HandStatusTimedOut  HandStatus = "timedout"
	HandStatusQuit      HandStatus = "quit"
	HandStatusFinished  HandStatus = "finished"
	HandStatusCancelled HandStatus = "cancelled"
)

// Valid reports whether s is a status a hand can be moved to.
func (s HandStatus) Valid() bool {
	switch s {
	case HandStatusActive, HandStatusTimedOut, HandStatusQuit,
		HandStatusFinished, HandStatusCancelled:
		return true
	}
	return false
}

// Terminal is true for every assigned status except active.
func (s HandStatus) Terminal() bool {
	return s != HandStatusNone && s != HandStatusActive
}

// Frontend is the client surface a hand interacts through.
type Frontend string

const (
	FrontendWeb Frontend = "web"
	FrontendSMS Frontend = "sms"
)

// Hand is one participant's traversal of a stint.
type Hand struct {
	ID                  uuid.UUID  `json:"id"`
	StintID             uuid.UUID  `json:"stint_id"`
	UserID              *uuid.UUID `json:"user_id,omitempty"`
	RobotID             *uuid.UUID `json:"robot_id,omitempty"`
	Frontend            Frontend   `json:"frontend"`
	Status              HandStatus `json:"status"`
	CurrentModuleID     *uuid.UUID `json:"current_module_id,omitempty"`
	StageID             *uuid.UUID `json:"stage_id,omitempty"`
	EraID               string     `json:"era_id,omitempty"`
	CurrentTeamID       *uuid.UUID `json:"current_team_id,omitempty"`
	CurrentBreadcrumbID *uuid.UUID `json:"current_breadcrumb_id,omitempty"`
	LastSeen            *time.Time `json:"last_seen,omitempty"`
	CurrentPayoff       float64    `json:"current_payoff"`
	CreatedAt           time.Time  `json:"created_at"`
}

// Participant identifies who a hand acts for. Exactly one of UserID or RobotID
// is set.
type Participant struct {
	UserID  *uuid.UUID
	RobotID *uuid.UUID
}

// Robot reports whether the participant is robot driven.
func (p Participant) Robot() bool {
	return p.RobotID != nil
}

// Valid enforces the human XOR robot identity rule.
func (p Participant) Valid() bool {
	return (p.UserID == nil) != (p.RobotID == nil)
}

// Started reports whether the hand has been placed on a module and stage.
func (h *Hand) Started() bool {
	return h.CurrentModuleID != nil && h.StageID != nil
}
