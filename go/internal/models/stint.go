package models

import (
	"time"

	"github.com/google/uuid"
)

// StintStatus defines the lifecycle status of a stint. The zero value means the
// stint has been realized but never started.
type StintStatus string

const (
	StintStatusNone      StintStatus = ""
	StintStatusStarting  StintStatus = "starting"
	StintStatusRunning   StintStatus = "running"
	StintStatusFinished  StintStatus = "finished"
	StintStatusCancelled StintStatus = "cancelled"
	StintStatusPanicked  StintStatus = "panicked"
)

// Valid reports whether s is a recognized stint status.
func (s StintStatus) Valid() bool {
	switch s {
	case StintStatusNone, StintStatusStarting, StintStatusRunning,
		StintStatusFinished, StintStatusCancelled, StintStatusPanicked:
		return true
	}
	return false
}

// Terminal reports whether no further lifecycle transitions are allowed.
func (s StintStatus) Terminal() bool {
	return s == StintStatusFinished || s == StintStatusCancelled || s == StintStatusPanicked
}

// Stint is one execution of a stint specification.
type Stint struct {
	ID              uuid.UUID   `json:"id"`
	SpecificationID string      `json:"specification_id"`
	Status          StintStatus `json:"status"`
	LateArrival     bool        `json:"late_arrival"`
	StartedBy       *uuid.UUID  `json:"started_by,omitempty"`
	StoppedBy       *uuid.UUID  `json:"stopped_by,omitempty"`
	Started         *time.Time  `json:"started,omitempty"`
	Ended           *time.Time  `json:"ended,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}
