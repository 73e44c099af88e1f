// Package events holds the notification payloads produced by stint actions.
package events

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/mcdev12/stint/go/internal/models"
)

// Type names a notification event on the wire.
type Type string

const (
	TypeCurrentModule Type = "current_module"
	TypeUpdateAllVars Type = "update_all_vars"
	TypeCurrentStage  Type = "current_stage"
	TypeUpdateVar     Type = "update_var"
)

// rank fixes the delivery order within one batch.
var rank = map[Type]int{
	TypeCurrentModule: 0,
	TypeUpdateAllVars: 1,
	TypeCurrentStage:  2,
	TypeUpdateVar:     3,
}

// Event is one notification for a session.
type Event interface {
	Type() Type
}

// CurrentModule is sent when a hand switches module.
type CurrentModule struct {
	Name string `json:"current_module"`
}

// UpdateAllVars carries every variable visible to the hand after a module switch.
type UpdateAllVars struct {
	Snapshot map[string]any `json:"vars"`
}

// CurrentStage is sent when a hand lands on a new stage.
type CurrentStage struct {
	StageID uuid.UUID `json:"current_stage_id"`
	Name    string    `json:"current_stage"`
}

// UpdateVar is sent when a variable value actually changed.
type UpdateVar struct {
	Name  string       `json:"name"`
	Value any          `json:"value"`
	Scope models.Scope `json:"scope"`
}

func (CurrentModule) Type() Type { return TypeCurrentModule }
func (UpdateAllVars) Type() Type { return TypeUpdateAllVars }
func (CurrentStage) Type() Type  { return TypeCurrentStage }
func (UpdateVar) Type() Type     { return TypeUpdateVar }

// Ordered returns evs with module changes first, then the variable snapshot,
// then stage changes, then variable updates. Relative order within a type is
// preserved.
func Ordered(evs []Event) []Event {
	out := append([]Event(nil), evs...)
	sort.SliceStable(out, func(i, j int) bool {
		return rank[out[i].Type()] < rank[out[j].Type()]
	})
	return out
}

// SessionKey addresses one hand's client session.
func SessionKey(stintID, handID uuid.UUID) string {
	return fmt.Sprintf("stint.%s.hand.%s", stintID, handID)
}

type envelope struct {
	Event Type  `json:"event"`
	Data  Event `json:"data"`
}

// Encode serializes a batch so a transport can forward it as one message.
func Encode(evs []Event) ([]byte, error) {
	out := make([]envelope, len(evs))
	for i, ev := range evs {
		out[i] = envelope{Event: ev.Type(), Data: ev}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal events: %w", err)
	}
	return data, nil
}
