package models

import (
	"fmt"
	"time"

	"github.com/mcdev12/stint/go/internal/stint/errs"
)

// Dataset is an imported table of per-session values keyed by variable name.
type Dataset struct {
	Headers []string   `yaml:"headers" json:"headers"`
	Rows    [][]string `yaml:"rows" json:"rows"`
}

// LastRow returns the final row of the dataset keyed by header, or nil when
// the dataset has no rows.
func (d *Dataset) LastRow() map[string]string {
	if d == nil || len(d.Rows) == 0 {
		return nil
	}
	row := d.Rows[len(d.Rows)-1]
	out := make(map[string]string, len(d.Headers))
	for i, h := range d.Headers {
		if i < len(row) {
			out[h] = row[i]
		}
	}
	return out
}

// ModuleSpecification holds per-module runtime settings.
type ModuleSpecification struct {
	Module          string        `yaml:"module" json:"module"`
	HandTimeout     time.Duration `yaml:"hand_timeout" json:"hand_timeout"`
	HandWarnTimeout time.Duration `yaml:"hand_warn_timeout" json:"hand_warn_timeout"`
	StopOnQuit      *bool         `yaml:"stop_on_quit,omitempty" json:"stop_on_quit,omitempty"`
	MinEarnings     *float64      `yaml:"min_earnings,omitempty" json:"min_earnings,omitempty"`
	MaxEarnings     *float64      `yaml:"max_earnings,omitempty" json:"max_earnings,omitempty"`
	TimeoutEarnings *float64      `yaml:"timeout_earnings,omitempty" json:"timeout_earnings,omitempty"`
}

// StopsOnQuit defaults to true when unset.
func (m *ModuleSpecification) StopsOnQuit() bool {
	return m.StopOnQuit == nil || *m.StopOnQuit
}

// StintSpecification configures how a stint definition is run.
type StintSpecification struct {
	Slug                 string                    `yaml:"slug" json:"slug"`
	Name                 string                    `yaml:"name" json:"name"`
	StintDefinition      string                    `yaml:"stint_definition" json:"stint_definition"`
	TeamSize             int                       `yaml:"team_size" json:"team_size"`
	MinTeamSize          int                       `yaml:"min_team_size" json:"min_team_size"`
	MaxTeamSize          int                       `yaml:"max_team_size" json:"max_team_size"`
	MinEarnings          *float64                  `yaml:"min_earnings,omitempty" json:"min_earnings,omitempty"`
	MaxEarnings          *float64                  `yaml:"max_earnings,omitempty" json:"max_earnings,omitempty"`
	LateArrival          bool                      `yaml:"late_arrival" json:"late_arrival"`
	Variables            map[string]map[string]any `yaml:"variables,omitempty" json:"variables,omitempty"`
	Dataset              *Dataset                  `yaml:"dataset,omitempty" json:"dataset,omitempty"`
	ModuleSpecifications []ModuleSpecification     `yaml:"module_specifications" json:"module_specifications"`
}

func (s *StintSpecification) GetName() string { return s.Name }
func (s *StintSpecification) GetSlug() string { return s.Slug }

// ModuleSpecification returns the settings for a module definition, or nil.
func (s *StintSpecification) ModuleSpecification(module string) *ModuleSpecification {
	for i := range s.ModuleSpecifications {
		if s.ModuleSpecifications[i].Module == module {
			return &s.ModuleSpecifications[i]
		}
	}
	return nil
}

// SpecValue returns the specification-level override for a variable.
func (s *StintSpecification) SpecValue(def *VariableDefinition) (any, bool) {
	vars, ok := s.Variables[def.ModuleDefinition]
	if !ok {
		return nil, false
	}
	v, ok := vars[def.Name]
	return v, ok
}

// Validate checks team size bounds and earnings ranges.
func (s *StintSpecification) Validate() error {
	if s.TeamSize < 1 {
		return errs.Validation("team_size must be at least 1, got %d", s.TeamSize)
	}
	if s.MaxTeamSize != 0 && s.MaxTeamSize < s.TeamSize {
		return errs.Validation("max_team_size (%d) must be greater than or equal to team_size (%d)", s.MaxTeamSize, s.TeamSize)
	}
	if s.MinTeamSize > s.TeamSize {
		return errs.Validation("min_team_size (%d) must be less than or equal to team_size (%d)", s.MinTeamSize, s.TeamSize)
	}
	if err := validateEarnings(s.MinEarnings, s.MaxEarnings); err != nil {
		return err
	}
	for _, ms := range s.ModuleSpecifications {
		if err := validateEarnings(ms.MinEarnings, ms.MaxEarnings); err != nil {
			return fmt.Errorf("module %s: %w", ms.Module, err)
		}
		if ms.HandTimeout < 0 || ms.HandWarnTimeout < 0 {
			return errs.Validation("module %s: timeouts cannot be negative", ms.Module)
		}
	}
	return nil
}

func validateEarnings(min, max *float64) error {
	if min != nil && max != nil && *min > *max {
		return errs.Validation("min_earnings (%g) cannot exceed max_earnings (%g)", *min, *max)
	}
	return nil
}
