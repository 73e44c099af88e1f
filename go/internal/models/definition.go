package models

// BreadcrumbPolicy controls how a stage participates in navigation history.
type BreadcrumbPolicy string

const (
	BreadcrumbNone BreadcrumbPolicy = "none"
	BreadcrumbBack BreadcrumbPolicy = "back"
	BreadcrumbAll  BreadcrumbPolicy = "all"
)

// Linked reports whether a node of this policy links back to its predecessor.
func (p BreadcrumbPolicy) Linked() bool {
	return p == BreadcrumbBack || p == BreadcrumbAll
}

// StintDefinition is the ordered list of modules a stint runs through.
type StintDefinition struct {
	Slug    string   `yaml:"slug" json:"slug"`
	Name    string   `yaml:"name" json:"name"`
	Modules []string `yaml:"modules" json:"modules"`
}

func (d *StintDefinition) GetName() string { return d.Name }
func (d *StintDefinition) GetSlug() string { return d.Slug }

// ModuleDefinition describes one module: its stages, eras and variables.
type ModuleDefinition struct {
	Slug       string               `yaml:"slug" json:"slug"`
	Name       string               `yaml:"name" json:"name"`
	StartStage string               `yaml:"start_stage" json:"start_stage"`
	StartEra   string               `yaml:"start_era" json:"start_era"`
	Eras       []string             `yaml:"eras" json:"eras"`
	Stages     []StageDefinition    `yaml:"stages" json:"stages"`
	Variables  []VariableDefinition `yaml:"variables" json:"variables"`
}

func (d *ModuleDefinition) GetName() string { return d.Name }
func (d *ModuleDefinition) GetSlug() string { return d.Slug }

// Stage returns the stage definition with the given slug, or nil.
func (d *ModuleDefinition) Stage(slug string) *StageDefinition {
	for i := range d.Stages {
		if d.Stages[i].Slug == slug {
			return &d.Stages[i]
		}
	}
	return nil
}

// Variable returns the variable definition with the given name, or nil.
func (d *ModuleDefinition) Variable(name string) *VariableDefinition {
	for i := range d.Variables {
		if d.Variables[i].Name == name {
			return &d.Variables[i]
		}
	}
	return nil
}

// HasEra reports whether era belongs to this module definition.
func (d *ModuleDefinition) HasEra(era string) bool {
	for _, e := range d.Eras {
		if e == era {
			return true
		}
	}
	return false
}

// Redirect is an ordered, optionally conditional, edge to another stage of the
// same module.
type Redirect struct {
	Order     int    `yaml:"order" json:"order"`
	Condition string `yaml:"condition,omitempty" json:"condition,omitempty"`
	NextStage string `yaml:"next_stage" json:"next_stage"`
}

// StageDefinition describes one stage of a module.
type StageDefinition struct {
	ID               string           `yaml:"-" json:"id"`
	ModuleDefinition string           `yaml:"-" json:"module_definition"`
	Slug             string           `yaml:"slug" json:"slug"`
	Name             string           `yaml:"name" json:"name"`
	Breadcrumb       BreadcrumbPolicy `yaml:"breadcrumb_type" json:"breadcrumb_type"`
	EndStage         bool             `yaml:"end_stage" json:"end_stage"`
	PreAction        string           `yaml:"pre_action,omitempty" json:"pre_action,omitempty"`
	RedirectOnSubmit *bool            `yaml:"redirect_on_submit,omitempty" json:"redirect_on_submit,omitempty"`
	Era              string           `yaml:"era,omitempty" json:"era,omitempty"`
	Redirects        []Redirect       `yaml:"redirects" json:"redirects"`
}

func (d *StageDefinition) GetName() string { return d.Name }
func (d *StageDefinition) GetSlug() string { return d.Slug }

// SubmitRedirects defaults to true when unset.
func (d *StageDefinition) SubmitRedirects() bool {
	return d.RedirectOnSubmit == nil || *d.RedirectOnSubmit
}

// Policy defaults to "all" when unset.
func (d *StageDefinition) Policy() BreadcrumbPolicy {
	if d.Breadcrumb == "" {
		return BreadcrumbAll
	}
	return d.Breadcrumb
}

// VariableDefinition is the shared, read-only description of a variable.
type VariableDefinition struct {
	ID               string   `yaml:"-" json:"id"`
	ModuleDefinition string   `yaml:"-" json:"module_definition"`
	Name             string   `yaml:"name" json:"name"`
	Scope            Scope    `yaml:"scope" json:"scope"`
	DataType         DataType `yaml:"data_type" json:"data_type"`
	Default          any      `yaml:"default,omitempty" json:"default,omitempty"`
	Choices          []string `yaml:"choices,omitempty" json:"choices,omitempty"`
	Validator        string   `yaml:"validator,omitempty" json:"validator,omitempty"`
	IsPayoff         bool     `yaml:"is_payoff" json:"is_payoff"`
	IsOutputData     bool     `yaml:"is_output_data" json:"is_output_data"`
}

func (d *VariableDefinition) GetName() string { return d.Name }

// Payoff reports whether the definition is a valid payoff variable.
func (d *VariableDefinition) Payoff() bool {
	return d.IsPayoff && d.Scope == ScopeHand && d.DataType == DataTypeFloat
}

// EraID qualifies an era name with the module definition it belongs to.
func (d *ModuleDefinition) EraID(name string) string {
	if name == "" {
		return ""
	}
	return d.Slug + "/" + name
}

// QualifiedID joins a module definition slug and a member slug.
func QualifiedID(module, slug string) string {
	return module + "/" + slug
}
