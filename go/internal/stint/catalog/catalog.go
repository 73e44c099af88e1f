// Package catalog holds the read-only stint, module, stage and variable
// definitions the engine runs against.
package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mcdev12/stint/go/internal/models"
	"github.com/mcdev12/stint/go/internal/stint/errs"
)

// Catalog resolves definitions by id. Stage and variable ids are qualified
// with their module slug ("module/slug").
type Catalog interface {
	Specification(slug string) (*models.StintSpecification, error)
	StintDefinition(slug string) (*models.StintDefinition, error)
	ModuleDefinition(slug string) (*models.ModuleDefinition, error)
	StageDefinition(id string) (*models.StageDefinition, error)
	VariableDefinition(id string) (*models.VariableDefinition, error)
}

// File is the on-disk layout of a catalog.
type File struct {
	Modules        []models.ModuleDefinition   `yaml:"modules"`
	Stints         []models.StintDefinition    `yaml:"stints"`
	Specifications []models.StintSpecification `yaml:"specifications"`
}

// Static is an immutable, validated catalog.
type Static struct {
	specs     map[string]*models.StintSpecification
	stints    map[string]*models.StintDefinition
	modules   map[string]*models.ModuleDefinition
	stages    map[string]*models.StageDefinition
	variables map[string]*models.VariableDefinition
}

// Load reads and validates a catalog YAML file.
func Load(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Static, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return New(f)
}

// New indexes and validates the definitions in f.
func New(f File) (*Static, error) {
	c := &Static{
		specs:     make(map[string]*models.StintSpecification),
		stints:    make(map[string]*models.StintDefinition),
		modules:   make(map[string]*models.ModuleDefinition),
		stages:    make(map[string]*models.StageDefinition),
		variables: make(map[string]*models.VariableDefinition),
	}

	for i := range f.Modules {
		mod := &f.Modules[i]
		if err := c.addModule(mod); err != nil {
			return nil, fmt.Errorf("module %q: %w", mod.Slug, err)
		}
	}
	for i := range f.Stints {
		def := &f.Stints[i]
		if err := c.addStint(def); err != nil {
			return nil, fmt.Errorf("stint definition %q: %w", def.Slug, err)
		}
	}
	for i := range f.Specifications {
		spec := &f.Specifications[i]
		if err := c.addSpecification(spec); err != nil {
			return nil, fmt.Errorf("specification %q: %w", spec.Slug, err)
		}
	}
	return c, nil
}

func (c *Static) addModule(mod *models.ModuleDefinition) error {
	if mod.Slug == "" {
		return errs.Validation("slug is required")
	}
	if _, ok := c.modules[mod.Slug]; ok {
		return errs.Validation("duplicate module definition")
	}
	if mod.StartEra != "" && !mod.HasEra(mod.StartEra) {
		mod.Eras = append(mod.Eras, mod.StartEra)
	}
	if mod.Stage(mod.StartStage) == nil {
		return errs.Validation("start stage %q is not defined", mod.StartStage)
	}

	for i := range mod.Stages {
		st := &mod.Stages[i]
		st.ID = models.QualifiedID(mod.Slug, st.Slug)
		st.ModuleDefinition = mod.Slug
		switch st.Policy() {
		case models.BreadcrumbNone, models.BreadcrumbBack, models.BreadcrumbAll:
		default:
			return errs.Validation("stage %q: unknown breadcrumb type %q", st.Slug, st.Breadcrumb)
		}
		if st.Era != "" && !mod.HasEra(st.Era) {
			return errs.Validation("stage %q: era %q is not defined", st.Slug, st.Era)
		}
		for _, r := range st.Redirects {
			if mod.Stage(r.NextStage) == nil {
				return errs.Validation("stage %q: redirect to unknown stage %q", st.Slug, r.NextStage)
			}
		}
		if _, ok := c.stages[st.ID]; ok {
			return errs.Validation("duplicate stage %q", st.Slug)
		}
		c.stages[st.ID] = st
	}

	for i := range mod.Variables {
		v := &mod.Variables[i]
		v.ID = models.QualifiedID(mod.Slug, v.Name)
		v.ModuleDefinition = mod.Slug
		if err := validateVariable(v); err != nil {
			return fmt.Errorf("variable %q: %w", v.Name, err)
		}
		if _, ok := c.variables[v.ID]; ok {
			return errs.Validation("duplicate variable %q", v.Name)
		}
		c.variables[v.ID] = v
	}

	c.modules[mod.Slug] = mod
	return nil
}

func validateVariable(v *models.VariableDefinition) error {
	switch v.Scope {
	case models.ScopeHand, models.ScopeTeam, models.ScopeModule:
	default:
		return errs.Validation("unknown scope %q", v.Scope)
	}
	if !v.DataType.Valid() {
		return errs.Validation("unknown data type %q", v.DataType)
	}
	if v.IsPayoff && !v.Payoff() {
		return errs.Validation("payoff variables must be hand scoped floats")
	}
	if v.DataType == models.DataTypeChoice {
		if len(v.Choices) == 0 {
			return errs.Validation("choice variables need at least one choice item")
		}
		for i, item := range v.Choices {
			v.Choices[i] = strings.ToLower(item)
		}
	}
	return nil
}

func (c *Static) addStint(def *models.StintDefinition) error {
	if def.Slug == "" {
		return errs.Validation("slug is required")
	}
	if len(def.Modules) == 0 {
		return errs.Validation("at least one module is required")
	}
	for _, m := range def.Modules {
		if _, ok := c.modules[m]; !ok {
			return errs.Validation("unknown module definition %q", m)
		}
	}
	c.stints[def.Slug] = def
	return nil
}

func (c *Static) addSpecification(spec *models.StintSpecification) error {
	def, ok := c.stints[spec.StintDefinition]
	if !ok {
		return errs.Validation("unknown stint definition %q", spec.StintDefinition)
	}
	if err := spec.Validate(); err != nil {
		return err
	}
	for _, ms := range spec.ModuleSpecifications {
		if !contains(def.Modules, ms.Module) {
			return errs.Validation("module specification for %q which is not part of %q", ms.Module, def.Slug)
		}
	}
	for module, vars := range spec.Variables {
		mod, ok := c.modules[module]
		if !ok || !contains(def.Modules, module) {
			return errs.Validation("variables given for unknown module %q", module)
		}
		for name := range vars {
			if mod.Variable(name) == nil {
				return errs.Validation("module %q has no variable %q", module, name)
			}
		}
	}
	c.specs[spec.Slug] = spec
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (c *Static) Specification(slug string) (*models.StintSpecification, error) {
	if s, ok := c.specs[slug]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("stint specification %q not found", slug)
}

func (c *Static) StintDefinition(slug string) (*models.StintDefinition, error) {
	if d, ok := c.stints[slug]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("stint definition %q not found", slug)
}

func (c *Static) ModuleDefinition(slug string) (*models.ModuleDefinition, error) {
	if d, ok := c.modules[slug]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("module definition %q not found", slug)
}

func (c *Static) StageDefinition(id string) (*models.StageDefinition, error) {
	if d, ok := c.stages[id]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("stage definition %q not found", id)
}

func (c *Static) VariableDefinition(id string) (*models.VariableDefinition, error) {
	if d, ok := c.variables[id]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("variable definition %q not found", id)
}

// Specifications lists every specification slug.
func (c *Static) Specifications() []string {
	out := make([]string, 0, len(c.specs))
	for slug := range c.specs {
		out = append(out, slug)
	}
	return out
}

var _ Catalog = (*Static)(nil)
