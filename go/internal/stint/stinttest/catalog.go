// Package stinttest provides a fixture catalog, an in-memory engine context
// and recording collaborators for tests.
package stinttest

import (
	"time"

	"github.com/mcdev12/stint/go/internal/models"
	"github.com/mcdev12/stint/go/internal/stint/catalog"
)

// Specification slugs defined by Catalog.
const (
	SpecPairs   = "bargaining-pairs"
	SpecOpen    = "bargaining-open"
	SpecDataset = "bargaining-dataset"
	SpecSolo    = "bargaining-solo"
)

func boolPtr(b bool) *bool { return &b }

func floatPtr(f float64) *float64 { return &f }

// Catalog builds the two-module "bargaining" fixture:
//
//	intro: welcome -> rules -> intro-end (end stage)
//	game:  offer (pre-action deal) -> respond (back policy, era responding)
//	       -> done (end stage); offer redirects straight to done when the
//	       "fast" condition holds
func Catalog() *catalog.Static {
	f := catalog.File{
		Modules: []models.ModuleDefinition{
			{
				Slug:       "intro",
				Name:       "Introduction",
				StartStage: "welcome",
				StartEra:   "arrival",
				Eras:       []string{"arrival"},
				Stages: []models.StageDefinition{
					{Slug: "welcome", Name: "Welcome", Redirects: []models.Redirect{{Order: 1, NextStage: "rules"}}},
					{Slug: "rules", Name: "Rules", Redirects: []models.Redirect{{Order: 1, NextStage: "intro-end"}}},
					{Slug: "intro-end", Name: "Intro end", EndStage: true},
				},
				Variables: []models.VariableDefinition{
					{Name: "consent", Scope: models.ScopeHand, DataType: models.DataTypeBool, Default: false},
					{Name: "label", Scope: models.ScopeTeam, DataType: models.DataTypeStr, Default: "anon"},
					{Name: "round", Scope: models.ScopeModule, DataType: models.DataTypeInt, Default: 1},
				},
			},
			{
				Slug:       "game",
				Name:       "Game",
				StartStage: "offer",
				StartEra:   "proposing",
				Eras:       []string{"proposing", "responding"},
				Stages: []models.StageDefinition{
					{
						Slug:      "offer",
						Name:      "Offer",
						PreAction: "deal",
						Redirects: []models.Redirect{
							{Order: 2, NextStage: "respond"},
							{Order: 1, Condition: "fast", NextStage: "done"},
						},
					},
					{
						Slug:       "respond",
						Name:       "Respond",
						Breadcrumb: models.BreadcrumbBack,
						Era:        "responding",
						Redirects:  []models.Redirect{{Order: 1, NextStage: "done"}},
					},
					{Slug: "wait", Name: "Wait", Breadcrumb: models.BreadcrumbNone, RedirectOnSubmit: boolPtr(false)},
					{Slug: "done", Name: "Done", EndStage: true},
				},
				Variables: []models.VariableDefinition{
					{Name: "offer", Scope: models.ScopeHand, DataType: models.DataTypeInt, Default: 5},
					{Name: "mood", Scope: models.ScopeTeam, DataType: models.DataTypeChoice, Choices: []string{"a", "b"}, Default: "a"},
					{Name: "pot", Scope: models.ScopeModule, DataType: models.DataTypeFloat, Default: 10.0},
					{Name: "earnings", Scope: models.ScopeHand, DataType: models.DataTypeFloat, Default: 0.0, IsPayoff: true},
					{Name: "bonus", Scope: models.ScopeHand, DataType: models.DataTypeFloat, Default: 0.0, IsPayoff: true},
					{Name: "tags", Scope: models.ScopeHand, DataType: models.DataTypeList, Default: "[]"},
					{Name: "next", Scope: models.ScopeHand, DataType: models.DataTypeStage, Default: "offer"},
				},
			},
		},
		Stints: []models.StintDefinition{
			{Slug: "bargaining", Name: "Bargaining", Modules: []string{"intro", "game"}},
		},
		Specifications: []models.StintSpecification{
			{
				Slug:            SpecPairs,
				StintDefinition: "bargaining",
				TeamSize:        2,
				MaxEarnings:     floatPtr(20),
				Variables:       map[string]map[string]any{"game": {"offer": 7}},
				ModuleSpecifications: []models.ModuleSpecification{
					{Module: "intro", HandTimeout: 5 * time.Second, StopOnQuit: boolPtr(false)},
					{Module: "game", HandTimeout: 5 * time.Second, StopOnQuit: boolPtr(true), MaxEarnings: floatPtr(15)},
				},
			},
			{
				Slug:            SpecOpen,
				StintDefinition: "bargaining",
				TeamSize:        2,
				LateArrival:     true,
				ModuleSpecifications: []models.ModuleSpecification{
					{Module: "intro", HandTimeout: 5 * time.Second, StopOnQuit: boolPtr(false)},
				},
			},
			{
				Slug:            SpecDataset,
				StintDefinition: "bargaining",
				TeamSize:        1,
				Variables:       map[string]map[string]any{"game": {"offer": 7}},
				Dataset: &models.Dataset{
					Headers: []string{"offer", "tags"},
					Rows:    [][]string{{"3", `["x"]`}, {"9", `["y","z"]`}},
				},
			},
			{
				Slug:            SpecSolo,
				StintDefinition: "bargaining",
				TeamSize:        1,
			},
		},
	}
	c, err := catalog.New(f)
	if err != nil {
		panic(err)
	}
	return c
}
