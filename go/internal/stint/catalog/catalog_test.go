package catalog

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mcdev12/stint/go/internal/stint/errs"
)

const sampleCatalog = `
modules:
  - slug: ultimatum
    name: Ultimatum
    start_stage: offer
    start_era: proposing
    eras: [proposing, responding]
    stages:
      - slug: offer
        name: Offer
        redirects:
          - order: 1
            next_stage: respond
      - slug: respond
        name: Respond
        era: responding
        breadcrumb_type: back
        redirects:
          - order: 1
            next_stage: done
      - slug: done
        name: Done
        end_stage: true
    variables:
      - name: offer
        scope: hand
        data_type: int
        default: 5
      - name: mood
        scope: team
        data_type: choice
        choices: [Happy, SAD]
      - name: earnings
        scope: hand
        data_type: float
        is_payoff: true
stints:
  - slug: bargaining
    name: Bargaining
    modules: [ultimatum]
specifications:
  - slug: bargaining-pairs
    stint_definition: bargaining
    team_size: 2
    max_team_size: 2
    variables:
      ultimatum:
        offer: 7
    module_specifications:
      - module: ultimatum
        hand_timeout: 5s
        stop_on_quit: false
`

func TestParseQualifiesIDs(t *testing.T) {
	c, err := Parse([]byte(sampleCatalog))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	st, err := c.StageDefinition("ultimatum/respond")
	if err != nil {
		t.Fatalf("StageDefinition: %v", err)
	}
	if st.ModuleDefinition != "ultimatum" {
		t.Fatalf("ModuleDefinition = %q", st.ModuleDefinition)
	}
	if st.Policy() != "back" {
		t.Fatalf("Policy = %q, want back", st.Policy())
	}
	if !st.SubmitRedirects() {
		t.Fatalf("redirect_on_submit should default to true")
	}

	offer, err := c.StageDefinition("ultimatum/offer")
	if err != nil {
		t.Fatalf("StageDefinition: %v", err)
	}
	if offer.Policy() != "all" {
		t.Fatalf("default breadcrumb policy = %q, want all", offer.Policy())
	}

	mood, err := c.VariableDefinition("ultimatum/mood")
	if err != nil {
		t.Fatalf("VariableDefinition: %v", err)
	}
	if mood.Choices[0] != "happy" || mood.Choices[1] != "sad" {
		t.Fatalf("choices not lowercased: %v", mood.Choices)
	}

	spec, err := c.Specification("bargaining-pairs")
	if err != nil {
		t.Fatalf("Specification: %v", err)
	}
	ms := spec.ModuleSpecification("ultimatum")
	if ms == nil || ms.HandTimeout != 5*time.Second {
		t.Fatalf("module specification not decoded: %+v", ms)
	}
	if ms.StopsOnQuit() {
		t.Fatalf("stop_on_quit should be false")
	}
	def, _ := c.VariableDefinition("ultimatum/offer")
	if v, ok := spec.SpecValue(def); !ok || v != 7 {
		t.Fatalf("SpecValue = %v, %v", v, ok)
	}
}

func TestParseRejectsInvalidDefinitions(t *testing.T) {
	cases := []struct {
		name    string
		replace [2]string
		want    string
	}{
		{"payoff must be float", [2]string{"data_type: float\n        is_payoff: true", "data_type: int\n        is_payoff: true"}, "payoff"},
		{"unknown redirect", [2]string{"next_stage: done", "next_stage: nowhere"}, "unknown stage"},
		{"team size bounds", [2]string{"max_team_size: 2", "max_team_size: 1"}, "max_team_size"},
		{"unknown module", [2]string{"modules: [ultimatum]", "modules: [ultimatum, dictator]"}, "dictator"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := strings.Replace(sampleCatalog, tc.replace[0], tc.replace[1], 1)
			_, err := Parse([]byte(doc))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !errors.Is(err, errs.ErrValidation) {
				t.Fatalf("err = %v, want validation error", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %q, want mention of %q", err, tc.want)
			}
		})
	}
}
