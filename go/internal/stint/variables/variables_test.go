package variables

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/mcdev12/stint/go/internal/models"
	"github.com/mcdev12/stint/go/internal/stint/errs"
	"github.com/mcdev12/stint/go/internal/stint/stinttest"
)

type env struct {
	f      *stinttest.Fixture
	module *models.Module
	team   *models.Team
	hand   *models.Hand
}

func setup(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	f := stinttest.New(t)
	stint, hands := f.NewStint(t, stinttest.SpecPairs, 1)

	mod := &models.Module{ID: uuid.New(), StintID: stint.ID, ModuleDefinitionID: "game", Order: 1}
	if err := f.Store.CreateModule(ctx, mod); err != nil {
		t.Fatalf("CreateModule: %v", err)
	}
	team := &models.Team{ID: uuid.New(), StintID: stint.ID, Name: "team-0"}
	if err := f.Store.CreateTeam(ctx, team); err != nil {
		t.Fatalf("CreateTeam: %v", err)
	}
	if err := f.Store.AddTeamHand(ctx, team.ID, hands[0].ID); err != nil {
		t.Fatalf("AddTeamHand: %v", err)
	}
	hand := hands[0]
	hand.CurrentModuleID = &mod.ID
	hand.CurrentTeamID = &team.ID
	if err := f.Store.UpdateHand(ctx, hand); err != nil {
		t.Fatalf("UpdateHand: %v", err)
	}
	return &env{f: f, module: mod, team: team, hand: hand}
}

func (e *env) def(t *testing.T, name string) *models.VariableDefinition {
	t.Helper()
	d, err := e.f.EC.Catalog.VariableDefinition("game/" + name)
	if err != nil {
		t.Fatalf("VariableDefinition: %v", err)
	}
	return d
}

func (e *env) realize(t *testing.T, name string, r Realization) *models.Variable {
	t.Helper()
	d := e.def(t, name)
	owner := e.hand.ID
	switch d.Scope {
	case models.ScopeTeam:
		owner = e.team.ID
	case models.ScopeModule:
		owner = e.module.ID
	}
	created, err := Realize(context.Background(), e.f.EC, d, e.module.ID, []uuid.UUID{owner}, r)
	if err != nil {
		t.Fatalf("Realize(%s): %v", name, err)
	}
	if len(created) != 1 {
		t.Fatalf("Realize(%s) created %d variables", name, len(created))
	}
	return created[0]
}

func TestRealizePriority(t *testing.T) {
	cases := []struct {
		name string
		r    Realization
		want any
	}{
		{"default", Realization{}, int64(5)},
		{"specification value", Realization{Spec: 7, HasSpec: true}, int64(7)},
		{"override beats specification", Realization{Override: "9", HasOverride: true, Spec: 7, HasSpec: true}, int64(9)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := setup(t)
			v := e.realize(t, "offer", tc.r)
			if v.Value != tc.want {
				t.Fatalf("value = %#v, want %#v", v.Value, tc.want)
			}
		})
	}
}

func TestRealizeSkipsExistingOwners(t *testing.T) {
	e := setup(t)
	e.realize(t, "offer", Realization{})

	created, err := Realize(context.Background(), e.f.EC, e.def(t, "offer"), e.module.ID, []uuid.UUID{e.hand.ID}, Realization{Spec: 1, HasSpec: true})
	if err != nil {
		t.Fatalf("Realize: %v", err)
	}
	if len(created) != 0 {
		t.Fatalf("expected no new variables, got %d", len(created))
	}
	v, _ := e.f.Store.GetVariable(context.Background(), e.hand.ID, "game/offer")
	if v.Value != int64(5) {
		t.Fatalf("existing value overwritten: %#v", v.Value)
	}
}

func TestRealizeWithoutOwners(t *testing.T) {
	e := setup(t)
	_, err := Realize(context.Background(), e.f.EC, e.def(t, "offer"), e.module.ID, nil, Realization{})
	if !errors.Is(err, errs.ErrScope) {
		t.Fatalf("err = %v, want ScopeError", err)
	}
}

func TestSetIsIdempotent(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	v := e.realize(t, "offer", Realization{})

	changed, err := Set(ctx, e.f.EC, v, 3)
	if err != nil || !changed {
		t.Fatalf("first Set = %v, %v; want changed", changed, err)
	}
	changed, err = Set(ctx, e.f.EC, v, 3)
	if err != nil || changed {
		t.Fatalf("second Set = %v, %v; want unchanged", changed, err)
	}
	changed, err = Set(ctx, e.f.EC, v, "3")
	if err != nil || changed {
		t.Fatalf("Set with equivalent string = %v, %v; want unchanged", changed, err)
	}
	if v.Value != int64(3) {
		t.Fatalf("value = %#v", v.Value)
	}
}

func TestSetEmptyResetsToDefault(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	v := e.realize(t, "offer", Realization{Spec: 8, HasSpec: true})

	changed, err := Set(ctx, e.f.EC, v, "")
	if err != nil || !changed {
		t.Fatalf("Set = %v, %v", changed, err)
	}
	if v.Value != int64(5) {
		t.Fatalf("value = %#v, want default 5", v.Value)
	}
}

func TestSetChoiceIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	v := e.realize(t, "mood", Realization{Spec: "b", HasSpec: true})

	changed, err := Set(ctx, e.f.EC, v, "A")
	if err != nil || !changed {
		t.Fatalf("Set(A) = %v, %v", changed, err)
	}
	stored, _ := e.f.Store.GetVariable(ctx, e.team.ID, "game/mood")
	if stored.Value != "a" {
		t.Fatalf("stored %#v, want \"a\"", stored.Value)
	}

	_, err = Set(ctx, e.f.EC, v, "c")
	if !errors.Is(err, errs.ErrValue) {
		t.Fatalf("Set(c) err = %v, want ValueError", err)
	}
}

func TestSetStageValue(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	v := e.realize(t, "next", Realization{})
	if _, err := Set(ctx, e.f.EC, v, "respond"); err != nil {
		t.Fatalf("Set(respond): %v", err)
	}
	if _, err := Set(ctx, e.f.EC, v, "nowhere"); !errors.Is(err, errs.ErrValue) {
		t.Fatalf("err = %v, want ValueError", err)
	}
}

func TestSetRejectsBadType(t *testing.T) {
	e := setup(t)
	v := e.realize(t, "offer", Realization{})
	_, err := Set(context.Background(), e.f.EC, v, "lots")
	if !errors.Is(err, errs.ErrType) {
		t.Fatalf("err = %v, want TypeError", err)
	}
}

type positive struct{}

func (positive) Validate(def *models.VariableDefinition, value any) error {
	if value.(int64) < 0 {
		return errors.New("must be positive")
	}
	return nil
}

func TestSetRunsAttachedValidator(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	v := e.realize(t, "offer", Realization{})

	d := e.def(t, "offer")
	d.Validator = "positive"

	if _, err := Set(ctx, e.f.EC, v, -1); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("unregistered validator err = %v, want ValidationError", err)
	}
	e.f.EC.Validators["positive"] = positive{}
	if _, err := Set(ctx, e.f.EC, v, -1); !errors.Is(err, errs.ErrValue) {
		t.Fatalf("err = %v, want ValueError", err)
	}
	if _, err := Set(ctx, e.f.EC, v, 2); err != nil {
		t.Fatalf("Set(2): %v", err)
	}
}

func TestResetPayoff(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	earnings := e.realize(t, "earnings", Realization{})
	offer := e.realize(t, "offer", Realization{})

	if err := ResetPayoff(ctx, e.f.EC, offer); !errors.Is(err, errs.ErrInvariant) {
		t.Fatalf("err = %v, want InvariantError", err)
	}

	if _, err := Set(ctx, e.f.EC, earnings, 4.5); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := ResetPayoff(ctx, e.f.EC, earnings); err != nil {
		t.Fatalf("ResetPayoff: %v", err)
	}
	if earnings.Value != 0.0 {
		t.Fatalf("value = %#v, want 0", earnings.Value)
	}
}

func TestSnapshotLayersScopes(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	e.realize(t, "offer", Realization{})
	e.realize(t, "mood", Realization{})
	e.realize(t, "pot", Realization{})
	e.realize(t, "tags", Realization{Override: `["x"]`, HasOverride: true})

	snap, err := Snapshot(ctx, e.f.EC, e.hand)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	want := map[string]any{
		"offer": int64(5),
		"mood":  "a",
		"pot":   10.0,
		"tags":  []any{"x"},
	}
	if !reflect.DeepEqual(snap, want) {
		t.Fatalf("Snapshot = %#v, want %#v", snap, want)
	}
}

func TestByName(t *testing.T) {
	e := setup(t)
	e.realize(t, "pot", Realization{})

	v, d, err := ByName(context.Background(), e.f.EC, e.hand, "pot")
	if err != nil {
		t.Fatalf("ByName: %v", err)
	}
	if d.Scope != models.ScopeModule || v.OwnerID != e.module.ID {
		t.Fatalf("resolved wrong owner %s for %s", v.OwnerID, d.ID)
	}
	if _, _, err := ByName(context.Background(), e.f.EC, e.hand, "missing"); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}
