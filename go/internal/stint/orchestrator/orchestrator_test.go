package orchestrator

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/mcdev12/stint/go/internal/models"
	"github.com/mcdev12/stint/go/internal/stint/errs"
	"github.com/mcdev12/stint/go/internal/stint/hands"
	"github.com/mcdev12/stint/go/internal/stint/stinttest"
	"github.com/mcdev12/stint/go/internal/stint/variables"
)

func started(t *testing.T, spec string, n int) (*stinttest.Fixture, *models.Stint, []*models.Hand) {
	t.Helper()
	f := stinttest.New(t)
	stint, hs := f.NewStint(t, spec, n)
	if _, err := Start(context.Background(), f.EC, stint.ID, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for i, h := range hs {
		hs[i] = f.Hand(t, h.ID)
	}
	return f, f.Stint(t, stint.ID), hs
}

func variable(t *testing.T, f *stinttest.Fixture, hand *models.Hand, name string) any {
	t.Helper()
	v, _, err := variables.ByName(context.Background(), f.EC, hand, name)
	if err != nil {
		t.Fatalf("ByName(%s): %v", name, err)
	}
	return v.Value
}

func TestStartPairsFourHands(t *testing.T) {
	ctx := context.Background()
	f := stinttest.New(t)
	stint, hs := f.NewStint(t, stinttest.SpecPairs, 4)
	initiator := uuid.New()

	placed, err := Start(ctx, f.EC, stint.ID, &initiator)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(placed) != 4 {
		t.Fatalf("placed %d hands", len(placed))
	}

	s := f.Stint(t, stint.ID)
	if s.Status != models.StintStatusRunning {
		t.Fatalf("status = %q", s.Status)
	}
	if s.Started == nil || !s.Started.Equal(stinttest.Epoch) {
		t.Fatalf("started = %v", s.Started)
	}
	if s.StartedBy == nil || *s.StartedBy != initiator {
		t.Fatalf("started by = %v", s.StartedBy)
	}

	teamList, _ := f.Store.ListTeams(ctx, stint.ID)
	if len(teamList) != 2 {
		t.Fatalf("formed %d teams, want 2", len(teamList))
	}
	for i, team := range teamList {
		members, _ := f.Store.ListTeamHands(ctx, team.ID)
		if len(members) != 2 {
			t.Fatalf("team %d has %d members", i, len(members))
		}
		if members[0].ID != hs[2*i].ID || members[1].ID != hs[2*i+1].ID {
			t.Fatalf("team %d members are not consecutive hands", i)
		}
		label, err := f.Store.GetVariable(ctx, team.ID, "intro/label")
		if err != nil || label.Value != "anon" {
			t.Fatalf("team %d label = %v, %v", i, label, err)
		}
	}

	mods, _ := f.Store.ListModules(ctx, stint.ID)
	if len(mods) != 2 || mods[0].ModuleDefinitionID != "intro" || mods[1].ModuleDefinitionID != "game" {
		t.Fatalf("modules = %v", mods)
	}
	pot, err := f.Store.GetVariable(ctx, mods[1].ID, "game/pot")
	if err != nil || pot.Value != 10.0 {
		t.Fatalf("pot = %v, %v", pot, err)
	}

	for _, h := range hs {
		h = f.Hand(t, h.ID)
		if h.Status != models.HandStatusActive {
			t.Fatalf("hand %s status = %q", h.ID, h.Status)
		}
		if got := f.StageSlug(t, h); got != "welcome" {
			t.Fatalf("hand %s stage = %q", h.ID, got)
		}
		offer, err := f.Store.GetVariable(ctx, h.ID, "game/offer")
		if err != nil || offer.Value != int64(7) {
			t.Fatalf("offer = %v, %v; want the specification value 7", offer, err)
		}
	}

	if len(f.Robots.Signals) != 1 || f.Robots.Signals[0] != stint.ID {
		t.Fatalf("robot signals = %v", f.Robots.Signals)
	}
}

func TestStartTwice(t *testing.T) {
	f, stint, _ := started(t, stinttest.SpecSolo, 1)
	_, err := Start(context.Background(), f.EC, stint.ID, nil)
	if !errors.Is(err, errs.ErrAlreadyStarted) {
		t.Fatalf("err = %v", err)
	}
}

func TestStartRollsBackOnRobotFailure(t *testing.T) {
	ctx := context.Background()
	f := stinttest.New(t)
	stint, hs := f.NewStint(t, stinttest.SpecPairs, 2)
	f.Robots.Err = errors.New("nats: no responders")

	_, err := Start(ctx, f.EC, stint.ID, nil)
	if !errors.Is(err, errs.ErrTransport) {
		t.Fatalf("err = %v, want TransportError", err)
	}
	if s := f.Stint(t, stint.ID); s.Status != models.StintStatusNone || s.StartedBy != nil {
		t.Fatalf("stint not rolled back: %+v", s)
	}
	if teamList, _ := f.Store.ListTeams(ctx, stint.ID); len(teamList) != 0 {
		t.Fatalf("%d teams survived the rollback", len(teamList))
	}
	if mods, _ := f.Store.ListModules(ctx, stint.ID); len(mods) != 0 {
		t.Fatalf("%d modules survived the rollback", len(mods))
	}
	if h := f.Hand(t, hs[0].ID); h.CurrentTeamID != nil {
		t.Fatalf("hand kept its team")
	}

	f.Robots.Err = nil
	if _, err := Start(ctx, f.EC, stint.ID, nil); err != nil {
		t.Fatalf("Start after recovery: %v", err)
	}
}

func TestStartDatasetValues(t *testing.T) {
	f, _, hs := started(t, stinttest.SpecDataset, 1)
	h := hs[0]

	game, _ := f.EC.Catalog.ModuleDefinition("game")
	offer, _ := f.Store.GetVariable(context.Background(), h.ID, game.Variable("offer").ID)
	if offer.Value != int64(9) {
		t.Fatalf("offer = %#v, want the last dataset row", offer.Value)
	}
	tags, _ := f.Store.GetVariable(context.Background(), h.ID, game.Variable("tags").ID)
	if !reflect.DeepEqual(tags.Value, []any{"y", "z"}) {
		t.Fatalf("tags = %#v", tags.Value)
	}
	if got := variable(t, f, h, "consent"); got != false {
		t.Fatalf("consent = %#v", got)
	}
}

func TestStop(t *testing.T) {
	ctx := context.Background()

	t.Run("not started", func(t *testing.T) {
		f := stinttest.New(t)
		stint, _ := f.NewStint(t, stinttest.SpecSolo, 1)
		if err := Stop(ctx, f.EC, stint.ID, nil); !errors.Is(err, errs.ErrNotStarted) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("running keeps hands", func(t *testing.T) {
		f, stint, hs := started(t, stinttest.SpecSolo, 1)
		actor := uuid.New()
		if err := Stop(ctx, f.EC, stint.ID, &actor); err != nil {
			t.Fatalf("Stop: %v", err)
		}
		s := f.Stint(t, stint.ID)
		if s.Ended == nil || s.StoppedBy == nil || *s.StoppedBy != actor {
			t.Fatalf("stop not recorded: %+v", s)
		}
		if h := f.Hand(t, hs[0].ID); h.Status != models.HandStatusActive {
			t.Fatalf("hand status = %q", h.Status)
		}
	})
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()
	f, stint, hs := started(t, stinttest.SpecPairs, 2)

	if err := SetStatus(ctx, f.EC, stint.ID, models.StintStatus("paused"), nil); !errors.Is(err, errs.ErrInvalidStatus) {
		t.Fatalf("err = %v", err)
	}

	if _, err := hands.SetStatus(ctx, f.EC, hs[0], models.HandStatusQuit); err != nil {
		t.Fatalf("hands.SetStatus: %v", err)
	}
	if err := SetStatus(ctx, f.EC, stint.ID, models.StintStatusFinished, nil); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if h := f.Hand(t, hs[0].ID); h.Status != models.HandStatusQuit {
		t.Fatalf("quit hand changed to %q", h.Status)
	}
	if h := f.Hand(t, hs[1].ID); h.Status != models.HandStatusCancelled {
		t.Fatalf("active hand = %q, want cancelled", h.Status)
	}
	if s := f.Stint(t, stint.ID); s.Ended == nil {
		t.Fatalf("ended not recorded")
	}

	if err := SetStatus(ctx, f.EC, stint.ID, models.StintStatusFinished, nil); err != nil {
		t.Fatalf("repeated SetStatus finished: %v", err)
	}
}

func TestTerminalStatusIsFinal(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		target models.StintStatus
	}{
		{name: "running", target: models.StintStatusRunning},
		{name: "starting", target: models.StintStatusStarting},
		{name: "finished", target: models.StintStatusFinished},
		{name: "panicked", target: models.StintStatusPanicked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, stint, hs := started(t, stinttest.SpecPairs, 2)
			if err := SetStatus(ctx, f.EC, stint.ID, models.StintStatusCancelled, nil); err != nil {
				t.Fatalf("SetStatus cancelled: %v", err)
			}
			ended := f.Stint(t, stint.ID).Ended

			err := SetStatus(ctx, f.EC, stint.ID, tt.target, nil)
			if !errors.Is(err, errs.ErrInvalidStatus) {
				t.Fatalf("SetStatus %s after cancel: err = %v", tt.target, err)
			}
			s := f.Stint(t, stint.ID)
			if s.Status != models.StintStatusCancelled {
				t.Fatalf("status = %q", s.Status)
			}
			if s.Ended == nil || !s.Ended.Equal(*ended) {
				t.Fatalf("ended changed: %v", s.Ended)
			}
			for _, h := range hs {
				if got := f.Hand(t, h.ID).Status; got != models.HandStatusCancelled {
					t.Fatalf("hand %s = %q", h.ID, got)
				}
			}

			if err := SetStatus(ctx, f.EC, stint.ID, models.StintStatusCancelled, nil); err != nil {
				t.Fatalf("repeated cancel: %v", err)
			}
		})
	}
}

func TestRunningDoesNotGoBack(t *testing.T) {
	ctx := context.Background()
	f, stint, _ := started(t, stinttest.SpecSolo, 1)

	if err := SetStatus(ctx, f.EC, stint.ID, models.StintStatusStarting, nil); !errors.Is(err, errs.ErrInvalidStatus) {
		t.Fatalf("err = %v", err)
	}
	if s := f.Stint(t, stint.ID); s.Status != models.StintStatusRunning {
		t.Fatalf("status = %q", s.Status)
	}
	if err := SetStatus(ctx, f.EC, stint.ID, models.StintStatusRunning, nil); err != nil {
		t.Fatalf("SetStatus running again: %v", err)
	}
}

func TestLastHandCancelsStint(t *testing.T) {
	ctx := context.Background()
	f, stint, hs := started(t, stinttest.SpecPairs, 2)

	var last hands.Cascade
	for _, h := range hs {
		c, err := hands.SetStatus(ctx, f.EC, h, models.HandStatusFinished)
		if err != nil {
			t.Fatalf("hands.SetStatus: %v", err)
		}
		last = c
	}
	if last != hands.CascadeCancel {
		t.Fatalf("cascade = %v", last)
	}

	cancelled, err := ApplyCascade(ctx, f.EC, stint.ID, last)
	if err != nil || !cancelled {
		t.Fatalf("ApplyCascade = %v, %v", cancelled, err)
	}
	if s := f.Stint(t, stint.ID); s.Status != models.StintStatusCancelled || s.Ended == nil {
		t.Fatalf("stint = %+v", s)
	}

	again, err := ApplyCascade(ctx, f.EC, stint.ID, last)
	if err != nil || again {
		t.Fatalf("second ApplyCascade = %v, %v", again, err)
	}
	if again, _ := ApplyCascade(ctx, f.EC, stint.ID, hands.CascadeForceCancel); again {
		t.Fatalf("force cancel applied to a cancelled stint")
	}
}

func TestJoinUser(t *testing.T) {
	ctx := context.Background()
	user := uuid.New()
	web := models.FrontendWeb

	t.Run("requires late arrival", func(t *testing.T) {
		f, stint, _ := started(t, stinttest.SpecPairs, 2)
		_, err := JoinUser(ctx, f.EC, stint.ID, models.Participant{UserID: &user}, web)
		if !errors.Is(err, errs.ErrValidation) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("requires a started stint", func(t *testing.T) {
		f := stinttest.New(t)
		stint, _ := f.NewStint(t, stinttest.SpecOpen, 1)
		_, err := JoinUser(ctx, f.EC, stint.ID, models.Participant{UserID: &user}, web)
		if !errors.Is(err, errs.ErrNotStarted) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("rejects ambiguous participants", func(t *testing.T) {
		f, stint, _ := started(t, stinttest.SpecOpen, 1)
		robot := uuid.New()
		_, err := JoinUser(ctx, f.EC, stint.ID, models.Participant{UserID: &user, RobotID: &robot}, web)
		if !errors.Is(err, errs.ErrValidation) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("joins the first team", func(t *testing.T) {
		f, stint, hs := started(t, stinttest.SpecOpen, 3)
		placed, err := JoinUser(ctx, f.EC, stint.ID, models.Participant{UserID: &user}, web)
		if err != nil {
			t.Fatalf("JoinUser: %v", err)
		}
		h := f.Hand(t, placed.Hand.ID)
		if h.CurrentTeamID == nil || *h.CurrentTeamID != *hs[0].CurrentTeamID {
			t.Fatalf("joined hand is not on the first team")
		}
		if h.Status != models.HandStatusActive || f.StageSlug(t, h) != "welcome" {
			t.Fatalf("joined hand not initialized: %+v", h)
		}
		mods, _ := f.Store.ListModules(ctx, stint.ID)
		if _, err := f.Store.GetVariable(ctx, h.ID, "game/offer"); err != nil {
			t.Fatalf("hand variables not realized for module %s: %v", mods[1].ModuleDefinitionID, err)
		}
		if placed.Transition == nil || placed.Transition.Module == nil {
			t.Fatalf("placement has no module transition")
		}
	})
}

func TestResetHand(t *testing.T) {
	ctx := context.Background()
	f, _, hs := started(t, stinttest.SpecOpen, 1)
	h := hs[0]

	v, _, err := variables.ByName(ctx, f.EC, h, "consent")
	if err != nil {
		t.Fatalf("ByName: %v", err)
	}
	if _, err := variables.Set(ctx, f.EC, v, true); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := hands.Submit(ctx, f.EC, h); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	placed, err := ResetHand(ctx, f.EC, h.ID)
	if err != nil {
		t.Fatalf("ResetHand: %v", err)
	}
	h = f.Hand(t, placed.Hand.ID)
	if got := f.StageSlug(t, h); got != "welcome" {
		t.Fatalf("stage after reset = %q", got)
	}
	if got := variable(t, f, h, "consent"); got != false {
		t.Fatalf("consent after reset = %#v", got)
	}
}
