package teams

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"

	"github.com/mcdev12/stint/go/internal/models"
	"github.com/mcdev12/stint/go/internal/stint/stinttest"
)

func TestPartition(t *testing.T) {
	hands := make([]*models.Hand, 5)
	for i := range hands {
		hands[i] = &models.Hand{}
	}
	cases := []struct {
		size int
		want []int
	}{
		{1, []int{1, 1, 1, 1, 1}},
		{2, []int{2, 2, 1}},
		{5, []int{5}},
		{8, []int{5}},
		{0, []int{1, 1, 1, 1, 1}},
	}
	for _, tc := range cases {
		groups := Partition(hands, tc.size)
		if len(groups) != len(tc.want) {
			t.Fatalf("size %d: %d groups, want %d", tc.size, len(groups), len(tc.want))
		}
		for i, g := range groups {
			if len(g) != tc.want[i] {
				t.Fatalf("size %d: group %d has %d hands, want %d", tc.size, i, len(g), tc.want[i])
			}
		}
	}
}

func TestFormPairs(t *testing.T) {
	ctx := context.Background()
	f := stinttest.New(t)
	stint, hands := f.NewStint(t, stinttest.SpecPairs, 4)

	teams, err := Form(ctx, f.EC, stint, hands, 2)
	if err != nil {
		t.Fatalf("Form: %v", err)
	}
	if len(teams) != 2 {
		t.Fatalf("formed %d teams, want 2", len(teams))
	}
	for i, team := range teams {
		members, err := f.Store.ListTeamHands(ctx, team.ID)
		if err != nil {
			t.Fatalf("ListTeamHands: %v", err)
		}
		if len(members) != 2 {
			t.Fatalf("team %s has %d members", team.Name, len(members))
		}
		for _, m := range members {
			if m.CurrentTeamID == nil || *m.CurrentTeamID != team.ID {
				t.Fatalf("hand %s not pointing at team %d", m.ID, i)
			}
		}
	}
}

func TestFormLateArrival(t *testing.T) {
	ctx := context.Background()
	f := stinttest.New(t)
	stint, hands := f.NewStint(t, stinttest.SpecOpen, 3)

	teams, err := Form(ctx, f.EC, stint, hands, 2)
	if err != nil {
		t.Fatalf("Form: %v", err)
	}
	if len(teams) != 1 || teams[0].Name != "team-0" {
		t.Fatalf("late arrival formed %d teams", len(teams))
	}
	members, _ := f.Store.ListTeamHands(ctx, teams[0].ID)
	if len(members) != 3 {
		t.Fatalf("team has %d members, want 3", len(members))
	}
}

func TestSynchronize(t *testing.T) {
	ctx := context.Background()
	f := stinttest.New(t)
	stint, hands := f.NewStint(t, stinttest.SpecPairs, 2)
	teams, err := Form(ctx, f.EC, stint, hands, 2)
	if err != nil {
		t.Fatalf("Form: %v", err)
	}
	team := teams[0]

	setHandEra := func(h *models.Hand, era string) {
		t.Helper()
		h.EraID = era
		if err := f.Store.UpdateHand(ctx, h); err != nil {
			t.Fatalf("UpdateHand: %v", err)
		}
	}
	teamEra := func() string {
		t.Helper()
		got, err := f.Store.GetTeam(ctx, team.ID)
		if err != nil {
			t.Fatalf("GetTeam: %v", err)
		}
		return got.EraID
	}

	setHandEra(hands[0], "game/proposing")
	ok, err := Synchronize(ctx, f.EC, team.ID, "game/proposing")
	if err != nil || ok {
		t.Fatalf("Synchronize with one member behind = %v, %v", ok, err)
	}

	setHandEra(hands[1], "game/proposing")
	ok, err = Synchronize(ctx, f.EC, team.ID, "game/proposing")
	if err != nil || !ok {
		t.Fatalf("Synchronize with all members = %v, %v", ok, err)
	}
	if got := teamEra(); got != "game/proposing" {
		t.Fatalf("team era = %q", got)
	}

	setHandEra(hands[0], "game/responding")
	setHandEra(hands[1], "game/responding")
	if ok, _ := Synchronize(ctx, f.EC, team.ID, "game/responding"); !ok {
		t.Fatalf("expected team to advance to responding")
	}

	setHandEra(hands[0], "intro/arrival")
	setHandEra(hands[1], "intro/arrival")
	ok, err = Synchronize(ctx, f.EC, team.ID, "intro/arrival")
	if err != nil || ok {
		t.Fatalf("Synchronize to an earlier era = %v, %v", ok, err)
	}
	if got := teamEra(); got != "game/responding" {
		t.Fatalf("team era moved backwards to %q", got)
	}
}

func TestSynchronizeConcurrentMembers(t *testing.T) {
	ctx := context.Background()
	for run := 0; run < 20; run++ {
		f := stinttest.New(t)
		stint, hands := f.NewStint(t, stinttest.SpecOpen, 6)
		teams, err := Form(ctx, f.EC, stint, hands, 2)
		if err != nil {
			t.Fatalf("Form: %v", err)
		}
		team := teams[0]

		var (
			wg       sync.WaitGroup
			advanced atomic.Int32
			failed   = make(chan error, len(hands))
		)
		for _, h := range hands {
			wg.Add(1)
			go func(id uuid.UUID) {
				defer wg.Done()
				unlock := f.EC.Locks.Teams.Lock(team.ID)
				defer unlock()

				h, err := f.Store.GetHand(ctx, id)
				if err != nil {
					failed <- err
					return
				}
				h.EraID = "game/proposing"
				if err := f.Store.UpdateHand(ctx, h); err != nil {
					failed <- err
					return
				}
				ok, err := Synchronize(ctx, f.EC, team.ID, h.EraID)
				if err != nil {
					failed <- err
					return
				}
				if ok {
					advanced.Add(1)
				}
			}(h.ID)
		}
		wg.Wait()
		close(failed)
		for err := range failed {
			t.Fatalf("member: %v", err)
		}

		if got := advanced.Load(); got != 1 {
			t.Fatalf("run %d: team advanced %d times", run, got)
		}
		got, err := f.Store.GetTeam(ctx, team.ID)
		if err != nil {
			t.Fatalf("GetTeam: %v", err)
		}
		if got.EraID != "game/proposing" {
			t.Fatalf("run %d: team era = %q", run, got.EraID)
		}
	}
}
