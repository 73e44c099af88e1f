package hands

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/stint/go/internal/models"
	"github.com/mcdev12/stint/go/internal/stint/engine"
	"github.com/mcdev12/stint/go/internal/stint/errs"
	"github.com/mcdev12/stint/go/internal/stint/events"
	"github.com/mcdev12/stint/go/internal/stint/stinttest"
	"github.com/mcdev12/stint/go/internal/stint/teams"
	"github.com/mcdev12/stint/go/internal/stint/variables"
)

type run struct {
	f       *stinttest.Fixture
	stint   *models.Stint
	hands   []*models.Hand
	modules []*models.Module
}

// begin builds a running stint of spec whose n hands sit on the first stage.
func begin(t *testing.T, spec string, n int) *run {
	t.Helper()
	ctx := context.Background()
	f := stinttest.New(t)
	stint, hs := f.NewStint(t, spec, n)
	mods := f.Modules(t, stint)

	s, _ := f.EC.Catalog.Specification(spec)
	if _, err := teams.Form(ctx, f.EC, stint, hs, s.TeamSize); err != nil {
		t.Fatalf("Form: %v", err)
	}
	stint.Status = models.StintStatusRunning
	if err := f.Store.UpdateStint(ctx, stint); err != nil {
		t.Fatalf("UpdateStint: %v", err)
	}
	for _, h := range hs {
		if _, err := Initialize(ctx, f.EC, h); err != nil {
			t.Fatalf("Initialize: %v", err)
		}
	}
	return &run{f: f, stint: stint, hands: hs, modules: mods}
}

func (r *run) submit(t *testing.T, h *models.Hand) *Transition {
	t.Helper()
	tr, err := Submit(context.Background(), r.f.EC, h)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	return tr
}

// toGame submits h through the intro module.
func (r *run) toGame(t *testing.T, h *models.Hand) *Transition {
	t.Helper()
	r.submit(t, h)
	return r.submit(t, h)
}

func TestInitialize(t *testing.T) {
	r := begin(t, stinttest.SpecSolo, 1)
	h := r.f.Hand(t, r.hands[0].ID)

	if h.Status != models.HandStatusActive {
		t.Fatalf("status = %q", h.Status)
	}
	if h.LastSeen == nil || !h.LastSeen.Equal(stinttest.Epoch) {
		t.Fatalf("last seen = %v", h.LastSeen)
	}
	if h.EraID != "intro/arrival" {
		t.Fatalf("era = %q", h.EraID)
	}
	if h.CurrentModuleID == nil || *h.CurrentModuleID != r.modules[0].ID {
		t.Fatalf("hand not on the first module")
	}
	if got := r.f.StageSlug(t, h); got != "welcome" {
		t.Fatalf("stage = %q", got)
	}
	if h.CurrentBreadcrumbID == nil {
		t.Fatalf("no breadcrumb for the start stage")
	}
}

func TestInitializeEvents(t *testing.T) {
	ctx := context.Background()
	f := stinttest.New(t)
	stint, hs := f.NewStint(t, stinttest.SpecSolo, 1)
	f.Modules(t, stint)

	tr, err := Initialize(ctx, f.EC, hs[0])
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	evs, err := tr.Events(ctx, f.EC, hs[0])
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	want := []events.Type{events.TypeCurrentModule, events.TypeUpdateAllVars, events.TypeCurrentStage}
	if len(evs) != len(want) {
		t.Fatalf("got %d events, want %d", len(evs), len(want))
	}
	for i, ev := range evs {
		if ev.Type() != want[i] {
			t.Fatalf("event %d = %s, want %s", i, ev.Type(), want[i])
		}
	}
}

func TestSubmitAcrossModules(t *testing.T) {
	r := begin(t, stinttest.SpecSolo, 1)
	h := r.hands[0]

	tr := r.submit(t, h)
	if tr.Definition.Slug != "rules" || tr.Module != nil || !tr.Changed {
		t.Fatalf("welcome submit = %+v", tr)
	}

	tr = r.submit(t, h)
	if tr.Definition.ID != "game/offer" {
		t.Fatalf("end stage should continue with the next module, got %s", tr.Definition.ID)
	}
	if tr.Module == nil || tr.Module.Slug != "game" {
		t.Fatalf("expected a module switch")
	}
	if tr.Finished {
		t.Fatalf("hand finished before the last module")
	}
	stored := r.f.Hand(t, h.ID)
	if *stored.CurrentModuleID != r.modules[1].ID {
		t.Fatalf("hand module not switched")
	}
	if stored.EraID != "game/proposing" {
		t.Fatalf("era = %q, want the game start era", stored.EraID)
	}
	if n := r.f.Actions.PreActionCount("deal"); n != 1 {
		t.Fatalf("pre-action ran %d times", n)
	}
}

func TestPreActionRunsOncePerStage(t *testing.T) {
	ctx := context.Background()
	r := begin(t, stinttest.SpecSolo, 1)
	h := r.hands[0]
	offer := r.toGame(t, h)

	tr := r.submit(t, h)
	if tr.Definition.Slug != "respond" {
		t.Fatalf("offer submit = %s", tr.Definition.Slug)
	}
	if h.EraID != "game/responding" {
		t.Fatalf("stage era not applied, era = %q", h.EraID)
	}

	back, err := Back(ctx, r.f.EC, h)
	if err != nil {
		t.Fatalf("Back: %v", err)
	}
	if back == nil || back.Stage.ID != offer.Stage.ID {
		t.Fatalf("Back should reuse the offer stage instance")
	}
	if n := r.f.Actions.PreActionCount("deal"); n != 1 {
		t.Fatalf("pre-action ran %d times", n)
	}

	forward := r.submit(t, h)
	if forward.Definition.Slug != "respond" || forward.Stage.ID != tr.Stage.ID {
		t.Fatalf("Submit after Back should follow the forward node")
	}
}

func TestSubmitConditionalRedirectFinishes(t *testing.T) {
	r := begin(t, stinttest.SpecSolo, 1)
	h := r.hands[0]
	r.toGame(t, h)

	r.f.Conditions.Set("fast", true)
	tr := r.submit(t, h)
	if tr.Definition.Slug != "done" {
		t.Fatalf("conditional redirect not taken, landed on %s", tr.Definition.Slug)
	}
	if !tr.Finished {
		t.Fatalf("end stage of the last module should finish the hand")
	}
	if got := r.f.StageSlug(t, r.f.Hand(t, h.ID)); got != "done" {
		t.Fatalf("stage = %q", got)
	}

	if _, err := Submit(context.Background(), r.f.EC, h); !errors.Is(err, ErrNoRedirect) {
		t.Fatalf("Submit on a stage without redirects err = %v", err)
	}
}

func TestSubmitWithoutRedirectOnSubmit(t *testing.T) {
	ctx := context.Background()
	r := begin(t, stinttest.SpecSolo, 1)
	h := r.hands[0]
	r.toGame(t, h)

	wait, _ := r.f.EC.Catalog.StageDefinition("game/wait")
	if _, err := SetStage(ctx, r.f.EC, h, Target{Definition: wait}); err != nil {
		t.Fatalf("SetStage: %v", err)
	}
	tr, err := Submit(ctx, r.f.EC, h)
	if err != nil || tr != nil {
		t.Fatalf("Submit = %v, %v; want no-op", tr, err)
	}
	if back, err := Back(ctx, r.f.EC, h); err != nil || back != nil {
		t.Fatalf("Back from a none policy stage = %v, %v", back, err)
	}
}

func TestActionsOnUnstartedHand(t *testing.T) {
	ctx := context.Background()
	f := stinttest.New(t)
	_, hs := f.NewStint(t, stinttest.SpecSolo, 1)

	if _, err := Submit(ctx, f.EC, hs[0]); !errors.Is(err, engine.ErrHandNotStarted) {
		t.Fatalf("Submit err = %v", err)
	}
	if _, err := Back(ctx, f.EC, hs[0]); !errors.Is(err, engine.ErrHandNotStarted) {
		t.Fatalf("Back err = %v", err)
	}
}

func TestTeamFollowsSlowestHand(t *testing.T) {
	r := begin(t, stinttest.SpecPairs, 2)
	a, b := r.hands[0], r.hands[1]
	teamEra := func() string {
		team, err := r.f.Store.GetTeam(context.Background(), *a.CurrentTeamID)
		if err != nil {
			t.Fatalf("GetTeam: %v", err)
		}
		return team.EraID
	}
	if got := teamEra(); got != "intro/arrival" {
		t.Fatalf("team era after initialize = %q", got)
	}

	r.toGame(t, a)
	if got := teamEra(); got != "intro/arrival" {
		t.Fatalf("team moved before every member arrived: %q", got)
	}
	r.toGame(t, b)
	if got := teamEra(); got != "game/proposing" {
		t.Fatalf("team era = %q", got)
	}
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown status", func(t *testing.T) {
		r := begin(t, stinttest.SpecPairs, 2)
		_, err := SetStatus(ctx, r.f.EC, r.hands[0], models.HandStatus("asleep"))
		if !errors.Is(err, errs.ErrInvalidStatus) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("last active hand cancels", func(t *testing.T) {
		r := begin(t, stinttest.SpecPairs, 2)
		c, err := SetStatus(ctx, r.f.EC, r.hands[0], models.HandStatusFinished)
		if err != nil || c != CascadeNone {
			t.Fatalf("first hand = %v, %v", c, err)
		}
		c, err = SetStatus(ctx, r.f.EC, r.hands[1], models.HandStatusFinished)
		if err != nil || c != CascadeCancel {
			t.Fatalf("last hand = %v, %v", c, err)
		}
	})

	t.Run("late arrival keeps running", func(t *testing.T) {
		r := begin(t, stinttest.SpecOpen, 1)
		c, err := SetStatus(ctx, r.f.EC, r.hands[0], models.HandStatusFinished)
		if err != nil || c != CascadeNone {
			t.Fatalf("cascade = %v, %v", c, err)
		}
	})

	t.Run("terminal stint", func(t *testing.T) {
		r := begin(t, stinttest.SpecSolo, 1)
		r.stint.Status = models.StintStatusCancelled
		if err := r.f.Store.UpdateStint(ctx, r.stint); err != nil {
			t.Fatalf("UpdateStint: %v", err)
		}
		c, err := SetStatus(ctx, r.f.EC, r.hands[0], models.HandStatusCancelled)
		if err != nil || c != CascadeNone {
			t.Fatalf("cascade = %v, %v", c, err)
		}
	})

	t.Run("quit in a stop on quit module", func(t *testing.T) {
		r := begin(t, stinttest.SpecPairs, 2)
		c, err := OptOut(ctx, r.f.EC, r.hands[0])
		if err != nil || c != CascadeNone {
			t.Fatalf("quit in intro = %v, %v", c, err)
		}
		r.toGame(t, r.hands[1])
		c, err = OptOut(ctx, r.f.EC, r.hands[1])
		if err != nil || c != CascadeCancel {
			t.Fatalf("last hand quitting = %v, %v", c, err)
		}
	})

	t.Run("quitting a stop on quit module leaves the others running", func(t *testing.T) {
		for _, status := range []models.HandStatus{models.HandStatusQuit, models.HandStatusTimedOut} {
			r := begin(t, stinttest.SpecPairs, 2)
			r.toGame(t, r.hands[0])
			c, err := SetStatus(ctx, r.f.EC, r.hands[0], status)
			if err != nil || c != CascadeNone {
				t.Fatalf("%s: cascade = %v, %v", status, c, err)
			}
			if got := r.f.Hand(t, r.hands[1].ID).Status; got != models.HandStatusActive {
				t.Fatalf("%s: other hand is %s", status, got)
			}
		}
	})

	t.Run("terminal hands stay terminal", func(t *testing.T) {
		r := begin(t, stinttest.SpecPairs, 2)
		if _, err := SetStatus(ctx, r.f.EC, r.hands[0], models.HandStatusFinished); err != nil {
			t.Fatalf("SetStatus: %v", err)
		}
		_, err := SetStatus(ctx, r.f.EC, r.hands[0], models.HandStatusTimedOut)
		if !errors.Is(err, errs.ErrInvalidStatus) {
			t.Fatalf("finished -> timedout: %v", err)
		}
		_, err = SetStatus(ctx, r.f.EC, r.hands[0], models.HandStatusActive)
		if !errors.Is(err, errs.ErrInvalidStatus) {
			t.Fatalf("finished -> active: %v", err)
		}
		c, err := SetStatus(ctx, r.f.EC, r.hands[0], models.HandStatusFinished)
		if err != nil || c != CascadeNone {
			t.Fatalf("repeated finish = %v, %v", c, err)
		}
		if got := r.f.Hand(t, r.hands[0].ID).Status; got != models.HandStatusFinished {
			t.Fatalf("status = %s", got)
		}
	})
}

func TestTimeOut(t *testing.T) {
	ctx := context.Background()
	r := begin(t, stinttest.SpecPairs, 2)
	timeout := 5 * time.Second

	r.f.Clock.Advance(4 * time.Second)
	_, ok, err := TimeOut(ctx, r.f.EC, r.stint.ID, r.hands[0].ID, r.f.EC.Now(), timeout)
	if err != nil || ok {
		t.Fatalf("idle below timeout = %v, %v", ok, err)
	}

	// a sweep that read the hand before this touch must not time it out
	r.f.Clock.Advance(time.Second)
	if err := Touch(ctx, r.f.EC, r.f.Hand(t, r.hands[0].ID)); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	_, ok, err = TimeOut(ctx, r.f.EC, r.stint.ID, r.hands[0].ID, r.f.EC.Now(), timeout)
	if err != nil || ok {
		t.Fatalf("touched hand timed out: %v, %v", ok, err)
	}

	if _, err := SetStatus(ctx, r.f.EC, r.hands[1], models.HandStatusFinished); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	_, ok, err = TimeOut(ctx, r.f.EC, r.stint.ID, r.hands[1].ID, r.f.EC.Now().Add(time.Hour), timeout)
	if err != nil || ok {
		t.Fatalf("finished hand timed out: %v, %v", ok, err)
	}
	if got := r.f.Hand(t, r.hands[1].ID).Status; got != models.HandStatusFinished {
		t.Fatalf("status = %s", got)
	}

	c, ok, err := TimeOut(ctx, r.f.EC, r.stint.ID, r.hands[0].ID, r.f.EC.Now().Add(timeout), timeout)
	if err != nil || !ok || c != CascadeCancel {
		t.Fatalf("last hand timing out = %v, %v, %v", c, ok, err)
	}
}

func TestConcurrentTimeOutsCascadeOnce(t *testing.T) {
	ctx := context.Background()
	for i := 0; i < 20; i++ {
		r := begin(t, stinttest.SpecPairs, 6)
		now := r.f.EC.Now().Add(time.Minute)

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			cascades []Cascade
			failures []error
		)
		for _, h := range r.hands {
			wg.Add(1)
			go func(id uuid.UUID) {
				defer wg.Done()
				c, ok, err := TimeOut(ctx, r.f.EC, r.stint.ID, id, now, 5*time.Second)
				mu.Lock()
				defer mu.Unlock()
				if err != nil || !ok {
					failures = append(failures, fmt.Errorf("hand %s: %v, %w", id, ok, err))
					return
				}
				if c != CascadeNone {
					cascades = append(cascades, c)
				}
			}(h.ID)
		}
		wg.Wait()

		if len(failures) > 0 {
			t.Fatalf("TimeOut: %v", errors.Join(failures...))
		}
		if len(cascades) != 1 || cascades[0] != CascadeCancel {
			t.Fatalf("run %d: cascades = %v", i, cascades)
		}
	}
}

func TestTouch(t *testing.T) {
	r := begin(t, stinttest.SpecSolo, 1)
	r.f.Clock.Advance(3 * time.Minute)
	if err := Touch(context.Background(), r.f.EC, r.hands[0]); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	h := r.f.Hand(t, r.hands[0].ID)
	if !h.LastSeen.Equal(stinttest.Epoch.Add(3 * time.Minute)) {
		t.Fatalf("last seen = %v", h.LastSeen)
	}
}

func TestPayoffAndPay(t *testing.T) {
	ctx := context.Background()
	r := begin(t, stinttest.SpecPairs, 2)
	h := r.hands[0]
	game := r.modules[1]

	set := func(name string, value float64) {
		t.Helper()
		def, _ := r.f.EC.Catalog.VariableDefinition("game/" + name)
		vs, err := variables.Realize(ctx, r.f.EC, def, game.ID, []uuid.UUID{h.ID}, variables.Realization{})
		if err != nil {
			t.Fatalf("Realize: %v", err)
		}
		v := vs[0]
		if _, err := variables.Set(ctx, r.f.EC, v, value); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}
	set("earnings", 12)
	set("bonus", 6)

	cases := []struct {
		name   string
		module *models.Module
		want   float64
	}{
		{"module bound", game, 15},
		{"stint total", nil, 18},
		{"other module", r.modules[0], 0},
	}
	for _, tc := range cases {
		got, err := Payoff(ctx, r.f.EC, h, tc.module)
		if err != nil {
			t.Fatalf("%s: Payoff: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: Payoff = %v, want %v", tc.name, got, tc.want)
		}
	}

	paid, err := Pay(ctx, r.f.EC, h)
	if err != nil {
		t.Fatalf("Pay: %v", err)
	}
	if paid != 18 || r.f.Hand(t, h.ID).CurrentPayoff != 18 {
		t.Fatalf("paid %v, current payoff %v", paid, r.f.Hand(t, h.ID).CurrentPayoff)
	}
	if left, _ := Payoff(ctx, r.f.EC, h, nil); left != 0 {
		t.Fatalf("payoff variables not reset, %v left", left)
	}
}
