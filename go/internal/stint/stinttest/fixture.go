package stinttest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/stint/go/internal/models"
	"github.com/mcdev12/stint/go/internal/stint/engine"
	"github.com/mcdev12/stint/go/internal/stint/events"
	"github.com/mcdev12/stint/go/internal/stint/store"
)

// Epoch is the fake clock's starting time.
var Epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// Fixture is an engine context backed by memory and recording fakes.
type Fixture struct {
	EC         *engine.Context
	Store      *store.Memory
	Clock      *clockwork.FakeClock
	Notifier   *Notifier
	Robots     *Robots
	Actions    *Actions
	Conditions *Conditions
}

// New builds a fixture around Catalog.
func New(t testing.TB) *Fixture {
	t.Helper()
	f := &Fixture{
		Store:      store.NewMemory(),
		Clock:      clockwork.NewFakeClockAt(Epoch),
		Notifier:   &Notifier{},
		Robots:     &Robots{},
		Actions:    &Actions{},
		Conditions: &Conditions{Results: map[string]bool{}},
	}
	f.EC = &engine.Context{
		Store:      f.Store,
		Catalog:    Catalog(),
		Notifier:   f.Notifier,
		Actions:    f.Actions,
		Conditions: f.Conditions,
		Validators: map[string]engine.Validator{},
		Robots:     f.Robots,
		Clock:      f.Clock,
		Locks:      engine.NewLocks(),
	}
	return f
}

// NewStint stores an unstarted stint of spec with n human hands.
func (f *Fixture) NewStint(t testing.TB, spec string, n int) (*models.Stint, []*models.Hand) {
	t.Helper()
	ctx := context.Background()
	s, err := f.EC.Catalog.Specification(spec)
	if err != nil {
		t.Fatalf("Specification: %v", err)
	}
	stint := &models.Stint{
		ID:              uuid.New(),
		SpecificationID: spec,
		LateArrival:     s.LateArrival,
		CreatedAt:       f.Clock.Now(),
	}
	if err := f.Store.CreateStint(ctx, stint); err != nil {
		t.Fatalf("CreateStint: %v", err)
	}
	hands := make([]*models.Hand, n)
	for i := range hands {
		user := uuid.New()
		hands[i] = &models.Hand{
			ID:        uuid.New(),
			StintID:   stint.ID,
			UserID:    &user,
			Frontend:  models.FrontendWeb,
			CreatedAt: f.Clock.Now(),
		}
		if err := f.Store.CreateHand(ctx, hands[i]); err != nil {
			t.Fatalf("CreateHand: %v", err)
		}
	}
	return stint, hands
}

// Modules stores one module row per module of the stint's definition, in
// definition order.
func (f *Fixture) Modules(t testing.TB, stint *models.Stint) []*models.Module {
	t.Helper()
	defs, err := f.EC.Resolve(stint)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	mods := make([]*models.Module, len(defs.Stint.Modules))
	for i, slug := range defs.Stint.Modules {
		mods[i] = &models.Module{
			ID:                 uuid.New(),
			StintID:            stint.ID,
			ModuleDefinitionID: slug,
			Order:              i,
		}
		if err := f.Store.CreateModule(context.Background(), mods[i]); err != nil {
			t.Fatalf("CreateModule: %v", err)
		}
	}
	return mods
}

// Hand reloads a hand from the store.
func (f *Fixture) Hand(t testing.TB, id uuid.UUID) *models.Hand {
	t.Helper()
	h, err := f.Store.GetHand(context.Background(), id)
	if err != nil {
		t.Fatalf("GetHand: %v", err)
	}
	return h
}

// Stint reloads a stint from the store.
func (f *Fixture) Stint(t testing.TB, id uuid.UUID) *models.Stint {
	t.Helper()
	s, err := f.Store.GetStint(context.Background(), id)
	if err != nil {
		t.Fatalf("GetStint: %v", err)
	}
	return s
}

// StageSlug returns the slug of the hand's current stage.
func (f *Fixture) StageSlug(t testing.TB, hand *models.Hand) string {
	t.Helper()
	_, def, err := f.EC.HandStage(context.Background(), hand)
	if err != nil {
		t.Fatalf("HandStage: %v", err)
	}
	return def.Slug
}

// Published is one recorded notification batch.
type Published struct {
	SessionKey string
	Events     []events.Event
}

// Notifier records every published batch.
type Notifier struct {
	mu      sync.Mutex
	Batches []Published
	Err     error
}

func (n *Notifier) Publish(ctx context.Context, sessionKey string, evs []events.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.Batches = append(n.Batches, Published{SessionKey: sessionKey, Events: evs})
	return nil
}

// For returns the batches published to one session.
func (n *Notifier) For(sessionKey string) []Published {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []Published
	for _, b := range n.Batches {
		if b.SessionKey == sessionKey {
			out = append(out, b)
		}
	}
	return out
}

// Robots records provisioning signals.
type Robots struct {
	mu      sync.Mutex
	Signals []uuid.UUID
	Err     error
}

func (r *Robots) Signal(ctx context.Context, stintID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Signals = append(r.Signals, stintID)
	return nil
}

// Actions counts pre-actions and replays scripted action results.
type Actions struct {
	mu         sync.Mutex
	PreActions map[string]int
	Results    map[string][]engine.Change
	Err        error
}

func (a *Actions) RunPreAction(ctx context.Context, stage *models.StageDefinition, hand *models.Hand) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.PreActions == nil {
		a.PreActions = map[string]int{}
	}
	a.PreActions[stage.PreAction]++
	return nil
}

func (a *Actions) RunAction(ctx context.Context, action string, hand *models.Hand) ([]engine.Change, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Err != nil {
		return nil, a.Err
	}
	return a.Results[action], nil
}

// PreActionCount returns how often a pre-action ran.
func (a *Actions) PreActionCount(name string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.PreActions[name]
}

// Conditions answers redirect conditions from a fixed table.
type Conditions struct {
	mu      sync.Mutex
	Results map[string]bool
}

func (c *Conditions) Evaluate(ctx context.Context, condition string, hand *models.Hand) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Results[condition], nil
}

// Set fixes the result of a condition.
func (c *Conditions) Set(condition string, result bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Results[condition] = result
}
