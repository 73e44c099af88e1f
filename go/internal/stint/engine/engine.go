// Package engine carries the collaborators every stint operation runs with.
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/stint/go/internal/keylock"
	"github.com/mcdev12/stint/go/internal/models"
	"github.com/mcdev12/stint/go/internal/stint/catalog"
	"github.com/mcdev12/stint/go/internal/stint/events"
	"github.com/mcdev12/stint/go/internal/stint/store"
)

// Notifier delivers an ordered batch of events to one client session.
type Notifier interface {
	Publish(ctx context.Context, sessionKey string, evs []events.Event) error
}

// RobotSignaler asks the robot runner to provision robot hands for a stint.
type RobotSignaler interface {
	Signal(ctx context.Context, stintID uuid.UUID) error
}

// Change is one effect an action asks the engine to apply on a hand: a value
// for a variable of the hand's current module, or a stage to move to.
type Change struct {
	Variable string
	Value    any
	Stage    string
}

// ActionRunner executes authored actions.
type ActionRunner interface {
	RunPreAction(ctx context.Context, stage *models.StageDefinition, hand *models.Hand) error
	RunAction(ctx context.Context, action string, hand *models.Hand) ([]Change, error)
}

// ConditionEvaluator decides whether a conditional redirect applies.
type ConditionEvaluator interface {
	Evaluate(ctx context.Context, condition string, hand *models.Hand) (bool, error)
}

// Validator is an authored check attached to a variable definition by name.
type Validator interface {
	Validate(def *models.VariableDefinition, value any) error
}

// Locks serializes mutations. Acquire in the order stint, hand, team,
// variable.
type Locks struct {
	Stints    *keylock.Map[uuid.UUID]
	Hands     *keylock.Map[uuid.UUID]
	Teams     *keylock.Map[uuid.UUID]
	Variables *keylock.Map[uuid.UUID]
}

// NewLocks creates an empty lock set.
func NewLocks() *Locks {
	return &Locks{
		Stints:    keylock.New[uuid.UUID](),
		Hands:     keylock.New[uuid.UUID](),
		Teams:     keylock.New[uuid.UUID](),
		Variables: keylock.New[uuid.UUID](),
	}
}

// Context is passed to every engine operation.
type Context struct {
	Store      store.Store
	Catalog    catalog.Catalog
	Notifier   Notifier
	Actions    ActionRunner
	Conditions ConditionEvaluator
	Validators map[string]Validator
	Robots     RobotSignaler
	Clock      clockwork.Clock
	Locks      *Locks
}

// WithStore returns a copy of c that reads and writes through s. Locks are
// shared with c.
func (c *Context) WithStore(s store.Store) *Context {
	cp := *c
	cp.Store = s
	return &cp
}

// Now returns the engine clock's current time in UTC.
func (c *Context) Now() time.Time {
	return c.Clock.Now().UTC()
}

// Atomic runs fn with a context bound to a store transaction.
func (c *Context) Atomic(ctx context.Context, fn func(tx *Context) error) error {
	return c.Store.Atomic(ctx, func(tx store.Store) error {
		return fn(c.WithStore(tx))
	})
}

// Definitions bundles the pre-resolved definitions of a stint.
type Definitions struct {
	Specification *models.StintSpecification
	Stint         *models.StintDefinition
}

// Resolve looks up the specification and stint definition of s.
func (c *Context) Resolve(s *models.Stint) (*Definitions, error) {
	spec, err := c.Catalog.Specification(s.SpecificationID)
	if err != nil {
		return nil, err
	}
	def, err := c.Catalog.StintDefinition(spec.StintDefinition)
	if err != nil {
		return nil, err
	}
	return &Definitions{Specification: spec, Stint: def}, nil
}
