package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/mcdev12/stint/go/internal/models"
)

type varKey struct {
	owner uuid.UUID
	def   string
}

type memState struct {
	mu          sync.RWMutex
	seq         int64
	stints      map[uuid.UUID]models.Stint
	hands       map[uuid.UUID]models.Hand
	handSeq     map[uuid.UUID]int64
	teams       map[uuid.UUID]models.Team
	teamSeq     map[uuid.UUID]int64
	teamHands   map[uuid.UUID][]uuid.UUID
	modules     map[uuid.UUID]models.Module
	stages      map[uuid.UUID]models.Stage
	breadcrumbs map[uuid.UUID]models.StageBreadcrumb
	variables   map[varKey]models.Variable
}

// Memory is an in-process Store. Transactions are implemented with an undo
// journal, which is sufficient because the engine never lets two writers
// touch the same stint at once.
type Memory struct {
	state   *memState
	journal *[]func()
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{state: &memState{
		stints:      make(map[uuid.UUID]models.Stint),
		hands:       make(map[uuid.UUID]models.Hand),
		handSeq:     make(map[uuid.UUID]int64),
		teams:       make(map[uuid.UUID]models.Team),
		teamSeq:     make(map[uuid.UUID]int64),
		teamHands:   make(map[uuid.UUID][]uuid.UUID),
		modules:     make(map[uuid.UUID]models.Module),
		stages:      make(map[uuid.UUID]models.Stage),
		breadcrumbs: make(map[uuid.UUID]models.StageBreadcrumb),
		variables:   make(map[varKey]models.Variable),
	}}
}

// undo must be called with the state lock held.
func (m *Memory) undo(fn func()) {
	if m.journal != nil {
		*m.journal = append(*m.journal, fn)
	}
}

// Atomic implements Store.
func (m *Memory) Atomic(ctx context.Context, fn func(tx Store) error) error {
	if m.journal != nil {
		return fn(m)
	}
	journal := make([]func(), 0, 16)
	tx := &Memory{state: m.state, journal: &journal}
	committed := false
	defer func() {
		if committed {
			return
		}
		m.state.mu.Lock()
		for i := len(journal) - 1; i >= 0; i-- {
			journal[i]()
		}
		m.state.mu.Unlock()
	}()
	if err := fn(tx); err != nil {
		return err
	}
	committed = true
	return nil
}

// putMap writes val and journals the entry it replaced.
func putMap[K comparable, V any](m *Memory, store map[K]V, key K, val V) {
	prev, existed := store[key]
	store[key] = val
	m.undo(func() {
		if existed {
			store[key] = prev
		} else {
			delete(store, key)
		}
	})
}

func (m *Memory) CreateStint(ctx context.Context, s *models.Stint) error {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	if _, ok := m.state.stints[s.ID]; ok {
		return fmt.Errorf("stint %s: %w", s.ID, ErrDuplicate)
	}
	putMap(m, m.state.stints, s.ID, *s)
	return nil
}

func (m *Memory) GetStint(ctx context.Context, id uuid.UUID) (*models.Stint, error) {
	m.state.mu.RLock()
	defer m.state.mu.RUnlock()
	s, ok := m.state.stints[id]
	if !ok {
		return nil, fmt.Errorf("stint %s: %w", id, ErrNotFound)
	}
	return &s, nil
}

func (m *Memory) UpdateStint(ctx context.Context, s *models.Stint) error {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	if _, ok := m.state.stints[s.ID]; !ok {
		return fmt.Errorf("stint %s: %w", s.ID, ErrNotFound)
	}
	putMap(m, m.state.stints, s.ID, *s)
	return nil
}

func (m *Memory) ListStintsByStatus(ctx context.Context, status models.StintStatus) ([]*models.Stint, error) {
	m.state.mu.RLock()
	defer m.state.mu.RUnlock()
	var out []*models.Stint
	for _, s := range m.state.stints {
		if s.Status == status {
			s := s
			out = append(out, &s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) CreateHand(ctx context.Context, h *models.Hand) error {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	if _, ok := m.state.hands[h.ID]; ok {
		return fmt.Errorf("hand %s: %w", h.ID, ErrDuplicate)
	}
	m.state.seq++
	putMap(m, m.state.handSeq, h.ID, m.state.seq)
	putMap(m, m.state.hands, h.ID, *h)
	return nil
}

func (m *Memory) GetHand(ctx context.Context, id uuid.UUID) (*models.Hand, error) {
	m.state.mu.RLock()
	defer m.state.mu.RUnlock()
	h, ok := m.state.hands[id]
	if !ok {
		return nil, fmt.Errorf("hand %s: %w", id, ErrNotFound)
	}
	return &h, nil
}

func (m *Memory) UpdateHand(ctx context.Context, h *models.Hand) error {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	if _, ok := m.state.hands[h.ID]; !ok {
		return fmt.Errorf("hand %s: %w", h.ID, ErrNotFound)
	}
	putMap(m, m.state.hands, h.ID, *h)
	return nil
}

func (m *Memory) ListHands(ctx context.Context, stintID uuid.UUID) ([]*models.Hand, error) {
	m.state.mu.RLock()
	defer m.state.mu.RUnlock()
	var out []*models.Hand
	for _, h := range m.state.hands {
		if h.StintID == stintID {
			h := h
			out = append(out, &h)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return m.state.handSeq[out[i].ID] < m.state.handSeq[out[j].ID]
	})
	return out, nil
}

func (m *Memory) CreateTeam(ctx context.Context, t *models.Team) error {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	if _, ok := m.state.teams[t.ID]; ok {
		return fmt.Errorf("team %s: %w", t.ID, ErrDuplicate)
	}
	m.state.seq++
	putMap(m, m.state.teamSeq, t.ID, m.state.seq)
	putMap(m, m.state.teams, t.ID, *t)
	return nil
}

func (m *Memory) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	m.state.mu.RLock()
	defer m.state.mu.RUnlock()
	t, ok := m.state.teams[id]
	if !ok {
		return nil, fmt.Errorf("team %s: %w", id, ErrNotFound)
	}
	return &t, nil
}

func (m *Memory) UpdateTeam(ctx context.Context, t *models.Team) error {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	if _, ok := m.state.teams[t.ID]; !ok {
		return fmt.Errorf("team %s: %w", t.ID, ErrNotFound)
	}
	putMap(m, m.state.teams, t.ID, *t)
	return nil
}

func (m *Memory) ListTeams(ctx context.Context, stintID uuid.UUID) ([]*models.Team, error) {
	m.state.mu.RLock()
	defer m.state.mu.RUnlock()
	var out []*models.Team
	for _, t := range m.state.teams {
		if t.StintID == stintID {
			t := t
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return m.state.teamSeq[out[i].ID] < m.state.teamSeq[out[j].ID]
	})
	return out, nil
}

func (m *Memory) AddTeamHand(ctx context.Context, teamID, handID uuid.UUID) error {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	if _, ok := m.state.teams[teamID]; !ok {
		return fmt.Errorf("team %s: %w", teamID, ErrNotFound)
	}
	for _, id := range m.state.teamHands[teamID] {
		if id == handID {
			return nil
		}
	}
	members := append([]uuid.UUID(nil), m.state.teamHands[teamID]...)
	putMap(m, m.state.teamHands, teamID, append(members, handID))
	return nil
}

func (m *Memory) ListTeamHands(ctx context.Context, teamID uuid.UUID) ([]*models.Hand, error) {
	m.state.mu.RLock()
	defer m.state.mu.RUnlock()
	ids := m.state.teamHands[teamID]
	out := make([]*models.Hand, 0, len(ids))
	for _, id := range ids {
		if h, ok := m.state.hands[id]; ok {
			out = append(out, &h)
		}
	}
	return out, nil
}

func (m *Memory) CreateModule(ctx context.Context, mod *models.Module) error {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	if _, ok := m.state.modules[mod.ID]; ok {
		return fmt.Errorf("module %s: %w", mod.ID, ErrDuplicate)
	}
	putMap(m, m.state.modules, mod.ID, *mod)
	return nil
}

func (m *Memory) GetModule(ctx context.Context, id uuid.UUID) (*models.Module, error) {
	m.state.mu.RLock()
	defer m.state.mu.RUnlock()
	mod, ok := m.state.modules[id]
	if !ok {
		return nil, fmt.Errorf("module %s: %w", id, ErrNotFound)
	}
	return &mod, nil
}

func (m *Memory) ListModules(ctx context.Context, stintID uuid.UUID) ([]*models.Module, error) {
	m.state.mu.RLock()
	defer m.state.mu.RUnlock()
	var out []*models.Module
	for _, mod := range m.state.modules {
		if mod.StintID == stintID {
			mod := mod
			out = append(out, &mod)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (m *Memory) CreateStage(ctx context.Context, s *models.Stage) error {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	putMap(m, m.state.stages, s.ID, *s)
	return nil
}

func (m *Memory) GetStage(ctx context.Context, id uuid.UUID) (*models.Stage, error) {
	m.state.mu.RLock()
	defer m.state.mu.RUnlock()
	s, ok := m.state.stages[id]
	if !ok {
		return nil, fmt.Errorf("stage %s: %w", id, ErrNotFound)
	}
	return &s, nil
}

func (m *Memory) UpdateStage(ctx context.Context, s *models.Stage) error {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	if _, ok := m.state.stages[s.ID]; !ok {
		return fmt.Errorf("stage %s: %w", s.ID, ErrNotFound)
	}
	putMap(m, m.state.stages, s.ID, *s)
	return nil
}

func (m *Memory) CreateBreadcrumb(ctx context.Context, b *models.StageBreadcrumb) error {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	putMap(m, m.state.breadcrumbs, b.ID, *b)
	return nil
}

func (m *Memory) GetBreadcrumb(ctx context.Context, id uuid.UUID) (*models.StageBreadcrumb, error) {
	m.state.mu.RLock()
	defer m.state.mu.RUnlock()
	b, ok := m.state.breadcrumbs[id]
	if !ok {
		return nil, fmt.Errorf("breadcrumb %s: %w", id, ErrNotFound)
	}
	return &b, nil
}

func (m *Memory) UpdateBreadcrumb(ctx context.Context, b *models.StageBreadcrumb) error {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	if _, ok := m.state.breadcrumbs[b.ID]; !ok {
		return fmt.Errorf("breadcrumb %s: %w", b.ID, ErrNotFound)
	}
	putMap(m, m.state.breadcrumbs, b.ID, *b)
	return nil
}

func (m *Memory) CreateVariable(ctx context.Context, v *models.Variable) error {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	key := varKey{owner: v.OwnerID, def: v.DefinitionID}
	if _, ok := m.state.variables[key]; ok {
		return fmt.Errorf("variable %s for %s: %w", v.DefinitionID, v.OwnerID, ErrDuplicate)
	}
	putMap(m, m.state.variables, key, *v)
	return nil
}

func (m *Memory) GetVariable(ctx context.Context, ownerID uuid.UUID, definitionID string) (*models.Variable, error) {
	m.state.mu.RLock()
	defer m.state.mu.RUnlock()
	v, ok := m.state.variables[varKey{owner: ownerID, def: definitionID}]
	if !ok {
		return nil, fmt.Errorf("variable %s for %s: %w", definitionID, ownerID, ErrNotFound)
	}
	return &v, nil
}

func (m *Memory) UpdateVariable(ctx context.Context, v *models.Variable) error {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	key := varKey{owner: v.OwnerID, def: v.DefinitionID}
	if _, ok := m.state.variables[key]; !ok {
		return fmt.Errorf("variable %s for %s: %w", v.DefinitionID, v.OwnerID, ErrNotFound)
	}
	putMap(m, m.state.variables, key, *v)
	return nil
}

func (m *Memory) ListVariables(ctx context.Context, ownerID uuid.UUID) ([]*models.Variable, error) {
	m.state.mu.RLock()
	defer m.state.mu.RUnlock()
	var out []*models.Variable
	for k, v := range m.state.variables {
		if k.owner == ownerID {
			v := v
			out = append(out, &v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DefinitionID < out[j].DefinitionID })
	return out, nil
}

func (m *Memory) DeleteVariables(ctx context.Context, ownerID uuid.UUID) error {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	for k, v := range m.state.variables {
		if k.owner != ownerID {
			continue
		}
		k, v := k, v
		delete(m.state.variables, k)
		m.undo(func() { m.state.variables[k] = v })
	}
	return nil
}

var _ Store = (*Memory)(nil)
