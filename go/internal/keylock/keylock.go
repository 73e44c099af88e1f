// Package keylock provides per-key mutual exclusion. Entries are reference
// counted and dropped once no goroutine holds or waits on them, so the maps
// stay bounded by the number of keys in flight.
package keylock

import "sync"

type entry struct {
	mu   sync.RWMutex
	refs int
}

// Map hands out a lock per key.
type Map[K comparable] struct {
	mu      sync.Mutex
	entries map[K]*entry
}

// New creates an empty Map.
func New[K comparable]() *Map[K] {
	return &Map[K]{entries: make(map[K]*entry)}
}

func (m *Map[K]) acquire(key K) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		e = &entry{}
		m.entries[key] = e
	}
	e.refs++
	return e
}

func (m *Map[K]) release(key K, e *entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(m.entries, key)
	}
}

// Lock takes the exclusive lock for key and returns its unlock func.
func (m *Map[K]) Lock(key K) (unlock func()) {
	e := m.acquire(key)
	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		m.release(key, e)
	}
}

// RLock takes the shared lock for key and returns its unlock func.
func (m *Map[K]) RLock(key K) (unlock func()) {
	e := m.acquire(key)
	e.mu.RLock()
	return func() {
		e.mu.RUnlock()
		m.release(key, e)
	}
}

// Len returns the number of keys currently locked or awaited.
func (m *Map[K]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
