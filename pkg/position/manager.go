// Package position tracks progress along the route of a single trip.
package position

import (
	"sync"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// Planner computes accessibility-constrained routes. *graph.Graph satisfies it.
type Planner interface {
	ShortestPath(start, end string, level int) (float64, domain.Path)
}

// Manager holds the resolved path of the current trip and a cursor into it.
// It is safe for concurrent use.
type Manager struct {
	planner Planner

	mu       sync.Mutex
	path     domain.Path
	total    float64
	cursor   int
	computed bool
}

// New creates a Manager backed by the given planner.
func New(planner Planner) *Manager {
	return &Manager{planner: planner}
}

// ComputePath resolves the route and rewinds the cursor to the first room.
// The returned path is empty when no route exists.
func (m *Manager) ComputePath(start, end string, level int) domain.Path {
	total, path := m.planner.ShortestPath(start, end, level)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.path = path
	m.total = total
	m.cursor = 0
	m.computed = true
	return m.clonePath()
}

// CurrentTarget returns the room at the cursor, or nil once the path is exhausted.
func (m *Manager) CurrentTarget() (*domain.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.computed {
		return nil, domain.ErrInvalidState
	}
	return m.at(m.cursor), nil
}

// NextTarget advances the cursor and returns the new target, or nil past the end.
func (m *Manager) NextTarget() (*domain.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.computed {
		return nil, domain.ErrInvalidState
	}
	if m.cursor < len(m.path) {
		m.cursor++
	}
	return m.at(m.cursor), nil
}

// IsComplete reports whether the cursor moved past the last room.
func (m *Manager) IsComplete() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor >= len(m.path)
}

// Reset rewinds the cursor without recomputing the path.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cursor = 0
}

// Path returns a copy of the resolved path.
func (m *Manager) Path() domain.Path {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clonePath()
}

// Distance returns the total distance of the resolved path.
func (m *Manager) Distance() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total
}

// Cursor returns the index of the current target.
func (m *Manager) Cursor() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor
}

func (m *Manager) at(i int) *domain.Room {
	if i < 0 || i >= len(m.path) {
		return nil
	}
	r := m.path[i]
	return &r
}

func (m *Manager) clonePath() domain.Path {
	if m.path == nil {
		return nil
	}
	out := make(domain.Path, len(m.path))
	copy(out, m.path)
	return out
}
