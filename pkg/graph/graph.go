package graph

import (
	"sync"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// Graph is a weighted map of rooms. It is safe for concurrent use.
type Graph struct {
	mu       sync.RWMutex
	directed bool

	rank  map[string]int // room name -> insertion rank
	rooms []domain.Room
	edges []domain.Edge
	adj   map[string][]int // room name -> indices into edges
}

// Option configures a Graph.
type Option func(*Graph)

// WithDirected makes edges one-way (From -> To).
func WithDirected() Option {
	return func(g *Graph) {
		g.directed = true
	}
}

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		rank: make(map[string]int),
		adj:  make(map[string][]int),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Directed reports whether edges are one-way.
func (g *Graph) Directed() bool {
	return g.directed
}

// AddNode adds a room or updates the coordinates of an existing one.
// The insertion rank of an existing room is preserved.
func (g *Graph) AddNode(name string, x, y float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.addNode(name, x, y, true)
}

func (g *Graph) addNode(name string, x, y float64, overwrite bool) {
	if i, ok := g.rank[name]; ok {
		if overwrite {
			g.rooms[i] = domain.Room{Name: name, X: x, Y: y}
		}
		return
	}
	g.rank[name] = len(g.rooms)
	g.rooms = append(g.rooms, domain.Room{Name: name, X: x, Y: y})
}

// AddEdge connects two rooms. Missing endpoints are created at the origin.
// Parallel edges are kept as alternatives.
func (g *Graph) AddEdge(from, to string, distance float64, accessibility int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.addNode(from, 0, 0, false)
	g.addNode(to, 0, 0, false)

	idx := len(g.edges)
	g.edges = append(g.edges, domain.Edge{
		From:          from,
		To:            to,
		Distance:      distance,
		Accessibility: accessibility,
	})
	g.adj[from] = append(g.adj[from], idx)
	if !g.directed && from != to {
		g.adj[to] = append(g.adj[to], idx)
	}
}

// Has reports whether the room exists.
func (g *Graph) Has(name string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.rank[name]
	return ok
}

// Room returns the room with the given name.
func (g *Graph) Room(name string) (domain.Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	i, ok := g.rank[name]
	if !ok {
		return domain.Room{}, false
	}
	return g.rooms[i], true
}

// Rooms returns all rooms in insertion order.
func (g *Graph) Rooms() []domain.Room {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]domain.Room, len(g.rooms))
	copy(out, g.rooms)
	return out
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []domain.Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]domain.Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// neighbor returns the far end of edge idx when leaving from.
func (g *Graph) neighbor(idx int, from string) string {
	e := g.edges[idx]
	if e.From == from {
		return e.To
	}
	return e.From
}
