package graph_test

import (
	"math"
	"testing"

	"github.com/aretw0/wayfinder/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scenarioMap is the five-room map where the short A-B edge needs stairs.
func scenarioMap() *graph.Graph {
	g := graph.New()
	g.AddNode("A", 0, 0)
	g.AddNode("B", 3, 0)
	g.AddNode("C", 0, 3)
	g.AddNode("D", 3, 3)
	g.AddEdge("A", "B", 3, 1)
	g.AddEdge("A", "C", 3, 0)
	g.AddEdge("B", "C", 1, 0)
	g.AddEdge("B", "D", 2, 0)
	g.AddEdge("C", "D", 4, 0)
	return g
}

func TestShortestPath_AvoidsInaccessibleEdge(t *testing.T) {
	g := scenarioMap()

	total, path := g.ShortestPath("A", "D", 0)
	assert.Equal(t, 7.0, total)
	assert.Equal(t, []string{"A", "C", "D"}, path.Names())
}

func TestShortestPath_LevelIsInclusive(t *testing.T) {
	g := scenarioMap()

	total, path := g.ShortestPath("A", "D", 1)
	assert.Equal(t, 5.0, total)
	assert.Equal(t, []string{"A", "B", "D"}, path.Names())
}

func TestShortestPath_NoRoute(t *testing.T) {
	g := graph.New()
	g.AddEdge("A", "B", 1, 2)
	g.AddNode("Island", 9, 9)

	tests := []struct {
		name       string
		start, end string
	}{
		{"blocked by accessibility", "A", "B"},
		{"disconnected", "A", "Island"},
		{"missing start", "Nowhere", "B"},
		{"missing end", "A", "Nowhere"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, path := g.ShortestPath(tt.start, tt.end, 0)
			assert.True(t, math.IsInf(total, 1))
			assert.Empty(t, path)
		})
	}
}

func TestShortestPath_SameRoom(t *testing.T) {
	g := scenarioMap()

	total, path := g.ShortestPath("B", "B", 0)
	assert.Equal(t, 0.0, total)
	assert.Equal(t, []string{"B"}, path.Names())
}

func TestShortestPath_Directed(t *testing.T) {
	g := graph.New(graph.WithDirected())
	g.AddEdge("A", "B", 1, 0)

	total, path := g.ShortestPath("A", "B", 0)
	assert.Equal(t, 1.0, total)
	assert.Equal(t, []string{"A", "B"}, path.Names())

	total, path = g.ShortestPath("B", "A", 0)
	assert.True(t, math.IsInf(total, 1))
	assert.Empty(t, path)
}

func TestShortestPath_ParallelEdges(t *testing.T) {
	g := graph.New()
	g.AddEdge("A", "B", 5, 0)
	g.AddEdge("A", "B", 2, 1)
	g.AddEdge("A", "B", 3, 0)

	total, _ := g.ShortestPath("A", "B", 0)
	assert.Equal(t, 3.0, total)

	total, _ = g.ShortestPath("A", "B", 1)
	assert.Equal(t, 2.0, total)
}

func TestShortestPath_DeterministicTies(t *testing.T) {
	build := func() *graph.Graph {
		g := graph.New()
		g.AddNode("S", 0, 0)
		g.AddNode("L", -1, 1)
		g.AddNode("R", 1, 1)
		g.AddNode("T", 0, 2)
		g.AddEdge("S", "L", 1, 0)
		g.AddEdge("S", "R", 1, 0)
		g.AddEdge("L", "T", 1, 0)
		g.AddEdge("R", "T", 1, 0)
		return g
	}

	_, first := build().ShortestPath("S", "T", 0)
	require.Len(t, first, 3)
	assert.Equal(t, "L", first[1].Name, "earlier inserted room wins the tie")

	for i := 0; i < 20; i++ {
		_, again := build().ShortestPath("S", "T", 0)
		assert.Equal(t, first.Names(), again.Names())
	}
}

func TestAddNode_UpdatesCoordinatesKeepsOrder(t *testing.T) {
	g := graph.New()
	g.AddEdge("A", "B", 1, 0)
	g.AddNode("A", 4, 5)

	r, ok := g.Room("A")
	require.True(t, ok)
	assert.Equal(t, 4.0, r.X)
	assert.Equal(t, "A", g.Rooms()[0].Name)
	assert.Len(t, g.Rooms(), 2)
}
