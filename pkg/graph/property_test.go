package graph_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/graph"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// randomMap decodes raw ints into n rooms and len(raw)/4 edges with integer weights.
func randomMap(n int, raw []int) (*graph.Graph, []domain.Edge) {
	g := graph.New()
	for i := 0; i < n; i++ {
		g.AddNode(fmt.Sprintf("n%d", i), float64(i), 0)
	}
	var edges []domain.Edge
	for i := 0; i+3 < len(raw); i += 4 {
		e := domain.Edge{
			From:          fmt.Sprintf("n%d", raw[i]%n),
			To:            fmt.Sprintf("n%d", raw[i+1]%n),
			Distance:      float64(raw[i+2]%10 + 1),
			Accessibility: raw[i+3] % 3,
		}
		g.AddEdge(e.From, e.To, e.Distance, e.Accessibility)
		edges = append(edges, e)
	}
	return g, edges
}

// bruteForce enumerates every simple path and returns the cheapest total.
func bruteForce(edges []domain.Edge, start, end string, level int) float64 {
	best := math.Inf(1)
	visited := map[string]bool{start: true}
	var walk func(at string, cost float64)
	walk = func(at string, cost float64) {
		if at == end {
			best = math.Min(best, cost)
			return
		}
		for _, e := range edges {
			if !e.Usable(level) {
				continue
			}
			var next string
			switch at {
			case e.From:
				next = e.To
			case e.To:
				next = e.From
			default:
				continue
			}
			if visited[next] {
				continue
			}
			visited[next] = true
			walk(next, cost+e.Distance)
			visited[next] = false
		}
	}
	walk(start, 0)
	return best
}

// cheapestHop returns the lowest usable distance between two adjacent rooms.
func cheapestHop(edges []domain.Edge, a, b string, level int) float64 {
	best := math.Inf(1)
	for _, e := range edges {
		if !e.Usable(level) {
			continue
		}
		if (e.From == a && e.To == b) || (e.From == b && e.To == a) {
			best = math.Min(best, e.Distance)
		}
	}
	return best
}

func TestShortestPathProperties(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("returned path is valid, consistent and minimal", prop.ForAll(
		func(n int, raw []int, level int) bool {
			g, edges := randomMap(n, raw)
			start, end := "n0", fmt.Sprintf("n%d", n-1)

			total, path := g.ShortestPath(start, end, level)
			want := bruteForce(edges, start, end, level)

			if len(path) == 0 {
				return math.IsInf(total, 1) && math.IsInf(want, 1)
			}
			if path[0].Name != start || path[len(path)-1].Name != end {
				return false
			}
			sum := 0.0
			for i := 1; i < len(path); i++ {
				hop := cheapestHop(edges, path[i-1].Name, path[i].Name, level)
				if math.IsInf(hop, 1) {
					return false
				}
				sum += hop
			}
			return sum == total && total == want
		},
		gen.IntRange(2, 6),
		gen.SliceOf(gen.IntRange(0, 999)),
		gen.IntRange(0, 2),
	))

	properties.Property("identical maps give identical routes", prop.ForAll(
		func(n int, raw []int, level int) bool {
			g1, _ := randomMap(n, raw)
			g2, _ := randomMap(n, raw)
			end := fmt.Sprintf("n%d", n-1)
			_, p1 := g1.ShortestPath("n0", end, level)
			_, p2 := g2.ShortestPath("n0", end, level)
			return fmt.Sprint(p1.Names()) == fmt.Sprint(p2.Names())
		},
		gen.IntRange(2, 6),
		gen.SliceOf(gen.IntRange(0, 999)),
		gen.IntRange(0, 2),
	))

	properties.TestingRun(t)
}
