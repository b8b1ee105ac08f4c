package graph

import (
	"container/heap"
	"math"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// ShortestPath returns the least-distance route from start to end using only
// edges whose accessibility cost is at most level.
// When no such route exists, or an endpoint is missing, it returns (+Inf, nil).
func (g *Graph) ShortestPath(start, end string, level int) (float64, domain.Path) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, ok := g.rank[start]; !ok {
		return math.Inf(1), nil
	}
	if _, ok := g.rank[end]; !ok {
		return math.Inf(1), nil
	}

	dist := map[string]float64{start: 0}
	parent := make(map[string]string)
	settled := make(map[string]bool)

	pq := &queue{}
	heap.Push(pq, &item{name: start, dist: 0, rank: g.rank[start]})

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(*item)
		if settled[cur.name] {
			continue
		}
		settled[cur.name] = true
		if cur.name == end {
			break
		}

		for _, idx := range g.adj[cur.name] {
			e := g.edges[idx]
			if !e.Usable(level) {
				continue
			}
			next := g.neighbor(idx, cur.name)
			if settled[next] {
				continue
			}
			alt := cur.dist + e.Distance
			if d, seen := dist[next]; !seen || alt < d {
				dist[next] = alt
				parent[next] = cur.name
				heap.Push(pq, &item{name: next, dist: alt, rank: g.rank[next]})
			}
		}
	}

	total, ok := dist[end]
	if !ok || !settled[end] {
		return math.Inf(1), nil
	}

	var names []string
	for at := end; ; at = parent[at] {
		names = append(names, at)
		if at == start {
			break
		}
	}

	path := make(domain.Path, len(names))
	for i, name := range names {
		path[len(names)-1-i] = g.rooms[g.rank[name]]
	}
	return total, path
}

// item is a tentative label in the priority queue.
type item struct {
	name  string
	dist  float64
	rank  int
	index int
}

// queue implements heap.Interface ordered by (dist, rank).
type queue []*item

func (q queue) Len() int { return len(q) }

func (q queue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].rank < q[j].rank
}

func (q queue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *queue) Push(x any) {
	it := x.(*item)
	it.index = len(*q)
	*q = append(*q, it)
}

func (q *queue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*q = old[:n-1]
	return it
}
