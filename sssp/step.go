package sssp

import (
	"github.com/brandonshearin/parsssp/collective"
	"github.com/brandonshearin/parsssp/matrix"
)

// LocalMin returns the unvisited vertex with the smallest tentative distance
// among the owned vertices, using the lowest index to break ties. Vertices
// that are still at matrix.Unreached are eligible, so every iteration settles
// one vertex for as long as any remains. first is the global index of dist[0].
// If every owned vertex has been visited the result is collective.None().
func LocalMin(dist []float64, visited []bool, first int) collective.Selection {
	best := collective.None()
	for i, d := range dist {
		if visited[i] {
			continue
		}
		if best.IsNone() || d < best.Distance {
			best = collective.Selection{Distance: d, Vertex: first + i}
		}
	}
	return best
}

// LocalMin returns the worker's candidate for the current iteration.
func (w *Worker) LocalMin() collective.Selection {
	return LocalMin(w.dist, w.visited, w.topo.Range.First)
}

// settle marks the agreed vertex as visited if it is owned locally and then
// relaxes every owned, unvisited vertex through it.
func (w *Worker) settle(sel collective.Selection) {
	if sel.IsNone() {
		// Only reachable with the truncating strategy once every owned
		// vertex has been visited by all workers.
		return
	}

	first := w.topo.Range.First
	if w.topo.Range.Contains(sel.Vertex) {
		w.visited[sel.Vertex-first] = true
	}
	relax(w.dist, w.visited, first, sel.Distance, w.graph.Row(sel.Vertex))
}

// relax lowers dist[i] to du + row[first+i] for every unvisited entry with an
// edge where that is shorter. row holds the outgoing weights of the agreed
// vertex.
func relax(dist []float64, visited []bool, first int, du float64, row []float64) {
	for i := range dist {
		w := row[first+i]
		if visited[i] || !matrix.IsEdge(w) {
			continue
		}
		if cand := du + w; cand < dist[i] {
			dist[i] = cand
		}
	}
}
