// Package sequential contains the single-threaded reference implementation of
// Dijkstra's algorithm on a dense graph. It is used to verify the results of
// the parallel solver.
package sequential

import (
	"github.com/brandonshearin/parsssp/matrix"
	"golang.org/x/xerrors"
)

var (
	// ErrNilGraph is returned when no graph is supplied.
	ErrNilGraph = xerrors.New("graph is nil")

	// ErrInvalidSource is returned when the source is not a vertex of the
	// graph.
	ErrInvalidSource = xerrors.New("source vertex is not part of the graph")
)

// ShortestPaths returns the distance from source to every vertex of g.
// Unreachable vertices are reported as matrix.Max. Ties between candidates
// are resolved in favour of the lowest vertex index. A reachable vertex at
// distance matrix.Max or beyond yields matrix.ErrDistanceOverflow.
func ShortestPaths(g *matrix.Dense, source int) ([]float64, error) {
	if g == nil {
		return nil, ErrNilGraph
	}
	n := g.Size()
	if source < 0 || source >= n {
		return nil, xerrors.Errorf("source %d in graph of %d vertices: %w", source, n, ErrInvalidSource)
	}

	dist := make([]float64, n)
	visited := make([]bool, n)
	for v := range dist {
		dist[v] = matrix.Unreached
	}
	dist[source] = 0

	for i := 0; i < n; i++ {
		u := -1
		for v, d := range dist {
			if !visited[v] && (u == -1 || d < dist[u]) {
				u = v
			}
		}
		visited[u] = true

		row := g.Row(u)
		for v, w := range row {
			if !visited[v] && matrix.IsEdge(w) && dist[u]+w < dist[v] {
				dist[v] = dist[u] + w
			}
		}
	}
	if err := matrix.Seal(dist, 0); err != nil {
		return nil, err
	}
	return dist, nil
}
