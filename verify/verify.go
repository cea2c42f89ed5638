// Package verify compares the distances produced by the parallel solver with
// a reference implementation.
package verify

import (
	"fmt"

	"github.com/brandonshearin/parsssp/matrix"
	"golang.org/x/xerrors"
)

// Oracle computes the expected distances from source to every vertex of g.
// sequential.ShortestPaths satisfies this signature.
type Oracle func(g *matrix.Dense, source int) ([]float64, error)

// ErrLengthMismatch is returned when the distance arrays differ in length.
var ErrLengthMismatch = xerrors.New("distance arrays differ in length")

// Mismatch describes a vertex whose computed distance differs from the
// expected one.
type Mismatch struct {
	Vertex int
	Want   float64
	Got    float64
}

func (m Mismatch) String() string {
	return fmt.Sprintf("error: wrong distance for node %d, expected %f but is %f", m.Vertex, m.Want, m.Got)
}

// Report is the outcome of a verification run.
type Report struct {
	Vertices   int
	Mismatches []Mismatch
}

// OK reports whether every vertex matched.
func (r *Report) OK() bool { return len(r.Mismatches) == 0 }

// Check runs oracle on g and compares the outcome with got vertex by vertex.
// Distances must match exactly.
func Check(g *matrix.Dense, source int, got []float64, oracle Oracle) (*Report, error) {
	want, err := oracle(g, source)
	if err != nil {
		return nil, xerrors.Errorf("oracle: %w", err)
	}
	return Compare(want, got)
}

// Compare reports the vertices where got differs from want.
func Compare(want, got []float64) (*Report, error) {
	if len(want) != len(got) {
		return nil, xerrors.Errorf("want %d distances, got %d: %w", len(want), len(got), ErrLengthMismatch)
	}

	r := &Report{Vertices: len(want)}
	for v := range want {
		if want[v] != got[v] {
			r.Mismatches = append(r.Mismatches, Mismatch{Vertex: v, Want: want[v], Got: got[v]})
		}
	}
	return r, nil
}
