// Package matrix provides the dense, square weight matrix that every worker
// holds a full replica of.
//
// Weights are kept in a single contiguous row-major buffer (offset = i*n + j)
// so that transports can ship the whole graph in one piece. The value Max is
// reserved: it marks a missing edge and doubles as the "unreachable" distance.
package matrix

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/xerrors"
)

// Max is the sentinel weight for "no direct edge" and the reported distance
// of unreachable vertices. Reachable vertices always report less than Max.
const Max = 10000.0

// MaxVertices bounds the vertex count so that n*n entries stay addressable
// with a 32-bit signed index.
const MaxVertices = 46340

var (
	// ErrInvalidDimensions is returned when a matrix is requested with a
	// non-positive vertex count or with rows of mismatched length.
	ErrInvalidDimensions = xerrors.New("matrix dimensions must be positive and square")

	// ErrTooLarge is returned when the requested vertex count cannot be
	// allocated.
	ErrTooLarge = xerrors.New("matrix is too large to allocate")

	// ErrOutOfRange is returned by At and Set for indices outside the matrix.
	ErrOutOfRange = xerrors.New("index out of range")

	// ErrInvalidWeight is returned for negative or NaN weights and for
	// weights above Max.
	ErrInvalidWeight = xerrors.New("weight must lie in [0, Max]")
)

// Dense is an n×n matrix of edge weights. A Dense must not be mutated once it
// has been handed to a transport for broadcasting.
type Dense struct {
	n    int
	data []float64
}

// New returns an n×n matrix where every off-diagonal entry is Max and the
// diagonal is zero, i.e. a graph without edges.
func New(n int) (*Dense, error) {
	if n <= 0 {
		return nil, xerrors.Errorf("new matrix of size %d: %w", n, ErrInvalidDimensions)
	}
	if n > MaxVertices {
		return nil, xerrors.Errorf("new matrix of size %d: %w", n, ErrTooLarge)
	}

	m := &Dense{n: n, data: make([]float64, n*n)}
	for i := range m.data {
		m.data[i] = Max
	}
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 0
	}
	return m, nil
}

// FromRows builds a matrix from a square slice of rows. The rows are copied.
func FromRows(rows [][]float64) (*Dense, error) {
	n := len(rows)
	m, err := New(n)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if len(row) != n {
			return nil, xerrors.Errorf("row %d has %d entries, want %d: %w", i, len(row), n, ErrInvalidDimensions)
		}
		copy(m.data[i*n:(i+1)*n], row)
	}
	return m, nil
}

// FromData wraps a flat row-major buffer of n*n weights. The buffer is not
// copied; the caller hands over ownership.
func FromData(n int, data []float64) (*Dense, error) {
	if n <= 0 || len(data) != n*n {
		return nil, xerrors.Errorf("wrap %d weights as %dx%d: %w", len(data), n, n, ErrInvalidDimensions)
	}
	if n > MaxVertices {
		return nil, xerrors.Errorf("wrap matrix of size %d: %w", n, ErrTooLarge)
	}
	return &Dense{n: n, data: data}, nil
}

// Size returns the number of vertices.
func (m *Dense) Size() int { return m.n }

// At returns the weight of the edge u→v.
func (m *Dense) At(u, v int) (float64, error) {
	if !m.inRange(u, v) {
		return 0, xerrors.Errorf("at (%d,%d): %w", u, v, ErrOutOfRange)
	}
	return m.data[u*m.n+v], nil
}

// Set stores the weight of the edge u→v. Use Max to remove an edge.
func (m *Dense) Set(u, v int, w float64) error {
	if !m.inRange(u, v) {
		return xerrors.Errorf("set (%d,%d): %w", u, v, ErrOutOfRange)
	}
	if !validWeight(w) {
		return xerrors.Errorf("set (%d,%d) to %v: %w", u, v, w, ErrInvalidWeight)
	}
	m.data[u*m.n+v] = w
	return nil
}

// Row returns the outgoing weights of u. The returned slice aliases the
// matrix storage and must be treated as read-only.
func (m *Dense) Row(u int) []float64 {
	return m.data[u*m.n : (u+1)*m.n : (u+1)*m.n]
}

// Data returns the flat row-major buffer backing the matrix.
func (m *Dense) Data() []float64 { return m.data }

// Clone returns a deep copy of the matrix.
func (m *Dense) Clone() *Dense {
	data := make([]float64, len(m.data))
	copy(data, m.data)
	return &Dense{n: m.n, data: data}
}

// Equal reports whether both matrices have the same size and identical
// weights.
func (m *Dense) Equal(other *Dense) bool {
	if other == nil || m.n != other.n {
		return false
	}
	for i, w := range m.data {
		if other.data[i] != w {
			return false
		}
	}
	return true
}

// Validate checks that every off-diagonal weight lies in [0, Max]. Diagonal
// entries are ignored.
func (m *Dense) Validate() error {
	for u := 0; u < m.n; u++ {
		for v, w := range m.Row(u) {
			if u != v && !validWeight(w) {
				return xerrors.Errorf("edge (%d,%d) has weight %v: %w", u, v, w, ErrInvalidWeight)
			}
		}
	}
	return nil
}

// String renders the matrix one row per line with tab separated weights.
// Missing edges are printed as "-".
func (m *Dense) String() string {
	var sb strings.Builder
	for u := 0; u < m.n; u++ {
		for v, w := range m.Row(u) {
			if v > 0 {
				sb.WriteByte('\t')
			}
			if w >= Max {
				sb.WriteByte('-')
				continue
			}
			sb.WriteString(strconv.FormatFloat(w, 'f', -1, 64))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (m *Dense) inRange(u, v int) bool {
	return u >= 0 && u < m.n && v >= 0 && v < m.n
}

func validWeight(w float64) bool {
	return w >= 0 && w <= Max && !math.IsNaN(w)
}

// IsEdge reports whether w denotes an existing edge.
func IsEdge(w float64) bool { return w < Max }
