// Package collective defines the communication contract used by the
// cooperating SSSP workers.
//
// All cross-worker interaction happens through three collective operations:
// a one-shot broadcast of the problem, an all-reduce argmin per iteration and
// a final gather of the distance partitions. Every operation is a barrier:
// no rank returns from it before all ranks have called it.
package collective

import (
	"context"

	"github.com/brandonshearin/parsssp/matrix"
)

// NoVertex is the vertex id carried by a Selection that does not refer to any
// vertex, e.g. the local minimum of a worker whose vertices are all visited.
const NoVertex = -1

// Selection is a candidate vertex together with its tentative distance.
type Selection struct {
	Distance float64
	Vertex   int
}

// None returns the empty selection. Its distance ties with unreached
// vertices, which it loses to.
func None() Selection {
	return Selection{Distance: matrix.Unreached, Vertex: NoVertex}
}

// IsNone reports whether s does not refer to a vertex.
func (s Selection) IsNone() bool { return s.Vertex == NoVertex }

// Less orders selections by distance and then by vertex id. NoVertex sorts
// after every real vertex at the same distance.
func (s Selection) Less(other Selection) bool {
	if s.Distance != other.Distance {
		return s.Distance < other.Distance
	}
	if s.IsNone() || other.IsNone() {
		return !s.IsNone() && other.IsNone()
	}
	return s.Vertex < other.Vertex
}

// MinLoc returns the smaller of a and b according to Less.
func MinLoc(a, b Selection) Selection {
	if b.Less(a) {
		return b
	}
	return a
}

// Reduce folds the per-rank contributions into the global minimum. Reducing
// an empty slice yields None.
func Reduce(sels []Selection) Selection {
	out := None()
	for _, s := range sels {
		out = MinLoc(out, s)
	}
	return out
}

// Problem is the data the coordinator replicates to every worker.
type Problem struct {
	Graph  *matrix.Dense
	Source int
}

// Comm is implemented by transports that connect a fixed group of ranks.
// Each method must be called by every rank of the group, in the same order.
type Comm interface {
	// Rank returns the caller's position in [0, Size()).
	Rank() int

	// Size returns the number of ranks in the group.
	Size() int

	// Broadcast distributes p from root to every rank. Only the root's p
	// is read; other ranks may pass nil. The returned problem must be
	// treated as read-only.
	Broadcast(ctx context.Context, root int, p *Problem) (*Problem, error)

	// AllReduceMinLoc combines the local selection of every rank and
	// returns the global minimum to all of them.
	AllReduceMinLoc(ctx context.Context, local Selection) (Selection, error)

	// Gather collects the partition of every rank at root. The root receives
	// the partitions in rank order; all other ranks receive nil.
	Gather(ctx context.Context, root int, part []float64) ([][]float64, error)
}
