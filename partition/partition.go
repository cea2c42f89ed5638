// Package partition assigns contiguous vertex ranges to workers.
package partition

import (
	"golang.org/x/xerrors"
)

var (
	// ErrInvalidVertexCount is returned when the vertex count is not positive.
	ErrInvalidVertexCount = xerrors.New("vertex count must be positive")

	// ErrInvalidWorkerCount is returned when the worker count is not positive.
	ErrInvalidWorkerCount = xerrors.New("worker count must be positive")

	// ErrInvalidRank is returned when a rank falls outside [0, workers).
	ErrInvalidRank = xerrors.New("rank out of range")

	// ErrUnknownStrategy is returned by ParseStrategy for unsupported names.
	ErrUnknownStrategy = xerrors.New("unknown partition strategy")
)

// Strategy selects how vertices are split when the vertex count is not a
// multiple of the worker count.
type Strategy uint8

const (
	// Balanced hands the first n mod p workers one extra vertex so that the
	// ranges always cover [0, n).
	Balanced Strategy = iota

	// Truncate gives every worker exactly n/p vertices. Vertices at or past
	// p*(n/p) belong to nobody and are never selected nor relaxed.
	Truncate
)

func (s Strategy) String() string {
	switch s {
	case Balanced:
		return "balanced"
	case Truncate:
		return "truncate"
	default:
		return "unknown"
	}
}

// ParseStrategy maps a strategy name to its value.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "balanced", "":
		return Balanced, nil
	case "truncate":
		return Truncate, nil
	default:
		return 0, xerrors.Errorf("parse %q: %w", name, ErrUnknownStrategy)
	}
}

// Range is the half-open interval [First, Last) of global vertex indices
// owned by a single worker.
type Range struct {
	First int
	Last  int
}

// Len returns the number of vertices in the range.
func (r Range) Len() int { return r.Last - r.First }

// Contains reports whether vertex v belongs to the range.
func (r Range) Contains(v int) bool { return v >= r.First && v < r.Last }

// Divides reports whether n vertices split evenly across p workers.
func Divides(n, p int) bool { return p > 0 && n%p == 0 }

// Covered returns how many of the n vertices are owned by some worker.
func Covered(n, p int, s Strategy) int {
	if s == Truncate {
		return p * (n / p)
	}
	return n
}

// For returns the range owned by rank out of p workers sharing n vertices.
func For(n, p, rank int, s Strategy) (Range, error) {
	if err := check(n, p, s); err != nil {
		return Range{}, err
	}
	if rank < 0 || rank >= p {
		return Range{}, xerrors.Errorf("rank %d of %d: %w", rank, p, ErrInvalidRank)
	}

	per := n / p
	if s == Truncate {
		return Range{First: rank * per, Last: (rank + 1) * per}, nil
	}

	extra := n % p
	first := rank*per + minInt(rank, extra)
	last := first + per
	if rank < extra {
		last++
	}
	return Range{First: first, Last: last}, nil
}

// All returns the ranges of every rank in rank order.
func All(n, p int, s Strategy) ([]Range, error) {
	if err := check(n, p, s); err != nil {
		return nil, err
	}
	out := make([]Range, p)
	for rank := range out {
		r, err := For(n, p, rank, s)
		if err != nil {
			return nil, err
		}
		out[rank] = r
	}
	return out, nil
}

func check(n, p int, s Strategy) error {
	switch {
	case n <= 0:
		return xerrors.Errorf("partition %d vertices: %w", n, ErrInvalidVertexCount)
	case p <= 0:
		return xerrors.Errorf("partition across %d workers: %w", p, ErrInvalidWorkerCount)
	case s != Balanced && s != Truncate:
		return xerrors.Errorf("strategy %d: %w", s, ErrUnknownStrategy)
	}
	return nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
