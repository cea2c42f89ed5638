package matrix

import (
	"math"

	"golang.org/x/xerrors"
)

// Unreached is the tentative distance of a vertex that no path has reached
// yet. Solvers work with it internally and Seal turns it into Max.
var Unreached = math.Inf(1)

// ErrDistanceOverflow is returned by Seal when a reachable vertex lies at
// distance Max or beyond, where it would be indistinguishable from an
// unreachable one.
var ErrDistanceOverflow = xerrors.New("shortest distance reaches the unreachable sentinel")

// Seal rewrites tentative distances in place into reported ones: Unreached
// becomes Max and every other value is kept. It returns ErrDistanceOverflow
// for the first finite distance that is not below Max. first is the global
// index of dist[0] and only appears in the error.
func Seal(dist []float64, first int) error {
	var err error
	for i, d := range dist {
		switch {
		case math.IsInf(d, 1):
			dist[i] = Max
		case d >= Max && err == nil:
			err = xerrors.Errorf("vertex %d at distance %v: %w", first+i, d, ErrDistanceOverflow)
		}
	}
	return err
}
