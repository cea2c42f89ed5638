package result

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/xerrors"
)

// ErrNotFound is returned when looking up a run that was never saved.
var ErrNotFound = xerrors.New("not found")

/*Store keeps the history of solver runs so that results can be compared
across worker counts and partition strategies*/
type Store interface {
	/*SaveRun inserts or replaces a run. A run without an ID is given a fresh
	one and a run without a timestamp is stamped with the current time*/
	SaveRun(run *Run) error

	// FindRun returns a copy of the run with the given ID.
	FindRun(id uuid.UUID) (*Run, error)

	/*Runs returns the runs created strictly after createdAfter, oldest first*/
	Runs(createdAfter time.Time) (RunIterator, error)
}

/*Run is the record of one solver execution: the parameters it was started
with, the distances the coordinator assembled and the verification outcome*/
type Run struct {
	ID        uuid.UUID
	Vertices  int
	Workers   int
	Source    int
	Seed      int64
	Partition string
	Elapsed   time.Duration
	Distances []float64

	// Verified is set when the distances were checked against the
	// sequential oracle; Mismatches counts the vertices that differed.
	Verified   bool
	Mismatches int

	CreatedAt time.Time
}

// Clone returns a deep copy of the run.
func (r *Run) Clone() *Run {
	c := new(Run)
	*c = *r
	if r.Distances != nil {
		c.Distances = append([]float64(nil), r.Distances...)
	}
	return c
}

/*RunIterator is implemented by objects that can lazily iterate stored runs*/
type RunIterator interface {
	/*Next advances the iterator. If no more items are available or an error
	occurs, calls to Next() return false*/
	Next() bool

	// Run returns the run the iterator currently points at.
	Run() *Run

	// Error returns the last encountered error by the iterator.
	Error() error

	// Close releases any resources associated with the iterator.
	Close() error
}
