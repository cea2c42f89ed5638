// Package sssp implements the partitioned, lock-step parallel variant of
// Dijkstra's single-source shortest-path algorithm on a dense graph.
//
// Every worker holds a full replica of the graph but owns the tentative
// distances of a contiguous range of vertices only. Each iteration the
// workers pick their local minimum, agree on the global minimum through an
// all-reduce and relax the vertices they own. After N iterations the
// coordinator gathers the distance partitions into a single array.
package sssp

import (
	"context"
	"io/ioutil"
	"time"

	"github.com/brandonshearin/parsssp/collective"
	"github.com/brandonshearin/parsssp/matrix"
	"github.com/brandonshearin/parsssp/partition"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// State describes the phase a Worker is in.
type State uint8

const (
	Uninitialized State = iota
	Broadcasting
	Iterating
	Gathering
	Done
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Broadcasting:
		return "broadcasting"
	case Iterating:
		return "iterating"
	case Gathering:
		return "gathering"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Topology describes where a worker sits within the group. It is computed
// once the problem has been broadcast and never changes afterwards.
type Topology struct {
	Rank     int
	Size     int
	Vertices int
	Strategy partition.Strategy
	Range    partition.Range
}

// Config encapsulates the options for a Worker.
type Config struct {
	// Root is the rank of the coordinator that supplies the problem and
	// receives the gathered distances.
	Root int

	// Partition selects how vertices are split when the vertex count is
	// not a multiple of the worker count.
	Partition partition.Strategy

	Callbacks Callbacks

	// Logger is optional. A nil logger discards all output.
	Logger *logrus.Entry
}

// Callbacks are invoked by a Worker around every iteration. All callbacks
// are optional. A callback error aborts the run.
type Callbacks struct {
	// PreStep, if defined, is invoked before the local selection.
	PreStep func(ctx context.Context, w *Worker, iter int) error

	// PostStep, if defined, is invoked after the agreed vertex has been
	// marked as visited and the local partition has been relaxed.
	PostStep func(ctx context.Context, w *Worker, iter int, sel collective.Selection) error
}

func patchEmptyCallbacks(cb *Callbacks) {
	if cb.PreStep == nil {
		cb.PreStep = func(context.Context, *Worker, int) error { return nil }
	}
	if cb.PostStep == nil {
		cb.PostStep = func(context.Context, *Worker, int, collective.Selection) error { return nil }
	}
}

// Result is returned by Run once the distances have been gathered.
type Result struct {
	Topology Topology
	Source   int

	// Partition holds the final distances of the vertices owned by this
	// worker, indexed from Topology.Range.First.
	Partition []float64

	// Distances holds the distances of all vertices. It is only populated
	// on the root; vertices that no worker owns stay at matrix.Max.
	Distances []float64

	// Elapsed is the wall time spent broadcasting, iterating and gathering.
	Elapsed time.Duration
}

// Worker executes the algorithm on behalf of a single rank. A Worker is
// single-use and not safe for concurrent use; callbacks run on the
// goroutine that called Run.
type Worker struct {
	comm collective.Comm
	cfg  Config
	log  *logrus.Entry

	state   State
	topo    Topology
	graph   *matrix.Dense
	source  int
	dist    []float64
	visited []bool
	iter    int
}

// NewWorker returns a Worker that communicates through comm.
func NewWorker(comm collective.Comm, cfg Config) *Worker {
	patchEmptyCallbacks(&cfg.Callbacks)
	log := cfg.Logger
	if log == nil {
		log = discardLogger()
	}
	return &Worker{
		comm: comm,
		cfg:  cfg,
		log:  log.WithField("rank", comm.Rank()),
	}
}

// Solve is a shorthand for NewWorker(comm, cfg).Run(ctx, p).
func Solve(ctx context.Context, comm collective.Comm, p *collective.Problem, cfg Config) (*Result, error) {
	return NewWorker(comm, cfg).Run(ctx, p)
}

// Run executes the whole protocol: broadcast, N iterations and gather. Only
// the root's p is read. Calls to Run block until all workers of the group
// have finished, an error occurs or ctx expires; any error is fatal.
func (w *Worker) Run(ctx context.Context, p *collective.Problem) (*Result, error) {
	if w.state != Uninitialized {
		return nil, xerrors.Errorf("run worker in state %s: %w", w.state, ErrAlreadyRun)
	}
	if w.cfg.Root < 0 || w.cfg.Root >= w.comm.Size() {
		return nil, xerrors.Errorf("root %d of %d: %w", w.cfg.Root, w.comm.Size(), ErrInvalidRoot)
	}

	start := time.Now()
	w.state = Broadcasting
	if err := w.receive(ctx, p); err != nil {
		return nil, err
	}

	w.state = Iterating
	if err := w.iterate(ctx); err != nil {
		return nil, err
	}

	w.state = Gathering
	full, err := w.gather(ctx)
	if err != nil {
		return nil, err
	}
	w.state = Done

	res := &Result{
		Topology:  w.topo,
		Source:    w.source,
		Partition: w.Partition(),
		Distances: full,
		Elapsed:   time.Since(start),
	}
	w.log.WithFields(logrus.Fields{
		"iterations": w.iter,
		"elapsed":    res.Elapsed,
	}).Debug("worker finished")
	return res, nil
}

// receive obtains the problem from the root and initializes the local state.
// Every rank validates the same broadcast problem, so an invalid problem
// fails all ranks alike instead of leaving some of them blocked.
func (w *Worker) receive(ctx context.Context, p *collective.Problem) error {
	var in *collective.Problem
	if w.comm.Rank() == w.cfg.Root {
		in = p
	}
	p, err := w.comm.Broadcast(ctx, w.cfg.Root, in)
	if err != nil {
		return xerrors.Errorf("broadcast: %w", err)
	}
	if err := validateProblem(p); err != nil {
		return xerrors.Errorf("broadcast: %w", err)
	}

	n, size := p.Graph.Size(), w.comm.Size()
	r, err := partition.For(n, size, w.comm.Rank(), w.cfg.Partition)
	if err != nil {
		return xerrors.Errorf("partition: %w", err)
	}

	if w.comm.Rank() == w.cfg.Root && !partition.Divides(n, size) {
		w.log.WithFields(logrus.Fields{
			"vertices": n,
			"workers":  size,
			"strategy": w.cfg.Partition,
			"covered":  partition.Covered(n, size, w.cfg.Partition),
		}).Warn("node count must be a multiple of the process count for correct results")
	}

	w.topo = Topology{
		Rank:     w.comm.Rank(),
		Size:     size,
		Vertices: n,
		Strategy: w.cfg.Partition,
		Range:    r,
	}
	w.graph = p.Graph
	w.source = p.Source
	w.dist = make([]float64, r.Len())
	w.visited = make([]bool, r.Len())
	for i := range w.dist {
		w.dist[i] = matrix.Unreached
	}
	if r.Contains(p.Source) {
		w.dist[p.Source-r.First] = 0
	}
	return nil
}

func validateProblem(p *collective.Problem) error {
	switch {
	case p == nil:
		return ErrNilProblem
	case p.Graph == nil:
		return ErrNilGraph
	case p.Source < 0 || p.Source >= p.Graph.Size():
		return xerrors.Errorf("source %d in graph of %d vertices: %w", p.Source, p.Graph.Size(), ErrInvalidSource)
	}
	return p.Graph.Validate()
}

// iterate runs exactly one iteration per vertex.
func (w *Worker) iterate(ctx context.Context) error {
	var (
		err error
		sel collective.Selection
		cb  = w.cfg.Callbacks
	)
	for ; w.iter < w.topo.Vertices; w.iter++ {
		if err = ensureContextNotExpired(ctx); err != nil {
			break
		} else if err = cb.PreStep(ctx, w, w.iter); err != nil {
			break
		} else if sel, err = w.comm.AllReduceMinLoc(ctx, w.LocalMin()); err != nil {
			err = xerrors.Errorf("all-reduce: %w", err)
			break
		}

		w.settle(sel)
		if err = cb.PostStep(ctx, w, w.iter, sel); err != nil {
			break
		}
	}
	if err != nil {
		return xerrors.Errorf("iteration %d: %w", w.iter, err)
	}
	return nil
}

// gather sends the local partition to the root. On the root it returns the
// assembled distance array, on all other ranks nil.
func (w *Worker) gather(ctx context.Context) ([]float64, error) {
	parts, err := w.comm.Gather(ctx, w.cfg.Root, w.dist)
	if err != nil {
		return nil, xerrors.Errorf("gather: %w", err)
	}
	if w.comm.Rank() != w.cfg.Root {
		if _, err = w.sealed(); err != nil {
			return nil, xerrors.Errorf("gather: %w", err)
		}
		return nil, nil
	}
	full, err := assemble(parts, w.topo)
	if err != nil {
		return nil, xerrors.Errorf("gather: %w", err)
	}
	return full, nil
}

// assemble lays out the rank-ordered partitions in global vertex order and
// seals the result, failing if any reachable vertex lies at matrix.Max or
// beyond.
func assemble(parts [][]float64, topo Topology) ([]float64, error) {
	ranges, err := partition.All(topo.Vertices, topo.Size, topo.Strategy)
	if err != nil {
		return nil, err
	}
	if len(parts) != len(ranges) {
		return nil, xerrors.Errorf("received %d partitions from %d workers: %w", len(parts), len(ranges), ErrPartitionMismatch)
	}

	full := make([]float64, topo.Vertices)
	for i := range full {
		full[i] = matrix.Unreached
	}
	for rank, part := range parts {
		r := ranges[rank]
		if len(part) != r.Len() {
			return nil, xerrors.Errorf("rank %d sent %d distances, want %d: %w", rank, len(part), r.Len(), ErrPartitionMismatch)
		}
		copy(full[r.First:r.Last], part)
	}
	if err = matrix.Seal(full, 0); err != nil {
		return nil, err
	}
	return full, nil
}

// State returns the current phase of the worker.
func (w *Worker) State() State { return w.state }

// Topology returns the worker's placement. It is only meaningful once the
// problem has been broadcast.
func (w *Worker) Topology() Topology { return w.topo }

// Iteration returns the index of the current (or last) iteration.
func (w *Worker) Iteration() int { return w.iter }

// Partition returns a copy of the tentative distances owned by the worker,
// with unreached vertices reported as matrix.Max.
func (w *Worker) Partition() []float64 {
	out, _ := w.sealed()
	return out
}

func (w *Worker) sealed() ([]float64, error) {
	out := make([]float64, len(w.dist))
	copy(out, w.dist)
	return out, matrix.Seal(out, w.topo.Range.First)
}

// Distance returns the tentative distance of global vertex v and whether the
// worker owns v.
func (w *Worker) Distance(v int) (float64, bool) {
	if !w.topo.Range.Contains(v) {
		return 0, false
	}
	if d := w.dist[v-w.topo.Range.First]; d != matrix.Unreached {
		return d, true
	}
	return matrix.Max, true
}

// Visited reports whether the worker owns global vertex v and has settled it.
func (w *Worker) Visited(v int) bool {
	if !w.topo.Range.Contains(v) {
		return false
	}
	return w.visited[v-w.topo.Range.First]
}

func ensureContextNotExpired(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

func discardLogger() *logrus.Entry {
	l := logrus.New()
	l.Out = ioutil.Discard
	return logrus.NewEntry(l)
}
