// Package local implements the collective operations for ranks that live in
// the same process, typically one goroutine per rank.
package local

import (
	"context"
	"sync"

	"golang.org/x/xerrors"
)

var (
	// ErrAborted is returned by every collective once any rank has left a
	// round early or the group detected a protocol violation. A group
	// never recovers from it.
	ErrAborted = xerrors.New("collective group aborted")

	// ErrMismatch is returned when ranks disagree on which collective
	// they are executing.
	ErrMismatch = xerrors.New("collective call mismatch")

	// ErrInvalidRank is returned for ranks or roots outside [0, size).
	ErrInvalidRank = xerrors.New("rank out of range")

	// ErrInvalidSize is returned by NewGroup for non-positive sizes.
	ErrInvalidSize = xerrors.New("group size must be positive")
)

type opKind uint8

const (
	opBroadcast opKind = iota + 1
	opAllReduce
	opGather
)

func (op opKind) String() string {
	switch op {
	case opBroadcast:
		return "broadcast"
	case opAllReduce:
		return "all-reduce"
	case opGather:
		return "gather"
	default:
		return "unknown"
	}
}

// combineFunc turns the rank-indexed contributions of a completed round into
// the value every rank receives.
type combineFunc func(contrib []interface{}) (interface{}, error)

// round tracks a single in-flight collective. result and err are written
// before done is closed and are read-only afterwards.
type round struct {
	op      opKind
	root    int
	contrib []interface{}
	seen    []bool
	arrived int

	result interface{}
	err    error
	done   chan struct{}
}

// Group is a fixed set of ranks that synchronise through shared memory. All
// methods are safe for concurrent use.
type Group struct {
	size int

	mu      sync.Mutex
	cur     *round
	aborted error
}

// NewGroup returns a group of size ranks.
func NewGroup(size int) (*Group, error) {
	if size <= 0 {
		return nil, xerrors.Errorf("new group of %d ranks: %w", size, ErrInvalidSize)
	}
	return &Group{size: size}, nil
}

// Size returns the number of ranks in the group.
func (g *Group) Size() int { return g.size }

// Err returns the reason the group was aborted, or nil.
func (g *Group) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.aborted
}

// Comm returns the endpoint of the specified rank.
func (g *Group) Comm(rank int) (*Comm, error) {
	if rank < 0 || rank >= g.size {
		return nil, xerrors.Errorf("comm for rank %d of %d: %w", rank, g.size, ErrInvalidRank)
	}
	return &Comm{g: g, rank: rank}, nil
}

// Abort fails the in-flight round, if any, and poisons the group so that
// every current and future collective returns an error wrapping ErrAborted.
func (g *Group) Abort(reason error) {
	g.mu.Lock()
	g.abortLocked(xerrors.Errorf("%v: %w", reason, ErrAborted))
	g.mu.Unlock()
}

func (g *Group) abortLocked(err error) {
	if g.aborted == nil {
		g.aborted = err
	}
	if r := g.cur; r != nil {
		r.err = err
		close(r.done)
		g.cur = nil
	}
}

// exchange contributes v on behalf of rank and blocks until every rank has
// contributed to the same round, the round fails or ctx expires.
func (g *Group) exchange(ctx context.Context, rank int, op opKind, root int, v interface{}, combine combineFunc) (interface{}, error) {
	g.mu.Lock()
	if g.aborted != nil {
		err := g.aborted
		g.mu.Unlock()
		return nil, err
	}

	r := g.cur
	if r == nil {
		r = &round{
			op:      op,
			root:    root,
			contrib: make([]interface{}, g.size),
			seen:    make([]bool, g.size),
			done:    make(chan struct{}),
		}
		g.cur = r
	}

	if r.op != op || r.root != root || r.seen[rank] {
		err := xerrors.Errorf("rank %d entered %s(root=%d) while round is %s(root=%d): %w", rank, op, root, r.op, r.root, ErrMismatch)
		g.abortLocked(xerrors.Errorf("%v: %w", err, ErrAborted))
		g.mu.Unlock()
		return nil, err
	}

	r.seen[rank] = true
	r.contrib[rank] = v
	if r.arrived++; r.arrived == g.size {
		r.result, r.err = combine(r.contrib)
		g.cur = nil
		close(r.done)
	}
	g.mu.Unlock()

	select {
	case <-r.done:
		return r.result, r.err
	case <-ctx.Done():
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	select {
	case <-r.done:
		// The round completed while we were waiting for the lock.
		return r.result, r.err
	default:
	}
	g.abortLocked(xerrors.Errorf("rank %d left %s: %w", rank, op, ErrAborted))
	return nil, xerrors.Errorf("rank %d waiting on %s: %w", rank, op, ctx.Err())
}
