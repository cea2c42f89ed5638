package sssp

import "golang.org/x/xerrors"

var (
	// ErrNilProblem is returned when the root did not supply a problem.
	ErrNilProblem = xerrors.New("no problem was broadcast")

	// ErrNilGraph is returned when the broadcast problem carries no graph.
	ErrNilGraph = xerrors.New("problem has no graph")

	// ErrInvalidSource is returned when the source vertex is not part of
	// the graph.
	ErrInvalidSource = xerrors.New("source vertex is not part of the graph")

	// ErrInvalidRoot is returned when the configured root is not a rank of
	// the group.
	ErrInvalidRoot = xerrors.New("root rank out of range")

	// ErrAlreadyRun is returned by Run on a worker that has been run before.
	ErrAlreadyRun = xerrors.New("worker has already been run")

	// ErrPartitionMismatch is returned by the root when a gathered
	// partition does not have the expected size.
	ErrPartitionMismatch = xerrors.New("gathered partition size mismatch")
)
