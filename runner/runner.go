// Package runner executes the parallel solver with one goroutine per worker
// inside the current process.
package runner

import (
	"context"
	"io/ioutil"
	"sync"

	"github.com/brandonshearin/parsssp/collective"
	"github.com/brandonshearin/parsssp/collective/local"
	"github.com/brandonshearin/parsssp/sssp"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// ErrInvalidWorkerCount is returned when fewer than one worker is requested.
var ErrInvalidWorkerCount = xerrors.New("worker count must be positive")

// Config encapsulates the options for an in-process run.
type Config struct {
	// Workers is the number of cooperating workers.
	Workers int

	// Solver is handed to every worker. Its Logger, if nil, is replaced
	// with the runner's Logger.
	Solver sssp.Config

	Logger *logrus.Entry
}

// Run solves p with cfg.Workers goroutines that communicate through an
// in-process group and returns the root's result.
//
// Calls to Run block until:
// - every worker has finished OR
// - any worker fails, which aborts all others OR
// - the supplied context expires
func Run(ctx context.Context, p *collective.Problem, cfg Config) (*sssp.Result, error) {
	if cfg.Workers <= 0 {
		return nil, xerrors.Errorf("run with %d workers: %w", cfg.Workers, ErrInvalidWorkerCount)
	}
	log := cfg.Logger
	if log == nil {
		l := logrus.New()
		l.Out = ioutil.Discard
		log = logrus.NewEntry(l)
	}
	if cfg.Solver.Logger == nil {
		cfg.Solver.Logger = log
	}

	group, err := local.NewGroup(cfg.Workers)
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	results := make([]*sssp.Result, cfg.Workers)
	errCh := make(chan error, cfg.Workers)
	for rank := 0; rank < cfg.Workers; rank++ {
		comm, err := group.Comm(rank)
		if err != nil {
			return nil, err
		}

		wg.Add(1)
		go func(comm *local.Comm) {
			defer wg.Done()
			res, err := sssp.Solve(ctx, comm, p, cfg.Solver)
			if err != nil {
				// A failed worker never reaches the next collective, so
				// the group must be torn down to release the others.
				group.Abort(xerrors.Errorf("worker %d failed", comm.Rank()))
				errCh <- xerrors.Errorf("worker %d: %w", comm.Rank(), err)
				return
			}
			results[comm.Rank()] = res
		}(comm)
	}

	log.WithField("workers", cfg.Workers).Debug("started workers")

	go func() {
		wg.Wait()
		close(errCh)
	}()

	for wErr := range errCh {
		err = multierror.Append(err, wErr)
	}
	if err != nil {
		return nil, err
	}
	return results[cfg.Solver.Root], nil
}
