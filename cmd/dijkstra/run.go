package main

import (
	"context"
	"fmt"
	"io"
	"net"

	"github.com/brandonshearin/parsssp/collective"
	"github.com/brandonshearin/parsssp/collective/rpcnet"
	"github.com/brandonshearin/parsssp/config"
	"github.com/brandonshearin/parsssp/matrix"
	"github.com/brandonshearin/parsssp/partition"
	"github.com/brandonshearin/parsssp/result"
	"github.com/brandonshearin/parsssp/result/store/sqlite"
	"github.com/brandonshearin/parsssp/runner"
	"github.com/brandonshearin/parsssp/sequential"
	"github.com/brandonshearin/parsssp/sssp"
	"github.com/brandonshearin/parsssp/verify"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/xerrors"
)

// The coordinator is always rank 0.
const root = 0

func run(ctx context.Context, cfg *config.Config, out, errOut io.Writer, logger *logrus.Entry) error {
	strategy, err := cfg.Strategy()
	if err != nil {
		return err
	}
	solverCfg := sssp.Config{Root: root, Partition: strategy, Logger: logger}

	var (
		res *sssp.Result
		p   *collective.Problem
	)
	if cfg.Mode == config.ModeLocal || cfg.Cluster.Rank == root {
		if p, err = generate(cfg); err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{
			"vertices": cfg.Vertices,
			"source":   p.Source,
			"ranks":    cfg.Ranks(),
		}).Info("generated graph")
	}

	switch cfg.Mode {
	case config.ModeLocal:
		res, err = runner.Run(ctx, p, runner.Config{Workers: cfg.Workers, Solver: solverCfg, Logger: logger})
	case config.ModeRPC:
		res, err = runRPC(ctx, cfg, p, solverCfg, logger)
	default:
		err = xerrors.Errorf("mode %q: %w", cfg.Mode, config.ErrInvalidMode)
	}
	if err != nil {
		return err
	}

	if res.Distances == nil {
		logger.WithField("partition", res.Topology.Range).Info("partition delivered to coordinator")
		return nil
	}
	return report(cfg, p, res, strategy, out, errOut)
}

func generate(cfg *config.Config) (*collective.Problem, error) {
	g, err := matrix.Random(cfg.Vertices, cfg.RandomConfig())
	if err != nil {
		return nil, xerrors.Errorf("generate graph: %w", err)
	}
	source := cfg.Graph.Source
	if source == config.RandomSource {
		source = matrix.RandomSource(cfg.Vertices, cfg.Graph.Seed)
	}
	return &collective.Problem{Graph: g, Source: source}, nil
}

// runRPC executes this process' rank. Rank 0 additionally hosts the hub all
// ranks connect to.
func runRPC(ctx context.Context, cfg *config.Config, p *collective.Problem, solverCfg sssp.Config, logger *logrus.Entry) (*sssp.Result, error) {
	addr := cfg.Cluster.Hub
	if cfg.Cluster.Rank == root {
		hub, err := rpcnet.NewHub(rpcnet.HubConfig{
			Size:    cfg.Cluster.Size,
			Timeout: cfg.Cluster.Timeout,
			Logger:  logger,
		})
		if err != nil {
			return nil, err
		}
		l, err := net.Listen("tcp", addr)
		if err != nil {
			return nil, xerrors.Errorf("listen on %s: %w", addr, err)
		}
		defer func() { _ = l.Close() }()
		go func() {
			if err := hub.Serve(l); err != nil {
				logger.WithField("err", err).Error("hub stopped")
				hub.Abort(err)
			}
		}()
		addr = l.Addr().String()
	}

	client, err := rpcnet.Dial(ctx, addr, rpcnet.DialConfig{
		Rank:        cfg.Cluster.Rank,
		Size:        cfg.Cluster.Size,
		DialTimeout: cfg.Cluster.DialTimeout,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Close() }()

	return sssp.Solve(ctx, client, p, solverCfg)
}

// report prints the coordinator's summary to out. Verification mismatches go
// to errOut.
func report(cfg *config.Config, p *collective.Problem, res *sssp.Result, strategy partition.Strategy, out, errOut io.Writer) error {
	fmt.Fprintf(out, "elapsed time: %dms\n", res.Elapsed.Milliseconds())

	if cfg.Print {
		printer := message.NewPrinter(language.English)
		printer.Fprintf(out, "graph: %d vertices, %d edges, source %d\n", p.Graph.Size(), countEdges(p.Graph), p.Source)
		fmt.Fprintf(out, "%s\n", p.Graph)
		for v, d := range res.Distances {
			fmt.Fprintf(out, "%d\t%s\n", v, formatDistance(d))
		}
	}

	run := &result.Run{
		Vertices:  cfg.Vertices,
		Workers:   cfg.Ranks(),
		Source:    p.Source,
		Seed:      cfg.Graph.Seed,
		Partition: strategy.String(),
		Elapsed:   res.Elapsed,
		Distances: res.Distances,
	}

	if cfg.Verify {
		fmt.Fprintln(out, "verifying calculation...")
		rep, err := verify.Check(p.Graph, p.Source, res.Distances, sequential.ShortestPaths)
		if err != nil {
			return err
		}
		for _, m := range rep.Mismatches {
			fmt.Fprintln(errOut, m.String())
		}
		fmt.Fprintln(out, "verification done.")
		run.Verified = true
		run.Mismatches = len(rep.Mismatches)
	}

	if cfg.Store == "" {
		return nil
	}
	store, err := sqlite.NewSQLiteStore(cfg.Store)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	if err = store.SaveRun(run); err != nil {
		return err
	}
	fmt.Fprintf(out, "stored run %s\n", run.ID.String())
	return nil
}

func countEdges(g *matrix.Dense) int {
	edges := 0
	for u := 0; u < g.Size(); u++ {
		for v, w := range g.Row(u) {
			if u != v && matrix.IsEdge(w) {
				edges++
			}
		}
	}
	return edges
}

func formatDistance(d float64) string {
	if d >= matrix.Max {
		return "unreachable"
	}
	return fmt.Sprintf("%g", d)
}
