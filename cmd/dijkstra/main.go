package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"github.com/brandonshearin/parsssp/config"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

var errUsage = xerrors.New("usage")

func main() {
	cfg, err := parseArgs(os.Args[0], os.Args[1:], os.Stderr)
	if err != nil {
		if !xerrors.Is(err, errUsage) && !xerrors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt)
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	logger := newLogger(cfg, os.Stderr)
	if err = run(ctx, cfg, os.Stdout, os.Stderr, logger); err != nil {
		logger.WithField("err", err).Error("run failed")
		os.Exit(1)
	}
}

// parseArgs builds the run configuration from the defaults, the optional
// YAML file, the environment and finally the flags that were explicitly set.
func parseArgs(prog string, args []string, stderr io.Writer) (*config.Config, error) {
	fs := flag.NewFlagSet(prog, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: %s node_count\n", prog)
		fs.PrintDefaults()
	}

	def := config.Default()
	var (
		configPath = fs.String("config", "", "path to a YAML configuration file")
		envPath    = fs.String("env-file", ".env", "dotenv file consulted for SSSP_* variables")
		workers    = fs.Int("workers", def.Workers, "number of workers in local mode")
		mode       = fs.String("mode", def.Mode, "execution mode: local or rpc")
		rank       = fs.Int("rank", def.Cluster.Rank, "rank of this process in rpc mode")
		size       = fs.Int("size", def.Cluster.Size, "number of processes in rpc mode")
		hub        = fs.String("hub", def.Cluster.Hub, "hub address in rpc mode; rank 0 listens on it")
		seed       = fs.Int64("seed", def.Graph.Seed, "seed for the generated graph and source")
		source     = fs.Int("source", def.Graph.Source, "source vertex, -1 picks one from the seed")
		density    = fs.Float64("density", def.Graph.Density, "probability that an edge exists")
		maxWeight  = fs.Int("max-weight", def.Graph.MaxWeight, "largest generated edge weight")
		strategy   = fs.String("partition", def.Partition, "partition strategy: balanced or truncate")
		verifyRun  = fs.Bool("verify", def.Verify, "check the result against the sequential solver")
		printRun   = fs.Bool("print", def.Print, "print the graph and the distances")
		store      = fs.String("store", def.Store, "sqlite file that records the run history")
		logLevel   = fs.String("log-level", def.LogLevel, "log level")
	)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return nil, errUsage
	}
	vertices, err := strconv.ParseInt(fs.Arg(0), 10, 32)
	if err != nil || vertices <= 0 {
		fs.Usage()
		return nil, errUsage
	}

	cfg := def
	if *configPath != "" {
		if cfg, err = config.Load(*configPath); err != nil {
			return nil, err
		}
	}

	env, err := config.Environ(*envPath)
	if err != nil {
		return nil, err
	}
	if err = cfg.ApplyEnv(env); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "workers":
			cfg.Workers = *workers
		case "mode":
			cfg.Mode = *mode
		case "rank":
			cfg.Cluster.Rank = *rank
		case "size":
			cfg.Cluster.Size = *size
		case "hub":
			cfg.Cluster.Hub = *hub
		case "seed":
			cfg.Graph.Seed = *seed
		case "source":
			cfg.Graph.Source = *source
		case "density":
			cfg.Graph.Density = *density
		case "max-weight":
			cfg.Graph.MaxWeight = *maxWeight
		case "partition":
			cfg.Partition = *strategy
		case "verify":
			cfg.Verify = *verifyRun
		case "print":
			cfg.Print = *printRun
		case "store":
			cfg.Store = *store
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
	cfg.Vertices = int(vertices)

	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, out io.Writer) *logrus.Entry {
	l := logrus.New()
	l.Out = out
	l.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		l.Level = level
	}

	fields := logrus.Fields{"mode": cfg.Mode}
	if cfg.Mode == config.ModeRPC {
		fields["rank"] = cfg.Cluster.Rank
	}
	return l.WithFields(fields)
}
