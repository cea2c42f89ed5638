// Package config assembles the settings of a solver run from a YAML file,
// the environment and the command line, in that order of precedence.
package config

import (
	"io/ioutil"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/brandonshearin/parsssp/matrix"
	"github.com/brandonshearin/parsssp/partition"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"
)

const (
	// ModeLocal runs every rank as a goroutine of one process.
	ModeLocal = "local"

	// ModeRPC runs one rank per process, connected through a hub.
	ModeRPC = "rpc"

	// RandomSource asks for the source vertex to be derived from the seed.
	RandomSource = -1
)

// Environment variables consulted by ApplyEnv.
const (
	EnvRank = "SSSP_RANK"
	EnvSize = "SSSP_SIZE"
	EnvHub  = "SSSP_HUB"
)

var (
	ErrInvalidVertexCount = xerrors.New("node count must be a positive 32-bit integer")
	ErrInvalidWorkerCount = xerrors.New("worker count must be positive")
	ErrInvalidMode        = xerrors.New("mode must be local or rpc")
	ErrInvalidRank        = xerrors.New("rank out of range")
	ErrMissingHub         = xerrors.New("hub address is required in rpc mode")
	ErrInvalidSource      = xerrors.New("source vertex out of range")
	ErrInvalidGraph       = xerrors.New("invalid graph generation settings")
	ErrInvalidLogLevel    = xerrors.New("invalid log level")
	ErrInvalidEnv         = xerrors.New("invalid environment value")
)

// Config holds the settings of a single run.
type Config struct {
	Vertices  int     `yaml:"vertices"`
	Workers   int     `yaml:"workers"`
	Mode      string  `yaml:"mode"`
	Partition string  `yaml:"partition"`
	Graph     Graph   `yaml:"graph"`
	Cluster   Cluster `yaml:"cluster"`
	Verify    bool    `yaml:"verify"`
	Print     bool    `yaml:"print"`
	Store     string  `yaml:"store,omitempty"`
	LogLevel  string  `yaml:"log_level"`
}

// Graph controls the generated input graph.
type Graph struct {
	Seed      int64   `yaml:"seed"`
	Source    int     `yaml:"source"`
	Density   float64 `yaml:"density"`
	MaxWeight int     `yaml:"max_weight"`
}

// Cluster describes this process' place in an rpc-mode run.
type Cluster struct {
	Rank        int           `yaml:"rank"`
	Size        int           `yaml:"size"`
	Hub         string        `yaml:"hub"`
	Timeout     time.Duration `yaml:"timeout"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

// Default returns the settings used when nothing else is specified.
func Default() *Config {
	return &Config{
		Workers:   4,
		Mode:      ModeLocal,
		Partition: partition.Balanced.String(),
		Graph: Graph{
			Seed:      1,
			Source:    RandomSource,
			Density:   0.25,
			MaxWeight: 100,
		},
		Cluster: Cluster{
			Size:        1,
			DialTimeout: 30 * time.Second,
		},
		LogLevel: logrus.InfoLevel.String(),
	}
}

// Load reads the YAML file at path on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("read config file %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, xerrors.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Environ returns the process environment merged over the variables defined
// in the dotenv file at path. A missing dotenv file is not an error.
func Environ(path string) (map[string]string, error) {
	env := make(map[string]string)
	if path != "" {
		fileEnv, err := godotenv.Read(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, xerrors.Errorf("read env file %s: %w", path, err)
		}
		for k, v := range fileEnv {
			env[k] = v
		}
	}
	for _, kv := range os.Environ() {
		if idx := strings.IndexByte(kv, '='); idx > 0 {
			env[kv[:idx]] = kv[idx+1:]
		}
	}
	return env, nil
}

// ApplyEnv overrides the cluster topology with SSSP_RANK, SSSP_SIZE and
// SSSP_HUB when they are present in env.
func (c *Config) ApplyEnv(env map[string]string) error {
	var err error
	if v, ok := env[EnvRank]; ok && v != "" {
		if c.Cluster.Rank, err = strconv.Atoi(v); err != nil {
			return xerrors.Errorf("%s=%q: %w", EnvRank, v, ErrInvalidEnv)
		}
	}
	if v, ok := env[EnvSize]; ok && v != "" {
		if c.Cluster.Size, err = strconv.Atoi(v); err != nil {
			return xerrors.Errorf("%s=%q: %w", EnvSize, v, ErrInvalidEnv)
		}
	}
	if v, ok := env[EnvHub]; ok && v != "" {
		c.Cluster.Hub = v
	}
	return nil
}

// Strategy returns the parsed partition strategy.
func (c *Config) Strategy() (partition.Strategy, error) {
	return partition.ParseStrategy(c.Partition)
}

// Ranks returns the number of ranks taking part in the run.
func (c *Config) Ranks() int {
	if c.Mode == ModeRPC {
		return c.Cluster.Size
	}
	return c.Workers
}

// RandomConfig returns the graph generation settings.
func (c *Config) RandomConfig() matrix.RandomConfig {
	return matrix.RandomConfig{
		Seed:      c.Graph.Seed,
		Density:   c.Graph.Density,
		MaxWeight: c.Graph.MaxWeight,
	}
}

// Validate checks the settings for consistency.
func (c *Config) Validate() error {
	if c.Vertices <= 0 || c.Vertices > math.MaxInt32 {
		return xerrors.Errorf("vertices %d: %w", c.Vertices, ErrInvalidVertexCount)
	}

	switch c.Mode {
	case ModeLocal:
		if c.Workers <= 0 {
			return xerrors.Errorf("workers %d: %w", c.Workers, ErrInvalidWorkerCount)
		}
	case ModeRPC:
		if c.Cluster.Size <= 0 {
			return xerrors.Errorf("size %d: %w", c.Cluster.Size, ErrInvalidWorkerCount)
		}
		if c.Cluster.Rank < 0 || c.Cluster.Rank >= c.Cluster.Size {
			return xerrors.Errorf("rank %d of %d: %w", c.Cluster.Rank, c.Cluster.Size, ErrInvalidRank)
		}
		if c.Cluster.Hub == "" {
			return ErrMissingHub
		}
	default:
		return xerrors.Errorf("mode %q: %w", c.Mode, ErrInvalidMode)
	}

	if _, err := c.Strategy(); err != nil {
		return err
	}

	if c.Graph.Source != RandomSource && (c.Graph.Source < 0 || c.Graph.Source >= c.Vertices) {
		return xerrors.Errorf("source %d with %d vertices: %w", c.Graph.Source, c.Vertices, ErrInvalidSource)
	}
	if c.Graph.Density <= 0 || c.Graph.Density > 1 {
		return xerrors.Errorf("density %v: %w", c.Graph.Density, ErrInvalidGraph)
	}
	if c.Graph.MaxWeight < 1 || float64(c.Graph.MaxWeight) >= matrix.Max {
		return xerrors.Errorf("max weight %d: %w", c.Graph.MaxWeight, ErrInvalidGraph)
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return xerrors.Errorf("log level %q: %w", c.LogLevel, ErrInvalidLogLevel)
	}
	return nil
}
