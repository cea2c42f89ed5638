package matrix

import (
	"math/rand"

	"golang.org/x/xerrors"
)

// RandomConfig controls the generation of pseudo-random graphs.
type RandomConfig struct {
	// Seed for the pseudo-random source. Equal seeds produce equal graphs.
	Seed int64

	// Density is the probability in (0, 1] that a directed edge u→v exists.
	Density float64

	// MaxWeight is the upper bound (inclusive) of the integral edge weights.
	// It must lie in [1, Max).
	MaxWeight int
}

// ErrInvalidRandomConfig is returned by Random for out-of-range settings.
var ErrInvalidRandomConfig = xerrors.New("invalid random graph configuration")

func (cfg RandomConfig) validate() error {
	if cfg.Density <= 0 || cfg.Density > 1 {
		return xerrors.Errorf("density %v not in (0, 1]: %w", cfg.Density, ErrInvalidRandomConfig)
	}
	if cfg.MaxWeight < 1 || float64(cfg.MaxWeight) >= Max {
		return xerrors.Errorf("max weight %d not in [1, %v): %w", cfg.MaxWeight, Max, ErrInvalidRandomConfig)
	}
	return nil
}

// Random generates an n×n graph in which each directed edge exists with
// probability cfg.Density and carries a weight drawn uniformly from
// [1, cfg.MaxWeight].
func Random(n int, cfg RandomConfig) (*Dense, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	m, err := New(n)
	if err != nil {
		return nil, err
	}

	rnd := rand.New(rand.NewSource(cfg.Seed))
	for u := 0; u < n; u++ {
		for v := 0; v < n; v++ {
			if u == v {
				continue
			}
			if rnd.Float64() < cfg.Density {
				m.data[u*n+v] = float64(1 + rnd.Intn(cfg.MaxWeight))
			}
		}
	}
	return m, nil
}

// RandomSource picks a source vertex for an n-vertex graph from the given
// seed. It uses its own random stream so that it does not depend on how many
// values Random consumed.
func RandomSource(n int, seed int64) int {
	return rand.New(rand.NewSource(seed ^ 0x5eed)).Intn(n)
}
