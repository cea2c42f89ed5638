package matrix_test

import (
	"github.com/brandonshearin/parsssp/matrix"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(RandomTestSuite))

type RandomTestSuite struct{}

func (s *RandomTestSuite) TestRandomIsDeterministic(c *gc.C) {
	cfg := matrix.RandomConfig{Seed: 42, Density: 0.5, MaxWeight: 20}

	a, err := matrix.Random(16, cfg)
	c.Assert(err, gc.IsNil)
	b, err := matrix.Random(16, cfg)
	c.Assert(err, gc.IsNil)
	c.Assert(a.Equal(b), gc.Equals, true)

	cfg.Seed = 43
	other, err := matrix.Random(16, cfg)
	c.Assert(err, gc.IsNil)
	c.Assert(a.Equal(other), gc.Equals, false)
}

func (s *RandomTestSuite) TestRandomWeightsInRange(c *gc.C) {
	m, err := matrix.Random(20, matrix.RandomConfig{Seed: 1, Density: 0.3, MaxWeight: 9})
	c.Assert(err, gc.IsNil)
	c.Assert(m.Validate(), gc.IsNil)

	for u := 0; u < m.Size(); u++ {
		for v, w := range m.Row(u) {
			switch {
			case u == v:
				c.Assert(w, gc.Equals, 0.0)
			case w != matrix.Max:
				c.Assert(w >= 1 && w <= 9, gc.Equals, true, gc.Commentf("edge (%d,%d) = %v", u, v, w))
			}
		}
	}
}

func (s *RandomTestSuite) TestRandomFullDensity(c *gc.C) {
	m, err := matrix.Random(5, matrix.RandomConfig{Seed: 7, Density: 1, MaxWeight: 3})
	c.Assert(err, gc.IsNil)
	for u := 0; u < 5; u++ {
		for v, w := range m.Row(u) {
			if u != v {
				c.Assert(w, gc.Not(gc.Equals), matrix.Max)
			}
		}
	}
}

func (s *RandomTestSuite) TestRandomInvalidConfig(c *gc.C) {
	specs := []matrix.RandomConfig{
		{Density: 0, MaxWeight: 5},
		{Density: 1.5, MaxWeight: 5},
		{Density: 0.5, MaxWeight: 0},
		{Density: 0.5, MaxWeight: int(matrix.Max)},
	}
	for i, cfg := range specs {
		_, err := matrix.Random(4, cfg)
		c.Assert(xerrors.Is(err, matrix.ErrInvalidRandomConfig), gc.Equals, true, gc.Commentf("config %d", i))
	}
}

func (s *RandomTestSuite) TestRandomSource(c *gc.C) {
	for seed := int64(0); seed < 50; seed++ {
		src := matrix.RandomSource(7, seed)
		c.Assert(src >= 0 && src < 7, gc.Equals, true)
		c.Assert(matrix.RandomSource(7, seed), gc.Equals, src)
	}
}
