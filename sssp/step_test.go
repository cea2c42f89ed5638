package sssp

import (
	"github.com/brandonshearin/parsssp/collective"
	"github.com/brandonshearin/parsssp/matrix"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(StepTestSuite))

type StepTestSuite struct{}

func (s *StepTestSuite) TestLocalMinSkipsVisited(c *gc.C) {
	dist := []float64{1, 5, 3}
	visited := []bool{true, false, false}
	c.Assert(LocalMin(dist, visited, 10), gc.Equals, collective.Selection{Distance: 3, Vertex: 12})
}

func (s *StepTestSuite) TestLocalMinPrefersLowestIndexOnTies(c *gc.C) {
	dist := []float64{7, 2, 2, 2}
	visited := make([]bool, 4)
	c.Assert(LocalMin(dist, visited, 4), gc.Equals, collective.Selection{Distance: 2, Vertex: 5})
}

func (s *StepTestSuite) TestLocalMinSelectsUnreachedVertices(c *gc.C) {
	dist := []float64{matrix.Max, matrix.Max}
	visited := []bool{false, false}
	c.Assert(LocalMin(dist, visited, 0), gc.Equals, collective.Selection{Distance: matrix.Max, Vertex: 0})
}

func (s *StepTestSuite) TestLocalMinAllVisited(c *gc.C) {
	c.Assert(LocalMin([]float64{1}, []bool{true}, 0).IsNone(), gc.Equals, true)
	c.Assert(LocalMin(nil, nil, 3).IsNone(), gc.Equals, true)
}

func (s *StepTestSuite) TestRelax(c *gc.C) {
	// Local partition covers global vertices 2..4; row is the outgoing
	// weights of the agreed vertex.
	dist := []float64{10, matrix.Max, 3}
	visited := []bool{false, false, true}
	row := []float64{0, 0, 1, 2, 0}

	relax(dist, visited, 2, 5, row)
	c.Assert(dist, gc.DeepEquals, []float64{6, 7, 3})
}

func (s *StepTestSuite) TestRelaxIgnoresMissingEdges(c *gc.C) {
	dist := []float64{matrix.Unreached, 4}
	visited := []bool{false, false}
	row := []float64{matrix.Max, matrix.Max}

	relax(dist, visited, 0, 0, row)
	c.Assert(dist, gc.DeepEquals, []float64{matrix.Unreached, 4})

	// A vertex that was never reached cannot shorten anything either.
	relax(dist, visited, 0, matrix.Unreached, []float64{0, 0})
	c.Assert(dist, gc.DeepEquals, []float64{matrix.Unreached, 4})
}

func (s *StepTestSuite) TestRelaxKeepsLongPaths(c *gc.C) {
	dist := []float64{matrix.Unreached}
	relax(dist, []bool{false}, 0, 6000, []float64{6000})
	c.Assert(dist, gc.DeepEquals, []float64{12000.0})
}
