package collective

import (
	"testing"

	"github.com/brandonshearin/parsssp/matrix"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(SelectionTestSuite))

func Test(t *testing.T) { gc.TestingT(t) }

type SelectionTestSuite struct{}

func (s *SelectionTestSuite) TestSmallestDistanceWins(c *gc.C) {
	got := Reduce([]Selection{
		{Distance: 7, Vertex: 0},
		{Distance: 3, Vertex: 5},
		{Distance: 4, Vertex: 2},
	})
	c.Assert(got, gc.Equals, Selection{Distance: 3, Vertex: 5})
}

func (s *SelectionTestSuite) TestTiesBreakOnLowestVertex(c *gc.C) {
	sels := []Selection{
		{Distance: 2, Vertex: 9},
		{Distance: 2, Vertex: 4},
		{Distance: 2, Vertex: 6},
	}
	// The order of the contributions must not matter.
	for i := 0; i < len(sels); i++ {
		rotated := append(append([]Selection{}, sels[i:]...), sels[:i]...)
		c.Assert(Reduce(rotated), gc.Equals, Selection{Distance: 2, Vertex: 4})
	}
}

func (s *SelectionTestSuite) TestNoneLosesTies(c *gc.C) {
	sel := Selection{Distance: matrix.Unreached, Vertex: 8}
	c.Assert(MinLoc(None(), sel), gc.Equals, sel)
	c.Assert(MinLoc(sel, None()), gc.Equals, sel)
	c.Assert(None().Less(None()), gc.Equals, false)
}

func (s *SelectionTestSuite) TestReduceEmpty(c *gc.C) {
	c.Assert(Reduce(nil).IsNone(), gc.Equals, true)
	c.Assert(Reduce([]Selection{None(), None()}).IsNone(), gc.Equals, true)
}
