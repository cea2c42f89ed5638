package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/brandonshearin/parsssp/result"
	"github.com/brandonshearin/parsssp/result/resulttest"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(SQLiteStoreTestSuite))

func Test(t *testing.T) { gc.TestingT(t) }

type SQLiteStoreTestSuite struct {
	resulttest.SuiteBase
	store *SQLiteStore
}

func (s *SQLiteStoreTestSuite) SetUpTest(c *gc.C) {
	store, err := NewSQLiteStore(filepath.Join(c.MkDir(), "runs.db"))
	c.Assert(err, gc.IsNil)
	s.store = store
	s.SetStore(store)
}

func (s *SQLiteStoreTestSuite) TearDownTest(c *gc.C) {
	c.Assert(s.store.Close(), gc.IsNil)
}

func (s *SQLiteStoreTestSuite) TestRunsSurviveReopen(c *gc.C) {
	path := filepath.Join(c.MkDir(), "history.db")
	first, err := NewSQLiteStore(path)
	c.Assert(err, gc.IsNil)

	run := &result.Run{Vertices: 2, Workers: 1, Partition: "truncate", Distances: []float64{0, 10000}}
	c.Assert(first.SaveRun(run), gc.IsNil)
	c.Assert(first.Close(), gc.IsNil)

	second, err := NewSQLiteStore(path)
	c.Assert(err, gc.IsNil)
	defer func() { _ = second.Close() }()

	stored, err := second.FindRun(run.ID)
	c.Assert(err, gc.IsNil)
	c.Assert(stored.Distances, gc.DeepEquals, run.Distances)
	c.Assert(stored.Partition, gc.Equals, "truncate")
}
