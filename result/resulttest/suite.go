package resulttest

import (
	"time"

	"github.com/brandonshearin/parsssp/result"
	"github.com/google/uuid"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

/*SuiteBase defines a re-usable set of tests that
can be executed against any type that implements result.Store*/
type SuiteBase struct {
	s result.Store
}

func (s *SuiteBase) SetStore(store result.Store) {
	s.s = store
}

func sampleRun() *result.Run {
	return &result.Run{
		Vertices:  4,
		Workers:   2,
		Source:    0,
		Seed:      7,
		Partition: "balanced",
		Elapsed:   12 * time.Millisecond,
		Distances: []float64{0, 1, 2, 3},
		Verified:  true,
	}
}

// TestSaveAssignsIDAndTimestamp verifies the insert logic.
func (s *SuiteBase) TestSaveAssignsIDAndTimestamp(c *gc.C) {
	before := time.Now().Add(-time.Second)
	run := sampleRun()
	c.Assert(s.s.SaveRun(run), gc.IsNil)
	c.Assert(run.ID, gc.Not(gc.Equals), uuid.Nil, gc.Commentf("expected an ID to be assigned to the new run"))
	c.Assert(run.CreatedAt.After(before), gc.Equals, true, gc.Commentf("expected the run to be timestamped"))

	other := sampleRun()
	c.Assert(s.s.SaveRun(other), gc.IsNil)
	c.Assert(other.ID, gc.Not(gc.Equals), run.ID)
}

// TestFindRun verifies the lookup logic.
func (s *SuiteBase) TestFindRun(c *gc.C) {
	/*case 1: run not found*/
	_, err := s.s.FindRun(uuid.New())
	c.Assert(xerrors.Is(err, result.ErrNotFound), gc.Equals, true)

	/*case 2: a saved run is returned unchanged*/
	run := sampleRun()
	c.Assert(s.s.SaveRun(run), gc.IsNil)

	stored, err := s.s.FindRun(run.ID)
	c.Assert(err, gc.IsNil)
	s.assertSameRun(c, stored, run)

	/*the caller must not be able to mutate the stored copy*/
	stored.Distances[1] = 99
	again, err := s.s.FindRun(run.ID)
	c.Assert(err, gc.IsNil)
	c.Assert(again.Distances[1], gc.Equals, 1.0)
}

// TestSaveReplacesExistingRun verifies that saving a known ID overwrites it.
func (s *SuiteBase) TestSaveReplacesExistingRun(c *gc.C) {
	run := sampleRun()
	c.Assert(s.s.SaveRun(run), gc.IsNil)

	updated := run.Clone()
	updated.Verified = false
	updated.Mismatches = 2
	c.Assert(s.s.SaveRun(updated), gc.IsNil)
	c.Assert(updated.ID, gc.Equals, run.ID)

	stored, err := s.s.FindRun(run.ID)
	c.Assert(err, gc.IsNil)
	c.Assert(stored.Mismatches, gc.Equals, 2)
	c.Assert(stored.Verified, gc.Equals, false)
}

// TestRunsIterator verifies the time-filtered iteration logic.
func (s *SuiteBase) TestRunsIterator(c *gc.C) {
	base := time.Now().Truncate(time.Second).UTC()
	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		run := sampleRun()
		run.Workers = i + 1
		run.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		c.Assert(s.s.SaveRun(run), gc.IsNil)
		ids = append(ids, run.ID)
	}

	it, err := s.s.Runs(base.Add(90 * time.Second))
	c.Assert(err, gc.IsNil)

	var got []uuid.UUID
	for it.Next() {
		run := it.Run()
		c.Assert(run.Distances, gc.DeepEquals, []float64{0, 1, 2, 3})
		got = append(got, run.ID)
	}
	c.Assert(it.Error(), gc.IsNil)
	c.Assert(it.Close(), gc.IsNil)
	c.Assert(got, gc.DeepEquals, ids[2:], gc.Commentf("expected runs created after the cutoff, oldest first"))

	it, err = s.s.Runs(base.Add(time.Hour))
	c.Assert(err, gc.IsNil)
	c.Assert(it.Next(), gc.Equals, false)
	c.Assert(it.Close(), gc.IsNil)
}

func (s *SuiteBase) assertSameRun(c *gc.C, got, want *result.Run) {
	c.Assert(got.ID, gc.Equals, want.ID)
	c.Assert(got.CreatedAt.Equal(want.CreatedAt), gc.Equals, true,
		gc.Commentf("created at %v, want %v", got.CreatedAt, want.CreatedAt))

	gotCopy, wantCopy := got.Clone(), want.Clone()
	gotCopy.CreatedAt, wantCopy.CreatedAt = time.Time{}, time.Time{}
	c.Assert(gotCopy, gc.DeepEquals, wantCopy)
}
