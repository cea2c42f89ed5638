package sssp

import (
	"context"

	"github.com/brandonshearin/parsssp/collective"
	"github.com/brandonshearin/parsssp/collective/mocks"
	"github.com/brandonshearin/parsssp/matrix"
	"github.com/golang/mock/gomock"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(CommErrorsTestSuite))

// CommErrorsTestSuite drives a single worker against a mocked transport to
// verify that every communication failure is fatal and reported with the
// phase it happened in.
type CommErrorsTestSuite struct {
	comm    *mocks.MockComm
	problem *collective.Problem
}

func (s *CommErrorsTestSuite) SetUpTest(c *gc.C) {
	g, err := matrix.New(3)
	c.Assert(err, gc.IsNil)
	s.problem = &collective.Problem{Graph: g, Source: 0}
}

func (s *CommErrorsTestSuite) newWorker(ctrl *gomock.Controller) *Worker {
	s.comm = mocks.NewMockComm(ctrl)
	s.comm.EXPECT().Rank().Return(0).AnyTimes()
	s.comm.EXPECT().Size().Return(1).AnyTimes()
	return NewWorker(s.comm, Config{})
}

func (s *CommErrorsTestSuite) TestBroadcastFailure(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()
	w := s.newWorker(ctrl)

	s.comm.EXPECT().Broadcast(gomock.Any(), 0, s.problem).Return(nil, xerrors.New("link down"))

	_, err := w.Run(context.TODO(), s.problem)
	c.Assert(err, gc.ErrorMatches, "broadcast: link down")
	c.Assert(w.State(), gc.Equals, Broadcasting)
}

func (s *CommErrorsTestSuite) TestAllReduceFailure(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()
	w := s.newWorker(ctrl)

	s.comm.EXPECT().Broadcast(gomock.Any(), 0, s.problem).Return(s.problem, nil)
	gomock.InOrder(
		s.comm.EXPECT().AllReduceMinLoc(gomock.Any(), collective.Selection{Distance: 0, Vertex: 0}).DoAndReturn(
			func(_ context.Context, local collective.Selection) (collective.Selection, error) {
				return local, nil
			},
		),
		s.comm.EXPECT().AllReduceMinLoc(gomock.Any(), gomock.Any()).Return(collective.None(), xerrors.New("peer vanished")),
	)

	_, err := w.Run(context.TODO(), s.problem)
	c.Assert(err, gc.ErrorMatches, "iteration 1: all-reduce: peer vanished")
	c.Assert(w.State(), gc.Equals, Iterating)
	c.Assert(w.Visited(0), gc.Equals, true)
}

func (s *CommErrorsTestSuite) TestGatherFailure(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()
	w := s.newWorker(ctrl)

	s.comm.EXPECT().Broadcast(gomock.Any(), 0, s.problem).Return(s.problem, nil)
	s.comm.EXPECT().AllReduceMinLoc(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, local collective.Selection) (collective.Selection, error) {
			return local, nil
		},
	).Times(3)
	s.comm.EXPECT().Gather(gomock.Any(), 0, []float64{0, matrix.Unreached, matrix.Unreached}).Return(nil, xerrors.New("timeout"))

	_, err := w.Run(context.TODO(), s.problem)
	c.Assert(err, gc.ErrorMatches, "gather: timeout")
	c.Assert(w.State(), gc.Equals, Gathering)
}

func (s *CommErrorsTestSuite) TestGatheredPartitionMismatch(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()
	w := s.newWorker(ctrl)

	s.comm.EXPECT().Broadcast(gomock.Any(), 0, s.problem).Return(s.problem, nil)
	s.comm.EXPECT().AllReduceMinLoc(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, local collective.Selection) (collective.Selection, error) {
			return local, nil
		},
	).Times(3)
	s.comm.EXPECT().Gather(gomock.Any(), 0, gomock.Any()).Return([][]float64{{0, 1}}, nil)

	_, err := w.Run(context.TODO(), s.problem)
	c.Assert(xerrors.Is(err, ErrPartitionMismatch), gc.Equals, true)
}

func (s *CommErrorsTestSuite) TestSingleWorkerSuccess(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()
	w := s.newWorker(ctrl)

	c.Assert(s.problem.Graph.Set(0, 2, 4), gc.IsNil)
	s.comm.EXPECT().Broadcast(gomock.Any(), 0, s.problem).Return(s.problem, nil)
	s.comm.EXPECT().AllReduceMinLoc(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, local collective.Selection) (collective.Selection, error) {
			return local, nil
		},
	).Times(3)
	s.comm.EXPECT().Gather(gomock.Any(), 0, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ int, part []float64) ([][]float64, error) {
			return [][]float64{part}, nil
		},
	)

	res, err := w.Run(context.TODO(), s.problem)
	c.Assert(err, gc.IsNil)
	c.Assert(res.Distances, gc.DeepEquals, []float64{0, matrix.Max, 4})
}
