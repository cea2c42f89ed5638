package rpcnet_test

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/brandonshearin/parsssp/collective"
	"github.com/brandonshearin/parsssp/collective/rpcnet"
	"github.com/brandonshearin/parsssp/matrix"
	"github.com/brandonshearin/parsssp/sequential"
	"github.com/brandonshearin/parsssp/sssp"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(HubTestSuite))

func Test(t *testing.T) { gc.TestingT(t) }

type HubTestSuite struct {
	l    net.Listener
	addr string
}

func (s *HubTestSuite) startHub(c *gc.C, cfg rpcnet.HubConfig) *rpcnet.Hub {
	hub, err := rpcnet.NewHub(cfg)
	c.Assert(err, gc.IsNil)

	s.l, err = net.Listen("tcp", "127.0.0.1:0")
	c.Assert(err, gc.IsNil)
	s.addr = s.l.Addr().String()

	go func() { _ = hub.Serve(s.l) }()
	return hub
}

func (s *HubTestSuite) TearDownTest(c *gc.C) {
	if s.l != nil {
		_ = s.l.Close()
		s.l = nil
	}
}

func (s *HubTestSuite) dial(c *gc.C, rank, size int) *rpcnet.Client {
	client, err := rpcnet.Dial(context.TODO(), s.addr, rpcnet.DialConfig{
		Rank:        rank,
		Size:        size,
		DialTimeout: 5 * time.Second,
	})
	c.Assert(err, gc.IsNil)
	return client
}

func (s *HubTestSuite) TestSolveOverRPC(c *gc.C) {
	const workers = 3
	s.startHub(c, rpcnet.HubConfig{Size: workers, Timeout: 10 * time.Second})

	g, err := matrix.Random(10, matrix.RandomConfig{Seed: 7, Density: 0.3, MaxWeight: 20})
	c.Assert(err, gc.IsNil)
	want, err := sequential.ShortestPaths(g, 4)
	c.Assert(err, gc.IsNil)

	clients := make([]*rpcnet.Client, workers)
	for rank := range clients {
		clients[rank] = s.dial(c, rank, workers)
		defer func(cl *rpcnet.Client) { _ = cl.Close() }(clients[rank])
	}

	var wg sync.WaitGroup
	results := make([]*sssp.Result, workers)
	errs := make([]error, workers)
	for rank := range clients {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()
			var p *collective.Problem
			if rank == 0 {
				p = &collective.Problem{Graph: g, Source: 4}
			}
			results[rank], errs[rank] = sssp.Solve(context.TODO(), clients[rank], p, sssp.Config{})
		}(rank)
	}
	wg.Wait()

	for rank, err := range errs {
		c.Assert(err, gc.IsNil, gc.Commentf("rank %d", rank))
	}
	c.Assert(results[0].Distances, gc.DeepEquals, want)
	c.Assert(results[1].Distances, gc.IsNil)
	c.Assert(results[2].Source, gc.Equals, 4)
}

func (s *HubTestSuite) TestBroadcastCarriesInvalidProblemToEveryRank(c *gc.C) {
	s.startHub(c, rpcnet.HubConfig{Size: 2, Timeout: 5 * time.Second})
	clients := []*rpcnet.Client{s.dial(c, 0, 2), s.dial(c, 1, 2)}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for rank := range clients {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()
			var p *collective.Problem
			if rank == 0 {
				p = &collective.Problem{Source: 0}
			}
			_, errs[rank] = sssp.Solve(context.TODO(), clients[rank], p, sssp.Config{})
		}(rank)
	}
	wg.Wait()

	for rank, err := range errs {
		c.Assert(err, gc.ErrorMatches, "broadcast: .*", gc.Commentf("rank %d", rank))
	}
}

func (s *HubTestSuite) TestHelloRejectsSizeMismatch(c *gc.C) {
	s.startHub(c, rpcnet.HubConfig{Size: 2})

	_, err := rpcnet.Dial(context.TODO(), s.addr, rpcnet.DialConfig{Rank: 0, Size: 3, DialTimeout: time.Second})
	c.Assert(err, gc.ErrorMatches, "Hub.Hello: .*rank topology does not match hub")
}

func (s *HubTestSuite) TestHelloRejectsDuplicateRank(c *gc.C) {
	s.startHub(c, rpcnet.HubConfig{Size: 2})
	first := s.dial(c, 1, 2)
	defer func() { _ = first.Close() }()

	_, err := rpcnet.Dial(context.TODO(), s.addr, rpcnet.DialConfig{Rank: 1, Size: 2, DialTimeout: time.Second})
	c.Assert(err, gc.ErrorMatches, "Hub.Hello: .*rank already joined")
}

func (s *HubTestSuite) TestHubTimeoutReleasesWaitingRank(c *gc.C) {
	hub := s.startHub(c, rpcnet.HubConfig{Size: 2, Timeout: 100 * time.Millisecond})
	client := s.dial(c, 0, 2)
	defer func() { _ = client.Close() }()

	// Rank 1 never shows up.
	_, err := client.AllReduceMinLoc(context.TODO(), collective.Selection{Distance: 1, Vertex: 0})
	c.Assert(err, gc.ErrorMatches, "Hub.AllReduceMinLoc: .*deadline exceeded.*")
	c.Assert(hub.Err(), gc.NotNil)
}

func (s *HubTestSuite) TestClientContextCancellation(c *gc.C) {
	s.startHub(c, rpcnet.HubConfig{Size: 2})
	client := s.dial(c, 0, 2)
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := client.Gather(ctx, 0, []float64{1})
	c.Assert(err, gc.ErrorMatches, "Hub.Gather: context deadline exceeded")
}

func (s *HubTestSuite) TestDialGivesUpWhenHubIsAbsent(c *gc.C) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	c.Assert(err, gc.IsNil)
	addr := l.Addr().String()
	c.Assert(l.Close(), gc.IsNil)

	_, err = rpcnet.Dial(context.TODO(), addr, rpcnet.DialConfig{Size: 1, DialTimeout: 200 * time.Millisecond})
	c.Assert(err, gc.ErrorMatches, "dial hub .*")
}
