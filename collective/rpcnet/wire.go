package rpcnet

import (
	"github.com/brandonshearin/parsssp/collective"
	"github.com/brandonshearin/parsssp/matrix"
	"golang.org/x/xerrors"
)

// The types below are exchanged with the hub over net/rpc using gob.

// HelloArgs announces a rank to the hub.
type HelloArgs struct {
	Rank int
	Size int
}

// HelloReply confirms the group size.
type HelloReply struct {
	Size int
}

// WireProblem is the gob-friendly form of collective.Problem.
type WireProblem struct {
	Vertices int
	Weights  []float64
	Source   int
}

type BroadcastArgs struct {
	Rank    int
	Root    int
	Problem *WireProblem
}

type BroadcastReply struct {
	Problem *WireProblem
}

type ReduceArgs struct {
	Rank  int
	Local collective.Selection
}

type ReduceReply struct {
	Global collective.Selection
}

type GatherArgs struct {
	Rank int
	Root int
	Part []float64
}

type GatherReply struct {
	Parts [][]float64
}

func encodeProblem(p *collective.Problem) *WireProblem {
	if p == nil {
		return nil
	}
	wp := &WireProblem{Source: p.Source}
	if p.Graph != nil {
		wp.Vertices = p.Graph.Size()
		wp.Weights = p.Graph.Data()
	}
	return wp
}

// decodeProblem rebuilds a problem. A problem without a graph decodes to a
// problem with a nil graph so that every rank rejects it the same way.
func decodeProblem(wp *WireProblem) (*collective.Problem, error) {
	if wp == nil {
		return nil, nil
	}
	p := &collective.Problem{Source: wp.Source}
	if wp.Vertices == 0 {
		return p, nil
	}
	g, err := matrix.FromData(wp.Vertices, wp.Weights)
	if err != nil {
		return nil, xerrors.Errorf("decode problem: %w", err)
	}
	p.Graph = g
	return p, nil
}
