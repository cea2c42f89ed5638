package local

import (
	"context"

	"github.com/brandonshearin/parsssp/collective"
	"golang.org/x/xerrors"
)

// Comm is the endpoint of a single rank inside a Group. It implements
// collective.Comm.
type Comm struct {
	g    *Group
	rank int
}

var _ collective.Comm = (*Comm)(nil)

func (c *Comm) Rank() int { return c.rank }

func (c *Comm) Size() int { return c.g.size }

// Broadcast hands the root's problem to every rank. The problem is shared,
// not copied, so it must not be modified after the call.
func (c *Comm) Broadcast(ctx context.Context, root int, p *collective.Problem) (*collective.Problem, error) {
	if err := c.checkRoot(root); err != nil {
		return nil, err
	}

	res, err := c.g.exchange(ctx, c.rank, opBroadcast, root, p, func(contrib []interface{}) (interface{}, error) {
		return contrib[root], nil
	})
	if err != nil {
		return nil, err
	}
	return res.(*collective.Problem), nil
}

func (c *Comm) AllReduceMinLoc(ctx context.Context, local collective.Selection) (collective.Selection, error) {
	res, err := c.g.exchange(ctx, c.rank, opAllReduce, 0, local, func(contrib []interface{}) (interface{}, error) {
		sels := make([]collective.Selection, len(contrib))
		for i, v := range contrib {
			sels[i] = v.(collective.Selection)
		}
		return collective.Reduce(sels), nil
	})
	if err != nil {
		return collective.None(), err
	}
	return res.(collective.Selection), nil
}

// Gather copies part so that the caller may keep mutating its own buffer.
func (c *Comm) Gather(ctx context.Context, root int, part []float64) ([][]float64, error) {
	if err := c.checkRoot(root); err != nil {
		return nil, err
	}

	own := make([]float64, len(part))
	copy(own, part)
	res, err := c.g.exchange(ctx, c.rank, opGather, root, own, func(contrib []interface{}) (interface{}, error) {
		parts := make([][]float64, len(contrib))
		for i, v := range contrib {
			parts[i] = v.([]float64)
		}
		return parts, nil
	})
	if err != nil {
		return nil, err
	}
	if c.rank != root {
		return nil, nil
	}
	return res.([][]float64), nil
}

func (c *Comm) checkRoot(root int) error {
	if root < 0 || root >= c.g.size {
		err := xerrors.Errorf("root %d of %d: %w", root, c.g.size, ErrInvalidRank)
		c.g.Abort(err)
		return err
	}
	return nil
}
