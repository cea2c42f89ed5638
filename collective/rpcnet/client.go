package rpcnet

import (
	"context"
	"io/ioutil"
	"net/rpc"
	"time"

	"github.com/brandonshearin/parsssp/collective"
	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

var _ collective.Comm = (*Client)(nil)

// DialConfig encapsulates the options for connecting a rank to a hub.
type DialConfig struct {
	Rank int
	Size int

	// DialTimeout bounds the total time spent retrying the connection. Zero
	// selects the backoff package default.
	DialTimeout time.Duration

	Logger *logrus.Entry
}

// Client is one rank's connection to a Hub. It implements collective.Comm.
type Client struct {
	rank int
	size int
	rpc  *rpc.Client
}

// Dial connects to the hub at addr, retrying with exponential backoff until
// the hub is reachable, and announces the rank. Retries only cover
// connection setup.
func Dial(ctx context.Context, addr string, cfg DialConfig) (*Client, error) {
	log := cfg.Logger
	if log == nil {
		l := logrus.New()
		l.Out = ioutil.Discard
		log = logrus.NewEntry(l)
	}
	log = log.WithFields(logrus.Fields{"rank": cfg.Rank, "hub": addr})

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 50 * time.Millisecond
	if cfg.DialTimeout > 0 {
		eb.MaxElapsedTime = cfg.DialTimeout
	}

	var conn *rpc.Client
	err := backoff.Retry(func() error {
		c, err := rpc.Dial("tcp", addr)
		if err != nil {
			log.WithField("err", err).Debug("hub not reachable yet")
			return err
		}
		conn = c
		return nil
	}, backoff.WithContext(eb, ctx))
	if err != nil {
		return nil, xerrors.Errorf("dial hub %s: %w", addr, err)
	}

	c := &Client{rank: cfg.Rank, size: cfg.Size, rpc: conn}
	var reply HelloReply
	if err = c.call(ctx, "Hub.Hello", &HelloArgs{Rank: cfg.Rank, Size: cfg.Size}, &reply); err != nil {
		_ = conn.Close()
		return nil, err
	}
	log.Debug("joined hub")
	return c, nil
}

// Rank implements collective.Comm.
func (c *Client) Rank() int { return c.rank }

// Size implements collective.Comm.
func (c *Client) Size() int { return c.size }

// Broadcast implements collective.Comm. Only the root's problem is sent.
func (c *Client) Broadcast(ctx context.Context, root int, p *collective.Problem) (*collective.Problem, error) {
	args := &BroadcastArgs{Rank: c.rank, Root: root}
	if c.rank == root {
		args.Problem = encodeProblem(p)
	}

	var reply BroadcastReply
	if err := c.call(ctx, "Hub.Broadcast", args, &reply); err != nil {
		return nil, err
	}
	return decodeProblem(reply.Problem)
}

// AllReduceMinLoc implements collective.Comm.
func (c *Client) AllReduceMinLoc(ctx context.Context, local collective.Selection) (collective.Selection, error) {
	var reply ReduceReply
	if err := c.call(ctx, "Hub.AllReduceMinLoc", &ReduceArgs{Rank: c.rank, Local: local}, &reply); err != nil {
		return collective.None(), err
	}
	return reply.Global, nil
}

// Gather implements collective.Comm.
func (c *Client) Gather(ctx context.Context, root int, part []float64) ([][]float64, error) {
	var reply GatherReply
	if err := c.call(ctx, "Hub.Gather", &GatherArgs{Rank: c.rank, Root: root, Part: part}, &reply); err != nil {
		return nil, err
	}
	if c.rank != root {
		return nil, nil
	}
	return reply.Parts, nil
}

// Close terminates the connection to the hub.
func (c *Client) Close() error {
	return c.rpc.Close()
}

func (c *Client) call(ctx context.Context, method string, args, reply interface{}) error {
	call := c.rpc.Go(method, args, reply, make(chan *rpc.Call, 1))
	select {
	case <-call.Done:
		if call.Error != nil {
			return xerrors.Errorf("%s: %w", method, call.Error)
		}
		return nil
	case <-ctx.Done():
		return xerrors.Errorf("%s: %w", method, ctx.Err())
	}
}
