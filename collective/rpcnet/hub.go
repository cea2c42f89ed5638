// Package rpcnet implements the collective operations for ranks that run in
// separate processes. One process hosts a Hub; every rank, including the
// hub's own process, connects to it with a Client.
package rpcnet

import (
	"context"
	"io/ioutil"
	"net"
	"net/rpc"
	"sync"
	"time"

	"github.com/brandonshearin/parsssp/collective"
	"github.com/brandonshearin/parsssp/collective/local"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

var (
	// ErrTopologyMismatch is returned when a rank announces a group size
	// that differs from the hub's or a rank outside the group.
	ErrTopologyMismatch = xerrors.New("rank topology does not match hub")

	// ErrDuplicateRank is returned when two clients announce the same rank.
	ErrDuplicateRank = xerrors.New("rank already joined")
)

// HubConfig encapsulates the options for a Hub.
type HubConfig struct {
	// Size is the number of ranks that will connect.
	Size int

	// Timeout bounds how long a collective may wait for the slowest rank.
	// Zero waits forever. Expiry aborts the whole group.
	Timeout time.Duration

	Logger *logrus.Entry
}

// Hub hosts the rendezvous for every collective of a group of remote ranks.
type Hub struct {
	group   *local.Group
	comms   []*local.Comm
	timeout time.Duration
	log     *logrus.Entry

	mu     sync.Mutex
	joined []bool
}

// NewHub returns a hub for cfg.Size ranks.
func NewHub(cfg HubConfig) (*Hub, error) {
	group, err := local.NewGroup(cfg.Size)
	if err != nil {
		return nil, xerrors.Errorf("new hub: %w", err)
	}

	comms := make([]*local.Comm, cfg.Size)
	for rank := range comms {
		if comms[rank], err = group.Comm(rank); err != nil {
			return nil, xerrors.Errorf("new hub: %w", err)
		}
	}

	log := cfg.Logger
	if log == nil {
		l := logrus.New()
		l.Out = ioutil.Discard
		log = logrus.NewEntry(l)
	}
	return &Hub{
		group:   group,
		comms:   comms,
		timeout: cfg.Timeout,
		log:     log,
		joined:  make([]bool, cfg.Size),
	}, nil
}

// Serve accepts connections on l until l is closed.
func (h *Hub) Serve(l net.Listener) error {
	srv := rpc.NewServer()
	if err := srv.RegisterName("Hub", &hubService{hub: h}); err != nil {
		return xerrors.Errorf("register hub service: %w", err)
	}

	h.log.WithField("addr", l.Addr().String()).Info("hub listening")
	for {
		conn, err := l.Accept()
		if err != nil {
			if xerrors.Is(err, net.ErrClosed) {
				return nil
			}
			return xerrors.Errorf("accept: %w", err)
		}
		go srv.ServeConn(conn)
	}
}

// Abort releases every rank blocked in a collective with an error.
func (h *Hub) Abort(reason error) { h.group.Abort(reason) }

// Err returns the reason the group was aborted, or nil.
func (h *Hub) Err() error { return h.group.Err() }

func (h *Hub) join(rank, size int) error {
	if size != len(h.comms) || rank < 0 || rank >= len(h.comms) {
		return xerrors.Errorf("rank %d of %d joining hub of %d: %w", rank, size, len(h.comms), ErrTopologyMismatch)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.joined[rank] {
		return xerrors.Errorf("rank %d: %w", rank, ErrDuplicateRank)
	}
	h.joined[rank] = true
	h.log.WithField("rank", rank).Debug("rank joined")
	return nil
}

func (h *Hub) comm(rank int) (*local.Comm, error) {
	if rank < 0 || rank >= len(h.comms) {
		return nil, xerrors.Errorf("rank %d of %d: %w", rank, len(h.comms), ErrTopologyMismatch)
	}
	return h.comms[rank], nil
}

func (h *Hub) context() (context.Context, context.CancelFunc) {
	if h.timeout > 0 {
		return context.WithTimeout(context.Background(), h.timeout)
	}
	return context.WithCancel(context.Background())
}

// fail aborts the group so that no rank waits on a peer whose request was
// rejected.
func (h *Hub) fail(rank int, err error) error {
	h.log.WithFields(logrus.Fields{
		"rank": rank,
		"err":  err,
	}).Error("collective failed")
	h.group.Abort(xerrors.Errorf("rank %d: %v", rank, err))
	return err
}

// hubService exposes the hub over net/rpc. Every method blocks until the
// matching collective completes.
type hubService struct {
	hub *Hub
}

func (s *hubService) Hello(args *HelloArgs, reply *HelloReply) error {
	if err := s.hub.join(args.Rank, args.Size); err != nil {
		return err
	}
	reply.Size = len(s.hub.comms)
	return nil
}

func (s *hubService) Broadcast(args *BroadcastArgs, reply *BroadcastReply) error {
	comm, err := s.hub.comm(args.Rank)
	if err != nil {
		return s.hub.fail(args.Rank, err)
	}

	var in *collective.Problem
	if args.Rank == args.Root {
		if in, err = decodeProblem(args.Problem); err != nil {
			return s.hub.fail(args.Rank, err)
		}
	}

	ctx, cancel := s.hub.context()
	defer cancel()
	out, err := comm.Broadcast(ctx, args.Root, in)
	if err != nil {
		return s.hub.fail(args.Rank, err)
	}
	reply.Problem = encodeProblem(out)
	return nil
}

func (s *hubService) AllReduceMinLoc(args *ReduceArgs, reply *ReduceReply) error {
	comm, err := s.hub.comm(args.Rank)
	if err != nil {
		return s.hub.fail(args.Rank, err)
	}

	ctx, cancel := s.hub.context()
	defer cancel()
	if reply.Global, err = comm.AllReduceMinLoc(ctx, args.Local); err != nil {
		return s.hub.fail(args.Rank, err)
	}
	return nil
}

func (s *hubService) Gather(args *GatherArgs, reply *GatherReply) error {
	comm, err := s.hub.comm(args.Rank)
	if err != nil {
		return s.hub.fail(args.Rank, err)
	}

	ctx, cancel := s.hub.context()
	defer cancel()
	if reply.Parts, err = comm.Gather(ctx, args.Root, args.Part); err != nil {
		return s.hub.fail(args.Rank, err)
	}
	return nil
}
