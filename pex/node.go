package pex

import (
	"context"
	"errors"

	"github.com/peerwire/pex/pex/compact"
	"github.com/peerwire/pex/pex/identity"
	"github.com/peerwire/pex/pex/secure"
	"github.com/peerwire/pex/pex/store"
	"github.com/peerwire/pex/pex/transport/quic"
)

var ErrNotListening = errors.New("pex: node is not listening")

// Options configures a Node.
type Options struct {
	// SelfAddrs are the addresses announced to other nodes. The sealed
	// compact.Addr capability restricts these to the two supported
	// address families.
	SelfAddrs []compact.Addr
	// Sealer, when set, seals all frame payloads for a private swarm.
	// Both sides must hold the same swarm key.
	Sealer *secure.Sealer
	// MaxPeersPerReply caps each family in a PEERS response. Zero means
	// DefaultMaxPeersPerReply.
	MaxPeersPerReply int
}

// DefaultMaxPeersPerReply bounds how many addresses per family one
// GET_PEERS answer hands out.
const DefaultMaxPeersPerReply = 200

// Node is a peer-exchange participant: an identity, an address book, and a
// listener. It intentionally stays small so applications can layer their
// own gossip schedules and peer selection on top.
type Node struct {
	KeyPair identity.KeyPair
	Book    *store.Book

	opts     Options
	listener *quic.Listener
}

func NewNode(kp identity.KeyPair, opts Options) *Node {
	if opts.MaxPeersPerReply <= 0 {
		opts.MaxPeersPerReply = DefaultMaxPeersPerReply
	}
	opts.SelfAddrs = append([]compact.Addr(nil), opts.SelfAddrs...)
	return &Node{KeyPair: kp, Book: store.NewBook(), opts: opts}
}

func (n *Node) Listen(addr string) error {
	ln, err := quic.Listen(addr)
	if err != nil {
		return err
	}
	n.listener = ln
	return nil
}

func (n *Node) Close() error {
	if n.listener == nil {
		return nil
	}
	return n.listener.Close()
}

func (n *Node) ListenAddr() string {
	if n.listener == nil {
		return ""
	}
	return n.listener.AddrString()
}

// Serve accepts connections and answers exchanges until ctx is cancelled
// or the listener closes. Each connection is served on its own goroutine;
// a misbehaving peer only costs its own connection.
func (n *Node) Serve(ctx context.Context) error {
	if n.listener == nil {
		return ErrNotListening
	}
	for {
		conn, err := n.listener.Accept(ctx)
		if err != nil {
			return err
		}
		go func() {
			_ = n.serveConn(ctx, conn)
		}()
	}
}
