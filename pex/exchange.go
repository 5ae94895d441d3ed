package pex

import (
	"context"
	"errors"
	"fmt"
	"io"

	q "github.com/quic-go/quic-go"

	"github.com/peerwire/pex/pex/identity"
	"github.com/peerwire/pex/pex/protocol"
	"github.com/peerwire/pex/pex/snapshot"
	"github.com/peerwire/pex/pex/transport/quic"
)

var (
	ErrExpectedAnnounce = errors.New("pex: expected ANNOUNCE")
	ErrExpectedPeers    = errors.New("pex: expected PEERS")
	ErrExpectedSnapshot = errors.New("pex: expected SNAPSHOT")
)

// Exchange dials addr, announces this node, requests a peer sample, merges
// it into the book, and returns the learned addresses.
func (n *Node) Exchange(ctx context.Context, addr string, req protocol.GetPeers) (protocol.Peers, error) {
	conn, err := quic.Dial(ctx, addr)
	if err != nil {
		return protocol.Peers{}, err
	}
	defer conn.CloseWithError(0, "")

	st, err := conn.OpenStreamSync(ctx)
	if err != nil {
		return protocol.Peers{}, err
	}
	defer st.Close()

	if err := n.writeAnnounce(st); err != nil {
		return protocol.Peers{}, err
	}
	if _, err := n.readAnnounce(st); err != nil {
		return protocol.Peers{}, err
	}

	payload, err := n.seal(protocol.MessageTypeGetPeers, protocol.EncodeGetPeers(req))
	if err != nil {
		return protocol.Peers{}, err
	}
	if err := protocol.WriteFrame(st, protocol.Frame{Type: protocol.MessageTypeGetPeers, Payload: payload}); err != nil {
		return protocol.Peers{}, err
	}

	frame, err := protocol.ReadFrame(st)
	if err != nil {
		return protocol.Peers{}, err
	}
	if frame.Type != protocol.MessageTypePeers {
		return protocol.Peers{}, fmt.Errorf("%w: got %s", ErrExpectedPeers, frame.Type)
	}
	opened, err := n.open(frame.Type, frame.Payload)
	if err != nil {
		return protocol.Peers{}, err
	}
	peers, err := protocol.DecodePeers(opened)
	if err != nil {
		return protocol.Peers{}, err
	}
	n.Book.AddCompact(peers.V4, peers.V6)

	_ = protocol.WriteFrame(st, protocol.Frame{Type: protocol.MessageTypeBye})
	return peers, nil
}

// FetchSnapshot dials addr and pulls the remote's whole address book as a
// snapshot, merging it into the local book. Useful for bootstrap, where a
// GET_PEERS sample is too small.
func (n *Node) FetchSnapshot(ctx context.Context, addr string) (protocol.Peers, error) {
	conn, err := quic.Dial(ctx, addr)
	if err != nil {
		return protocol.Peers{}, err
	}
	defer conn.CloseWithError(0, "")

	st, err := conn.OpenStreamSync(ctx)
	if err != nil {
		return protocol.Peers{}, err
	}
	defer st.Close()

	if err := n.writeAnnounce(st); err != nil {
		return protocol.Peers{}, err
	}
	if _, err := n.readAnnounce(st); err != nil {
		return protocol.Peers{}, err
	}

	payload, err := n.seal(protocol.MessageTypeGetSnapshot, nil)
	if err != nil {
		return protocol.Peers{}, err
	}
	if err := protocol.WriteFrame(st, protocol.Frame{Type: protocol.MessageTypeGetSnapshot, Payload: payload}); err != nil {
		return protocol.Peers{}, err
	}

	frame, err := protocol.ReadFrame(st)
	if err != nil {
		return protocol.Peers{}, err
	}
	if frame.Type != protocol.MessageTypeSnapshot {
		return protocol.Peers{}, fmt.Errorf("%w: got %s", ErrExpectedSnapshot, frame.Type)
	}
	opened, err := n.open(frame.Type, frame.Payload)
	if err != nil {
		return protocol.Peers{}, err
	}
	v4, v6, err := snapshot.Decode(opened)
	if err != nil {
		return protocol.Peers{}, err
	}
	n.Book.AddCompact(v4, v6)

	_ = protocol.WriteFrame(st, protocol.Frame{Type: protocol.MessageTypeBye})
	return protocol.Peers{V4: v4, V6: v6}, nil
}

// serveConn handles one inbound connection: announce exchange, then
// GET_PEERS and GET_SNAPSHOT requests until BYE or stream end.
func (n *Node) serveConn(ctx context.Context, conn *q.Conn) error {
	defer conn.CloseWithError(0, "")

	st, err := conn.AcceptStream(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	if _, err := n.readAnnounce(st); err != nil {
		return err
	}
	if err := n.writeAnnounce(st); err != nil {
		return err
	}

	for {
		frame, err := protocol.ReadFrame(st)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		switch frame.Type {
		case protocol.MessageTypeGetPeers:
			opened, err := n.open(frame.Type, frame.Payload)
			if err != nil {
				return err
			}
			req, err := protocol.DecodeGetPeers(opened)
			if err != nil {
				return err
			}
			if err := n.writePeers(st, req); err != nil {
				return err
			}
		case protocol.MessageTypeGetSnapshot:
			if _, err := n.open(frame.Type, frame.Payload); err != nil {
				return err
			}
			if err := n.writeSnapshot(st); err != nil {
				return err
			}
		case protocol.MessageTypeBye:
			return nil
		default:
			return fmt.Errorf("pex: unexpected %s frame", frame.Type)
		}
	}
}

func (n *Node) writeAnnounce(w io.Writer) error {
	ann, err := protocol.NewAnnounce(n.KeyPair, n.opts.SelfAddrs)
	if err != nil {
		return err
	}
	if err := ann.Sign(n.KeyPair); err != nil {
		return err
	}
	encoded, err := protocol.EncodeAnnounce(ann)
	if err != nil {
		return err
	}
	payload, err := n.seal(protocol.MessageTypeAnnounce, encoded)
	if err != nil {
		return err
	}
	return protocol.WriteFrame(w, protocol.Frame{Type: protocol.MessageTypeAnnounce, Payload: payload})
}

// readAnnounce reads and verifies the remote announcement and merges its
// addresses into the book under the announcer's id.
func (n *Node) readAnnounce(r io.Reader) (protocol.Announce, error) {
	frame, err := protocol.ReadFrame(r)
	if err != nil {
		return protocol.Announce{}, err
	}
	if frame.Type != protocol.MessageTypeAnnounce {
		return protocol.Announce{}, fmt.Errorf("%w: got %s", ErrExpectedAnnounce, frame.Type)
	}
	opened, err := n.open(frame.Type, frame.Payload)
	if err != nil {
		return protocol.Announce{}, err
	}
	ann, err := protocol.DecodeAnnounce(opened)
	if err != nil {
		return protocol.Announce{}, err
	}
	if err := ann.Verify(); err != nil {
		return protocol.Announce{}, err
	}

	id, err := identity.ParseNodeIDHex(ann.NodeID)
	if err != nil {
		return protocol.Announce{}, err
	}
	v4, v6, err := ann.Addrs()
	if err != nil {
		return protocol.Announce{}, err
	}
	for _, a := range v4 {
		n.Book.Add(a.AddrPort(), id)
	}
	for _, a := range v6 {
		n.Book.Add(a.AddrPort(), id)
	}
	return ann, nil
}

func (n *Node) writePeers(w io.Writer, req protocol.GetPeers) error {
	maxV4 := n.opts.MaxPeersPerReply
	if req.MaxV4 != 0 && int(req.MaxV4) < maxV4 {
		maxV4 = int(req.MaxV4)
	}
	maxV6 := n.opts.MaxPeersPerReply
	if req.MaxV6 != 0 && int(req.MaxV6) < maxV6 {
		maxV6 = int(req.MaxV6)
	}

	v4, v6 := n.Book.Sample(maxV4, maxV6)
	encoded, err := protocol.EncodePeers(protocol.Peers{V4: v4, V6: v6})
	if err != nil {
		return err
	}
	payload, err := n.seal(protocol.MessageTypePeers, encoded)
	if err != nil {
		return err
	}
	return protocol.WriteFrame(w, protocol.Frame{Type: protocol.MessageTypePeers, Payload: payload})
}

func (n *Node) writeSnapshot(w io.Writer) error {
	v4, v6 := n.Book.Sample(0, 0)
	payload, err := n.seal(protocol.MessageTypeSnapshot, snapshot.Encode(v4, v6))
	if err != nil {
		return err
	}
	return protocol.WriteFrame(w, protocol.Frame{Type: protocol.MessageTypeSnapshot, Payload: payload})
}

// seal wraps a payload for private swarms. The frame type is bound as
// additional data so sealed payloads cannot be replayed under another type.
func (n *Node) seal(t protocol.MessageType, payload []byte) ([]byte, error) {
	if n.opts.Sealer == nil {
		return payload, nil
	}
	return n.opts.Sealer.Seal(payload, []byte{byte(t)}), nil
}

func (n *Node) open(t protocol.MessageType, payload []byte) ([]byte, error) {
	if n.opts.Sealer == nil {
		return payload, nil
	}
	return n.opts.Sealer.Open(payload, []byte{byte(t)})
}
