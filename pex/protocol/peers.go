package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/peerwire/pex/pex/compact"
)

var (
	ErrPeersTruncated = errors.New("protocol: peers payload truncated")
	ErrTooManyPeers   = errors.New("protocol: too many peers for one message")
)

// MaxPeersPerFamily is the per-family entry cap imposed by the u16 counts.
const MaxPeersPerFamily = 1<<16 - 1

// GetPeers asks a node for a sample of its address book.
// A zero max means "as many as you will give me".
type GetPeers struct {
	MaxV4 uint16
	MaxV6 uint16
}

// EncodeGetPeers serializes a GET_PEERS payload.
// Format: 2 bytes max v4, 2 bytes max v6 (big endian).
func EncodeGetPeers(g GetPeers) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint16(buf[0:2], g.MaxV4)
	binary.BigEndian.PutUint16(buf[2:4], g.MaxV6)
	return buf
}

func DecodeGetPeers(b []byte) (GetPeers, error) {
	if len(b) != 4 {
		return GetPeers{}, fmt.Errorf("%w: %d bytes", ErrPeersTruncated, len(b))
	}
	return GetPeers{
		MaxV4: binary.BigEndian.Uint16(b[0:2]),
		MaxV6: binary.BigEndian.Uint16(b[2:4]),
	}, nil
}

// Peers carries address samples in compact form.
type Peers struct {
	V4 []compact.SocketAddrV4
	V6 []compact.SocketAddrV6
}

// EncodePeers serializes a PEERS payload.
// Format:
//
//	2 bytes: v4 entry count (big endian)
//	2 bytes: v6 entry count (big endian)
//	count * 6 bytes: compact v4 entries
//	count * 18 bytes: compact v6 entries
func EncodePeers(p Peers) ([]byte, error) {
	if len(p.V4) > MaxPeersPerFamily || len(p.V6) > MaxPeersPerFamily {
		return nil, ErrTooManyPeers
	}
	buf := make([]byte, 4, 4+len(p.V4)*compact.V4Len+len(p.V6)*compact.V6Len)
	binary.BigEndian.PutUint16(buf[0:2], uint16(len(p.V4)))
	binary.BigEndian.PutUint16(buf[2:4], uint16(len(p.V6)))
	buf = compact.AppendV4List(buf, p.V4)
	buf = compact.AppendV6List(buf, p.V6)
	return buf, nil
}

func DecodePeers(b []byte) (Peers, error) {
	if len(b) < 4 {
		return Peers{}, fmt.Errorf("%w: %d bytes", ErrPeersTruncated, len(b))
	}
	nv4 := int(binary.BigEndian.Uint16(b[0:2]))
	nv6 := int(binary.BigEndian.Uint16(b[2:4]))
	want := 4 + nv4*compact.V4Len + nv6*compact.V6Len
	if len(b) != want {
		return Peers{}, fmt.Errorf("%w: have %d bytes, want %d", ErrPeersTruncated, len(b), want)
	}

	offset := 4
	v4, err := compact.ParseV4List(b[offset : offset+nv4*compact.V4Len])
	if err != nil {
		return Peers{}, err
	}
	offset += nv4 * compact.V4Len
	v6, err := compact.ParseV6List(b[offset : offset+nv6*compact.V6Len])
	if err != nil {
		return Peers{}, err
	}
	return Peers{V4: v4, V6: v6}, nil
}
