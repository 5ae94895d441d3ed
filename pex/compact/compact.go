package compact

import (
	"encoding/binary"
	"net/netip"
)

const (
	// V4Len is the wire size of a compact IPv4 socket address.
	V4Len = 6
	// V6Len is the wire size of a compact IPv6 socket address.
	V6Len = 18
)

// CompactV4 is the fixed-width wire form of an IPv4 socket address:
// four address octets in network order followed by a big-endian port.
type CompactV4 [V4Len]byte

// CompactV6 is the fixed-width wire form of an IPv6 socket address:
// sixteen address octets in network order followed by a big-endian port.
type CompactV6 [V6Len]byte

// SocketAddrV4 is an IPv4 address and port.
type SocketAddrV4 struct {
	IP   [4]byte
	Port uint16
}

// SocketAddrV6 is an IPv6 address and port.
// FlowLabel and ScopeID are not part of the compact wire form: encoding
// ignores them and decoding always yields zero for both.
type SocketAddrV6 struct {
	IP        [16]byte
	Port      uint16
	FlowLabel uint32
	ScopeID   uint32
}

// Addr is the compact-conversion capability shared by SocketAddrV4 and
// SocketAddrV6. The interface is sealed: the unexported method keeps the
// implementer set closed to exactly those two types, so the rest of the
// wire protocol can rely on there being exactly two compact widths.
type Addr interface {
	// AppendCompact appends the compact wire form to dst.
	AppendCompact(dst []byte) []byte
	// CompactLen returns the compact wire size (V4Len or V6Len).
	CompactLen() int
	// AddrPort returns the address as a netip.AddrPort.
	AddrPort() netip.AddrPort

	sealed()
}

func (SocketAddrV4) sealed() {}
func (SocketAddrV6) sealed() {}

// Compact returns the 6-byte compact encoding. Total: every SocketAddrV4
// value is representable.
func (a SocketAddrV4) Compact() CompactV4 {
	var c CompactV4
	copy(c[0:4], a.IP[:])
	binary.BigEndian.PutUint16(c[4:6], a.Port)
	return c
}

// SocketAddr decodes the compact form. Total over all 2^48 inputs.
func (c CompactV4) SocketAddr() SocketAddrV4 {
	var a SocketAddrV4
	copy(a.IP[:], c[0:4])
	a.Port = binary.BigEndian.Uint16(c[4:6])
	return a
}

// Compact returns the 18-byte compact encoding. FlowLabel and ScopeID are
// discarded; two addresses differing only in those fields encode identically.
func (a SocketAddrV6) Compact() CompactV6 {
	var c CompactV6
	copy(c[0:16], a.IP[:])
	binary.BigEndian.PutUint16(c[16:18], a.Port)
	return c
}

// SocketAddr decodes the compact form. FlowLabel and ScopeID are always
// zero since the wire form carries neither.
func (c CompactV6) SocketAddr() SocketAddrV6 {
	var a SocketAddrV6
	copy(a.IP[:], c[0:16])
	a.Port = binary.BigEndian.Uint16(c[16:18])
	return a
}

func (a SocketAddrV4) AppendCompact(dst []byte) []byte {
	c := a.Compact()
	return append(dst, c[:]...)
}

func (a SocketAddrV6) AppendCompact(dst []byte) []byte {
	c := a.Compact()
	return append(dst, c[:]...)
}

func (SocketAddrV4) CompactLen() int { return V4Len }
func (SocketAddrV6) CompactLen() int { return V6Len }

// AddrPort returns the address as a netip.AddrPort.
func (a SocketAddrV4) AddrPort() netip.AddrPort {
	return netip.AddrPortFrom(netip.AddrFrom4(a.IP), a.Port)
}

// AddrPort returns the address as a netip.AddrPort.
// netip zones are interface names, not numeric scope IDs, so ScopeID does
// not survive the conversion; FlowLabel has no netip counterpart at all.
func (a SocketAddrV6) AddrPort() netip.AddrPort {
	return netip.AddrPortFrom(netip.AddrFrom16(a.IP), a.Port)
}

// SocketAddrV4FromAddrPort converts a netip.AddrPort holding an IPv4 or
// IPv4-mapped address. ok is false for IPv6 addresses.
func SocketAddrV4FromAddrPort(ap netip.AddrPort) (SocketAddrV4, bool) {
	addr := ap.Addr()
	if !addr.Is4() && !addr.Is4In6() {
		return SocketAddrV4{}, false
	}
	return SocketAddrV4{IP: addr.As4(), Port: ap.Port()}, true
}

// SocketAddrV6FromAddrPort converts a netip.AddrPort holding an IPv6
// address. ok is false for IPv4 addresses. Any zone on the address is
// dropped (see AddrPort).
func SocketAddrV6FromAddrPort(ap netip.AddrPort) (SocketAddrV6, bool) {
	addr := ap.Addr()
	if !addr.Is6() || addr.Is4In6() {
		return SocketAddrV6{}, false
	}
	return SocketAddrV6{IP: addr.As16(), Port: ap.Port()}, true
}

// FromAddrPort converts a netip.AddrPort to the sealed Addr for its family.
func FromAddrPort(ap netip.AddrPort) Addr {
	if a, ok := SocketAddrV4FromAddrPort(ap); ok {
		return a
	}
	a, _ := SocketAddrV6FromAddrPort(ap)
	return a
}
