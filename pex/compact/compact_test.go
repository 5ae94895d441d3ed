package compact

import (
	"bytes"
	"crypto/rand"
	"net/netip"
	"testing"
)

func TestV4ByteLayout(t *testing.T) {
	a := SocketAddrV4{IP: [4]byte{192, 168, 1, 2}, Port: 34000}
	c := a.Compact()
	want := CompactV4{192, 168, 1, 2, 0x84, 0xD0}
	if c != want {
		t.Fatalf("compact = %v, want %v", c, want)
	}
}

func TestV6ByteLayout(t *testing.T) {
	a := SocketAddrV6{IP: [16]byte{15: 1}, Port: 80} // ::1
	c := a.Compact()
	want := CompactV6{15: 1, 16: 0x00, 17: 0x50}
	if c != want {
		t.Fatalf("compact = %v, want %v", c, want)
	}
}

func TestV4RoundTrip(t *testing.T) {
	cases := []SocketAddrV4{
		{},
		{IP: [4]byte{127, 0, 0, 1}, Port: 6881},
		{IP: [4]byte{255, 255, 255, 255}, Port: 65535},
		{IP: [4]byte{10, 0, 0, 7}, Port: 1},
	}
	for _, a := range cases {
		if got := a.Compact().SocketAddr(); got != a {
			t.Fatalf("round trip %v -> %v", a, got)
		}
	}
}

func TestV6RoundTrip(t *testing.T) {
	cases := []SocketAddrV6{
		{},
		{IP: [16]byte{15: 1}, Port: 443},
		{IP: [16]byte{0x20, 0x01, 0x0d, 0xb8, 15: 0x42}, Port: 6881},
	}
	for _, a := range cases {
		if got := a.Compact().SocketAddr(); got != a {
			t.Fatalf("round trip %v -> %v", a, got)
		}
	}
}

func TestV6ScopeAndFlowDiscarded(t *testing.T) {
	plain := SocketAddrV6{IP: [16]byte{0xfe, 0x80, 15: 9}, Port: 4242}
	scoped := plain
	scoped.ScopeID = 3
	scoped.FlowLabel = 0xabcde

	if plain.Compact() != scoped.Compact() {
		t.Fatalf("scope/flow leaked into the compact form")
	}
	got := scoped.Compact().SocketAddr()
	if got.ScopeID != 0 || got.FlowLabel != 0 {
		t.Fatalf("decode produced nonzero scope/flow: %+v", got)
	}
	if got.IP != plain.IP || got.Port != plain.Port {
		t.Fatalf("address or port damaged: %+v", got)
	}
}

func TestV4BytesRoundTrip(t *testing.T) {
	// Every 6-byte pattern is a valid compact address and must survive
	// decode-then-encode untouched.
	for i := 0; i < 256; i++ {
		var c CompactV4
		if _, err := rand.Read(c[:]); err != nil {
			t.Fatalf("rand: %v", err)
		}
		if back := c.SocketAddr().Compact(); back != c {
			t.Fatalf("bytes %v -> %v", c, back)
		}
	}
}

func TestV6BytesRoundTrip(t *testing.T) {
	for i := 0; i < 256; i++ {
		var c CompactV6
		if _, err := rand.Read(c[:]); err != nil {
			t.Fatalf("rand: %v", err)
		}
		if back := c.SocketAddr().Compact(); back != c {
			t.Fatalf("bytes %v -> %v", c, back)
		}
	}
}

func TestInjectivity(t *testing.T) {
	a := SocketAddrV4{IP: [4]byte{1, 2, 3, 4}, Port: 80}
	b := SocketAddrV4{IP: [4]byte{1, 2, 3, 4}, Port: 81}
	c := SocketAddrV4{IP: [4]byte{1, 2, 3, 5}, Port: 80}
	if a.Compact() == b.Compact() || a.Compact() == c.Compact() {
		t.Fatalf("distinct addresses share an encoding")
	}
}

func TestAddrPortInterop(t *testing.T) {
	ap := netip.MustParseAddrPort("192.168.1.2:34000")
	a4, ok := SocketAddrV4FromAddrPort(ap)
	if !ok {
		t.Fatalf("expected v4")
	}
	if a4.AddrPort() != ap {
		t.Fatalf("v4 AddrPort round trip: %v", a4.AddrPort())
	}
	if _, ok := SocketAddrV6FromAddrPort(ap); ok {
		t.Fatalf("v4 accepted as v6")
	}

	ap6 := netip.MustParseAddrPort("[2001:db8::1]:6881")
	a6, ok := SocketAddrV6FromAddrPort(ap6)
	if !ok {
		t.Fatalf("expected v6")
	}
	if a6.AddrPort() != ap6 {
		t.Fatalf("v6 AddrPort round trip: %v", a6.AddrPort())
	}
	if _, ok := SocketAddrV4FromAddrPort(ap6); ok {
		t.Fatalf("v6 accepted as v4")
	}

	if _, ok := FromAddrPort(ap).(SocketAddrV4); !ok {
		t.Fatalf("FromAddrPort did not pick v4")
	}
	if _, ok := FromAddrPort(ap6).(SocketAddrV6); !ok {
		t.Fatalf("FromAddrPort did not pick v6")
	}
}

func TestSealedAddrDispatch(t *testing.T) {
	addrs := []Addr{
		SocketAddrV4{IP: [4]byte{10, 0, 0, 1}, Port: 6881},
		SocketAddrV6{IP: [16]byte{15: 1}, Port: 6881},
		SocketAddrV4{IP: [4]byte{10, 0, 0, 2}, Port: 6882},
	}
	var buf []byte
	total := 0
	for _, a := range addrs {
		buf = a.AppendCompact(buf)
		total += a.CompactLen()
	}
	if len(buf) != total || total != 2*V4Len+V6Len {
		t.Fatalf("appended %d bytes, want %d", len(buf), total)
	}
	if !bytes.Equal(buf[:V4Len], []byte{10, 0, 0, 1, 0x1a, 0xe1}) {
		t.Fatalf("first entry: %v", buf[:V4Len])
	}
}
