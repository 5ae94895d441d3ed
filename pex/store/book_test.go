package store

import (
	"net/netip"
	"testing"
	"time"

	"github.com/peerwire/pex/pex/compact"
	"github.com/peerwire/pex/pex/identity"
)

func TestBookAddLookup(t *testing.T) {
	kp, err := identity.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}

	b := NewBook()
	addr := netip.MustParseAddrPort("[2001:db8::1]:4242")
	b.Add(addr, kp.NodeID())

	e, err := b.Lookup(addr)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if e.Addr != addr || e.NodeID != kp.NodeID() {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.LastSeen.IsZero() {
		t.Fatalf("LastSeen not set")
	}

	if _, err := b.Lookup(netip.MustParseAddrPort("10.0.0.1:1")); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBookRefreshKeepsNodeID(t *testing.T) {
	kp, _ := identity.GenerateKeyPair()
	b := NewBook()
	addr := netip.MustParseAddrPort("10.0.0.1:6881")
	b.Add(addr, kp.NodeID())
	b.Add(addr, identity.NodeID{}) // unsigned gossip refresh

	e, err := b.Lookup(addr)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if e.NodeID != kp.NodeID() {
		t.Fatalf("refresh wiped node id")
	}
	if b.Len() != 1 {
		t.Fatalf("Len = %d, want 1", b.Len())
	}
}

func TestBookSample(t *testing.T) {
	b := NewBook()
	b.AddCompact(
		[]compact.SocketAddrV4{
			{IP: [4]byte{10, 0, 0, 1}, Port: 1},
			{IP: [4]byte{10, 0, 0, 2}, Port: 2},
			{IP: [4]byte{10, 0, 0, 3}, Port: 3},
		},
		[]compact.SocketAddrV6{
			{IP: [16]byte{15: 1}, Port: 4},
		},
	)

	v4, v6 := b.Sample(2, 0)
	if len(v4) != 2 {
		t.Fatalf("sampled %d v4 entries, want 2", len(v4))
	}
	if len(v6) != 1 {
		t.Fatalf("sampled %d v6 entries, want 1", len(v6))
	}

	v4, v6 = b.Sample(0, 0)
	if len(v4) != 3 || len(v6) != 1 {
		t.Fatalf("unlimited sample: %d v4, %d v6", len(v4), len(v6))
	}
}

func TestBookPrune(t *testing.T) {
	b := NewBook()
	clock := time.Unix(1000, 0)
	b.now = func() time.Time { return clock }

	b.Add(netip.MustParseAddrPort("10.0.0.1:1"), identity.NodeID{})
	clock = clock.Add(time.Hour)
	b.Add(netip.MustParseAddrPort("10.0.0.2:2"), identity.NodeID{})

	if dropped := b.Prune(30 * time.Minute); dropped != 1 {
		t.Fatalf("pruned %d entries, want 1", dropped)
	}
	if b.Len() != 1 {
		t.Fatalf("Len = %d after prune", b.Len())
	}
	if _, err := b.Lookup(netip.MustParseAddrPort("10.0.0.2:2")); err != nil {
		t.Fatalf("fresh entry pruned: %v", err)
	}
}
