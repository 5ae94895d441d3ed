package store

import (
	"errors"
	"net/netip"
	"sync"
	"time"

	"github.com/peerwire/pex/pex/compact"
	"github.com/peerwire/pex/pex/identity"
)

var (
	ErrNotFound = errors.New("store: address not found")
)

// Entry is one known peer address. NodeID is zero for addresses learned
// from unsigned PEERS gossip; announced addresses carry the announcer's id.
type Entry struct {
	Addr     netip.AddrPort
	NodeID   identity.NodeID
	LastSeen time.Time
}

// Book is an in-memory address book. It is safe for concurrent use and is
// the source for PEERS responses and snapshots.
type Book struct {
	mu      sync.RWMutex
	entries map[netip.AddrPort]Entry
	now     func() time.Time
}

func NewBook() *Book {
	return &Book{entries: map[netip.AddrPort]Entry{}, now: time.Now}
}

// Add inserts or refreshes an address. A zero id leaves any previously
// known id in place.
func (b *Book) Add(addr netip.AddrPort, id identity.NodeID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e := b.entries[addr]
	e.Addr = addr
	if id != (identity.NodeID{}) {
		e.NodeID = id
	}
	e.LastSeen = b.now()
	b.entries[addr] = e
}

// AddCompact inserts addresses straight from decoded compact entries.
func (b *Book) AddCompact(v4 []compact.SocketAddrV4, v6 []compact.SocketAddrV6) {
	for _, a := range v4 {
		b.Add(a.AddrPort(), identity.NodeID{})
	}
	for _, a := range v6 {
		b.Add(a.AddrPort(), identity.NodeID{})
	}
}

func (b *Book) Lookup(addr netip.AddrPort) (Entry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	e, ok := b.entries[addr]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

func (b *Book) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// Sample returns up to maxV4/maxV6 addresses per family in compact-ready
// form. Zero means no limit for that family. Map iteration order gives a
// cheap random sample.
func (b *Book) Sample(maxV4, maxV6 int) ([]compact.SocketAddrV4, []compact.SocketAddrV6) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var v4 []compact.SocketAddrV4
	var v6 []compact.SocketAddrV6
	for _, e := range b.entries {
		if a, ok := compact.SocketAddrV4FromAddrPort(e.Addr); ok {
			if maxV4 == 0 || len(v4) < maxV4 {
				v4 = append(v4, a)
			}
			continue
		}
		if a, ok := compact.SocketAddrV6FromAddrPort(e.Addr); ok {
			if maxV6 == 0 || len(v6) < maxV6 {
				v6 = append(v6, a)
			}
		}
	}
	return v4, v6
}

// All returns every entry, for snapshots and inspection.
func (b *Book) All() []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Entry, 0, len(b.entries))
	for _, e := range b.entries {
		out = append(out, e)
	}
	return out
}

// Prune drops entries not seen within maxAge and reports how many went.
func (b *Book) Prune(maxAge time.Duration) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	cutoff := b.now().Add(-maxAge)
	dropped := 0
	for addr, e := range b.entries {
		if e.LastSeen.Before(cutoff) {
			delete(b.entries, addr)
			dropped++
		}
	}
	return dropped
}
