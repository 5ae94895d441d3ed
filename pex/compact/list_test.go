package compact

import (
	"errors"
	"testing"
)

func TestV4ListRoundTrip(t *testing.T) {
	in := []SocketAddrV4{
		{IP: [4]byte{10, 0, 0, 1}, Port: 6881},
		{IP: [4]byte{172, 16, 0, 9}, Port: 51413},
		{IP: [4]byte{192, 168, 1, 2}, Port: 34000},
	}
	b := AppendV4List(nil, in)
	if len(b) != len(in)*V4Len {
		t.Fatalf("encoded %d bytes, want %d", len(b), len(in)*V4Len)
	}
	out, err := ParseV4List(b)
	if err != nil {
		t.Fatalf("ParseV4List: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("parsed %d entries, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("entry %d: %v != %v", i, out[i], in[i])
		}
	}
}

func TestV6ListRoundTrip(t *testing.T) {
	in := []SocketAddrV6{
		{IP: [16]byte{15: 1}, Port: 80},
		{IP: [16]byte{0x20, 0x01, 0x0d, 0xb8, 15: 7}, Port: 6881},
	}
	out, err := ParseV6List(AppendV6List(nil, in))
	if err != nil {
		t.Fatalf("ParseV6List: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("parsed %d entries, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("entry %d mismatch", i)
		}
	}
}

func TestParseEmptyList(t *testing.T) {
	v4, err := ParseV4List(nil)
	if err != nil || len(v4) != 0 {
		t.Fatalf("empty v4 list: %v, %v", v4, err)
	}
	v6, err := ParseV6List(nil)
	if err != nil || len(v6) != 0 {
		t.Fatalf("empty v6 list: %v, %v", v6, err)
	}
}

func TestParseRaggedList(t *testing.T) {
	if _, err := ParseV4List(make([]byte, V4Len+1)); !errors.Is(err, ErrListLength) {
		t.Fatalf("expected ErrListLength, got %v", err)
	}
	if _, err := ParseV6List(make([]byte, V6Len-1)); !errors.Is(err, ErrListLength) {
		t.Fatalf("expected ErrListLength, got %v", err)
	}
}

func TestSplit(t *testing.T) {
	v4, v6 := Split([]Addr{
		SocketAddrV4{IP: [4]byte{1, 1, 1, 1}, Port: 1},
		SocketAddrV6{IP: [16]byte{15: 2}, Port: 2},
		SocketAddrV4{IP: [4]byte{3, 3, 3, 3}, Port: 3},
	})
	if len(v4) != 2 || len(v6) != 1 {
		t.Fatalf("split: %d v4, %d v6", len(v4), len(v6))
	}
}
