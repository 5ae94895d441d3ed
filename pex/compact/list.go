package compact

import (
	"errors"
	"fmt"
)

var (
	ErrListLength = errors.New("compact: list length is not a multiple of the entry width")
)

// AppendV4List appends the compact form of each address to dst, with no
// framing between entries. Embedding protocols that need a count or length
// prefix add their own.
func AppendV4List(dst []byte, addrs []SocketAddrV4) []byte {
	for _, a := range addrs {
		dst = a.AppendCompact(dst)
	}
	return dst
}

// ParseV4List parses a concatenation of 6-byte compact entries.
// The input length must be an exact multiple of V4Len; a caller that cannot
// guarantee that has a framing bug upstream.
func ParseV4List(b []byte) ([]SocketAddrV4, error) {
	if len(b)%V4Len != 0 {
		return nil, fmt.Errorf("%w: %d bytes for v4 entries", ErrListLength, len(b))
	}
	addrs := make([]SocketAddrV4, 0, len(b)/V4Len)
	for i := 0; i < len(b); i += V4Len {
		addrs = append(addrs, CompactV4(b[i:i+V4Len]).SocketAddr())
	}
	return addrs, nil
}

// AppendV6List appends the compact form of each address to dst.
func AppendV6List(dst []byte, addrs []SocketAddrV6) []byte {
	for _, a := range addrs {
		dst = a.AppendCompact(dst)
	}
	return dst
}

// ParseV6List parses a concatenation of 18-byte compact entries.
func ParseV6List(b []byte) ([]SocketAddrV6, error) {
	if len(b)%V6Len != 0 {
		return nil, fmt.Errorf("%w: %d bytes for v6 entries", ErrListLength, len(b))
	}
	addrs := make([]SocketAddrV6, 0, len(b)/V6Len)
	for i := 0; i < len(b); i += V6Len {
		addrs = append(addrs, CompactV6(b[i:i+V6Len]).SocketAddr())
	}
	return addrs, nil
}

// Split separates a mixed list of sealed addresses into the two families.
// The type switch is exhaustive: Addr is sealed to these two types.
func Split(addrs []Addr) (v4 []SocketAddrV4, v6 []SocketAddrV6) {
	for _, a := range addrs {
		switch a := a.(type) {
		case SocketAddrV4:
			v4 = append(v4, a)
		case SocketAddrV6:
			v6 = append(v6, a)
		}
	}
	return v4, v6
}
