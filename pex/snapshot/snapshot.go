package snapshot

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/peerwire/pex/pex/compact"
)

const (
	// Magic identifies a snapshot. "PEXS"
	Magic = uint32(0x50455853)
	// Version is the current snapshot format version.
	Version = 1

	headerLen = 4 + 1 + 1 + 4 + sha256.Size

	flagCompressed = 1 << 0
)

var (
	ErrTruncated      = errors.New("snapshot: truncated")
	ErrBadMagic       = errors.New("snapshot: invalid magic")
	ErrBadVersion     = errors.New("snapshot: unsupported version")
	ErrDigestMismatch = errors.New("snapshot: digest mismatch")
)

// Encode serializes an address-book sample.
// Format:
//
//	4 bytes: magic
//	1 byte: version
//	1 byte: flags (bit 0: body is LZ4-compressed)
//	4 bytes: raw body length
//	32 bytes: SHA-256 of the raw body
//	N bytes: body
//
// The raw body is: 4-byte v4 count, 4-byte v6 count, compact v4 entries,
// compact v6 entries. All integers big endian. The body ships compressed
// only when compression actually shrinks it.
func Encode(v4 []compact.SocketAddrV4, v6 []compact.SocketAddrV6) []byte {
	body := make([]byte, 8, 8+len(v4)*compact.V4Len+len(v6)*compact.V6Len)
	binary.BigEndian.PutUint32(body[0:4], uint32(len(v4)))
	binary.BigEndian.PutUint32(body[4:8], uint32(len(v6)))
	body = compact.AppendV4List(body, v4)
	body = compact.AppendV6List(body, v6)

	digest := sha256.Sum256(body)

	flags := byte(0)
	payload := body
	if compressed, err := Compress(body); err == nil && len(compressed) < len(body) {
		flags |= flagCompressed
		payload = compressed
	}

	out := make([]byte, headerLen, headerLen+len(payload))
	binary.BigEndian.PutUint32(out[0:4], Magic)
	out[4] = Version
	out[5] = flags
	binary.BigEndian.PutUint32(out[6:10], uint32(len(body)))
	copy(out[10:headerLen], digest[:])
	return append(out, payload...)
}

// Decode parses a snapshot, decompressing and verifying the digest.
func Decode(b []byte) ([]compact.SocketAddrV4, []compact.SocketAddrV6, error) {
	if len(b) < headerLen {
		return nil, nil, ErrTruncated
	}
	if binary.BigEndian.Uint32(b[0:4]) != Magic {
		return nil, nil, ErrBadMagic
	}
	if b[4] != Version {
		return nil, nil, fmt.Errorf("%w: %d", ErrBadVersion, b[4])
	}
	flags := b[5]
	rawLen := int(binary.BigEndian.Uint32(b[6:10]))
	var digest [sha256.Size]byte
	copy(digest[:], b[10:headerLen])

	body := b[headerLen:]
	if flags&flagCompressed != 0 {
		decompressed, err := Decompress(body)
		if err != nil {
			return nil, nil, err
		}
		body = decompressed
	}
	if len(body) != rawLen {
		return nil, nil, fmt.Errorf("%w: body is %d bytes, header says %d", ErrTruncated, len(body), rawLen)
	}
	if sha256.Sum256(body) != digest {
		return nil, nil, ErrDigestMismatch
	}

	if len(body) < 8 {
		return nil, nil, ErrTruncated
	}
	nv4 := int(binary.BigEndian.Uint32(body[0:4]))
	nv6 := int(binary.BigEndian.Uint32(body[4:8]))
	want := 8 + nv4*compact.V4Len + nv6*compact.V6Len
	if len(body) != want {
		return nil, nil, fmt.Errorf("%w: body is %d bytes, counts need %d", ErrTruncated, len(body), want)
	}

	offset := 8
	v4, err := compact.ParseV4List(body[offset : offset+nv4*compact.V4Len])
	if err != nil {
		return nil, nil, err
	}
	offset += nv4 * compact.V4Len
	v6, err := compact.ParseV6List(body[offset : offset+nv6*compact.V6Len])
	if err != nil {
		return nil, nil, err
	}
	return v4, v6, nil
}

// Digest returns the raw-body digest a snapshot claims, without decoding
// the body. Useful for deduplicating snapshot offers.
func Digest(b []byte) ([sha256.Size]byte, error) {
	var d [sha256.Size]byte
	if len(b) < headerLen {
		return d, ErrTruncated
	}
	if binary.BigEndian.Uint32(b[0:4]) != Magic {
		return d, ErrBadMagic
	}
	copy(d[:], b[10:headerLen])
	return d, nil
}
