package protocol

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/peerwire/pex/pex/compact"
	"github.com/peerwire/pex/pex/identity"
)

var (
	ErrAnnounceNodeIDMismatch = errors.New("protocol: announce node id does not match public key")
	ErrAnnounceBadSignature   = errors.New("protocol: announce invalid signature")
	ErrAnnounceMissingKey     = errors.New("protocol: announce missing public key")
	ErrAnnounceAddrsTooLong   = errors.New("protocol: announce address list too long")
)

// MaxAnnounceAddrsLen caps each compact address list in an announcement.
// The signed form length-prefixes the lists with u16, so anything longer
// would wrap the prefix and make the signature ambiguous.
const MaxAnnounceAddrsLen = 1<<16 - 1

// Announce binds a node's reachable addresses to its Ed25519 identity.
// Addresses travel in compact form; the signature is computed over
// SigningBytes().
type Announce struct {
	NodeID       string `json:"node_id"`
	PublicKey    []byte `json:"public_key"`
	TimestampSec int64  `json:"timestamp_sec"`
	Nonce        []byte `json:"nonce"`
	AddrsV4      []byte `json:"addrs_v4,omitempty"` // concatenated compact v4 entries
	AddrsV6      []byte `json:"addrs_v6,omitempty"` // concatenated compact v6 entries
	Signature    []byte `json:"signature"`
}

// NewAnnounce builds an unsigned announcement for the given addresses.
// Mixed-family input is split per family via the sealed address capability.
func NewAnnounce(kp identity.KeyPair, addrs []compact.Addr) (Announce, error) {
	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return Announce{}, err
	}
	v4, v6 := compact.Split(addrs)
	return Announce{
		NodeID:       kp.NodeID().String(),
		PublicKey:    append([]byte(nil), kp.PublicKey...),
		TimestampSec: time.Now().Unix(),
		Nonce:        nonce,
		AddrsV4:      compact.AppendV4List(nil, v4),
		AddrsV6:      compact.AppendV6List(nil, v6),
	}, nil
}

// Addrs parses the announced addresses back out of their compact form.
func (a Announce) Addrs() ([]compact.SocketAddrV4, []compact.SocketAddrV6, error) {
	v4, err := compact.ParseV4List(a.AddrsV4)
	if err != nil {
		return nil, nil, err
	}
	v6, err := compact.ParseV6List(a.AddrsV6)
	if err != nil {
		return nil, nil, err
	}
	return v4, v6, nil
}

func (a Announce) SigningBytes() ([]byte, error) {
	if len(a.PublicKey) != ed25519.PublicKeySize {
		return nil, ErrAnnounceMissingKey
	}
	if len(a.AddrsV4) > MaxAnnounceAddrsLen || len(a.AddrsV6) > MaxAnnounceAddrsLen {
		return nil, ErrAnnounceAddrsTooLong
	}
	id, err := identity.ParseNodeIDHex(a.NodeID)
	if err != nil {
		return nil, err
	}

	var b bytes.Buffer
	b.Write(id[:])
	b.Write(a.PublicKey)
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(a.TimestampSec))
	b.Write(ts[:])
	b.Write(a.Nonce)

	var l [2]byte
	binary.BigEndian.PutUint16(l[:], uint16(len(a.AddrsV4)))
	b.Write(l[:])
	b.Write(a.AddrsV4)
	binary.BigEndian.PutUint16(l[:], uint16(len(a.AddrsV6)))
	b.Write(l[:])
	b.Write(a.AddrsV6)
	return b.Bytes(), nil
}

func (a *Announce) Sign(kp identity.KeyPair) error {
	toSign, err := a.SigningBytes()
	if err != nil {
		return err
	}
	a.Signature = kp.Sign(toSign)
	return nil
}

func (a Announce) Verify() error {
	if len(a.PublicKey) != ed25519.PublicKeySize {
		return ErrAnnounceMissingKey
	}
	derived := identity.NodeIDFromPublicKey(a.PublicKey)
	claimed, err := identity.ParseNodeIDHex(a.NodeID)
	if err != nil {
		return err
	}
	if derived != claimed {
		return ErrAnnounceNodeIDMismatch
	}
	toVerify, err := a.SigningBytes()
	if err != nil {
		return err
	}
	if !identity.Verify(ed25519.PublicKey(a.PublicKey), toVerify, a.Signature) {
		return ErrAnnounceBadSignature
	}
	return nil
}

func EncodeAnnounce(a Announce) ([]byte, error) {
	return json.Marshal(a)
}

func DecodeAnnounce(b []byte) (Announce, error) {
	var a Announce
	if err := json.Unmarshal(b, &a); err != nil {
		return Announce{}, err
	}
	if a.NodeID == "" {
		return Announce{}, fmt.Errorf("protocol: announce missing node_id")
	}
	return a, nil
}
