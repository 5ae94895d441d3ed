package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// NodeIDLen is the wire size of a node identifier. 20 bytes keeps
// per-peer overhead small next to the 6/18-byte compact addresses.
const NodeIDLen = 20

// NodeID is the stable identifier for a node, defined as the first
// NodeIDLen bytes of SHA-256(PublicKey).
type NodeID [NodeIDLen]byte

// KeyPair holds an Ed25519 keypair used for node identity.
type KeyPair struct {
	PublicKey  ed25519.PublicKey
	PrivateKey ed25519.PrivateKey
}

func GenerateKeyPair() (KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return KeyPair{}, err
	}
	return KeyPair{PublicKey: pub, PrivateKey: priv}, nil
}

func NewKeyPair(publicKey, privateKey []byte) (KeyPair, error) {
	if len(publicKey) != ed25519.PublicKeySize {
		return KeyPair{}, errors.New("identity: invalid Ed25519 public key size")
	}
	if len(privateKey) != ed25519.PrivateKeySize {
		return KeyPair{}, errors.New("identity: invalid Ed25519 private key size")
	}
	return KeyPair{PublicKey: ed25519.PublicKey(publicKey), PrivateKey: ed25519.PrivateKey(privateKey)}, nil
}

func (kp KeyPair) NodeID() NodeID {
	return NodeIDFromPublicKey(kp.PublicKey)
}

func (kp KeyPair) Sign(message []byte) []byte {
	return ed25519.Sign(kp.PrivateKey, message)
}

func Verify(publicKey ed25519.PublicKey, message, signature []byte) bool {
	return ed25519.Verify(publicKey, message, signature)
}

func NodeIDFromPublicKey(publicKey []byte) NodeID {
	sum := sha256.Sum256(publicKey)
	var id NodeID
	copy(id[:], sum[:NodeIDLen])
	return id
}

func ParseNodeIDHex(s string) (NodeID, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return NodeID{}, err
	}
	if len(b) != NodeIDLen {
		return NodeID{}, errors.New("identity: invalid NodeID length")
	}
	var id NodeID
	copy(id[:], b)
	return id, nil
}

func (id NodeID) String() string {
	return hex.EncodeToString(id[:])
}
