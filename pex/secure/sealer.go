package secure

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"io"
	"sync/atomic"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

var (
	ErrCiphertextTooShort = errors.New("secure: ciphertext too short")
	ErrOpenFailed         = errors.New("secure: payload authentication failed")
)

// DeriveSwarmKey derives a 32-byte sealing key from a shared swarm secret.
// swarmID binds the key to one swarm so the same secret reused across
// swarms still yields distinct keys.
func DeriveSwarmKey(secret []byte, swarmID string) ([]byte, error) {
	info := make([]byte, 0, len("pex-swarm-key")+len(swarmID))
	info = append(info, []byte("pex-swarm-key")...)
	info = append(info, []byte(swarmID)...)

	hk := hkdf.New(sha256.New, secret, nil, info)
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hk, key); err != nil {
		return nil, err
	}
	return key, nil
}

// Sealer wraps ChaCha20-Poly1305 with automatic nonce management.
// The 96-bit nonce is a 32-bit random prefix plus a 64-bit counter, good
// for ~2^64 payloads per key with no reuse.
type Sealer struct {
	aead   cipher.AEAD
	prefix [4]byte
	seq    atomic.Uint64
}

// NewSealer creates a Sealer from a 32-byte key (see DeriveSwarmKey).
func NewSealer(key []byte) (*Sealer, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, errors.New("secure: invalid key size for ChaCha20-Poly1305")
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	s := &Sealer{aead: aead}
	if _, err := io.ReadFull(rand.Reader, s.prefix[:]); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sealer) nextNonce() []byte {
	seq := s.seq.Add(1)
	nonce := make([]byte, chacha20poly1305.NonceSize)
	copy(nonce[:4], s.prefix[:])
	binary.BigEndian.PutUint64(nonce[4:], seq)
	return nonce
}

// Seal encrypts and authenticates a payload.
// Returns: nonce (12 bytes) || ciphertext || tag (16 bytes).
// additionalData is authenticated but not encrypted; callers bind the frame
// type here so a sealed PEERS payload cannot be replayed as a SNAPSHOT.
func (s *Sealer) Seal(payload, additionalData []byte) []byte {
	nonce := s.nextNonce()
	ciphertext := s.aead.Seal(nil, nonce, payload, additionalData)
	out := make([]byte, len(nonce)+len(ciphertext))
	copy(out, nonce)
	copy(out[len(nonce):], ciphertext)
	return out
}

// Open decrypts and verifies a sealed payload.
func (s *Sealer) Open(sealed, additionalData []byte) ([]byte, error) {
	nonceSize := chacha20poly1305.NonceSize
	if len(sealed) < nonceSize+s.aead.Overhead() {
		return nil, ErrCiphertextTooShort
	}
	nonce := sealed[:nonceSize]
	ct := sealed[nonceSize:]
	payload, err := s.aead.Open(nil, nonce, ct, additionalData)
	if err != nil {
		return nil, ErrOpenFailed
	}
	return payload, nil
}

// Overhead returns the per-payload sealing overhead (nonce plus tag).
func (s *Sealer) Overhead() int { return chacha20poly1305.NonceSize + s.aead.Overhead() }
