package identity

import "testing"

func TestNodeIDDerivation(t *testing.T) {
	kp, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	id := kp.NodeID()
	if id != NodeIDFromPublicKey(kp.PublicKey) {
		t.Fatalf("NodeID does not match public key derivation")
	}

	parsed, err := ParseNodeIDHex(id.String())
	if err != nil {
		t.Fatalf("ParseNodeIDHex: %v", err)
	}
	if parsed != id {
		t.Fatalf("hex round trip mismatch")
	}
}

func TestParseNodeIDHexRejectsBadInput(t *testing.T) {
	if _, err := ParseNodeIDHex("zz"); err == nil {
		t.Fatalf("expected error for non-hex input")
	}
	if _, err := ParseNodeIDHex("abcd"); err == nil {
		t.Fatalf("expected error for short input")
	}
}

func TestSignVerify(t *testing.T) {
	kp, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	msg := []byte("announce")
	sig := kp.Sign(msg)
	if !Verify(kp.PublicKey, msg, sig) {
		t.Fatalf("signature did not verify")
	}
	sig[0] ^= 0xff
	if Verify(kp.PublicKey, msg, sig) {
		t.Fatalf("tampered signature verified")
	}
}

func TestNewKeyPairValidatesSizes(t *testing.T) {
	if _, err := NewKeyPair(make([]byte, 5), make([]byte, 64)); err == nil {
		t.Fatalf("expected error for bad public key size")
	}
	if _, err := NewKeyPair(make([]byte, 32), make([]byte, 5)); err == nil {
		t.Fatalf("expected error for bad private key size")
	}
}
