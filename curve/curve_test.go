package curve

import (
	"bytes"
	"testing"
)

func TestXOnlyPubDeterministic(t *testing.T) {
	d := bytes.Repeat([]byte{0x01}, 32)
	pub1, err := XOnlyPub(d)
	if err != nil {
		t.Fatal(err)
	}
	pub2, err := XOnlyPub(d)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(pub1, pub2) {
		t.Fatal("XOnlyPub is not deterministic")
	}
	if len(pub1) != 32 {
		t.Fatalf("expected 32-byte x-only pubkey, got %d", len(pub1))
	}
}

func TestValidatePrivateRejectsZeroAndOutOfRange(t *testing.T) {
	if _, err := ValidatePrivate(make([]byte, 32)); err == nil {
		t.Fatal("expected rejection of zero scalar")
	}
	if _, err := ValidatePrivate(N.Bytes()); err == nil {
		t.Fatal("expected rejection of scalar == N")
	}
	if _, err := ValidatePrivate(make([]byte, 31)); err == nil {
		t.Fatal("expected rejection of wrong-length scalar")
	}
}

func TestECDHBothPartiesAgree(t *testing.T) {
	da := bytes.Repeat([]byte{0x02}, 32)
	db := bytes.Repeat([]byte{0x03}, 32)
	pubA, err := XOnlyPub(da)
	if err != nil {
		t.Fatal(err)
	}
	pubB, err := XOnlyPub(db)
	if err != nil {
		t.Fatal(err)
	}
	sharedA, err := ECDH(da, pubB)
	if err != nil {
		t.Fatal(err)
	}
	sharedB, err := ECDH(db, pubA)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(sharedA, sharedB) {
		t.Fatal("ECDH shared secrets disagree")
	}
}

// TestECDHEvenOddYBoundary exercises the even-y-first, odd-y-fallback
// path an x-only peer key with no explicit parity must go through.
func TestECDHEvenOddYBoundary(t *testing.T) {
	d := bytes.Repeat([]byte{0x04}, 32)
	peerSec := bytes.Repeat([]byte{0x05}, 32)
	peerXOnly, err := XOnlyPub(peerSec)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = ECDH(d, peerXOnly); err != nil {
		t.Fatalf("ECDH against x-only peer key should succeed regardless of y-parity: %v", err)
	}
}

func TestDecompressXOnlyRejectsOffCurve(t *testing.T) {
	x := make([]byte, 32)
	x[31] = 1 // x=1 is unused below; the check uses x == P instead
	_ = x
	offCurveX := P.Bytes() // x == P is out of field range
	if _, err := DecompressXOnly(offCurveX, false); err == nil {
		t.Fatal("expected rejection of out-of-range x coordinate")
	}
}
