package schnorr

import (
	"bytes"
	"testing"

	"go.nostrconnect.dev/core/curve"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	d := bytes.Repeat([]byte{0x01}, 32)
	pub, err := curve.XOnlyPub(d)
	if err != nil {
		t.Fatal(err)
	}
	msg := make([]byte, 32)
	copy(msg, []byte("pong-scenario-message-hash-here!"))
	sig, err := Sign(msg, d)
	if err != nil {
		t.Fatal(err)
	}
	if len(sig) != SignatureSize {
		t.Fatalf("expected %d-byte signature, got %d", SignatureSize, len(sig))
	}
	if !Verify(msg, sig, pub) {
		t.Fatal("expected signature to verify")
	}
}

func TestVerifyRejectsBitFlip(t *testing.T) {
	d := bytes.Repeat([]byte{0x01}, 32)
	pub, err := curve.XOnlyPub(d)
	if err != nil {
		t.Fatal(err)
	}
	msg := make([]byte, 32)
	sig, err := Sign(msg, d)
	if err != nil {
		t.Fatal(err)
	}
	tampered := append([]byte(nil), sig...)
	tampered[63] ^= 0x01
	if Verify(msg, tampered, pub) {
		t.Fatal("expected bit-flipped signature to fail verification")
	}
}

func TestVerifyBoundaryConditions(t *testing.T) {
	d := bytes.Repeat([]byte{0x01}, 32)
	pub, _ := curve.XOnlyPub(d)
	msg := make([]byte, 32)
	sig, _ := Sign(msg, d)

	if Verify(make([]byte, 31), sig, pub) {
		t.Fatal("expected false for wrong-length message")
	}
	if Verify(msg, sig[:63], pub) {
		t.Fatal("expected false for wrong-length signature")
	}
	if Verify(msg, sig, pub[:31]) {
		t.Fatal("expected false for wrong-length pubkey")
	}

	rTooBig := append([]byte(nil), sig...)
	copy(rTooBig[:32], curve.P.Bytes())
	if Verify(msg, rTooBig, pub) {
		t.Fatal("expected false when r >= P")
	}

	sTooBig := append([]byte(nil), sig...)
	copy(sTooBig[32:], curve.N.Bytes())
	if Verify(msg, sTooBig, pub) {
		t.Fatal("expected false when s >= N")
	}

	offCurvePub := curve.P.Bytes()
	if Verify(msg, sig, offCurvePub) {
		t.Fatal("expected false for a pubkey x-coordinate that is not on the curve")
	}
}
