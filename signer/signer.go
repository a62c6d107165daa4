// Package signer wraps the curve and schnorr packages behind a single
// keypair abstraction: generate or load a secret, derive its public key,
// sign and verify BIP-340 signatures, and compute ECDH shared secrets.
// It is the one place downstream packages (event, cipher, session) reach
// for key material, so they never touch curve/schnorr directly.
package signer

import (
	"go.nostrconnect.dev/core/chk"
	"go.nostrconnect.dev/core/curve"
	"go.nostrconnect.dev/core/errorf"
	"go.nostrconnect.dev/core/schnorr"
)

// I is the signing/verification surface every session and event needs.
// A verifier-only Signer (InitPub without InitSec) returns an error from
// Sign, ECDH, and Zero-on-nothing but still Verifies.
type I interface {
	// Generate creates a fresh keypair from system entropy.
	Generate() error
	// InitSec loads a 32-byte secret key and derives its public key.
	InitSec(sec []byte) error
	// InitPub loads a 32-byte x-only public key for verification only.
	InitPub(pub []byte) error
	// Sec returns the raw 32-byte secret key, or nil if not initialised.
	Sec() []byte
	// Pub returns the raw 32-byte x-only public key.
	Pub() []byte
	// Sign produces a BIP-340 signature over a 32-byte message hash.
	Sign(msg32 []byte) ([]byte, error)
	// Verify checks a BIP-340 signature against the stored public key.
	Verify(msg32, sig []byte) bool
	// Zero wipes the secret key from memory.
	Zero()
	// ECDH computes the shared secret with a peer's x-only public key.
	ECDH(pub []byte) ([]byte, error)
}

// Signer is the concrete implementation of I, backed by curve/schnorr.
type Signer struct {
	sec []byte
	pub []byte
}

var _ I = &Signer{}

// New returns an empty Signer ready for Generate, InitSec, or InitPub.
func New() *Signer { return &Signer{} }

// Generate creates a fresh secret/public keypair from system entropy.
func (s *Signer) Generate() (err error) {
	var sec []byte
	if sec, err = curve.GeneratePrivate(); chk.E(err) {
		return
	}
	return s.InitSec(sec)
}

// InitSec loads a 32-byte secret scalar and derives the x-only public key.
func (s *Signer) InitSec(sec []byte) (err error) {
	var pub []byte
	if pub, err = curve.XOnlyPub(sec); chk.E(err) {
		return
	}
	s.sec = append([]byte(nil), sec...)
	s.pub = pub
	return
}

// InitPub loads a 32-byte x-only public key for verify-only use.
func (s *Signer) InitPub(pub []byte) (err error) {
	if len(pub) != 32 {
		return errorf.E("signer: public key must be 32 bytes, got %d", len(pub))
	}
	if _, err = curve.DecompressXOnly(pub, false); err != nil {
		if _, err = curve.DecompressXOnly(pub, true); chk.E(err) {
			return errorf.E("signer: public key is not a valid curve point")
		}
	}
	s.sec = nil
	s.pub = append([]byte(nil), pub...)
	return nil
}

// Sec returns the raw secret key bytes, or nil if this Signer has no
// secret loaded.
func (s *Signer) Sec() []byte { return s.sec }

// Pub returns the raw 32-byte x-only public key.
func (s *Signer) Pub() []byte { return s.pub }

// Sign produces a BIP-340 signature over msg32 using the loaded secret.
func (s *Signer) Sign(msg32 []byte) (sig []byte, err error) {
	if s.sec == nil {
		return nil, errorf.E("signer: no secret key loaded")
	}
	return schnorr.Sign(msg32, s.sec)
}

// Verify checks sig over msg32 against the loaded public key.
func (s *Signer) Verify(msg32, sig []byte) bool {
	if s.pub == nil {
		return false
	}
	return schnorr.Verify(msg32, sig, s.pub)
}

// Zero overwrites the secret key bytes in place.
func (s *Signer) Zero() {
	for i := range s.sec {
		s.sec[i] = 0
	}
	s.sec = nil
}

// ECDH computes the shared secret between this Signer's secret key and a
// peer's public key (accepted x-only, compressed, or uncompressed).
func (s *Signer) ECDH(pub []byte) ([]byte, error) {
	if s.sec == nil {
		return nil, errorf.E("signer: no secret key loaded")
	}
	return curve.ECDH(s.sec, pub)
}
