// Package schnorr implements BIP-340 Schnorr signatures over secp256k1 with
// x-only public keys, exactly per spec.md 4.2: tagged-hash nonce
// derivation, sign, and verify. Any verification failure returns false, not
// an error — BIP-340 verify never throws.
package schnorr

import (
	"crypto/rand"
	"crypto/sha256"
	"math/big"

	"go.nostrconnect.dev/core/curve"
	"go.nostrconnect.dev/core/errorf"
	"go.nostrconnect.dev/core/errs"
)

const SignatureSize = 64
const PubKeyBytesLen = 32

// taggedHash computes SHA256(SHA256(tag) || SHA256(tag) || msg), the
// "tagged hash" construct BIP-340 uses to domain-separate its three hash
// uses (aux, nonce, challenge).
func taggedHash(tag string, msgs ...[]byte) []byte {
	th := sha256.Sum256([]byte(tag))
	h := sha256.New()
	h.Write(th[:])
	h.Write(th[:])
	for _, m := range msgs {
		h.Write(m)
	}
	return h.Sum(nil)
}

func bytes32(x *big.Int) []byte {
	b := x.Bytes()
	if len(b) == 32 {
		return b
	}
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return out
}

// Sign produces a 64-byte BIP-340 signature over a 32-byte message hash
// using the 32-byte secret scalar d, following spec.md 4.2 steps 1-6.
func Sign(msg32, d []byte) ([]byte, error) {
	if len(msg32) != 32 {
		return nil, errs.ErrWrongKeyLength
	}
	dd, err := curve.ValidatePrivate(d)
	if err != nil {
		return nil, err
	}
	P := curve.ScalarBaseMult(dd)
	if P.Y.Bit(0) == 1 {
		dd = new(big.Int).Sub(curve.N, dd)
	}
	auxRand := make([]byte, 32)
	if _, err = rand.Read(auxRand); err != nil {
		return nil, err
	}
	dBytes := bytes32(dd)
	aux := taggedHash("BIP0340/aux", auxRand)
	t := make([]byte, 32)
	for i := range t {
		t[i] = dBytes[i] ^ aux[i]
	}
	pxBytes := bytes32(P.X)
	k0Hash := taggedHash("BIP0340/nonce", t, pxBytes, msg32)
	k0 := new(big.Int).Mod(new(big.Int).SetBytes(k0Hash), curve.N)
	if k0.Sign() == 0 {
		return nil, errorf.E("schnorr: derived nonce is zero, retry with fresh aux randomness")
	}
	R := curve.ScalarBaseMult(k0)
	k := k0
	if R.Y.Bit(0) == 1 {
		k = new(big.Int).Sub(curve.N, k0)
	}
	rxBytes := bytes32(R.X)
	eHash := taggedHash("BIP0340/challenge", rxBytes, pxBytes, msg32)
	e := new(big.Int).Mod(new(big.Int).SetBytes(eHash), curve.N)
	s := new(big.Int).Mul(e, dd)
	s.Add(s, k)
	s.Mod(s, curve.N)
	sig := make([]byte, 64)
	copy(sig[:32], rxBytes)
	copy(sig[32:], bytes32(s))
	return sig, nil
}

// Verify checks a 64-byte BIP-340 signature over msg32 against the 32-byte
// x-only public key pubkey32, per spec.md 4.2 steps 1-4. It never returns
// an error; any malformed input simply yields false.
func Verify(msg32, sig, pubkey32 []byte) bool {
	if len(msg32) != 32 || len(sig) != 64 || len(pubkey32) != 32 {
		return false
	}
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:])
	if r.Cmp(curve.P) >= 0 || s.Cmp(curve.N) >= 0 {
		return false
	}
	P, err := curve.DecompressXOnly(pubkey32, false)
	if err != nil {
		return false
	}
	eHash := taggedHash("BIP0340/challenge", bytes32(r), pubkey32, msg32)
	e := new(big.Int).Mod(new(big.Int).SetBytes(eHash), curve.N)
	sG := curve.ScalarBaseMult(s)
	eP := curve.ScalarMult(e, P)
	// R' = s*G - e*P; verification succeeds iff R' has even y and x(R') == r.
	rhs := curve.Add(sG, curve.Point{X: eP.X, Y: new(big.Int).Sub(curve.P, eP.Y)})
	if rhs.Inf {
		return false
	}
	if rhs.Y.Bit(0) == 1 {
		return false
	}
	return rhs.X.Cmp(r) == 0
}
