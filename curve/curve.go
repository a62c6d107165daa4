// Package curve implements the secp256k1 short Weierstrass curve primitives
// this core needs: scalar/point arithmetic, key validation, and the
// uncompressed/compressed/x-only encodings BIP-340 and ECDH build on.
//
// Arithmetic is plain affine math/big, in the style of the BIP-340 reference
// implementation: clear and auditable rather than constant-time or
// allocation-free. This core signs and verifies interactively at human
// timescales (a session handshake, an RPC round trip), so that tradeoff is
// the right one here.
package curve

import (
	"crypto/rand"
	"math/big"

	"go.nostrconnect.dev/core/errs"
)

// Field and group parameters for secp256k1: y^2 = x^3 + 7 over GF(P), with
// base point G of order N.
var (
	P, _ = new(big.Int).SetString("fffffffffffffffffffffffffffffffffffffffffffffffffffffffefffffc2f", 16)
	N, _ = new(big.Int).SetString("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141", 16)
	Gx, _ = new(big.Int).SetString("79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798", 16)
	Gy, _ = new(big.Int).SetString("483ada7726a3c4655da4fbfc0e1108a8fd17b448a68554199c47d08ffb10d4b8", 16)
)

// Point is an affine point on the curve. The point at infinity is
// represented by Inf == true (X, Y are meaningless in that case).
type Point struct {
	X, Y *big.Int
	Inf  bool
}

func G() Point { return Point{X: new(big.Int).Set(Gx), Y: new(big.Int).Set(Gy)} }

func infinity() Point { return Point{Inf: true} }

// IsOnCurve reports whether p satisfies y^2 = x^3 + 7 mod P.
func IsOnCurve(p Point) bool {
	if p.Inf {
		return false
	}
	if p.X.Sign() < 0 || p.X.Cmp(P) >= 0 || p.Y.Sign() < 0 || p.Y.Cmp(P) >= 0 {
		return false
	}
	lhs := new(big.Int).Mul(p.Y, p.Y)
	lhs.Mod(lhs, P)
	rhs := new(big.Int).Mul(p.X, p.X)
	rhs.Mul(rhs, p.X)
	rhs.Add(rhs, big.NewInt(7))
	rhs.Mod(rhs, P)
	return lhs.Cmp(rhs) == 0
}

// Add returns a+b on the curve.
func Add(a, b Point) Point {
	if a.Inf {
		return b
	}
	if b.Inf {
		return a
	}
	if a.X.Cmp(b.X) == 0 {
		if a.Y.Cmp(b.Y) != 0 || a.Y.Sign() == 0 {
			return infinity()
		}
		return double(a)
	}
	// lambda = (b.Y - a.Y) / (b.X - a.X)
	num := new(big.Int).Sub(b.Y, a.Y)
	den := new(big.Int).Sub(b.X, a.X)
	den.Mod(den, P)
	lambda := new(big.Int).Mul(num, modInverse(den))
	lambda.Mod(lambda, P)
	return fromLambda(a, b.X, lambda)
}

func double(a Point) Point {
	if a.Inf || a.Y.Sign() == 0 {
		return infinity()
	}
	// lambda = 3*x^2 / 2*y
	num := new(big.Int).Mul(a.X, a.X)
	num.Mul(num, big.NewInt(3))
	den := new(big.Int).Mul(a.Y, big.NewInt(2))
	den.Mod(den, P)
	lambda := new(big.Int).Mul(num, modInverse(den))
	lambda.Mod(lambda, P)
	return fromLambda(a, a.X, lambda)
}

// fromLambda completes a point addition/doubling given the slope lambda and
// the other point's x coordinate (bx), reusing the formula x3 = lambda^2 -
// ax - bx, y3 = lambda*(ax-x3) - ay.
func fromLambda(a Point, bx, lambda *big.Int) Point {
	x3 := new(big.Int).Mul(lambda, lambda)
	x3.Sub(x3, a.X)
	x3.Sub(x3, bx)
	x3.Mod(x3, P)
	y3 := new(big.Int).Sub(a.X, x3)
	y3.Mul(y3, lambda)
	y3.Sub(y3, a.Y)
	y3.Mod(y3, P)
	return Point{X: x3, Y: y3}
}

func modInverse(a *big.Int) *big.Int {
	return new(big.Int).ModInverse(new(big.Int).Mod(a, P), P)
}

// ScalarMult returns k*p using double-and-add.
func ScalarMult(k *big.Int, p Point) Point {
	result := infinity()
	addend := p
	kk := new(big.Int).Mod(k, N)
	for i := 0; i < kk.BitLen(); i++ {
		if kk.Bit(i) == 1 {
			result = Add(result, addend)
		}
		addend = double(addend)
	}
	return result
}

// ScalarBaseMult returns k*G.
func ScalarBaseMult(k *big.Int) Point { return ScalarMult(k, G()) }

// ValidatePrivate parses a 32-byte big-endian scalar and checks 1 <= d < N.
func ValidatePrivate(d []byte) (*big.Int, error) {
	if len(d) != 32 {
		return nil, errs.ErrWrongKeyLength
	}
	x := new(big.Int).SetBytes(d)
	if x.Sign() == 0 || x.Cmp(N) >= 0 {
		return nil, errs.ErrInvalidPrivateKey
	}
	return x, nil
}

// GeneratePrivate returns a fresh, valid 32-byte secret scalar.
func GeneratePrivate() ([]byte, error) {
	for {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return nil, err
		}
		if _, err := ValidatePrivate(b); err == nil {
			return b, nil
		}
	}
}

// XOnlyPub returns the 32-byte x-coordinate of d*G.
func XOnlyPub(d []byte) ([]byte, error) {
	dd, err := ValidatePrivate(d)
	if err != nil {
		return nil, err
	}
	p := ScalarBaseMult(dd)
	return leftPad32(p.X), nil
}

// CompressedPub returns the 33-byte SEC1 compressed encoding of d*G.
func CompressedPub(d []byte) ([]byte, error) {
	dd, err := ValidatePrivate(d)
	if err != nil {
		return nil, err
	}
	p := ScalarBaseMult(dd)
	prefix := byte(0x02)
	if p.Y.Bit(0) == 1 {
		prefix = 0x03
	}
	return append([]byte{prefix}, leftPad32(p.X)...), nil
}

// DecompressXOnly recovers the point with x-coordinate x and the given y
// parity (oddY true selects the odd root), per spec.md 4.1: y =
// (x^3+7)^((p+1)/4) mod p, valid because p = 3 mod 4.
func DecompressXOnly(x []byte, oddY bool) (Point, error) {
	if len(x) != 32 {
		return Point{}, errs.ErrWrongKeyLength
	}
	xx := new(big.Int).SetBytes(x)
	if xx.Cmp(P) >= 0 {
		return Point{}, errs.ErrInvalidPublicKey
	}
	rhs := new(big.Int).Mul(xx, xx)
	rhs.Mul(rhs, xx)
	rhs.Add(rhs, big.NewInt(7))
	rhs.Mod(rhs, P)
	exp := new(big.Int).Add(P, big.NewInt(1))
	exp.Rsh(exp, 2)
	y := new(big.Int).Exp(rhs, exp, P)
	check := new(big.Int).Mul(y, y)
	check.Mod(check, P)
	if check.Cmp(rhs) != 0 {
		return Point{}, errs.ErrNotOnCurve
	}
	if (y.Bit(0) == 1) != oddY {
		y = new(big.Int).Sub(P, y)
	}
	return Point{X: xx, Y: y}, nil
}

// DecompressSEC1 parses a 33-byte compressed or 65-byte uncompressed SEC1
// public key.
func DecompressSEC1(q []byte) (Point, error) {
	switch len(q) {
	case 33:
		if q[0] != 0x02 && q[0] != 0x03 {
			return Point{}, errs.ErrInvalidPublicKey
		}
		return DecompressXOnly(q[1:], q[0] == 0x03)
	case 65:
		if q[0] != 0x04 {
			return Point{}, errs.ErrInvalidPublicKey
		}
		p := Point{X: new(big.Int).SetBytes(q[1:33]), Y: new(big.Int).SetBytes(q[33:65])}
		if !IsOnCurve(p) {
			return Point{}, errs.ErrNotOnCurve
		}
		return p, nil
	default:
		return Point{}, errs.ErrWrongKeyLength
	}
}

// ECDH computes the x-only shared secret between a 32-byte secret scalar d
// and a peer public key accepted as 32 (x-only), 33 (compressed), or 65
// (uncompressed) bytes. Per spec.md 4.1/9: for a 32-byte x-only peer key,
// the even-y (0x02) candidate is tried first, falling back to odd-y (0x03)
// if that candidate is not on the curve; which parity was used is not
// reported to the caller.
func ECDH(d []byte, q []byte) ([]byte, error) {
	dd, err := ValidatePrivate(d)
	if err != nil {
		return nil, err
	}
	var peer Point
	switch len(q) {
	case 32:
		peer, err = DecompressXOnly(q, false)
		if err != nil {
			peer, err = DecompressXOnly(q, true)
			if err != nil {
				return nil, err
			}
		}
	case 33, 65:
		peer, err = DecompressSEC1(q)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errs.ErrWrongKeyLength
	}
	shared := ScalarMult(dd, peer)
	if shared.Inf {
		return nil, errs.ErrInvalidPublicKey
	}
	return leftPad32(shared.X), nil
}

func leftPad32(x *big.Int) []byte {
	b := x.Bytes()
	if len(b) == 32 {
		return b
	}
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return out
}
