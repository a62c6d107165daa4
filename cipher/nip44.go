// Package cipher implements the two encrypted-DM payload formats the
// remote-signer protocol uses to wrap request/response content: legacy
// NIP-04 (AES-256-CBC) and NIP-44 v2 (HKDF + ChaCha20 + HMAC-SHA256 with
// length-prefixed padding). NIP-44 v2 is preferred for all new traffic;
// NIP-04 is kept for the nip04_encrypt/nip04_decrypt RPC commands.
package cipher

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/binary"
	"io"
	"math"

	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/hkdf"

	"go.nostrconnect.dev/core/chk"
	"go.nostrconnect.dev/core/errorf"
	"go.nostrconnect.dev/core/errs"
)

const (
	nip44Version     byte = 2
	MinPlaintextSize      = 0x0001
	MaxPlaintextSize      = 0xffff
)

// Opts configures an Encrypt44 call; the zero value picks a random nonce.
type Opts struct {
	err   error
	nonce []byte
}

// WithCustomNonce pins the 32-byte nonce instead of drawing one from
// crypto/rand. Tests use this to reproduce known-answer vectors.
func WithCustomNonce(nonce []byte) func(*Opts) {
	return func(o *Opts) {
		if len(nonce) != 32 {
			o.err = errorf.E("nip44: nonce must be 32 bytes, got %d", len(nonce))
			return
		}
		o.nonce = nonce
	}
}

// GenerateConversationKey derives the NIP-44 v2 conversation key from a
// 32-byte x-only ECDH shared secret: HKDF-Extract with salt "nip44-v2".
func GenerateConversationKey(sharedX []byte) (ck []byte, err error) {
	if len(sharedX) != 32 {
		return nil, errs.ErrWrongKeyLength
	}
	return hkdf.Extract(sha256.New, sharedX, []byte("nip44-v2")), nil
}

// Encrypt44 encrypts plaintext under the NIP-44 v2 scheme, returning the
// base64-encoded payload 0x02 ∥ nonce(32) ∥ ciphertext ∥ mac(32).
func Encrypt44(plaintext string, conversationKey []byte, applyOptions ...func(*Opts)) (cipherString string, err error) {
	var o Opts
	for _, apply := range applyOptions {
		apply(&o)
	}
	if chk.E(o.err) {
		return "", o.err
	}
	if o.nonce == nil {
		o.nonce = make([]byte, 32)
		if _, err = rand.Read(o.nonce); chk.E(err) {
			return
		}
	}
	enc, cc20nonce, auth, err := deriveMessageKeys(conversationKey, o.nonce)
	if chk.E(err) {
		return
	}
	plain := []byte(plaintext)
	size := len(plain)
	if size < MinPlaintextSize || size > MaxPlaintextSize {
		return "", errorf.E("nip44: plaintext must be between 1 and 65535 bytes, got %d", size)
	}
	padding := calcPadding(size)
	padded := make([]byte, 2+padding)
	binary.BigEndian.PutUint16(padded, uint16(size))
	copy(padded[2:], plain)
	ct, err := xorStream(enc, cc20nonce, padded)
	if chk.E(err) {
		return
	}
	mac, err := hmacSHA256(auth, o.nonce, ct)
	if chk.E(err) {
		return
	}
	out := make([]byte, 0, 1+32+len(ct)+32)
	out = append(out, nip44Version)
	out = append(out, o.nonce...)
	out = append(out, ct...)
	out = append(out, mac...)
	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt44 reverses Encrypt44, rejecting a forged or corrupted payload
// with errs.ErrAuthFail and a malformed pad with errs.ErrPaddingError.
func Decrypt44(payload string, conversationKey []byte) (plaintext string, err error) {
	if len(payload) > 0 && payload[0] == '#' {
		return "", errorf.E("nip44: unrecognised future version marker")
	}
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if chk.E(err) {
		return "", errs.ErrMalformedPayload
	}
	dLen := len(decoded)
	if dLen < 1+32+32 {
		return "", errs.ErrMalformedPayload
	}
	if decoded[0] != nip44Version {
		return "", errorf.E("nip44: unknown version %d", decoded[0])
	}
	nonce, ct, givenMac := decoded[1:33], decoded[33:dLen-32], decoded[dLen-32:]
	enc, cc20nonce, auth, err := deriveMessageKeys(conversationKey, nonce)
	if chk.E(err) {
		return
	}
	expectedMac, err := hmacSHA256(auth, nonce, ct)
	if chk.E(err) {
		return
	}
	if subtle.ConstantTimeCompare(givenMac, expectedMac) != 1 {
		return "", errs.ErrAuthFail
	}
	padded, err := xorStream(enc, cc20nonce, ct)
	if chk.E(err) {
		return
	}
	if len(padded) < 2 {
		return "", errs.ErrPaddingError
	}
	unpaddedLen := binary.BigEndian.Uint16(padded[:2])
	if unpaddedLen < MinPlaintextSize || int(unpaddedLen) > MaxPlaintextSize ||
		len(padded) != 2+calcPadding(int(unpaddedLen)) {
		return "", errs.ErrPaddingError
	}
	body := padded[2:]
	if len(body) < int(unpaddedLen) {
		return "", errs.ErrPaddingError
	}
	return string(body[:unpaddedLen]), nil
}

func xorStream(key, nonce, msg []byte) ([]byte, error) {
	c, err := chacha20.NewUnauthenticatedCipher(key, nonce)
	if err != nil {
		return nil, err
	}
	dst := make([]byte, len(msg))
	c.XORKeyStream(dst, msg)
	return dst, nil
}

func hmacSHA256(key, nonce, ct []byte) ([]byte, error) {
	if len(nonce) != sha256.Size {
		return nil, errorf.E("nip44: aad nonce must be 32 bytes")
	}
	h := hmac.New(sha256.New, key)
	h.Write(nonce)
	h.Write(ct)
	return h.Sum(nil), nil
}

// deriveMessageKeys expands the 76-byte per-message key material HKDF_Expand(ck, nonce)
// into chacha_key(32), chacha_nonce(12), hmac_key(32).
func deriveMessageKeys(conversationKey, nonce []byte) (encKey, cc20nonce, authKey []byte, err error) {
	if len(conversationKey) != 32 {
		return nil, nil, nil, errorf.E("nip44: conversation key must be 32 bytes")
	}
	if len(nonce) != 32 {
		return nil, nil, nil, errorf.E("nip44: nonce must be 32 bytes")
	}
	r := hkdf.Expand(sha256.New, conversationKey, nonce)
	encKey = make([]byte, 32)
	if _, err = io.ReadFull(r, encKey); chk.E(err) {
		return
	}
	cc20nonce = make([]byte, 12)
	if _, err = io.ReadFull(r, cc20nonce); chk.E(err) {
		return
	}
	authKey = make([]byte, 32)
	if _, err = io.ReadFull(r, authKey); chk.E(err) {
		return
	}
	return
}

// calcPadding returns the padded body size (excluding the 2-byte length
// prefix) for a plaintext of length sLen, per spec 4.3: <=32 rounds up to
// 32; otherwise round up to the chunk boundary of the next power of two.
func calcPadding(sLen int) int {
	if sLen <= 32 {
		return 32
	}
	nextPower := 1 << (int(math.Floor(math.Log2(float64(sLen-1)))) + 1)
	chunk := 32
	if nextPower/8 > chunk {
		chunk = nextPower / 8
	}
	return chunk * (((sLen - 1) / chunk) + 1)
}
