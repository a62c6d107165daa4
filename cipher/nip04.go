package cipher

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"go.nostrconnect.dev/core/chk"
	"go.nostrconnect.dev/core/errs"
)

// SharedSecretKey derives the legacy NIP-04 symmetric key from a 32-byte
// x-only ECDH shared secret: SHA-256 of the shared x-coordinate.
func SharedSecretKey(sharedX []byte) ([]byte, error) {
	if len(sharedX) != 32 {
		return nil, errs.ErrWrongKeyLength
	}
	k := sha256.Sum256(sharedX)
	return k[:], nil
}

// Encrypt04 encrypts plaintext with AES-256-CBC under a random 16-byte IV
// and PKCS#7 padding, returning "<b64(ciphertext)>?iv=<b64(iv)>".
func Encrypt04(plaintext string, key []byte) (string, error) {
	if len(key) != 32 {
		return "", errs.ErrWrongKeyLength
	}
	block, err := aes.NewCipher(key)
	if chk.E(err) {
		return "", err
	}
	iv := make([]byte, aes.BlockSize)
	if _, err = rand.Read(iv); chk.E(err) {
		return "", err
	}
	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)
	return base64.StdEncoding.EncodeToString(ct) + "?iv=" + base64.StdEncoding.EncodeToString(iv), nil
}

// Decrypt04 reverses Encrypt04. A payload that doesn't split into exactly
// two parts on "?iv=" is rejected with errs.ErrMalformedPayload.
func Decrypt04(payload string, key []byte) (string, error) {
	if len(key) != 32 {
		return "", errs.ErrWrongKeyLength
	}
	parts := strings.Split(payload, "?iv=")
	if len(parts) != 2 {
		return "", errs.ErrMalformedPayload
	}
	ct, err := base64.StdEncoding.DecodeString(parts[0])
	if chk.E(err) {
		return "", errs.ErrMalformedPayload
	}
	iv, err := base64.StdEncoding.DecodeString(parts[1])
	if chk.E(err) {
		return "", errs.ErrMalformedPayload
	}
	if len(iv) != aes.BlockSize || len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return "", errs.ErrMalformedPayload
	}
	block, err := aes.NewCipher(key)
	if chk.E(err) {
		return "", err
	}
	padded := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ct)
	plain, err := pkcs7Unpad(padded, aes.BlockSize)
	if chk.E(err) {
		return "", errs.ErrMalformedPayload
	}
	return string(plain), nil
}

func pkcs7Pad(b []byte, blockSize int) []byte {
	padLen := blockSize - len(b)%blockSize
	padded := make([]byte, len(b)+padLen)
	copy(padded, b)
	for i := len(b); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

func pkcs7Unpad(b []byte, blockSize int) ([]byte, error) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, errs.ErrMalformedPayload
	}
	padLen := int(b[len(b)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(b) {
		return nil, errs.ErrMalformedPayload
	}
	for _, c := range b[len(b)-padLen:] {
		if int(c) != padLen {
			return nil, errs.ErrMalformedPayload
		}
	}
	return b[:len(b)-padLen], nil
}
