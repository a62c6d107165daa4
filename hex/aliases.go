// Package hex wraps hex encode/decode with the accelerated xhex codec for
// the append-to-buffer paths, falling back to the standard library for
// plain string conversions.
package hex

import (
	"encoding/hex"

	"github.com/templexxx/xhex"

	"go.nostrconnect.dev/core/chk"
)

var Enc = hex.EncodeToString
var EncBytes = hex.Encode
var Dec = hex.DecodeString
var DecBytes = hex.Decode
var DecLen = hex.DecodedLen

type InvalidByteError = hex.InvalidByteError

// EncAppend hex-encodes src and appends it to dst using xhex's faster
// encoder.
func EncAppend(dst, src []byte) []byte {
	l := len(dst)
	dst = append(dst, make([]byte, len(src)*2)...)
	xhex.Encode(dst[l:], src)
	return dst
}

// DecAppend hex-decodes src and appends it to dst using xhex's faster
// decoder.
func DecAppend(dst, src []byte) (b []byte, err error) {
	l := len(dst)
	b = dst
	b = append(b, make([]byte, len(src)/2)...)
	if err = xhex.Decode(b[l:], src); chk.E(err) {
		return
	}
	return
}
