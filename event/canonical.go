package event

import (
	"crypto/sha256"
	"strconv"

	"go.nostrconnect.dev/core/hex"
	"go.nostrconnect.dev/core/text"
)

// Canonical renders the id-hashing form spec 4.4 requires: the JSON array
// [0, pubkey_hex_lower, created_at, kind, tags, content] with no
// insignificant whitespace, in exactly this field order.
func (ev *T) Canonical() []byte {
	b := make([]byte, 0, 256+len(ev.Content))
	b = append(b, '[', '0', ',')
	b = append(b, '"')
	b = hex.EncAppend(b, ev.PubKey)
	b = append(b, '"', ',')
	b = strconv.AppendInt(b, ev.CreatedAt.I64(), 10)
	b = append(b, ',')
	b = strconv.AppendInt(b, int64(ev.Kind.ToInt()), 10)
	b = append(b, ',', '[')
	for i, t := range ev.Tags.F() {
		if i > 0 {
			b = append(b, ',')
		}
		b = append(b, '[')
		for j := 0; j < t.Len(); j++ {
			if j > 0 {
				b = append(b, ',')
			}
			b = appendQuoted(b, t.S(j))
		}
		b = append(b, ']')
	}
	b = append(b, ']', ',')
	b = appendQuoted(b, string(ev.Content))
	b = append(b, ']')
	return b
}

// GetIDBytes computes the raw 32-byte SHA-256 hash of the canonical
// serialization, the value signed and checked as the event's ID.
func (ev *T) GetIDBytes() []byte {
	h := sha256.Sum256(ev.Canonical())
	return h[:]
}

// appendQuoted appends s as a JSON string literal, escaping only the
// control characters NIP-01 names — never HTML entities, so the output
// matches byte-for-byte across implementations.
func appendQuoted(dst []byte, s string) []byte {
	dst = append(dst, '"')
	dst = text.NostrEscape(dst, []byte(s))
	return append(dst, '"')
}
