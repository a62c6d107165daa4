package text

import (
	"crypto/sha256"
	"testing"

	"lukechampine.com/frand"

	"go.nostrconnect.dev/core/chk"
)

func TestUnescapeByteString(t *testing.T) {
	b := make([]byte, 256)
	for i := range b {
		b[i] = byte(i)
	}
	escaped := NostrEscape(nil, b)
	unescaped := NostrUnescape(escaped)
	if string(b) != string(unescaped) {
		t.Log(b)
		t.Log(unescaped)
		t.FailNow()
	}
}

var seed = sha256.Sum256([]byte(`
The tao that can be told
is not the eternal Tao
The name that can be named
is not the eternal Name

The unnamable is the eternally real
Naming is the origin of all particular things

Free from desire, you realize the mystery
Caught in desire, you see only the manifestations

Yet mystery and manifestations arise from the same source
This source is called darkness

Darkness within darkness
The gateway to all understanding
`))

var src = frand.NewCustom(seed[:], 32, 12)

func TestRandomEscapeByteString(t *testing.T) {
	// fuzz-style test over random content instead of a fixed vector set.
	for i := 0; i < 1000; i++ {
		l := src.Intn(1<<8) + 32
		s1 := src.Bytes(l)
		orig := make([]byte, l)
		copy(orig, s1)

		escaped := NostrEscape(nil, s1)
		unescaped := NostrUnescape(escaped)
		if string(unescaped) != string(orig) {
			t.Fatalf("\ngot      %d %v\nexpected %d %v\n",
				len(unescaped), unescaped, len(orig), orig)
		}
	}
}

func BenchmarkNostrEscapeNostrUnescape(b *testing.B) {
	const size = 65536
	b.Run("NostrEscapeNostrUnescape64k", func(b *testing.B) {
		b.ReportAllocs()
		in := make([]byte, size)
		out := make([]byte, size*2)
		var err error
		for i := 0; i < b.N; i++ {
			if _, err = frand.Read(in); chk.E(err) {
				b.Fatal(err)
			}
			out = NostrEscape(out, in)
			out = NostrUnescape(out)
			out = out[:0]
		}
	})
}
