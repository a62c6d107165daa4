package event

import (
	"bytes"
	"testing"

	"go.nostrconnect.dev/core/kind"
	"go.nostrconnect.dev/core/signer"
	"go.nostrconnect.dev/core/tag"
	"go.nostrconnect.dev/core/tags"
	"go.nostrconnect.dev/core/timestamp"
)

func newTestSigner(t *testing.T, seed byte) signer.I {
	t.Helper()
	s := signer.New()
	if err := s.InitSec(bytes.Repeat([]byte{seed}, 32)); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSignVerifyRoundTrip(t *testing.T) {
	s := newTestSigner(t, 0x01)
	ev := New()
	ev.CreatedAt = timestamp.FromUnix(1700000000)
	ev.Kind = kind.NostrConnect
	ev.Tags = tags.New(tag.New("p", "aabbccdd"))
	ev.Content = []byte("pong")
	if err := ev.Sign(s); err != nil {
		t.Fatal(err)
	}
	valid, err := ev.Verify()
	if err != nil {
		t.Fatal(err)
	}
	if !valid {
		t.Fatal("expected freshly signed event to verify")
	}
}

func TestVerifyRejectsTamperedContent(t *testing.T) {
	s := newTestSigner(t, 0x02)
	ev := New()
	ev.CreatedAt = timestamp.Now()
	ev.Kind = kind.TextNote
	ev.Tags = tags.New()
	ev.Content = []byte("original")
	if err := ev.Sign(s); err != nil {
		t.Fatal(err)
	}
	ev.Content = []byte("tampered")
	if valid, _ := ev.Verify(); valid {
		t.Fatal("expected tampered content to fail verification")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	s := newTestSigner(t, 0x03)
	ev := New()
	ev.CreatedAt = timestamp.FromUnix(42)
	ev.Kind = kind.TextNote
	ev.Tags = tags.New(tag.New("e", "deadbeef"))
	ev.Content = []byte("hello")
	if err := ev.Sign(s); err != nil {
		t.Fatal(err)
	}
	j := ev.ToJ()
	back, err := FromJ(j)
	if err != nil {
		t.Fatal(err)
	}
	if back.IDString() != ev.IDString() || back.PubKeyString() != ev.PubKeyString() {
		t.Fatal("round trip through J lost identity")
	}
	valid, err := back.Verify()
	if err != nil {
		t.Fatal(err)
	}
	if !valid {
		t.Fatal("expected event reconstructed from J to still verify")
	}
}

func TestCanonicalEscapesControlCharacters(t *testing.T) {
	ev := New()
	ev.PubKey = make([]byte, 32)
	ev.CreatedAt = timestamp.FromUnix(0)
	ev.Kind = kind.TextNote
	ev.Tags = tags.New()
	ev.Content = []byte("line one\nline two\ttabbed")
	out := ev.Canonical()
	if bytes.Contains(out, []byte("\n")) || bytes.Contains(out, []byte("\t")) {
		t.Fatal("canonical form must not contain raw control characters")
	}
	if !bytes.Contains(out, []byte(`\n`)) || !bytes.Contains(out, []byte(`\t`)) {
		t.Fatal("canonical form must escape newline and tab")
	}
}
