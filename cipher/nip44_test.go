package cipher

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestCalcPaddingTable(t *testing.T) {
	cases := map[int]int{
		1: 32, 32: 32, 33: 64, 256: 256, 257: 320, 10000: 10240, 65535: 65536,
	}
	for l, want := range cases {
		if got := calcPadding(l); got != want {
			t.Fatalf("calcPadding(%d) = %d, want %d", l, got, want)
		}
	}
}

func TestNip44RoundTrip(t *testing.T) {
	ck := make([]byte, 32)
	for i := range ck {
		ck[i] = byte(i)
	}
	for _, msg := range []string{"a", strings.Repeat("x", 300), "hello nostr connect"} {
		out, err := Encrypt44(msg, ck)
		if err != nil {
			t.Fatalf("encrypt %q: %v", msg, err)
		}
		got, err := Decrypt44(out, ck)
		if err != nil {
			t.Fatalf("decrypt %q: %v", msg, err)
		}
		if got != msg {
			t.Fatalf("round trip mismatch: got %q want %q", got, msg)
		}
	}
}

func TestNip44KnownAnswerFixedNonce(t *testing.T) {
	ck := make([]byte, 32)
	for i := range ck {
		ck[i] = byte(i)
	}
	nonce := make([]byte, 32)
	out, err := Encrypt44("a", ck, WithCustomNonce(nonce))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "Ag") {
		t.Fatalf("expected base64 payload starting with version byte 0x02, got %q", out[:2])
	}
	decoded, err := base64.StdEncoding.DecodeString(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(decoded) != 99 {
		t.Fatalf("expected 99 decoded bytes (1 version + 32 nonce + 34 ciphertext of 2-byte length prefix and 32 padded bytes + 32 mac), got %d", len(decoded))
	}
}

func TestNip44DecryptRejectsTamperedMAC(t *testing.T) {
	ck := make([]byte, 32)
	out, err := Encrypt44("hello", ck)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := base64.StdEncoding.DecodeString(out)
	if err != nil {
		t.Fatal(err)
	}
	decoded[len(decoded)-1] ^= 0xff
	tampered := base64.StdEncoding.EncodeToString(decoded)
	if _, err = Decrypt44(tampered, ck); err == nil {
		t.Fatal("expected auth failure on tampered payload")
	}
}

func TestNip44RejectsWrongKeyLength(t *testing.T) {
	if _, err := GenerateConversationKey(make([]byte, 31)); err == nil {
		t.Fatal("expected error for short shared secret")
	}
}
