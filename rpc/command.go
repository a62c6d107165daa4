// Package rpc implements the Nostr-Connect request/response wire format:
// a closed command enum and the JSON envelope that carries it, both
// directions, wrapped and unwrapped by the session engine.
package rpc

import "go.nostrconnect.dev/core/errs"

// Command is one of the closed set of NIP-46 RPC methods.
type Command int

const (
	Connect Command = iota
	SignEvent
	Ping
	GetPublicKey
	Nip04Encrypt
	Nip04Decrypt
	Nip44Encrypt
	Nip44Decrypt
	Disconnect
	// GetRelays is the bunker signer's extension to the spec's closed
	// command set. The session engine answers it with an empty JSON
	// object ("{}"); no relay map is filled in.
	GetRelays
)

var names = [...]string{
	Connect:      "connect",
	SignEvent:    "sign_event",
	Ping:         "ping",
	GetPublicKey: "get_public_key",
	Nip04Encrypt: "nip04_encrypt",
	Nip04Decrypt: "nip04_decrypt",
	Nip44Encrypt: "nip44_encrypt",
	Nip44Decrypt: "nip44_decrypt",
	Disconnect:   "disconnect",
	GetRelays:    "get_relays",
}

// String renders the command in its lowercase snake_case wire form.
func (c Command) String() string {
	if int(c) < 0 || int(c) >= len(names) {
		return ""
	}
	return names[c]
}

// ParseCommand maps a wire string back to a Command, failing with
// errs.ErrUnknownCommand for anything outside the closed set.
func ParseCommand(s string) (Command, error) {
	for i, n := range names {
		if n == s {
			return Command(i), nil
		}
	}
	return 0, errs.ErrUnknownCommand
}
