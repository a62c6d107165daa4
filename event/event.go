// Package event implements the Nostr event datatype: canonical
// serialization for id computation, JSON marshaling for the wire, and
// BIP-340 signing/verification via the signer package.
package event

import (
	"go.nostrconnect.dev/core/hex"
	"go.nostrconnect.dev/core/kind"
	"go.nostrconnect.dev/core/tag"
	"go.nostrconnect.dev/core/tags"
	"go.nostrconnect.dev/core/timestamp"
)

// T is a signed Nostr event.
type T struct {
	// ID is the SHA-256 hash of the canonical serialization, in binary.
	ID []byte
	// PubKey is the creator's 32-byte x-only public key, in binary.
	PubKey []byte
	// CreatedAt is the creator-asserted UNIX timestamp.
	CreatedAt *timestamp.T
	// Kind is the event type.
	Kind *kind.T
	// Tags is the event's tag list.
	Tags *tags.T
	// Content is the event body, interpretation depending on Kind.
	Content []byte
	// Sig is the 64-byte BIP-340 signature over ID.
	Sig []byte
}

// Ts sorts a slice of events newest-first.
type Ts []*T

func (ev Ts) Len() int           { return len(ev) }
func (ev Ts) Less(i, j int) bool { return ev[i].CreatedAt.I64() > ev[j].CreatedAt.I64() }
func (ev Ts) Swap(i, j int)      { ev[i], ev[j] = ev[j], ev[i] }

// New returns an empty event ready to have its fields populated.
func New() *T { return &T{} }

func (ev *T) IDString() string     { return hex.Enc(ev.ID) }
func (ev *T) PubKeyString() string { return hex.Enc(ev.PubKey) }
func (ev *T) SigString() string    { return hex.Enc(ev.Sig) }

// J is the JSON wire form of T, matching the field order and names every
// Nostr relay and client expects.
type J struct {
	ID        string     `json:"id"`
	PubKey    string     `json:"pubkey"`
	CreatedAt int64      `json:"created_at"`
	Kind      int        `json:"kind"`
	Tags      [][]string `json:"tags"`
	Content   string     `json:"content"`
	Sig       string     `json:"sig"`
}

// ToJ converts the event to its JSON wire struct.
func (ev *T) ToJ() *J {
	return &J{
		ID:        ev.IDString(),
		PubKey:    ev.PubKeyString(),
		CreatedAt: ev.CreatedAt.I64(),
		Kind:      ev.Kind.ToInt(),
		Tags:      ev.Tags.ToStringSlice(),
		Content:   string(ev.Content),
		Sig:       ev.SigString(),
	}
}

// FromJ parses the JSON wire struct into an event, without verifying it.
func FromJ(j *J) (ev *T, err error) {
	ev = &T{}
	if ev.ID, err = hex.Dec(j.ID); err != nil {
		return nil, err
	}
	if ev.PubKey, err = hex.Dec(j.PubKey); err != nil {
		return nil, err
	}
	if ev.Sig, err = hex.Dec(j.Sig); err != nil {
		return nil, err
	}
	ev.CreatedAt = timestamp.FromUnix(j.CreatedAt)
	ev.Kind = kind.New(uint16(j.Kind))
	ev.Tags = tags.NewWithCap(len(j.Tags))
	tgs := make([]*tag.T, 0, len(j.Tags))
	for _, f := range j.Tags {
		tgs = append(tgs, tag.New(f...))
	}
	ev.Tags.AppendTags(tgs...)
	ev.Content = []byte(j.Content)
	return ev, nil
}
