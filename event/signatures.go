package event

import (
	"bytes"

	"go.nostrconnect.dev/core/errorf"
	"go.nostrconnect.dev/core/errs"
	"go.nostrconnect.dev/core/signer"
)

// Sign populates PubKey, ID and Sig from keys. CreatedAt, Kind, Tags and
// Content must already be set.
func (ev *T) Sign(keys signer.I) (err error) {
	ev.PubKey = keys.Pub()
	ev.ID = ev.GetIDBytes()
	if ev.Sig, err = keys.Sign(ev.ID); err != nil {
		return err
	}
	return nil
}

// Verify recomputes the canonical id and checks it against ID before
// checking Sig against PubKey, so a forged id is rejected even if the
// signature happens to be valid for it.
func (ev *T) Verify() (valid bool, err error) {
	id := ev.GetIDBytes()
	if !bytes.Equal(id, ev.ID) {
		return false, errorf.E("event: id mismatch: %w", errs.ErrMalformedPayload)
	}
	s := signer.New()
	if err = s.InitPub(ev.PubKey); err != nil {
		return false, err
	}
	return s.Verify(ev.ID, ev.Sig), nil
}
