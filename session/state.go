// Package session implements the peer-symmetric Nostr-Connect session
// engine: the state machine, the pending-request correlation table, and
// inbound/outbound RPC dispatch. Either side of a session may be the
// initiator; both run the same state transitions.
package session

import "sync"

// State is one node of the session lifecycle.
type State int

const (
	Idle State = iota
	AwaitingScan
	QRScanned
	ResponseSent
	Connected
	Disconnected
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingScan:
		return "awaiting_scan"
	case QRScanned:
		return "qr_scanned"
	case ResponseSent:
		return "response_sent"
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// T is one session: a pairing between our pubkey and a peer's, bound to
// a set of relays. theirs is empty until the handshake completes.
type T struct {
	mx sync.Mutex

	SessionID   string
	Ours        string
	Theirs      string
	Secret      string
	Relays      []string
	Permissions []string
	Status      State
	CreatedAt   int64
}

// New starts a fresh session in Idle, owned by ours (our x-only pubkey
// hex). Relays must be non-empty; secret is the shared handshake token.
func New(sessionID, ours, secret string, relays, perms []string, createdAt int64) *T {
	return &T{
		SessionID:   sessionID,
		Ours:        ours,
		Secret:      secret,
		Relays:      append([]string(nil), relays...),
		Permissions: append([]string(nil), perms...),
		Status:      Idle,
		CreatedAt:   createdAt,
	}
}

// State returns the current status under the session lock.
func (t *T) State() State {
	t.mx.Lock()
	defer t.mx.Unlock()
	return t.Status
}

// transition moves the session to next and returns true iff the status
// actually changed, so callers can decide whether to fire a
// state-change notification.
func (t *T) transition(next State) (changed bool) {
	t.mx.Lock()
	defer t.mx.Unlock()
	changed = t.Status != next
	t.Status = next
	return
}

// setTheirs records the peer pubkey once the handshake identifies it.
// Re-entry with the same value is a no-op, matching the idempotent
// re-connect requirement.
func (t *T) setTheirs(peer string) {
	t.mx.Lock()
	defer t.mx.Unlock()
	if t.Theirs == "" {
		t.Theirs = peer
	}
}
