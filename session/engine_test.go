package session

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"go.nostrconnect.dev/core/event"
	"go.nostrconnect.dev/core/hex"
	"go.nostrconnect.dev/core/signer"
)

// memSessions is a minimal in-memory Sessions implementation for tests,
// mirroring identity.Profile's indexing without pulling in that package.
type memSessions struct {
	mx     sync.Mutex
	byPeer map[string]*T
	byID   map[string]*T
}

func newMemSessions() *memSessions {
	return &memSessions{byPeer: map[string]*T{}, byID: map[string]*T{}}
}

func (m *memSessions) ByPeer(peer string) (*T, bool) {
	m.mx.Lock()
	defer m.mx.Unlock()
	s, ok := m.byPeer[peer]
	return s, ok
}

func (m *memSessions) BySessionID(id string) (*T, bool) {
	m.mx.Lock()
	defer m.mx.Unlock()
	s, ok := m.byID[id]
	return s, ok
}

func (m *memSessions) Upsert(s *T) {
	m.mx.Lock()
	defer m.mx.Unlock()
	m.byID[s.SessionID] = s
	if s.Theirs != "" {
		m.byPeer[s.Theirs] = s
	}
}

func (m *memSessions) Remove(sessionID string) {
	m.mx.Lock()
	defer m.mx.Unlock()
	if s, ok := m.byID[sessionID]; ok {
		delete(m.byPeer, s.Theirs)
		delete(m.byID, sessionID)
	}
}

// router wires two engines' Publish calls directly into each other's
// Dispatch, standing in for the relay façade in these engine-only tests.
type router struct {
	peerOf map[*Engine]*Engine
}

func (r *router) publishFor(self *Engine) Publisher {
	return publisherFunc(func(ctx context.Context, relays []string, ev *event.T) error {
		r.peerOf[self].Dispatch(ctx, ev)
		return nil
	})
}

type publisherFunc func(ctx context.Context, relays []string, ev *event.T) error

func (f publisherFunc) Publish(ctx context.Context, relays []string, ev *event.T) error {
	return f(ctx, relays, ev)
}

func newTestSigner(t *testing.T, seed byte) signer.I {
	t.Helper()
	s := signer.New()
	if err := s.InitSec(bytes.Repeat([]byte{seed}, 32)); err != nil {
		t.Fatal(err)
	}
	return s
}

func clockAt(t int64) Clock { return func() int64 { return t } }

func idSeq(prefix string) IDGen {
	n := 0
	return func() string {
		n++
		return prefix + string(rune('0'+n))
	}
}

// setupPair builds two engines, alice (initiator) and bob (acceptor), wired
// to deliver events directly to each other, with bob already holding a
// session for alice (as if alice had already been scanned/registered).
func setupPair(t *testing.T) (alice, bob *Engine, aliceSessions, bobSessions *memSessions, aliceSess, bobSess *T) {
	t.Helper()
	aliceKeys := newTestSigner(t, 0x01)
	bobKeys := newTestSigner(t, 0x02)
	alicePub := hex.Enc(aliceKeys.Pub())
	bobPub := hex.Enc(bobKeys.Pub())

	aliceSessions = newMemSessions()
	bobSessions = newMemSessions()

	r := &router{peerOf: map[*Engine]*Engine{}}

	alice = NewEngine(aliceKeys, aliceSessions, NewTable(), nil, Hooks{}, clockAt(1000), idSeq("a"))
	bob = NewEngine(bobKeys, bobSessions, NewTable(), nil, Hooks{}, clockAt(1000), idSeq("b"))

	// publisher depends on the peer engine existing, so wire it after both exist.
	aliceEngineRef, bobEngineRef := alice, bob
	r.peerOf[aliceEngineRef] = bobEngineRef
	r.peerOf[bobEngineRef] = aliceEngineRef
	alice.publisher = r.publishFor(alice)
	bob.publisher = r.publishFor(bob)

	aliceSess = New("alice-sess", alicePub, "secret-1", []string{"wss://relay.test"}, nil, 1000)
	aliceSess.Theirs = bobPub
	aliceSessions.Upsert(aliceSess)

	bobSess = New("bob-sess", bobPub, "secret-1", []string{"wss://relay.test"}, nil, 1000)
	bobSess.Theirs = alicePub
	bobSessions.Upsert(bobSess)

	return
}

func TestEngineConnectHandshakeReachesConnected(t *testing.T) {
	alice, _, _, _, aliceSess, bobSess := setupPair(t)
	ctx := context.Background()

	if err := alice.SendConnect(ctx, aliceSess, "secret-1"); err != nil {
		t.Fatal(err)
	}
	if aliceSess.State() != Connected {
		t.Fatalf("expected alice session Connected, got %s", aliceSess.State())
	}
	if bobSess.State() != Connected {
		t.Fatalf("expected bob session Connected, got %s", bobSess.State())
	}
}

func TestEngineCannotReachConnectedWithoutSuccessfulResponse(t *testing.T) {
	aliceKeys := newTestSigner(t, 0x03)
	aliceSessions := newMemSessions()
	alice := NewEngine(aliceKeys, aliceSessions, NewTable(), publisherFunc(
		func(ctx context.Context, relays []string, ev *event.T) error { return nil },
	), Hooks{}, clockAt(1000), idSeq("a"))

	sess := New("lonely", hex.Enc(aliceKeys.Pub()), "secret", []string{"wss://relay.test"}, nil, 1000)
	sess.Theirs = hex.Enc(newTestSigner(t, 0x04).Pub())
	aliceSessions.Upsert(sess)

	if err := alice.SendConnect(context.Background(), sess, "secret"); err != nil {
		t.Fatal(err)
	}
	if sess.State() == Connected {
		t.Fatal("session must not reach Connected without a correlated successful response")
	}
}

func TestEngineIdempotentReconnect(t *testing.T) {
	alice, _, _, _, aliceSess, _ := setupPair(t)
	ctx := context.Background()
	if err := alice.SendConnect(ctx, aliceSess, "secret-1"); err != nil {
		t.Fatal(err)
	}
	theirsBefore := aliceSess.Theirs
	if err := alice.SendConnect(ctx, aliceSess, "secret-1"); err != nil {
		t.Fatal(err)
	}
	if aliceSess.Theirs != theirsBefore {
		t.Fatal("re-connect must not change an already-known peer pubkey")
	}
	if aliceSess.State() != Connected {
		t.Fatal("expected session to remain Connected across a redundant reconnect")
	}
}

func TestEngineDisconnectRemovesSessionBothSides(t *testing.T) {
	alice, _, aliceSessions, bobSessions, aliceSess, bobSess := setupPair(t)
	ctx := context.Background()
	if err := alice.SendConnect(ctx, aliceSess, "secret-1"); err != nil {
		t.Fatal(err)
	}
	if err := alice.SendDisconnect(ctx, aliceSess); err != nil {
		t.Fatal(err)
	}
	if _, ok := aliceSessions.BySessionID(aliceSess.SessionID); ok {
		t.Fatal("expected alice's session to be removed after disconnect")
	}
	if _, ok := bobSessions.BySessionID(bobSess.SessionID); ok {
		t.Fatal("expected bob's session to be removed after disconnect")
	}
}

func TestEnginePingPong(t *testing.T) {
	alice, _, _, _, aliceSess, _ := setupPair(t)
	ctx := context.Background()
	if err := alice.SendConnect(ctx, aliceSess, "secret-1"); err != nil {
		t.Fatal(err)
	}
	// SendConnect's success path already issues an automatic follow-up
	// ping; a second explicit ping exercises the standalone path too.
	if err := alice.SendPing(ctx, aliceSess); err != nil {
		t.Fatal(err)
	}
	if aliceSess.State() != Connected {
		t.Fatalf("expected session to remain Connected after ping, got %s", aliceSess.State())
	}
}
