// Package identity is the top-level façade (C9): it owns the active
// profile and its sessions, and exposes the operations a caller drives
// a connection through — create a profile, open or accept a session,
// ping, disconnect — wiring together signer, cipher, event, rpc,
// session, relay and connuri underneath.
package identity

import (
	"context"
	"encoding/hex"
	"sync"
	"time"

	"lukechampine.com/frand"

	"go.nostrconnect.dev/core/connuri"
	"go.nostrconnect.dev/core/errorf"
	"go.nostrconnect.dev/core/errs"
	"go.nostrconnect.dev/core/event"
	"go.nostrconnect.dev/core/relay"
	"go.nostrconnect.dev/core/rpc"
	"go.nostrconnect.dev/core/session"
	"go.nostrconnect.dev/core/signer"
)

// Config carries the tunables spec §5 leaves implementer-defined.
type Config struct {
	SubscriptionTimeout time.Duration
}

// Option mutates a Config, mirroring the cipher package's functional
// option pattern (cipher.WithCustomNonce).
type Option func(*Config)

// WithSubscriptionTimeout overrides the default 60s relay subscription
// timeout (§5).
func WithSubscriptionTimeout(d time.Duration) Option {
	return func(c *Config) { c.SubscriptionTimeout = d }
}

// Profile is a local identity: a keypair and its session collection.
type Profile struct {
	mx       sync.Mutex
	Pubkey   string
	keys     signer.I
	byPeer   map[string]*session.T
	byID     map[string]*session.T
}

func newProfile(keys signer.I) *Profile {
	return &Profile{
		Pubkey: hex.EncodeToString(keys.Pub()),
		keys:   keys,
		byPeer: make(map[string]*session.T),
		byID:   make(map[string]*session.T),
	}
}

// the Profile type itself satisfies session.Sessions, scoped to its
// own collection — one engine per profile, as §9 requires ("no
// process-wide singleton").
func (p *Profile) ByPeer(peer string) (*session.T, bool) {
	p.mx.Lock()
	defer p.mx.Unlock()
	s, ok := p.byPeer[peer]
	return s, ok
}

func (p *Profile) BySessionID(id string) (*session.T, bool) {
	p.mx.Lock()
	defer p.mx.Unlock()
	s, ok := p.byID[id]
	return s, ok
}

func (p *Profile) Upsert(s *session.T) {
	p.mx.Lock()
	defer p.mx.Unlock()
	p.byID[s.SessionID] = s
	if s.Theirs != "" {
		p.byPeer[s.Theirs] = s
	}
}

func (p *Profile) Remove(sessionID string) {
	p.mx.Lock()
	defer p.mx.Unlock()
	if s, ok := p.byID[sessionID]; ok {
		delete(p.byPeer, s.Theirs)
		delete(p.byID, sessionID)
	}
}

// Facade owns the active profile and drives the session engine, relay
// façade and connection-URI helpers on its behalf.
type Facade struct {
	cfg     Config
	active  *Profile
	engine  *session.Engine
	pending *session.Table
	relay   *relay.Facade
}

// New builds a Facade over transport, applying opts over sane
// defaults.
func New(transport relay.Transport, opts ...Option) *Facade {
	cfg := Config{SubscriptionTimeout: relay.DefaultSubscriptionTimeout}
	for _, o := range opts {
		o(&cfg)
	}
	return &Facade{
		cfg:   cfg,
		relay: relay.New(transport, cfg.SubscriptionTimeout),
	}
}

// CreateProfile generates a fresh keypair, or imports privHex if
// non-empty, and installs it as the active profile.
func (f *Facade) CreateProfile(privHex string, hooks session.Hooks) (pubkey string, err error) {
	keys := signer.New()
	if privHex == "" {
		if err = keys.Generate(); err != nil {
			return "", errorf.E("identity: generating keypair: %w", err)
		}
	} else {
		sec, derr := hex.DecodeString(privHex)
		if derr != nil {
			return "", errs.ErrInvalidHex
		}
		if err = keys.InitSec(sec); err != nil {
			return "", errorf.E("identity: importing keypair: %w", err)
		}
	}
	p := newProfile(keys)
	f.active = p
	f.pending = session.NewTable()
	f.engine = session.NewEngine(keys, p, f.pending, f.relay, hooks, nowUnix, newRequestID)
	return p.Pubkey, nil
}

// OpenSession allocates a session in AwaitingScan and builds its
// nostrconnect:// bootstrap URI: the initiator path, where this side
// waits to be scanned.
func (f *Facade) OpenSession(ctx context.Context, relays, perms []string, name, url, image string) (uri string, sessionID string, err error) {
	if f.active == nil {
		return "", "", errorf.E("identity: no active profile")
	}
	ch, err := f.relay.Listen(ctx, f.active.Pubkey, relays, nowUnix()-30)
	if err != nil {
		return "", "", err
	}
	f.dispatchLoop(ctx, ch)
	secret := newRequestID()
	sess := session.New(newSessionID(), f.active.Pubkey, secret, relays, perms, nowUnix())
	sess.Status = session.AwaitingScan
	f.active.Upsert(sess)
	f.pending.Insert(secret, &session.PendingRequest{
		SessionID: sess.SessionID,
		Command:   rpc.Connect,
		CreatedAt: nowUnix(),
	})
	uri, err = connuri.Build(&connuri.URI{
		Pubkey: f.active.Pubkey,
		Relays: relays,
		Secret: secret,
		Perms:  perms,
		Name:   name,
		URL:    url,
		Image:  image,
	})
	if err != nil {
		return "", "", err
	}
	return uri, sess.SessionID, nil
}

// OnScan is the acceptor-side handshake: a peer has been scanned from
// a nostrconnect:// URI. It starts listening for that peer, upserts a
// Connected session, and replies with the connect response echoing
// secret.
func (f *Facade) OnScan(ctx context.Context, peerPubkey string, relays []string, secret string, perms []string) error {
	if f.active == nil {
		return errorf.E("identity: no active profile")
	}
	ch, err := f.relay.Listen(ctx, f.active.Pubkey, relays, nowUnix()-30)
	if err != nil {
		return err
	}
	f.dispatchLoop(ctx, ch)
	sess := session.New(newSessionID(), f.active.Pubkey, secret, relays, perms, nowUnix())
	sess.Theirs = peerPubkey
	sess.Status = session.Connected
	f.active.Upsert(sess)
	body, err := rpc.Response{ID: secret, Result: secret}.MarshalJSON()
	if err != nil {
		return err
	}
	return f.engine.PublishResponse(ctx, sess, body)
}

// SendPing issues a ping on the session identified by sessionID.
func (f *Facade) SendPing(ctx context.Context, sessionID string) error {
	sess, ok := f.active.BySessionID(sessionID)
	if !ok {
		return errs.ErrSessionNotFound
	}
	return f.engine.SendPing(ctx, sess)
}

// SendDisconnect issues a disconnect on the session identified by
// sessionID.
func (f *Facade) SendDisconnect(ctx context.Context, sessionID string) error {
	sess, ok := f.active.BySessionID(sessionID)
	if !ok {
		return errs.ErrSessionNotFound
	}
	return f.engine.SendDisconnect(ctx, sess)
}

// ConnectToRemoteSigner is the supplemented bunker:// / NIP-05 flow: the
// client already knows (or resolves) the signer's pubkey and relays,
// and proactively sends a connect request instead of waiting to be
// scanned.
func (f *Facade) ConnectToRemoteSigner(ctx context.Context, bunkerURLOrNIP05 string) (sessionID string, err error) {
	if f.active == nil {
		return "", errorf.E("identity: no active profile")
	}
	var target string
	var relays []string
	var secret string
	if connuri.IsValidBunkerURL(bunkerURLOrNIP05) {
		u, perr := connuri.Parse(bunkerURLOrNIP05)
		if perr != nil {
			return "", perr
		}
		target, relays, secret = u.Pubkey, u.Relays, u.Secret
	} else {
		pub, rel, werr := connuri.ResolveWellKnown(ctx, nil, bunkerURLOrNIP05)
		if werr != nil {
			return "", werr
		}
		target, relays = pub, rel
	}
	ch, err := f.relay.Listen(ctx, f.active.Pubkey, relays, nowUnix()-30)
	if err != nil {
		return "", err
	}
	f.dispatchLoop(ctx, ch)
	sess := session.New(newSessionID(), f.active.Pubkey, secret, relays, nil, nowUnix())
	sess.Theirs = target
	f.active.Upsert(sess)
	if err = f.engine.SendConnect(ctx, sess, secret); err != nil {
		return "", err
	}
	return sess.SessionID, nil
}

// dispatchLoop drains ch, handing every inbound envelope to the session
// engine, until ch closes or ctx is done. ch is nil when Listen found an
// already-active subscription for this pubkey, in which case a loop is
// already running and there is nothing to start.
func (f *Facade) dispatchLoop(ctx context.Context, ch <-chan *event.T) {
	if ch == nil {
		return
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				f.engine.Dispatch(ctx, ev)
			}
		}
	}()
}

func nowUnix() int64 { return time.Now().Unix() }

func newSessionID() string { return hex.EncodeToString(frand.Bytes(16)) }
func newRequestID() string { return hex.EncodeToString(frand.Bytes(16)) }
