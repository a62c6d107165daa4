package session

import (
	"context"
	"encoding/json"

	"go.nostrconnect.dev/core/cipher"
	"go.nostrconnect.dev/core/errorf"
	"go.nostrconnect.dev/core/errs"
	"go.nostrconnect.dev/core/event"
	"go.nostrconnect.dev/core/hex"
	"go.nostrconnect.dev/core/kind"
	"go.nostrconnect.dev/core/rpc"
	"go.nostrconnect.dev/core/signer"
	"go.nostrconnect.dev/core/tag"
	"go.nostrconnect.dev/core/tags"
	"go.nostrconnect.dev/core/timestamp"
)

// Publisher is the one capability the engine needs from C8: deliver a
// signed event to a session's relays.
type Publisher interface {
	Publish(ctx context.Context, relays []string, ev *event.T) error
}

// Sessions looks up and mutates the session collection owned by a
// profile. The engine never holds its own session list (§9: no
// process-wide singleton; the identity façade owns this collection).
type Sessions interface {
	ByPeer(peer string) (*T, bool)
	BySessionID(id string) (*T, bool)
	Upsert(s *T)
	Remove(sessionID string)
}

// Clock returns the current Unix timestamp; overridable in tests.
type Clock func() int64

// IDGen produces a fresh unique request id; overridable in tests.
type IDGen func() string

// Hooks are the notifications C9 subscribes to. Any left nil is a
// no-op. AuthURL implements the supplemented auth_url out-of-band
// signal: a response whose result is literally "auth_url" carries the
// real URL in its error field and never resolves a pending request.
type Hooks struct {
	StateChanged func(s *T)
	PingReceived func(resp *rpc.Response)
	AuthURL      func(sessionID, url string)
}

// Engine is the session dispatch and correlation layer (C7). It is
// symmetric: the same Engine handles both the initiator and acceptor
// roles, since the wire protocol does not distinguish them.
type Engine struct {
	keys      signer.I
	sessions  Sessions
	pending   *Table
	publisher Publisher
	hooks     Hooks
	now       Clock
	genID     IDGen
}

func NewEngine(keys signer.I, sessions Sessions, pending *Table, publisher Publisher, hooks Hooks, now Clock, genID IDGen) *Engine {
	return &Engine{
		keys:      keys,
		sessions:  sessions,
		pending:   pending,
		publisher: publisher,
		hooks:     hooks,
		now:       now,
		genID:     genID,
	}
}

func (e *Engine) notify(s *T) {
	if e.hooks.StateChanged != nil {
		e.hooks.StateChanged(s)
	}
}

// Dispatch handles one inbound Nostr-Connect envelope event. Decrypt
// and parse failures are dropped silently, per §7 — adversarial input
// on a pub/sub network is expected and must never panic or propagate.
func (e *Engine) Dispatch(ctx context.Context, ev *event.T) {
	// ECDH and decrypt against the event's actual author, not a session
	// lookup: a Response to an open_session handshake arrives before
	// any session knows its peer's pubkey.
	plain, err := e.decryptFrom(ev.PubKey, string(ev.Content))
	if err != nil {
		return
	}
	if rpc.IsRequest(plain) {
		var req rpc.Request
		if err = json.Unmarshal(plain, &req); err != nil {
			return
		}
		sess, ok := e.sessions.ByPeer(ev.PubKeyString())
		if !ok {
			return
		}
		e.handleRequest(ctx, sess, &req)
		return
	}
	var resp rpc.Response
	if err = json.Unmarshal(plain, &resp); err != nil {
		return
	}
	e.handleResponse(ctx, ev, &resp)
}

// decryptFrom tries NIP-44 first, falling back to NIP-04 for peers
// still on the legacy cipher, matching the teacher's dual-decrypt
// fallback in bunker/session.go.
func (e *Engine) decryptFrom(authorPub []byte, content string) ([]byte, error) {
	sharedX, err := cipher.SharedX(e.keys, authorPub)
	if err != nil {
		return nil, err
	}
	ck, err := cipher.GenerateConversationKey(sharedX)
	if err == nil {
		if plain, derr := cipher.Decrypt44(content, ck); derr == nil {
			return []byte(plain), nil
		}
	}
	nip04Key, err := cipher.SharedSecretKey(sharedX)
	if err != nil {
		return nil, err
	}
	plain, err := cipher.Decrypt04(content, nip04Key)
	if err != nil {
		return nil, err
	}
	return []byte(plain), nil
}

func (e *Engine) handleRequest(ctx context.Context, sess *T, req *rpc.Request) {
	switch req.Method {
	case rpc.Connect:
		if sess.transition(Connected) {
			e.notify(sess)
		}
		e.reply(ctx, sess, req.ID, "ack", "")
	case rpc.Ping:
		e.reply(ctx, sess, req.ID, "pong", "")
	case rpc.Disconnect:
		e.reply(ctx, sess, req.ID, "ack", "")
		e.sessions.Remove(sess.SessionID)
		sess.transition(Disconnected)
		e.notify(sess)
	case rpc.SignEvent:
		e.handleSignEvent(ctx, sess, req)
	case rpc.GetPublicKey:
		e.reply(ctx, sess, req.ID, sess.Ours, "")
	case rpc.Nip04Encrypt, rpc.Nip04Decrypt, rpc.Nip44Encrypt, rpc.Nip44Decrypt:
		e.handleCipherRequest(ctx, sess, req)
	case rpc.GetRelays:
		e.reply(ctx, sess, req.ID, "{}", "")
	default:
		e.reply(ctx, sess, req.ID, "", "Unknown method: "+req.Method.String())
	}
}

func (e *Engine) handleSignEvent(ctx context.Context, sess *T, req *rpc.Request) {
	if len(req.Params) < 1 {
		e.reply(ctx, sess, req.ID, "", errs.ErrMissingParameters.Error())
		return
	}
	var j event.J
	if err := json.Unmarshal([]byte(req.Params[0]), &j); err != nil {
		e.reply(ctx, sess, req.ID, "", err.Error())
		return
	}
	ev, err := event.FromJ(&j)
	if err != nil {
		e.reply(ctx, sess, req.ID, "", err.Error())
		return
	}
	ev.PubKey, err = hex.Dec(sess.Ours)
	if err != nil {
		e.reply(ctx, sess, req.ID, "", err.Error())
		return
	}
	if err = ev.Sign(e.keys); err != nil {
		e.reply(ctx, sess, req.ID, "", err.Error())
		return
	}
	out, err := json.Marshal(ev.ToJ())
	if err != nil {
		e.reply(ctx, sess, req.ID, "", err.Error())
		return
	}
	e.reply(ctx, sess, req.ID, string(out), "")
}

func (e *Engine) handleCipherRequest(ctx context.Context, sess *T, req *rpc.Request) {
	if len(req.Params) < 2 {
		e.reply(ctx, sess, req.ID, "", errs.ErrMissingParameters.Error())
		return
	}
	peerPub, err := hex.Dec(req.Params[0])
	if err != nil {
		e.reply(ctx, sess, req.ID, "", err.Error())
		return
	}
	sharedX, err := cipher.SharedX(e.keys, peerPub)
	if err != nil {
		e.reply(ctx, sess, req.ID, "", err.Error())
		return
	}
	var out string
	switch req.Method {
	case rpc.Nip44Encrypt:
		var ck []byte
		if ck, err = cipher.GenerateConversationKey(sharedX); err == nil {
			out, err = cipher.Encrypt44(req.Params[1], ck)
		}
	case rpc.Nip44Decrypt:
		var ck []byte
		if ck, err = cipher.GenerateConversationKey(sharedX); err == nil {
			out, err = cipher.Decrypt44(req.Params[1], ck)
		}
	case rpc.Nip04Encrypt:
		var key []byte
		if key, err = cipher.SharedSecretKey(sharedX); err == nil {
			out, err = cipher.Encrypt04(req.Params[1], key)
		}
	case rpc.Nip04Decrypt:
		var key []byte
		if key, err = cipher.SharedSecretKey(sharedX); err == nil {
			out, err = cipher.Decrypt04(req.Params[1], key)
		}
	}
	if err != nil {
		e.reply(ctx, sess, req.ID, "", err.Error())
		return
	}
	e.reply(ctx, sess, req.ID, out, "")
}

func (e *Engine) handleResponse(ctx context.Context, ev *event.T, resp *rpc.Response) {
	if resp.Result == "auth_url" {
		pending, err := e.pending.RemoveAndReturn(resp.ID)
		if err != nil {
			return
		}
		// Put the entry back: the real response for this id is still due.
		e.pending.Insert(resp.ID, pending)
		if e.hooks.AuthURL != nil {
			e.hooks.AuthURL(pending.SessionID, resp.Error)
		}
		return
	}
	pending, err := e.pending.RemoveAndReturn(resp.ID)
	if err != nil {
		return
	}
	sess, ok := e.sessions.BySessionID(pending.SessionID)
	if !ok {
		return
	}
	switch pending.Command {
	case rpc.Connect:
		if resp.Error != "" {
			sess.transition(Error)
			e.notify(sess)
			return
		}
		sess.setTheirs(ev.PubKeyString())
		e.sessions.Upsert(sess)
		if sess.transition(Connected) {
			e.notify(sess)
		}
		_ = e.SendPing(ctx, sess)
	case rpc.Ping:
		if sess.transition(Connected) {
			e.notify(sess)
		}
		if e.hooks.PingReceived != nil {
			e.hooks.PingReceived(resp)
		}
	case rpc.Disconnect:
		if resp.Result == "ack" {
			e.sessions.Remove(sess.SessionID)
			sess.transition(Disconnected)
			e.notify(sess)
		}
	default:
		// no-op; higher layers may inspect via hooks in future.
	}
}

// PublishResponse seals and sends an already-built Response frame body,
// used by the identity façade's on_scan handshake to echo the secret
// before any PendingRequest for this session exists locally.
func (e *Engine) PublishResponse(ctx context.Context, sess *T, body []byte) error {
	return e.seal(ctx, sess, body)
}

// reply sends a Response frame with id back to sess's peer.
func (e *Engine) reply(ctx context.Context, sess *T, id, result, errMsg string) {
	resp := rpc.Response{ID: id, Result: result, Error: errMsg}
	body, err := json.Marshal(resp)
	if err != nil {
		return
	}
	_ = e.seal(ctx, sess, body)
}

// SendPing issues an outbound ping request on sess.
func (e *Engine) SendPing(ctx context.Context, sess *T) error {
	return e.sendRequest(ctx, sess, rpc.Ping, nil)
}

// SendDisconnect issues an outbound disconnect request on sess.
func (e *Engine) SendDisconnect(ctx context.Context, sess *T) error {
	return e.sendRequest(ctx, sess, rpc.Disconnect, nil)
}

// SendConnect issues an outbound connect request (the bunker:// flow,
// where the client already knows the signer's pubkey and secret).
func (e *Engine) SendConnect(ctx context.Context, sess *T, secret string) error {
	return e.sendRequest(ctx, sess, rpc.Connect, []string{sess.Theirs, secret})
}

func (e *Engine) sendRequest(ctx context.Context, sess *T, cmd rpc.Command, params []string) error {
	id := e.genID()
	e.pending.Insert(id, &PendingRequest{
		SessionID:    sess.SessionID,
		Command:      cmd,
		TargetPubkey: sess.Theirs,
		CreatedAt:    e.now(),
		Parameters:   params,
	})
	req := rpc.Request{ID: id, Method: cmd, Params: params}
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return e.seal(ctx, sess, body)
}

// seal encrypts body with NIP-44 for sess.Theirs, wraps it in a signed
// Nostr-Connect event, and publishes it to sess.Relays.
func (e *Engine) seal(ctx context.Context, sess *T, body []byte) error {
	theirsPub, err := hex.Dec(sess.Theirs)
	if err != nil {
		return err
	}
	sharedX, err := cipher.SharedX(e.keys, theirsPub)
	if err != nil {
		return err
	}
	ck, err := cipher.GenerateConversationKey(sharedX)
	if err != nil {
		return err
	}
	content, err := cipher.Encrypt44(string(body), ck)
	if err != nil {
		return err
	}
	ev := event.New()
	ev.Content = []byte(content)
	ev.CreatedAt = timestamp.FromUnix(e.now())
	ev.Kind = kind.NostrConnect
	ev.Tags = tags.New(tag.New("p", sess.Theirs))
	if err = ev.Sign(e.keys); err != nil {
		return errorf.E("session: signing outbound event: %w", err)
	}
	return e.publisher.Publish(ctx, sess.Relays, ev)
}
