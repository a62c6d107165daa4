// Package relay is the thin façade (C8) around the external relay
// transport: it subscribes for inbound Nostr-Connect envelopes and
// publishes outbound signed events, keeping the session engine free of
// any concrete WebSocket client.
package relay

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"go.nostrconnect.dev/core/event"
)

// DefaultSubscriptionTimeout is the §5 default, overridable per Facade.
const DefaultSubscriptionTimeout = 60 * time.Second

// Filter narrows a subscription to Nostr-Connect envelopes addressed to
// one pubkey, created no earlier than Since.
type Filter struct {
	Kinds []int
	Since int64
	PTags []string
}

// Transport is the external collaborator: publish a signed event, or
// subscribe for events matching a filter across a relay set. Providing
// it is the caller's responsibility (Non-goal: network transport
// implementation).
type Transport interface {
	Publish(ctx context.Context, relayURL string, ev *event.T) error
	Subscribe(ctx context.Context, relayURLs []string, subID string, f Filter) (<-chan *event.T, error)
}

// ReadWrite records which direction(s) a relay is advertised for. The
// get_relays RPC reply built by the session engine does not use it.
type ReadWrite struct {
	Read, Write bool
}

// Facade wraps a Transport with idempotent per-pubkey subscriptions and
// best-effort multi-relay publish.
type Facade struct {
	transport Transport
	timeout   time.Duration

	listening map[string]struct{}
}

// New builds a Facade over transport. A zero timeout falls back to
// DefaultSubscriptionTimeout.
func New(transport Transport, timeout time.Duration) *Facade {
	if timeout <= 0 {
		timeout = DefaultSubscriptionTimeout
	}
	return &Facade{transport: transport, timeout: timeout, listening: make(map[string]struct{})}
}

// Listen subscribes for Nostr-Connect envelopes addressed to pubkey
// across relays, idempotent per pubkey: a second call for the same
// pubkey is a no-op and returns the same nil error, matching §4.8's
// idempotency requirement. The subscription id is derived from the
// pubkey's first 8 hex characters.
func (f *Facade) Listen(ctx context.Context, pubkey string, relays []string, since int64) (<-chan *event.T, error) {
	if _, ok := f.listening[pubkey]; ok {
		return nil, nil
	}
	normalized := make([]string, len(relays))
	for i, r := range relays {
		normalized[i] = NormalizeURL(r)
	}
	subID := subscriptionID(pubkey)
	filter := Filter{
		Kinds: []int{24133},
		Since: since,
		PTags: []string{pubkey},
	}
	ch, err := f.transport.Subscribe(ctx, normalized, subID, filter)
	if err != nil {
		return nil, err
	}
	f.listening[pubkey] = struct{}{}
	return ch, nil
}

// Publish delivers ev to every relay in relays concurrently, best
// effort: one relay's failure neither cancels the others nor blocks
// the caller beyond the facade's timeout. It only fails if every relay
// did.
func (f *Facade) Publish(ctx context.Context, relays []string, ev *event.T) error {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	var g errgroup.Group
	results := make([]error, len(relays))
	for i, r := range relays {
		i, r := i, NormalizeURL(r)
		g.Go(func() error {
			results[i] = f.transport.Publish(ctx, r, ev)
			return nil
		})
	}
	_ = g.Wait()
	var last error
	for _, err := range results {
		if err == nil {
			return nil
		}
		last = err
	}
	return last
}

func subscriptionID(pubkey string) string {
	if len(pubkey) > 8 {
		return "nc-" + pubkey[:8]
	}
	return "nc-" + pubkey
}
