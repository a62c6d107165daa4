package connuri

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"go.nostrconnect.dev/core/errorf"
	"go.nostrconnect.dev/core/errs"
)

// identifierRegex splits a NIP-05 identifier into its optional local part
// and domain, defaulting the local part to "_" when omitted.
var identifierRegex = regexp.MustCompile(`^(?:([\w.+-]+)@)?([\w_-]+(\.[\w_-]+)+)$`)

// wellKnownResponse is the .well-known/nostr.json document shape: a name
// to pubkey map plus, for NIP-46, a pubkey to relay-list map.
type wellKnownResponse struct {
	Names map[string]string   `json:"names"`
	NIP46 map[string][]string `json:"nip46,omitempty"`
}

// ParseIdentifier splits "name@domain.tld" (or a bare "domain.tld",
// defaulting name to "_") into its parts.
func ParseIdentifier(account string) (name, domain string, err error) {
	m := identifierRegex.FindStringSubmatch(account)
	if m == nil {
		return "", "", errorf.E("connuri: %q is not a valid nip-05 identifier", account)
	}
	name = m[1]
	if name == "" {
		name = "_"
	}
	return name, m[2], nil
}

// HTTPDoer is the minimal HTTP client surface ResolveWellKnown needs,
// satisfied by *http.Client; callers inject a test double to avoid a
// hard dependency on a concrete HTTP client choice.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ResolveWellKnown looks up the bunker pubkey and relay list advertised
// for a NIP-05 identifier, so a client can bootstrap a session from
// "alice@example.com" instead of a bunker:// URI. doer lets callers
// substitute a test double for http.DefaultClient.
func ResolveWellKnown(ctx context.Context, doer HTTPDoer, identifier string) (pubkey string, relays []string, err error) {
	if doer == nil {
		doer = http.DefaultClient
	}
	name, domain, err := ParseIdentifier(identifier)
	if err != nil {
		return "", nil, err
	}
	url := fmt.Sprintf("https://%s/.well-known/nostr.json?name=%s", domain, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", nil, errorf.E("connuri: building well-known request: %w", err)
	}
	res, err := doer.Do(req)
	if err != nil {
		return "", nil, errorf.E("connuri: well-known request failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return "", nil, errorf.E("connuri: well-known returned status %d", res.StatusCode)
	}
	var doc wellKnownResponse
	if err = json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return "", nil, errorf.E("connuri: decoding well-known response: %w", err)
	}
	pub, ok := doc.Names[name]
	if !ok {
		return "", nil, errorf.E("connuri: no entry for name %q", name)
	}
	if len(pub) != 64 {
		return "", nil, errs.ErrMalformedURI
	}
	relays, ok = doc.NIP46[strings.ToLower(pub)]
	if !ok {
		relays, ok = doc.NIP46[pub]
	}
	if !ok || len(relays) == 0 {
		return "", nil, errorf.E("connuri: no nip46 relays advertised for %q", name)
	}
	return strings.ToLower(pub), relays, nil
}
