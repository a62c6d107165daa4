// Package connuri parses and builds the two bootstrap URI forms a
// session can start from: nostrconnect://, where the client advertises
// itself and waits to be scanned, and bunker://, where the remote signer
// advertises itself for the client to dial directly.
package connuri

import (
	"net/url"
	"strings"

	"go.nostrconnect.dev/core/errs"
)

// URI is a parsed connection bootstrap URI.
type URI struct {
	// Bunker is true for bunker://, false for nostrconnect://.
	Bunker bool
	// Pubkey is the 64-char lowercase-hex authority: the client pubkey
	// for nostrconnect://, the remote signer pubkey for bunker://.
	Pubkey string
	// Relays is the ordered, non-empty list of relay URLs.
	Relays []string
	// Secret is the shared handshake token.
	Secret string
	// Perms is the optional comma-separated permission list, split.
	Perms []string
	// Name, URL, Image are optional display metadata.
	Name, URL, Image string
}

// Parse accepts a nostrconnect:// or bunker:// URI, case-insensitive on
// scheme, per spec 4.6/6.
func Parse(raw string) (*URI, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errs.ErrMalformedURI
	}
	scheme := strings.ToLower(u.Scheme)
	var bunker bool
	switch scheme {
	case "nostrconnect":
		bunker = false
	case "bunker":
		bunker = true
	default:
		return nil, errs.ErrMalformedURI
	}
	pubkey := strings.ToLower(u.Host)
	if len(pubkey) != 64 {
		return nil, errs.ErrMalformedURI
	}
	q := u.Query()
	relays := q["relay"]
	if len(relays) == 0 {
		return nil, errs.ErrMalformedURI
	}
	secret := q.Get("secret")
	if secret == "" {
		return nil, errs.ErrMalformedURI
	}
	out := &URI{
		Bunker: bunker,
		Pubkey: pubkey,
		Relays: relays,
		Secret: secret,
		Name:   q.Get("name"),
		URL:    q.Get("url"),
		Image:  q.Get("image"),
	}
	if perms := q.Get("perms"); perms != "" {
		out.Perms = strings.Split(perms, ",")
	}
	return out, nil
}

// IsValidBunkerURL reports whether input parses as a bunker:// URI with
// a valid pubkey authority and at least one relay query parameter,
// mirroring the quick-reject check the original bunker signer runs
// before attempting a full parse.
func IsValidBunkerURL(input string) bool {
	u, err := url.Parse(input)
	if err != nil {
		return false
	}
	if strings.ToLower(u.Scheme) != "bunker" {
		return false
	}
	if len(strings.ToLower(u.Host)) != 64 {
		return false
	}
	return strings.Contains(u.RawQuery, "relay=")
}

// Build renders a URI back to its wire string form. Missing pubkey,
// relays, or secret is rejected with errs.ErrMalformedURI.
func Build(u *URI) (string, error) {
	if len(u.Pubkey) != 64 || len(u.Relays) == 0 || u.Secret == "" {
		return "", errs.ErrMalformedURI
	}
	scheme := "nostrconnect"
	if u.Bunker {
		scheme = "bunker"
	}
	q := url.Values{}
	for _, r := range u.Relays {
		q.Add("relay", r)
	}
	q.Set("secret", u.Secret)
	if len(u.Perms) > 0 {
		q.Set("perms", strings.Join(u.Perms, ","))
	}
	if u.Name != "" {
		q.Set("name", u.Name)
	}
	if u.URL != "" {
		q.Set("url", u.URL)
	}
	if u.Image != "" {
		q.Set("image", u.Image)
	}
	return scheme + "://" + u.Pubkey + "?" + q.Encode(), nil
}
