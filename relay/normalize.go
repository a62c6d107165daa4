package relay

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	wsPrefix    = "ws://"
	wssPrefix   = "wss://"
	httpPrefix  = "http://"
	httpsPrefix = "https://"
)

// NormalizeURL canonicalizes a relay address the way a pasted connuri
// relay= value or a bunker:// bootstrap link tends to arrive: bare
// host:port, http(s)://, or already ws(s)://. Ports are collapsed (443
// implies wss with no explicit port) and any http(s) scheme is mapped
// to its websocket equivalent, since every relay in this system speaks
// the Nostr relay websocket protocol.
func NormalizeURL(v string) string {
	u := strings.ToLower(strings.TrimSpace(v))
	if u == "" {
		return ""
	}
	hasScheme := strings.HasPrefix(u, httpPrefix) || strings.HasPrefix(u, httpsPrefix) ||
		strings.HasPrefix(u, wsPrefix) || strings.HasPrefix(u, wssPrefix)
	if !hasScheme && strings.Contains(u, ":") {
		parts := strings.Split(u, ":")
		if len(parts) != 2 {
			return ""
		}
		port, err := strconv.Atoi(parts[1])
		if err != nil || port < 0 || port > 65535 {
			return ""
		}
		if port == 443 {
			u = wssPrefix + parts[0]
		} else {
			u = wssPrefix + u
		}
		hasScheme = true
	}
	if !hasScheme {
		u = wssPrefix + u
	}
	p, err := url.Parse(u)
	if err != nil {
		return ""
	}
	switch p.Scheme {
	case "https":
		p.Scheme = "wss"
	case "http":
		p.Scheme = "ws"
	}
	p.Path = strings.TrimRight(p.Path, "/")
	return p.String()
}
