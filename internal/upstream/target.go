package upstream

import (
	"fmt"
	"net/url"
	"strings"
)

// RelayPrefix is the route prefix the relay is mounted under.
const RelayPrefix = "/api/chroma/"

// Target builds absolute URLs for upstream paths.
type Target struct {
	relayURL    string
	defaultHost string
	defaultPort string
}

// DirectTarget addresses the upstream as http://{host}:{port}/{path}.
func DirectTarget(defaultHost, defaultPort string) Target {
	return Target{defaultHost: defaultHost, defaultPort: defaultPort}
}

// RelayTarget addresses the upstream through a relay at relayURL, passing host and port
// as query parameters.
func RelayTarget(relayURL, defaultHost, defaultPort string) Target {
	return Target{
		relayURL:    strings.TrimRight(relayURL, "/"),
		defaultHost: defaultHost,
		defaultPort: defaultPort,
	}
}

// Relayed reports whether URLs go through a relay.
func (t Target) Relayed() bool { return t.relayURL != "" }

// URL returns the absolute URL of path for the given host and port.
func (t Target) URL(host, port, path string) string {
	if host == "" {
		host = t.defaultHost
	}
	if port == "" {
		port = t.defaultPort
	}
	p := EscapePath(path)

	if t.relayURL == "" {
		return fmt.Sprintf("http://%s:%s/%s", host, port, p)
	}

	q := url.Values{}
	q.Set("host", host)
	q.Set("port", port)
	return t.relayURL + RelayPrefix + p + "?" + q.Encode()
}

// EscapePath drops empty segments and path-escapes the rest.
func EscapePath(path string) string {
	segs := SplitPath(path)
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}

// SplitPath splits a slash separated path into its non-empty segments.
func SplitPath(path string) []string {
	raw := strings.Split(path, "/")
	segs := raw[:0]
	for _, s := range raw {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}
