package app

import (
	"net/url"
	"strings"
)

// extractOriginHost reduces an Origin header value to its host[:port]
// part. Values that do not parse as a URL are matched verbatim.
func extractOriginHost(origin string) string {
	if u, err := url.Parse(origin); err == nil && u.Host != "" {
		return u.Host
	}
	return origin
}

// matchOriginPattern matches a request host against one allowed_origins
// entry. "*.domain" accepts any subdomain of domain, "host:*" accepts any
// port on host, anything else must match exactly.
func matchOriginPattern(pattern, host string) bool {
	switch {
	case pattern == host:
		return true
	case strings.HasPrefix(pattern, "*."):
		return strings.HasSuffix(host, pattern[1:])
	case strings.HasSuffix(pattern, ":*"):
		return strings.HasPrefix(host, pattern[:len(pattern)-1])
	}
	return false
}
