// Package network holds request helpers shared by the rate limiter,
// the audit log and the request ledger.
package network

import (
	"net"
	"net/http"
	"strings"
)

// GetClientIP returns the client address used to key per-visitor limits.
// The first X-Forwarded-For hop wins, then X-Real-IP, then RemoteAddr
// without its port. IPv6 addresses come back without brackets.
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := clean(first); ip != "" {
			return ip
		}
	}

	if xri := clean(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return clean(r.RemoteAddr)
}

func clean(s string) string {
	s = strings.TrimSpace(s)
	return strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
}
