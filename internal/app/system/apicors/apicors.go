// Package apicors sets CORS headers on the /api routes used by the site
// front end and the back office.
//
// Without a configured origin list any origin may read the public API, but
// no credentials are allowed, so only Bearer-key admin calls work across
// origins. With an origin list, listed origins may also send the session
// cookie, which is what a back office hosted on another domain needs.
package apicors

import (
	"net/http"
	"strings"
)

const (
	allowMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	allowHeaders = "Authorization, Content-Type, Accept, X-Request-ID"
	// Headers the front end reads from responses (rate limit and ledger id).
	exposeHeaders = "Retry-After, X-Request-ID"
	maxAge        = "86400"
)

// Middleware allows any origin without credentials.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			setCommon(w)
			if isPreflight(r) {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// MiddlewareWithOrigins allows only the listed origins and lets them send
// cookies. Origins are compared without a trailing slash. A "*" entry falls
// back to Middleware.
func MiddlewareWithOrigins(allowedOrigins ...string) func(http.Handler) http.Handler {
	originSet := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			return Middleware()
		}
		if o != "" {
			originSet[o] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Vary", "Origin")
			if origin := r.Header.Get("Origin"); origin != "" {
				if _, ok := originSet[origin]; ok {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
				// Unlisted origins get no CORS headers and the browser blocks them.
			}
			setCommon(w)
			if isPreflight(r) {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func setCommon(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Methods", allowMethods)
	h.Set("Access-Control-Allow-Headers", allowHeaders)
	h.Set("Access-Control-Expose-Headers", exposeHeaders)
	h.Set("Access-Control-Max-Age", maxAge)
}

func isPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
}
