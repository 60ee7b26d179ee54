package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/render"
)

// Engine identity headers
const (
	PoweredByHeader = "X-Powered-By"
	VersionHeader   = "X-Neobeach-Version"
)

// HeaderStamp sets the engine name and version on every response.
func HeaderStamp(name, version string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(PoweredByHeader, name)
			w.Header().Set(VersionHeader, version)
			next.ServeHTTP(w, r)
		})
	}
}

// Probe answers load-balancer health checkers identified by a User-Agent
// prefix with "Hello <agent>" and stops the chain.
func Probe(agents []string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ua := r.UserAgent()
			for _, agent := range agents {
				if agent != "" && strings.HasPrefix(ua, agent) {
					render.PlainText(w, r, "Hello "+agent)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
