package auth

import (
	"log/slog"
	"net/http"

	"github.com/rhuss/secretkey/pkg/observability"
	"github.com/rhuss/secretkey/pkg/transport"
)

// Middleware creates HTTP middleware from an Authenticator, usually an
// AuthChain. It checks the bypass list, runs authentication, and injects
// the identity into the request context.
//
// Rejected requests get a 401 with a Bearer challenge. The realm is the
// value sent in the WWW-Authenticate header; empty omits it.
func Middleware(authn Authenticator, realm string, bypassEndpoints []string) func(http.Handler) http.Handler {
	bypass := make(map[string]bool, len(bypassEndpoints))
	for _, ep := range bypassEndpoints {
		bypass[ep] = true
	}

	challenge := "Bearer"
	if realm != "" {
		challenge = `Bearer realm="` + realm + `"`
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if bypass[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			result := authn.Authenticate(r.Context(), r)
			observability.AuthDecisionsTotal.WithLabelValues(result.Decision.String()).Inc()

			if result.Decision != Yes || result.Identity == nil {
				if result.Decision == No {
					slog.Warn("authentication failed",
						"path", r.URL.Path,
						"remote_addr", r.RemoteAddr,
						"error", result.Err,
					)
				}
				w.Header().Set("WWW-Authenticate", challenge)
				transport.WriteError(w, http.StatusUnauthorized, transport.ErrorTypeUnauthorized, "authentication required")
				return
			}

			slog.Debug("authentication succeeded",
				"subject", result.Identity.Subject,
				"scheme", result.Identity.Scheme,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)

			next.ServeHTTP(w, r.WithContext(SetIdentity(r.Context(), result.Identity)))
		})
	}
}

// DefaultBypassEndpoints lists endpoints that skip authentication.
var DefaultBypassEndpoints = []string{"/healthz", "/readyz", "/metrics"}
