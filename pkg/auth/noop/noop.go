// Package noop provides a no-op authenticator that accepts all requests.
// Used for auth.type=none and local development.
package noop

import (
	"context"
	"net/http"

	"github.com/rhuss/secretkey/pkg/auth"
)

// Authenticator always returns Yes with the anonymous identity.
type Authenticator struct{}

func (a *Authenticator) Authenticate(_ context.Context, _ *http.Request) auth.AuthResult {
	return auth.AuthResult{
		Decision: auth.Yes,
		Identity: auth.Anonymous(),
	}
}
