package auth

import (
	"context"
	"errors"
	"net/http"
)

// AuthDecision represents the three possible outcomes of authentication.
type AuthDecision int

const (
	// Yes means credentials are valid. The chain stops and the identity is used.
	Yes AuthDecision = iota

	// No means credentials are present but invalid. The chain stops and the
	// request is rejected.
	No

	// Abstain means this authenticator cannot handle the request.
	// The chain continues to the next authenticator.
	Abstain
)

func (d AuthDecision) String() string {
	switch d {
	case Yes:
		return "yes"
	case No:
		return "no"
	case Abstain:
		return "abstain"
	default:
		return "unknown"
	}
}

// AuthResult carries the outcome of an authentication attempt.
type AuthResult struct {
	Decision AuthDecision
	Identity *Identity // populated only when Decision == Yes
	Err      error     // populated only when Decision == No
}

// ClaimNameIdentifier is the claim type carrying the caller identifier.
const ClaimNameIdentifier = "nameidentifier"

// Claim is a named attribute attached to an authenticated identity.
type Claim struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Identity represents an authenticated caller.
type Identity struct {
	// Subject is the caller identifier. It may be empty for the
	// single-secret configuration, which maps its secret to "".
	Subject string `json:"subject"`

	// Scheme names the authenticator that produced the identity.
	Scheme string `json:"scheme"`

	// Claims in issue order. The name identifier claim is always last.
	Claims []Claim `json:"claims"`
}

// FindClaim returns the value of the last claim with the given type.
func (id *Identity) FindClaim(claimType string) (string, bool) {
	if id == nil {
		return "", false
	}
	for i := len(id.Claims) - 1; i >= 0; i-- {
		if id.Claims[i].Type == claimType {
			return id.Claims[i].Value, true
		}
	}
	return "", false
}

// ClaimValues returns every value issued for the given claim type, in order.
func (id *Identity) ClaimValues(claimType string) []string {
	if id == nil {
		return nil
	}
	var values []string
	for _, c := range id.Claims {
		if c.Type == claimType {
			values = append(values, c.Value)
		}
	}
	return values
}

// Authenticator examines request credentials and returns a three-outcome vote.
type Authenticator interface {
	Authenticate(ctx context.Context, r *http.Request) AuthResult
}

// AuthenticatorFunc adapts a function to the Authenticator interface.
type AuthenticatorFunc func(ctx context.Context, r *http.Request) AuthResult

// Authenticate calls f(ctx, r).
func (f AuthenticatorFunc) Authenticate(ctx context.Context, r *http.Request) AuthResult {
	return f(ctx, r)
}

// Sentinel errors.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("access denied")
)

// AuthChain evaluates authenticators in order using three-outcome voting.
type AuthChain struct {
	// Authenticators are evaluated left to right.
	Authenticators []Authenticator

	// DefaultDecision is used when all authenticators abstain.
	// Use Yes for development (NoOp behavior) or No for production.
	DefaultDecision AuthDecision
}

// Authenticate runs the chain. Stops on the first Yes or No.
// If all abstain, returns the default decision.
func (c *AuthChain) Authenticate(ctx context.Context, r *http.Request) AuthResult {
	for _, authn := range c.Authenticators {
		result := authn.Authenticate(ctx, r)
		if result.Decision != Abstain {
			return result
		}
	}

	if c.DefaultDecision == Yes {
		return AuthResult{
			Decision: Yes,
			Identity: Anonymous(),
		}
	}

	return AuthResult{
		Decision: No,
		Err:      ErrUnauthenticated,
	}
}

// Anonymous returns the identity used when unauthenticated access is allowed.
func Anonymous() *Identity {
	return &Identity{
		Subject: "anonymous",
		Scheme:  "anonymous",
		Claims:  []Claim{{Type: ClaimNameIdentifier, Value: "anonymous"}},
	}
}
