package secretkey

import (
	"errors"
	"fmt"

	"github.com/rhuss/secretkey/pkg/auth"
)

// Outcome classifies a single evaluation.
type Outcome int

const (
	// NoCredentialConfigured means the store is empty. The request was not
	// inspected.
	NoCredentialConfigured Outcome = iota

	// MissingCredentialHeader means the Authorization header is absent or blank.
	MissingCredentialHeader

	// MalformedCredentialHeader means the header is not "Bearer <token>" or
	// the token is blank.
	MalformedCredentialHeader

	// UnrecognizedSecret means the token is not in the store.
	UnrecognizedSecret

	// Authenticated means the token matched; Result.Identity is set.
	Authenticated
)

var outcomeNames = [...]string{
	NoCredentialConfigured:    "no_credential_configured",
	MissingCredentialHeader:   "missing_credential_header",
	MalformedCredentialHeader: "malformed_credential_header",
	UnrecognizedSecret:        "unrecognized_secret",
	Authenticated:             "authenticated",
}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return fmt.Sprintf("outcome(%d)", int(o))
	}
	return outcomeNames[o]
}

// Per-request failure errors. All of them wrap auth.ErrUnauthenticated
// except ErrNoCredentialConfigured, which is not a rejection.
var (
	ErrNoCredentialConfigured = errors.New("no secret keys configured")
	ErrMissingCredential      = fmt.Errorf("%w: missing authorization header", auth.ErrUnauthenticated)
	ErrMalformedCredential    = fmt.Errorf("%w: invalid authorization header", auth.ErrUnauthenticated)
	ErrUnrecognizedSecret     = fmt.Errorf("%w: invalid token", auth.ErrUnauthenticated)
)

// Result is the outcome of one evaluation.
type Result struct {
	Outcome Outcome
	// Identity is set only when Outcome is Authenticated.
	Identity *auth.Identity
}

// Err returns the error describing a failed outcome, or nil when
// authenticated.
func (r Result) Err() error {
	switch r.Outcome {
	case Authenticated:
		return nil
	case NoCredentialConfigured:
		return ErrNoCredentialConfigured
	case MissingCredentialHeader:
		return ErrMissingCredential
	case MalformedCredentialHeader:
		return ErrMalformedCredential
	default:
		return ErrUnrecognizedSecret
	}
}
