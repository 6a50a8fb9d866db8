package secretkey

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/rhuss/secretkey/pkg/auth"
	"github.com/rhuss/secretkey/pkg/debug"
	"github.com/rhuss/secretkey/pkg/observability"
)

// DefaultScheme is the scheme name recorded on identities and metrics.
const DefaultScheme = "SecretKey"

const bearerPrefix = "Bearer "

// ClaimsFunc derives extension claims for a resolved caller identifier.
// It is called only after a successful match and must not block. Its
// claims are kept as returned; the name identifier claim follows them.
type ClaimsFunc func(identifier string) []auth.Claim

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithClaims sets the claims derivation function.
func WithClaims(fn ClaimsFunc) Option {
	return func(a *Authenticator) { a.claims = fn }
}

// WithScheme overrides DefaultScheme.
func WithScheme(name string) Option {
	return func(a *Authenticator) {
		if name != "" {
			a.scheme = name
		}
	}
}

// WithAbstainOnUnrecognized makes Authenticate abstain, rather than reject,
// when the bearer token is not a known secret. Used when another bearer
// scheme follows in the chain.
func WithAbstainOnUnrecognized() Option {
	return func(a *Authenticator) { a.abstainUnrecognized = true }
}

// Authenticator resolves bearer secrets against a Store.
type Authenticator struct {
	store  atomic.Pointer[Store]
	claims ClaimsFunc
	scheme string

	abstainUnrecognized bool
}

// New creates an Authenticator over store. A nil store behaves as empty.
// The caller must not modify store afterwards.
func New(store *Store, opts ...Option) *Authenticator {
	a := &Authenticator{scheme: DefaultScheme}
	for _, opt := range opts {
		opt(a)
	}
	a.Swap(store)
	return a
}

// Scheme returns the scheme name.
func (a *Authenticator) Scheme() string { return a.scheme }

// Store returns the currently published store.
func (a *Authenticator) Store() *Store { return a.store.Load() }

// Swap publishes store and returns the previous one. Requests already
// evaluating keep the store they loaded.
func (a *Authenticator) Swap(store *Store) *Store {
	if store == nil {
		store = NewStore()
	}
	prev := a.store.Swap(store)
	observability.CredentialStoreEntries.WithLabelValues(a.scheme).Set(float64(store.Len()))
	return prev
}

// Evaluate classifies the credentials in header. The checks run in a fixed
// order and the first failing check decides the outcome.
func (a *Authenticator) Evaluate(header http.Header) Result {
	res := a.evaluate(a.store.Load(), header)
	observability.AuthOutcomesTotal.WithLabelValues(a.scheme, res.Outcome.String()).Inc()
	debug.Log("auth", "secret key evaluated", "scheme", a.scheme, "outcome", res.Outcome.String())
	return res
}

func (a *Authenticator) evaluate(store *Store, header http.Header) Result {
	if store.Len() == 0 {
		return Result{Outcome: NoCredentialConfigured}
	}

	value := header.Get("Authorization")
	if strings.TrimSpace(value) == "" {
		return Result{Outcome: MissingCredentialHeader}
	}

	if len(value) < len(bearerPrefix) || !strings.EqualFold(value[:len(bearerPrefix)], bearerPrefix) {
		return Result{Outcome: MalformedCredentialHeader}
	}

	token := strings.TrimSpace(value[len(bearerPrefix):])
	if token == "" {
		return Result{Outcome: MalformedCredentialHeader}
	}

	identifier, ok := store.Lookup(token)
	if !ok {
		return Result{Outcome: UnrecognizedSecret}
	}

	return Result{Outcome: Authenticated, Identity: a.identity(identifier)}
}

// identity builds the claim sequence: derived claims in order, then the
// name identifier. A derived claim of the name identifier type is kept, but
// the appended claim is last, so FindClaim resolves to the identifier.
func (a *Authenticator) identity(identifier string) *auth.Identity {
	var derived []auth.Claim
	if a.claims != nil {
		derived = a.claims(identifier)
	}

	claims := make([]auth.Claim, 0, len(derived)+1)
	claims = append(claims, derived...)
	claims = append(claims, auth.Claim{Type: auth.ClaimNameIdentifier, Value: identifier})

	return &auth.Identity{
		Subject: identifier,
		Scheme:  a.scheme,
		Claims:  claims,
	}
}

// Authenticate implements auth.Authenticator.
//
// Decision outcomes:
//   - Abstain: no secrets configured, so another scheme may decide; also an
//     unrecognized secret when WithAbstainOnUnrecognized is set
//   - No: any other failure, with the outcome's error
//   - Yes: the secret matched
func (a *Authenticator) Authenticate(_ context.Context, r *http.Request) auth.AuthResult {
	res := a.Evaluate(r.Header)
	switch res.Outcome {
	case Authenticated:
		return auth.AuthResult{Decision: auth.Yes, Identity: res.Identity}
	case NoCredentialConfigured:
		return auth.AuthResult{Decision: auth.Abstain}
	case UnrecognizedSecret:
		if a.abstainUnrecognized {
			return auth.AuthResult{Decision: auth.Abstain}
		}
		return auth.AuthResult{Decision: auth.No, Err: res.Err()}
	default:
		return auth.AuthResult{Decision: auth.No, Err: res.Err()}
	}
}
