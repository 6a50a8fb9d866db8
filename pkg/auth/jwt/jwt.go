// Package jwt provides a bearer JWT authenticator verified against a JWKS
// endpoint. It is meant to sit next to the secret-key scheme in an
// auth.AuthChain, so callers can present either kind of bearer token.
package jwt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/rhuss/secretkey/pkg/auth"
)

// DefaultScheme is the scheme recorded on identities issued by this package.
const DefaultScheme = "JWT"

// ErrInvalidToken wraps every verification failure.
var ErrInvalidToken = fmt.Errorf("%w: invalid JWT", auth.ErrUnauthenticated)

// Config holds the JWT authenticator configuration.
type Config struct {
	// Issuer is the expected iss claim. Empty disables the check.
	Issuer string

	// Audience is the expected aud claim. Empty disables the check.
	Audience string

	// JWKSURL serves the RSA keys used to verify signatures.
	JWKSURL string

	// UserClaim holds the caller identifier. Default: "sub".
	UserClaim string

	// ScopesClaim holds the scopes, as a space-separated string or an
	// array. Each scope becomes one "scope" claim. Default: "scope".
	ScopesClaim string

	// ClaimMap copies string token claims into identity claims:
	// token claim name -> identity claim type.
	ClaimMap map[string]string

	// CacheTTL controls how long JWKS keys are cached. Default: 1 hour.
	CacheTTL time.Duration

	// MinRefreshInterval bounds how often the JWKS is fetched, whatever the
	// outcome of the previous fetch. A token naming an unknown kid within
	// this interval is rejected from the cached set. Default: 30 seconds.
	MinRefreshInterval time.Duration

	// Scheme overrides DefaultScheme.
	Scheme string

	// HTTPClient fetches the JWKS. Default: http.DefaultClient.
	HTTPClient *http.Client
}

func (c *Config) applyDefaults() {
	if c.UserClaim == "" {
		c.UserClaim = "sub"
	}
	if c.ScopesClaim == "" {
		c.ScopesClaim = "scope"
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = time.Hour
	}
	if c.MinRefreshInterval == 0 {
		c.MinRefreshInterval = 30 * time.Second
	}
	if c.Scheme == "" {
		c.Scheme = DefaultScheme
	}
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
}

// Authenticator validates JWT bearer tokens.
type Authenticator struct {
	config Config
	keys   *keySet
}

// New creates a JWT authenticator.
func New(cfg Config) *Authenticator {
	cfg.applyDefaults()
	return &Authenticator{
		config: cfg,
		keys:   newKeySet(cfg.JWKSURL, cfg.CacheTTL, cfg.MinRefreshInterval, cfg.HTTPClient),
	}
}

// Authenticate implements auth.Authenticator.
//
// Decision outcomes:
//   - Abstain: no bearer token, or a token that is not shaped like a JWT
//   - No: a JWT that fails verification or lacks the user claim
//   - Yes: a verified JWT
func (a *Authenticator) Authenticate(ctx context.Context, r *http.Request) auth.AuthResult {
	tokenStr, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok || strings.Count(tokenStr, ".") != 2 {
		return auth.AuthResult{Decision: auth.Abstain}
	}

	claims := jwtlib.MapClaims{}
	_, err := jwtlib.ParseWithClaims(tokenStr, claims, func(token *jwtlib.Token) (any, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token missing kid header")
		}
		return a.keys.get(ctx, kid)
	}, a.parserOptions()...)
	if err != nil {
		slog.Debug("JWT validation failed", "error", err)
		return auth.AuthResult{Decision: auth.No, Err: fmt.Errorf("%w: %v", ErrInvalidToken, err)}
	}

	subject := claimString(claims, a.config.UserClaim)
	if subject == "" {
		return auth.AuthResult{
			Decision: auth.No,
			Err:      fmt.Errorf("%w: missing %q claim", ErrInvalidToken, a.config.UserClaim),
		}
	}

	return auth.AuthResult{Decision: auth.Yes, Identity: a.identity(subject, claims)}
}

// identity orders claims like the secret-key scheme: mapped claims, then
// scopes, then the name identifier last.
func (a *Authenticator) identity(subject string, claims jwtlib.MapClaims) *auth.Identity {
	var out []auth.Claim
	for _, name := range sortedKeys(a.config.ClaimMap) {
		if v := claimString(claims, name); v != "" {
			out = append(out, auth.Claim{Type: a.config.ClaimMap[name], Value: v})
		}
	}
	for _, s := range scopes(claims[a.config.ScopesClaim]) {
		out = append(out, auth.Claim{Type: "scope", Value: s})
	}
	out = append(out, auth.Claim{Type: auth.ClaimNameIdentifier, Value: subject})

	return &auth.Identity{Subject: subject, Scheme: a.config.Scheme, Claims: out}
}

func (a *Authenticator) parserOptions() []jwtlib.ParserOption {
	opts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
		jwtlib.WithExpirationRequired(),
	}
	if a.config.Issuer != "" {
		opts = append(opts, jwtlib.WithIssuer(a.config.Issuer))
	}
	if a.config.Audience != "" {
		opts = append(opts, jwtlib.WithAudience(a.config.Audience))
	}
	return opts
}

// bearerToken strips a case-insensitive "Bearer " prefix.
func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func claimString(claims jwtlib.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}

// scopes accepts "read write" or ["read", "write"].
func scopes(v any) []string {
	switch val := v.(type) {
	case string:
		return strings.Fields(val)
	case []any:
		var out []string
		for _, item := range val {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
