// Package auth provides pluggable bearer authentication for HTTP services.
//
// Authentication uses a chain-of-responsibility pattern with three-outcome
// voting: each authenticator returns Yes (identity found), No (credentials
// invalid), or Abstain (can't handle). A configurable default voter decides
// when all authenticators abstain.
//
// The secret-key scheme in package secretkey abstains when no secrets are
// configured, so a chain can fall through to another scheme (for example
// jwt) instead of rejecting every request.
//
// Auth is implemented as HTTP middleware. On success the identity, with its
// ordered claims, is stored in the request context.
package auth
