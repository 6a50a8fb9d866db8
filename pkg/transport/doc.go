// Package transport provides the HTTP middleware chain shared by the
// secretkey server: panic recovery, request ID assignment (X-Request-ID),
// and structured access logging via log/slog. It also defines the JSON
// error body written for rejected requests.
//
// Middleware is plain func(http.Handler) http.Handler, so the auth and
// metrics middleware compose with it through Chain.
package transport
