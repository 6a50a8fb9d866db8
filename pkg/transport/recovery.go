package transport

import (
	"log/slog"
	"net/http"
)

// Recovery returns middleware that catches panics in the handler and
// converts them to a 500 JSON error. The server continues to accept new
// requests after a panic is recovered. http.ErrAbortHandler is re-raised
// so net/http can abort the connection.
func Recovery() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					if v == http.ErrAbortHandler {
						panic(v)
					}
					slog.Error("panic recovered",
						"request_id", RequestIDFromContext(r.Context()),
						"path", r.URL.Path,
						"panic", v,
					)
					WriteError(w, http.StatusInternalServerError, ErrorTypeServer, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
