package transport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rhuss/secretkey/pkg/debug"
)

// Logging returns middleware that emits a structured log entry for each
// request: method, path, status, duration and request ID (from context).
// Server errors log at Error, client errors at Warn only with the
// "transport" debug category, everything else at Info.
//
// The Authorization header is never logged.
func Logging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}

			next.ServeHTTP(rec, r)

			status := rec.code()
			attrs := []slog.Attr{
				slog.String("request_id", RequestIDFromContext(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Duration("duration", time.Since(start)),
			}

			switch {
			case status >= 500:
				logger.LogAttrs(r.Context(), slog.LevelError, "request failed", attrs...)
			case status >= 400:
				if debug.Enabled("transport") {
					logger.LogAttrs(r.Context(), slog.LevelWarn, "request rejected", attrs...)
				}
			default:
				logger.LogAttrs(r.Context(), slog.LevelInfo, "request completed", attrs...)
			}
		})
	}
}
