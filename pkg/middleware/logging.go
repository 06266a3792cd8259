package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"murmur/pkg/logging"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger injects a request scoped logger and logs each completed request.
// It must run inside TracerMiddleware for trace ids to be attached.
func RequestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := r.Header.Get(RequestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, reqID)

			attrs := []any{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr),
				logging.RequestID(reqID),
			}
			attrs = append(attrs, logging.TraceAttrs(r.Context())...)
			ctx, reqLog := logging.With(logging.WithContext(r.Context(), log), attrs...)

			wrapped := wrap(w)
			next.ServeHTTP(wrapped, r.WithContext(ctx))

			reqLog.InfoContext(r.Context(), "http - request - completed",
				slog.Int("status", wrapped.statusCode), logging.Elapsed(start))
		})
	}
}
