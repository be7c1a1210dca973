package middleware

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/frahmantamala/worktrack/pkg/logger"
)

const TraceHeader = "X-Trace-ID"

// RequestID reuses an incoming trace id or mints one, echoes it on the
// response and seeds the request logger from base with it.
func RequestID(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get(TraceHeader)
			if traceID == "" {
				traceID = uuid.NewString()
			}

			ctx := logger.WithLogger(r.Context(), base)
			ctx = logger.With(ctx, "traceID", traceID)

			w.Header().Set(TraceHeader, traceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
