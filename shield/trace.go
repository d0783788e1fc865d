package shield

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hazyhaar/slidekit/idgen"
	"github.com/hazyhaar/slidekit/kit"
)

// RequestID tags each request with an ID, echoed in X-Request-ID, and puts
// a per-request logger and the transport name in the context. A nil gen
// uses 8-character NanoIDs.
func RequestID(logger *slog.Logger, gen idgen.Generator) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if gen == nil {
		gen = idgen.NanoID(8)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := gen()
			w.Header().Set("X-Request-ID", id)

			reqLogger := logger.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)
			reqLogger.Debug("request")

			ctx := context.WithValue(r.Context(), LoggerKey, reqLogger)
			ctx = kit.WithTransport(ctx, "http")
			ctx = kit.WithRemoteAddr(ctx, r.RemoteAddr)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
