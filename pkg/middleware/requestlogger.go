package middleware

import (
	"log/slog"
	"net/http"

	"github.com/Laziz6066/Tafakkur-test/pkg/logger"
)

// RequestLogger stores a request-scoped logger enriched with
// correlation_id, user_id, trace_id and span_id in the context.
// Downstream code retrieves it with logger.FromContext.
//
// Mount after RequestLogging (which sets the correlation ID) and, on
// protected routes, after Auth (which sets the user ID).
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if userID := UserIDString(ctx); userID != "" {
				ctx = logger.WithUserID(ctx, userID)
			}

			enriched := logger.WithContext(ctx, base)
			ctx = logger.NewContext(ctx, enriched)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
