package middleware

import (
	"net/http"

	"github.com/kestrelhq/nfeed/internal/xcontext"
)

// ShutdownContext detects when the base context has been cancelled
// (server shutdown) and marks the request context accordingly, so
// long-lived handlers can tell shutdowns apart from client disconnects.
func ShutdownContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if ctx.Err() != nil {
			ctx = xcontext.SetShutdownInProgress(ctx, true)
			r = r.WithContext(ctx)
		}

		next.ServeHTTP(w, r)
	})
}
