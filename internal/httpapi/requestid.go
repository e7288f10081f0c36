package httpapi

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type requestIDKey struct{}

// RequestID generates or reuses an X-Request-ID header and propagates it
// through the request context and response, grounded directly on
// ManuGH-xg2g's internal/control/middleware/request_id.go (same
// header-or-uuid.New().String() shape), used here in place of chi's own
// counter-based middleware.RequestID so every log line this process
// emits can carry a globally unique correlation id rather than one
// scoped to this process's lifetime.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", reqID)
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromContext returns the request id set by RequestID, or "" if
// none is present (e.g. in a unit test that calls a handler directly).
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
