package observability

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// DetachTraceContext creates a new context.Background() that carries the
// span context from the original request. This allows goroutines to
// create child spans linked to the HTTP request trace without inheriting
// its cancellation.
func DetachTraceContext(ctx context.Context) context.Context {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return context.Background()
	}
	return trace.ContextWithRemoteSpanContext(context.Background(), sc)
}

// DetachTraceContextFrom carries the span context from req into base,
// so a job goroutine derived from base (cancelled on shutdown, not on
// response-write) still links back to the originating HTTP trace.
func DetachTraceContextFrom(req context.Context, base context.Context) context.Context {
	sc := trace.SpanContextFromContext(req)
	if !sc.IsValid() {
		return base
	}
	return trace.ContextWithRemoteSpanContext(base, sc)
}
