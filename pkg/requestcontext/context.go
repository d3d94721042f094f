// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values. Middleware sets them, services and audit code read
// them, and neither side needs to import net/http for it.
package requestcontext

import "context"

type (
	requestIDKey struct{}
	clientKey    struct{}
)

// WithRequestID stores the correlation ID for this request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID retrieves the correlation ID, or "" if not set.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// WithClient stores a compact descriptor of the caller's client software.
func WithClient(ctx context.Context, client string) context.Context {
	return context.WithValue(ctx, clientKey{}, client)
}

// Client retrieves the client descriptor, or "" if not set.
func Client(ctx context.Context) string {
	if v, ok := ctx.Value(clientKey{}).(string); ok {
		return v
	}
	return ""
}
