package identity

import "context"

// Caller is the authenticated user attached to a request context by the
// auth middleware. Absent for anonymous requests.
type Caller struct {
	ID       string
	Name     string
	Username string
}

type ctxKey struct{}

// WithCaller returns a context carrying the caller.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext extracts the caller, reporting whether one is present.
func FromContext(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(ctxKey{}).(Caller)
	return c, ok
}
