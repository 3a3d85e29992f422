// Package tenant defines tenant identity and per-tenant configuration.
//
// A tenant is one isolated ledger + inbox pairing. Configuration is read
// fresh from a Provider for every operation; caching a Config across tenant
// switches is a correctness hazard and is deliberately not done.
package tenant

import "context"

// ID identifies one tenant. It is opaque to the core.
type ID string

func (id ID) String() string { return string(id) }

// ctxKey is the private context key for the current tenant.
type ctxKey struct{}

// WithCurrent returns a context carrying id as the current tenant.
// The directory iterator is the sole place that threads this downward.
func WithCurrent(ctx context.Context, id ID) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// Current returns the tenant carried by ctx, if any.
func Current(ctx context.Context) (ID, bool) {
	id, ok := ctx.Value(ctxKey{}).(ID)
	return id, ok
}
