package catalog

import (
	"context"
	"errors"
)

// ErrNoProvider is a wiring error: catalog state was read outside a mounted
// provider's scope.
var ErrNoProvider = errors.New("catalog state must be used within a StoreProvider")

type providerKey struct{}

// WithProvider scopes p to ctx
func WithProvider(ctx context.Context, p *Provider) context.Context {
	return context.WithValue(ctx, providerKey{}, p)
}

// FromContext returns the provider scoped to ctx, or ErrNoProvider when there
// is none or it has been torn down.
func FromContext(ctx context.Context) (*Provider, error) {
	p, ok := ctx.Value(providerKey{}).(*Provider)
	if !ok || p == nil || p.Closed() {
		return nil, ErrNoProvider
	}
	return p, nil
}

// MustFromContext is FromContext for callers that treat a missing provider
// as a programming error. It panics with ErrNoProvider.
func MustFromContext(ctx context.Context) *Provider {
	p, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return p
}
