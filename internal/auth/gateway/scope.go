package gateway

import (
	"context"
	"sync"
)

// Scope constructs at most one Gateway, on first use. One Scope is created
// per request so every caller in that request shares the same session
// state.
type Scope struct {
	once    sync.Once
	build   func() *Gateway
	gateway *Gateway
}

// NewScope returns a scope that builds its gateway with build. build runs at
// most once and must not call Gateway on the scope it belongs to; doing so
// deadlocks inside sync.Once.
func NewScope(build func() *Gateway) *Scope {
	return &Scope{build: build}
}

// Gateway returns the scope's gateway, building it on the first call.
func (s *Scope) Gateway() *Gateway {
	s.once.Do(func() {
		s.gateway = s.build()
	})
	return s.gateway
}

type scopeContextKey struct{}

// WithScope returns a copy of ctx carrying s.
func WithScope(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, s)
}

// FromContext returns the request's gateway, or false when no scope was
// installed on ctx.
func FromContext(ctx context.Context) (*Gateway, bool) {
	s, ok := ctx.Value(scopeContextKey{}).(*Scope)
	if !ok || s == nil {
		return nil, false
	}
	return s.Gateway(), true
}
