package middleware

import (
	"context"
	"net/http"

	"auth-gateway/internal/auth/gateway"
)

// unexported, collision-proof context key
type userIDContextKeyType struct{}

var userIDKey = userIDContextKeyType{}

// UserIDFromContext extracts the authenticated user ID from context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}

// Factory builds the gateway for one request.
type Factory func(w http.ResponseWriter, r *http.Request) *gateway.Gateway

// WithGateway installs a request scoped gateway.Scope. The gateway itself is
// only built when a handler first asks for it.
func WithGateway(factory Factory, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope := gateway.NewScope(func() *gateway.Gateway {
			return factory(w, r)
		})
		next.ServeHTTP(w, r.WithContext(gateway.WithScope(r.Context(), scope)))
	})
}

// RequireAuth rejects anonymous requests with 401 and attaches the user id
// to the context of authenticated ones.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g, ok := gateway.FromContext(r.Context())
		if !ok {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		u, ok := g.User(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, u.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireGuest rejects requests that already carry a signed in user with
// 409.
func RequireGuest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g, ok := gateway.FromContext(r.Context())
		if !ok {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		if g.Check(r.Context()) {
			http.Error(w, "already authenticated", http.StatusConflict)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireAdmin is RequireAuth that also answers 403 unless the user holds
// the admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g, ok := gateway.FromContext(r.Context())
		if !ok {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		u, ok := g.User(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !u.IsAdmin() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, u.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
