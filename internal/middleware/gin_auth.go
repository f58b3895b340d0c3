package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GinGateway adapts WithGateway to Gin.
func GinGateway(factory Factory) gin.HandlerFunc {
	return bridge(func(next http.Handler) http.Handler {
		return WithGateway(factory, next)
	})
}

// GinRequireAuth adapts RequireAuth to Gin. The user id is also stored on
// the Gin context under "userID".
func GinRequireAuth() gin.HandlerFunc {
	return bridge(RequireAuth)
}

// GinRequireGuest adapts RequireGuest to Gin.
func GinRequireGuest() gin.HandlerFunc {
	return bridge(RequireGuest)
}

// GinRequireAdmin adapts RequireAdmin to Gin.
func GinRequireAdmin() gin.HandlerFunc {
	return bridge(RequireAdmin)
}

// bridge runs a net/http middleware inside a Gin chain. The Gin chain
// continues only if the middleware calls its next handler.
func bridge(mw func(http.Handler) http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		called := false

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			c.Request = r
			if id, ok := UserIDFromContext(r.Context()); ok {
				c.Set("userID", id)
			}
			c.Next()
		})

		mw(next).ServeHTTP(c.Writer, c.Request)

		if !called {
			c.Abort()
		}
	}
}
