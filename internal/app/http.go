package app

import (
	"context"
	"errors"
	"net/http"

	"auth-gateway/internal/auth/credentials"
	"auth-gateway/internal/auth/gateway"
	"auth-gateway/internal/auth/handler"
	"auth-gateway/internal/auth/resolver"
	"auth-gateway/internal/auth/user"
	"auth-gateway/internal/config"
	"auth-gateway/internal/logger"
	"auth-gateway/internal/middleware"
	"auth-gateway/internal/session"

	"github.com/gin-gonic/gin"
)

func setupHTTP(ctx context.Context, cfg config.Config, infra *Infra) (*gin.Engine, error) {
	registry, err := setupProviders(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	users := user.NewSQLStore(infra.DB)
	promoteAdmins(ctx, users, cfg.Admins())

	authHandler := handler.NewHandler(
		registry,
		resolver.NewSQLResolver(infra.DB, users),
		credentials.NewService(users),
		users,
		handler.Settings{
			SecureCookies: cfg.CookieSecure,
			PerPage:       cfg.UsersPerPage,
		},
	)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(
		middleware.RequestLog(),
		middleware.Recovery(),
		middleware.GinGateway(gatewayFactory(cfg, users, infra.Sessions)),
	)

	router.GET("/health", func(c *gin.Context) {
		if err := infra.Healthy(); err != nil {
			logger.Warn("health check failed", map[string]any{
				"error": err.Error(),
			})
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandler.RegisterRoutes(router)

	api := router.Group("/api")
	api.Use(middleware.GinRequireAuth())
	api.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return router, nil
}

// gatewayFactory builds the per-request gateway from shared stores and the
// request's session cookie.
func gatewayFactory(cfg config.Config, users user.Provider, sessions session.Store) middleware.Factory {
	cookies := session.CookieOptions{
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}

	return func(w http.ResponseWriter, r *http.Request) *gateway.Gateway {
		return gateway.New(gateway.Options{
			Users:    users,
			Sessions: sessions,
			Marker:   session.NewCookieMarker(w, r, cookies),
			TTL:      cfg.SessionTTL,
			Device:   session.Device(r.UserAgent()),
		})
	}
}

// promoteAdmins grants the admin role to each listed account. Accounts that
// do not exist yet are skipped and picked up on a later start.
func promoteAdmins(ctx context.Context, users *user.SQLStore, emails []string) {
	for _, email := range emails {
		err := users.SetRole(ctx, email, user.RoleAdmin)
		switch {
		case errors.Is(err, user.ErrNotFound):
			logger.Warn("admin account not found", map[string]any{
				"email": email,
			})
		case err != nil:
			logger.Error("admin promotion failed", map[string]any{
				"email": email,
				"error": err.Error(),
			})
		default:
			logger.Info("admin role granted", map[string]any{
				"email": email,
			})
		}
	}
}
