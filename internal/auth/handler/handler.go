package handler

import (
	"context"
	"net/http"

	"auth-gateway/internal/auth/gateway"
	"auth-gateway/internal/auth/provider"
	"auth-gateway/internal/auth/resolver"
	"auth-gateway/internal/auth/user"
	"auth-gateway/internal/logger"
	"auth-gateway/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/shoenig/go-conceal"
)

// Registrar creates password accounts and adds passwords to existing ones.
type Registrar interface {
	Register(ctx context.Context, email string, password *conceal.Text) (string, error)
	AddPassword(ctx context.Context, userID string, password *conceal.Text) error
}

// Directory is the read side of user storage used by the handlers.
type Directory interface {
	RetrieveByID(ctx context.Context, id string) (*user.User, error)
	List(ctx context.Context, limit, offset int) ([]*user.User, error)
	Count(ctx context.Context) (int, error)
}

// Settings tune handler behaviour.
type Settings struct {
	// SecureCookies marks the short lived OAuth cookies Secure.
	SecureCookies bool

	// PerPage is the page size of the user listing.
	PerPage int
}

type Handler struct {
	providers *provider.Registry
	resolver  resolver.Resolver
	registrar Registrar
	users     Directory
	settings  Settings
}

func NewHandler(
	registry *provider.Registry,
	resolver resolver.Resolver,
	registrar Registrar,
	users Directory,
	settings Settings,
) *Handler {
	if settings.PerPage <= 0 {
		settings.PerPage = 15
	}
	return &Handler{
		providers: registry,
		resolver:  resolver,
		registrar: registrar,
		users:     users,
		settings:  settings,
	}
}

// RegisterRoutes mounts every auth route on r and installs the HTML
// templates. r must already run the middleware.GinGateway middleware.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.SetHTMLTemplate(usersPage)

	r.POST("/auth/login", h.Login)
	r.POST("/auth/register", middleware.GinRequireGuest(), h.Register)
	r.POST("/auth/password", middleware.GinRequireAuth(), h.SetPassword)
	r.POST("/auth/logout", h.Logout)

	r.GET("/oauth/login/:provider", h.oauthLogin)
	r.GET("/oauth/callback/:provider", h.oauthCallback)

	r.GET("/api/me", middleware.GinRequireAuth(), h.Me)
	r.GET("/users", middleware.GinRequireAdmin(), h.Users)

	for _, route := range r.Routes() {
		logger.Debug("route", map[string]any{
			"method": route.Method,
			"path":   route.Path,
		})
	}
}

// guard returns the request's gateway, answering 500 when none is installed.
func guard(c *gin.Context) (*gateway.Gateway, bool) {
	g, ok := gateway.FromContext(c.Request.Context())
	if !ok {
		logger.Error("no auth gateway on request", map[string]any{
			"path": c.Request.URL.Path,
		})
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return nil, false
	}
	return g, true
}

func (h *Handler) Logout(c *gin.Context) {
	g, ok := guard(c)
	if !ok {
		return
	}

	g.Logout(c.Request.Context())

	// idempotent
	c.Status(http.StatusNoContent)
}

func (h *Handler) Me(c *gin.Context) {
	g, ok := guard(c)
	if !ok {
		return
	}

	u, ok := g.User(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	body := gin.H{
		"user_id":        u.ID,
		"email":          u.Email,
		"username":       u.Username,
		"email_verified": u.EmailVerified,
	}
	if !u.LastLoginAt.IsZero() {
		body["last_login_at"] = u.LastLoginAt.UTC()
	}

	c.JSON(http.StatusOK, body)
}
