package handler

import (
	"net/http"

	"auth-gateway/internal/auth/credentials"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required_without=Username"`
	Username string `json:"username" binding:"required_without=Email"`
	Password string `json:"password" binding:"required"`
}

// credentials returns the submitted fields, leaving out an empty identifier.
func (r loginRequest) credentials() credentials.Credentials {
	c := credentials.Credentials{
		credentials.SecretField: r.Password,
	}
	if r.Email != "" {
		c["email"] = r.Email
	}
	if r.Username != "" {
		c["username"] = r.Username
	}
	return c
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	g, ok := guard(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if !g.Attempt(ctx, req.credentials()) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	u, _ := g.User(ctx)
	c.JSON(http.StatusOK, gin.H{
		"status":  "logged_in",
		"user_id": u.ID,
	})
}
