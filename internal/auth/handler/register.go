package handler

import (
	"errors"
	"net/http"

	"auth-gateway/internal/auth/credentials"
	"auth-gateway/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/shoenig/go-conceal"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type passwordRequest struct {
	Password string `json:"password" binding:"required"`
}

// Register creates a password account and signs it in.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	g, ok := guard(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	userID, err := h.registrar.Register(ctx, req.Email, conceal.New(req.Password))
	if err != nil {
		passwordError(c, "register failed", err)
		return
	}

	u, err := h.users.RetrieveByID(ctx, userID)
	if err != nil {
		logger.Error("registered user lookup failed", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}

	if !g.Login(ctx, u) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "registered",
		"user_id": u.ID,
	})
}

// SetPassword adds a password to the signed-in account, typically one that
// was created through an OAuth provider.
func (h *Handler) SetPassword(c *gin.Context) {
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	userID := c.GetString("userID")

	if err := h.registrar.AddPassword(c.Request.Context(), userID, conceal.New(req.Password)); err != nil {
		passwordError(c, "set password failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "password_set",
		"user_id": userID,
	})
}

func passwordError(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, credentials.ErrAlreadyRegistered):
		c.JSON(http.StatusConflict, gin.H{"error": "account already exists"})
	case errors.Is(err, credentials.ErrPasswordTooShort),
		errors.Is(err, credentials.ErrPasswordTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error(msg, map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
