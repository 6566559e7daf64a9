// Package http wires the application services to a gin router.
package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskhive/taskhive/core"
	"github.com/taskhive/taskhive/service"
)

// AuthHandlers contains the handlers for account and token endpoints.
type AuthHandlers struct {
	auth *service.AuthService
	log  *slog.Logger
}

// NewAuthHandlers creates the auth handlers.
func NewAuthHandlers(auth *service.AuthService, log *slog.Logger) *AuthHandlers {
	return &AuthHandlers{auth: auth, log: log}
}

// TokenResponse is the body returned by login and refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Register handles account creation.
func (h *AuthHandlers) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		Name     string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, core.ErrEmailTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": core.ErrEmailTaken.Error()})
			return
		}
		h.log.Error("registration failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
		"role":  user.Role,
	})
}

// Login exchanges credentials for a token pair.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	pair, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, core.ErrInvalidCredentials) {
			c.Header("WWW-Authenticate", "Bearer")
			c.JSON(http.StatusUnauthorized, gin.H{"error": core.ErrInvalidCredentials.Error()})
			return
		}
		h.log.Error("login failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	c.JSON(http.StatusOK, TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	})
}

// Refresh rotates a refresh token into a new pair.
func (h *AuthHandlers) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, core.ErrStoreUnavailable) {
			h.log.Error("revocation store unavailable during refresh", "error", err)
		}
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(http.StatusUnauthorized, gin.H{"error": unauthorizedMessage})
		return
	}

	c.JSON(http.StatusOK, TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	})
}

// Logout revokes the presented tokens. Idempotent: logging out twice with the
// same tokens succeeds both times.
func (h *AuthHandlers) Logout(c *gin.Context) {
	var req struct {
		AccessToken  string `json:"access_token" binding:"required"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.auth.Logout(c.Request.Context(), req.AccessToken, req.RefreshToken); err != nil {
		h.log.Error("logout failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "successfully logged out"})
}

// Me returns the authenticated identity.
func (h *AuthHandlers) Me(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "identity missing from context"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":    identity.UserID,
		"email": identity.Email,
		"role":  identity.Role,
	})
}

// ChangePassword updates the caller's password after checking the old one.
func (h *AuthHandlers) ChangePassword(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "identity missing from context"})
		return
	}

	var req struct {
		OldPassword string `json:"old_password" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := h.auth.ChangePassword(c.Request.Context(), identity.UserID, req.OldPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, core.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect old password"})
			return
		}
		h.log.Error("password change failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "password change failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated successfully"})
}
