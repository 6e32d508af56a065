package handler

import (
	"errors"
	"net/http"

	"mail_admin/internal/middleware"
	"mail_admin/internal/model"
	"mail_admin/internal/service"
	"mail_admin/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const msgMissingCredentials = "Email and password are required"

// AuthHandler handles authentication requests
type AuthHandler struct {
	service      service.AuthService
	jwtUtil      *utils.JWTUtil
	secureCookie bool
	log          zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(s service.AuthService, jwtUtil *utils.JWTUtil, secureCookie bool, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{service: s, jwtUtil: jwtUtil, secureCookie: secureCookie, log: log}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgMissingCredentials})
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingCredentials):
			c.JSON(http.StatusBadRequest, gin.H{"error": msgMissingCredentials})
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		case errors.Is(err, service.ErrAccessDenied):
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied. Administrator privileges required."})
		default:
			h.log.Error().Err(err).Msg("login failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		}
		return
	}

	middleware.SetSessionCookie(c, token, h.jwtUtil.TTL(), h.secureCookie)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"role":    user.Role,
		"message": "Admin authenticated successfully",
	})
}

// Logout drops the cookie only; the token itself stays valid until it expires
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearSessionCookie(c, h.secureCookie)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AuthHandler) Me(c *gin.Context) {
	token, ok := middleware.SessionToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false, "message": "No session found"})
		return
	}

	claims, err := h.jwtUtil.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false, "message": "Invalid or expired token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"authenticated": true, "user": claims.SessionUser()})
}

// RegisterAuthRoutes registers auth routes. loginMW runs in front of the login handler only.
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup, loginMW ...gin.HandlerFunc) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/login", append(loginMW, h.Login)...)
		authGroup.POST("/logout", h.Logout)
		authGroup.GET("/me", h.Me)
	}
}
