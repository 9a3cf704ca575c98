package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"gramstay/internal/app/dto"
	authsvc "gramstay/internal/app/services/auth"
	domainuser "gramstay/internal/domain/user"
)

// AuthHandler exposes registration, login and session endpoints.
type AuthHandler struct {
	Service *authsvc.Service
	Logger  *slog.Logger
}

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type sessionResponse struct {
	Token     string          `json:"token"`
	ExpiresAt string          `json:"expires_at"`
	User      dto.UserProfile `json:"user"`
}

func (h AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.Service.Register(c.Request.Context(), authsvc.RegisterParams{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Role:     domainuser.Role(req.Role),
	})
	if err != nil {
		h.respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MapUserProfile(u))
}

func (h AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	session, u, err := h.Service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respond(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{
		Token:     string(session.Token),
		ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
		User:      dto.MapUserProfile(u),
	})
}

func (h AuthHandler) Logout(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if err := h.Service.Logout(c.Request.Context(), token); err != nil {
		h.respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h AuthHandler) Me(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	u, err := h.Service.Users.ByID(c.Request.Context(), session.UserID)
	if err != nil {
		h.respond(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapUserProfile(u))
}

func (h AuthHandler) respond(c *gin.Context, err error) {
	switch {
	case errors.Is(err, authsvc.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, authsvc.ErrRoleNotAllowed):
		c.JSON(http.StatusForbidden, gin.H{"error": "role cannot be self-assigned"})
	case errors.Is(err, domainuser.ErrEmailAlreadyUsed):
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
	default:
		respondError(c, h.Logger, err)
	}
}
