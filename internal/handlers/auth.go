package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/marketpulse/marketpulse/internal/middleware"
	"github.com/marketpulse/marketpulse/internal/services"
)

// Authenticator is the slice of the auth service the HTTP layer needs.
type Authenticator interface {
	Login(ctx context.Context, code string) (*services.LoginResult, error)
}

var _ Authenticator = (*services.AuthService)(nil)

// AuthHandler exposes login and the token-derived profile.
type AuthHandler struct {
	auth Authenticator
}

func NewAuthHandler(auth Authenticator) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	Code string `json:"code" binding:"required"`
}

// Login exchanges a Microsoft authorization code for the application bearer
// token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "code is required")
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Code)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCode) || errors.Is(err, services.ErrInvalidAccessToken) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "internal server error")
		return
	}

	respondOK(c, "login successfully", result)
}

// Profile returns the identity carried by the bearer token.
func (h *AuthHandler) Profile(c *gin.Context) {
	respondOK(c, "authenticated user", gin.H{"user_id": middleware.UserID(c)})
}
