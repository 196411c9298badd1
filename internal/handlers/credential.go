package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/marketpulse/marketpulse/internal/metrics"
	"github.com/marketpulse/marketpulse/internal/middleware"
	"github.com/marketpulse/marketpulse/internal/models"
	"github.com/marketpulse/marketpulse/internal/services"
)

// CredentialManager is the slice of the credential service the HTTP layer
// needs.
type CredentialManager interface {
	Connect(ctx context.Context, userID, code string) (*models.GoogleCredential, error)
	Profile(ctx context.Context, userID string) (*services.Profile, error)
	Disconnect(ctx context.Context, userID string) error
}

var _ CredentialManager = (*services.CredentialService)(nil)

// CredentialHandler exposes the Google OAuth connect/profile/disconnect
// endpoints.
type CredentialHandler struct {
	credentials CredentialManager
	metrics     metrics.Recorder
}

func NewCredentialHandler(credentials CredentialManager, m metrics.Recorder) *CredentialHandler {
	return &CredentialHandler{
		credentials: credentials,
		metrics:     m,
	}
}

type connectRequest struct {
	Code string `json:"code" binding:"required"`
}

// Connect exchanges an OAuth authorization code and stores the tokens for
// the authenticated user.
func (h *CredentialHandler) Connect(c *gin.Context) {
	var req connectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "code is required")
		return
	}

	credential, err := h.credentials.Connect(c.Request.Context(), middleware.UserID(c), req.Code)
	h.metrics.RecordCredentialEvent("connect", err == nil)
	if err != nil {
		respondCredentialError(c, err)
		return
	}

	respondOK(c, "google oauth connected", credential)
}

// Profile returns the stored credential joined with the Google account's
// userinfo.
func (h *CredentialHandler) Profile(c *gin.Context) {
	profile, err := h.credentials.Profile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondCredentialError(c, err)
		return
	}

	respondOK(c, "google oauth profile", profile)
}

// Disconnect removes the credential and purges the user's cached reports.
func (h *CredentialHandler) Disconnect(c *gin.Context) {
	err := h.credentials.Disconnect(c.Request.Context(), middleware.UserID(c))
	h.metrics.RecordCredentialEvent("disconnect", err == nil)
	if err != nil {
		respondCredentialError(c, err)
		return
	}

	respondOK(c, "google oauth disconnected", nil)
}
