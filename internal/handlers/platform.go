package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/marketpulse/marketpulse/internal/middleware"
	"github.com/marketpulse/marketpulse/internal/models"
	"github.com/marketpulse/marketpulse/internal/services"
)

// PlatformManager is the slice of the platform service the HTTP layer needs.
type PlatformManager interface {
	Upsert(ctx context.Context, userID string, config *models.PlatformConfig) (*models.PlatformConfig, error)
	Status(ctx context.Context, userID string) (*services.PlatformStatus, error)
}

var _ PlatformManager = (*services.PlatformService)(nil)

// PlatformHandler exposes the platform selection endpoints.
type PlatformHandler struct {
	platforms PlatformManager
}

func NewPlatformHandler(platforms PlatformManager) *PlatformHandler {
	return &PlatformHandler{platforms: platforms}
}

type upsertPlatformRequest struct {
	GoogleAnalytics     models.AnalyticsConfig     `json:"google_analytics"`
	GoogleSearchConsole models.SearchConsoleConfig `json:"google_search_console"`
	GoogleAds           models.AdsConfig           `json:"google_ads"`
}

type platformConfigResponse struct {
	GoogleAnalytics     models.AnalyticsConfig     `json:"google_analytics"`
	GoogleSearchConsole models.SearchConsoleConfig `json:"google_search_console"`
	GoogleAds           models.AdsConfig           `json:"google_ads"`
}

func newPlatformConfigResponse(config *models.PlatformConfig) platformConfigResponse {
	return platformConfigResponse{
		GoogleAnalytics:     config.Analytics(),
		GoogleSearchConsole: config.SearchConsole(),
		GoogleAds:           config.Ads(),
	}
}

// Upsert stores the user's per-platform selections as a single row.
func (h *PlatformHandler) Upsert(c *gin.Context) {
	var req upsertPlatformRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid platform configuration payload")
		return
	}
	if req.GoogleSearchConsole.PropertyType != "" &&
		req.GoogleSearchConsole.PropertyType != models.PropertyTypeDomain &&
		req.GoogleSearchConsole.PropertyType != models.PropertyTypeURLPrefix &&
		req.GoogleSearchConsole.PropertyType != models.PropertyTypeNotSet {
		respondError(c, http.StatusBadRequest,
			"property_type must be one of domain, url_prefix or not_set")
		return
	}

	config := &models.PlatformConfig{
		AnalyticsPropertyID: req.GoogleAnalytics.PropertyID,
		SCPropertyType:      req.GoogleSearchConsole.PropertyType,
		SCPropertyName:      req.GoogleSearchConsole.PropertyName,
		AdsDeveloperToken:   req.GoogleAds.ManagerAccountDeveloperToken,
		AdsCustomerID:       req.GoogleAds.CustomerAccountID,
	}

	saved, err := h.platforms.Upsert(c.Request.Context(), middleware.UserID(c), config)
	if err != nil {
		respondCredentialError(c, err)
		return
	}

	respondOK(c, "platform configuration saved", newPlatformConfigResponse(saved))
}

// Status probes all three platforms concurrently and reports their
// connection state with the selectable options.
func (h *PlatformHandler) Status(c *gin.Context) {
	status, err := h.platforms.Status(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondCredentialError(c, err)
		return
	}

	respondOK(c, "platform status", status)
}
