package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketpulse/marketpulse/internal/googleauth"
	"github.com/marketpulse/marketpulse/internal/models"
	"github.com/marketpulse/marketpulse/internal/services"
)

type fakePlatformManager struct {
	upsertErr error
	statusErr error

	lastUserID string
	lastConfig *models.PlatformConfig
}

func (f *fakePlatformManager) Upsert(_ context.Context, userID string, config *models.PlatformConfig) (*models.PlatformConfig, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	f.lastUserID = userID
	config.ID = userID
	f.lastConfig = config
	return config, nil
}

func (f *fakePlatformManager) Status(context.Context, string) (*services.PlatformStatus, error) {
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return &services.PlatformStatus{
		GoogleAnalytics: services.AnalyticsProbe{Connected: true},
	}, nil
}

func newPlatformRouter(manager *fakePlatformManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewPlatformHandler(manager)
	r := gin.New()
	api := r.Group("/api", asUser("u1"))
	api.PUT("/platform", h.Upsert)
	api.GET("/platform", h.Status)
	return r
}

func TestPlatformUpsert_FlattensSections(t *testing.T) {
	manager := &fakePlatformManager{}
	r := newPlatformRouter(manager)

	body := `{
		"google_analytics": {"property_id": "315875115"},
		"google_search_console": {"property_type": "domain", "property_name": "vamos.es"},
		"google_ads": {"manager_account_developer_token": "dev-token", "customer_account_id": "587-225-5974"}
	}`
	w := doRequest(r, http.MethodPut, "/api/platform", body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", manager.lastUserID)
	require.NotNil(t, manager.lastConfig)
	assert.Equal(t, "315875115", manager.lastConfig.AnalyticsPropertyID)
	assert.Equal(t, models.PropertyTypeDomain, manager.lastConfig.SCPropertyType)
	assert.Equal(t, "vamos.es", manager.lastConfig.SCPropertyName)
	assert.Equal(t, "587-225-5974", manager.lastConfig.AdsCustomerID)
	assert.Contains(t, w.Body.String(), `"property_name":"vamos.es"`)
}

func TestPlatformUpsert_RejectsUnknownPropertyType(t *testing.T) {
	r := newPlatformRouter(&fakePlatformManager{})

	body := `{"google_search_console": {"property_type": "subdomain", "property_name": "vamos.es"}}`
	w := doRequest(r, http.MethodPut, "/api/platform", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlatformUpsert_RequiresCredential(t *testing.T) {
	r := newPlatformRouter(&fakePlatformManager{upsertErr: googleauth.ErrCredentialNotFound})

	w := doRequest(r, http.MethodPut, "/api/platform", `{}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlatformStatus_Success(t *testing.T) {
	r := newPlatformRouter(&fakePlatformManager{})

	w := doRequest(r, http.MethodGet, "/api/platform", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"connected":true`)
}

func TestPlatformStatus_RequiresCredential(t *testing.T) {
	r := newPlatformRouter(&fakePlatformManager{statusErr: googleauth.ErrCredentialNotFound})

	w := doRequest(r, http.MethodGet, "/api/platform", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
