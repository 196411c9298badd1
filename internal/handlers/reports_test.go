package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/marketpulse/marketpulse/internal/googleauth"
	"github.com/marketpulse/marketpulse/internal/services"
)

type fakeAnalyticsReports struct {
	err       error
	lastQuery services.FilteredQuery
	lastRange services.DateRange
}

func (f *fakeAnalyticsReports) Overall(_ context.Context, _ string, r services.DateRange) (services.TrafficMetrics, error) {
	f.lastRange = r
	return services.TrafficMetrics{Sessions: 42}, f.err
}

func (f *fakeAnalyticsReports) Daily(_ context.Context, _ string, r services.DateRange) ([]services.DailyTraffic, error) {
	f.lastRange = r
	return nil, f.err
}

func (f *fakeAnalyticsReports) Pages(_ context.Context, _ string, q services.FilteredQuery) ([]services.PageTraffic, error) {
	f.lastQuery = q
	return []services.PageTraffic{}, f.err
}

type fakeAdsReports struct {
	err            error
	lastCampaignID string
}

func (f *fakeAdsReports) Overall(context.Context, string, services.DateRange) (services.AdsReport, error) {
	return services.AdsReport{Currency: "eur"}, f.err
}

func (f *fakeAdsReports) Daily(context.Context, string, services.DateRange) ([]services.DailyAdsReport, error) {
	return nil, f.err
}

func (f *fakeAdsReports) Campaigns(context.Context, string, services.DateRange) ([]services.CampaignReport, error) {
	return nil, f.err
}

func (f *fakeAdsReports) CampaignByID(_ context.Context, _, campaignID string, _ services.DateRange) ([]services.DailyAdsReport, error) {
	f.lastCampaignID = campaignID
	return nil, f.err
}

func newAnalyticsRouter(reports *fakeAnalyticsReports) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAnalyticsHandler(reports)
	r := gin.New()
	api := r.Group("/api/google-analytics", asUser("u1"))
	api.GET("/overall", h.Overall)
	api.GET("/daily", h.Daily)
	api.GET("/pages", h.Pages)
	return r
}

func newAdsRouter(reports *fakeAdsReports) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAdsHandler(reports)
	r := gin.New()
	api := r.Group("/api/google-ads", asUser("u1"))
	api.GET("/overall", h.Overall)
	api.GET("/campaigns", h.Campaigns)
	api.GET("/campaigns/:id", h.CampaignByID)
	return r
}

func TestReportOverall_Success(t *testing.T) {
	reports := &fakeAnalyticsReports{}
	r := newAnalyticsRouter(reports)

	w := doRequest(r, http.MethodGet,
		"/api/google-analytics/overall?start_date=2025-01-01&end_date=2025-01-31", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, services.DateRange{StartDate: "2025-01-01", EndDate: "2025-01-31"}, reports.lastRange)
	assert.Contains(t, w.Body.String(), `"sessions":42`)
}

func TestReportOverall_MissingDates(t *testing.T) {
	r := newAnalyticsRouter(&fakeAnalyticsReports{})

	w := doRequest(r, http.MethodGet, "/api/google-analytics/overall?start_date=2025-01-01", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportOverall_MalformedDates(t *testing.T) {
	r := newAnalyticsRouter(&fakeAnalyticsReports{})

	w := doRequest(r, http.MethodGet,
		"/api/google-analytics/overall?start_date=01-01-2025&end_date=2025-01-31", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportPages_DefaultsLimit(t *testing.T) {
	reports := &fakeAnalyticsReports{}
	r := newAnalyticsRouter(reports)

	w := doRequest(r, http.MethodGet,
		"/api/google-analytics/pages?start_date=2025-01-01&end_date=2025-01-31&search=blog", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, defaultResultLimit, reports.lastQuery.Limit)
	assert.Equal(t, "blog", reports.lastQuery.Search)
}

func TestReportPages_RejectsBadLimit(t *testing.T) {
	r := newAnalyticsRouter(&fakeAnalyticsReports{})

	w := doRequest(r, http.MethodGet,
		"/api/google-analytics/pages?start_date=2025-01-01&end_date=2025-01-31&limit=-3", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportErrors_MapToStatusCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"missing credential", googleauth.ErrCredentialNotFound, http.StatusNotFound},
		{"missing scope", &googleauth.ScopeError{Platform: googleauth.PlatformAnalytics}, http.StatusBadRequest},
		{"missing property", services.ErrAnalyticsPropertyRequired, http.StatusNotFound},
		{"upstream failure", assert.AnError, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newAnalyticsRouter(&fakeAnalyticsReports{err: tc.err})

			w := doRequest(r, http.MethodGet,
				"/api/google-analytics/overall?start_date=2025-01-01&end_date=2025-01-31", "")
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestCampaignByID_PassesParam(t *testing.T) {
	reports := &fakeAdsReports{}
	r := newAdsRouter(reports)

	w := doRequest(r, http.MethodGet,
		"/api/google-ads/campaigns/12345?start_date=2025-01-01&end_date=2025-01-31", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "12345", reports.lastCampaignID)
}

func TestCampaignByID_InvalidIDIsBadRequest(t *testing.T) {
	r := newAdsRouter(&fakeAdsReports{err: services.ErrInvalidCampaignID})

	w := doRequest(r, http.MethodGet,
		"/api/google-ads/campaigns/nope?start_date=2025-01-01&end_date=2025-01-31", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
