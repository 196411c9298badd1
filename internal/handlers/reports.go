package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/marketpulse/marketpulse/internal/middleware"
	"github.com/marketpulse/marketpulse/internal/services"
)

// AnalyticsReports is the slice of the analytics service the HTTP layer
// needs.
type AnalyticsReports interface {
	Overall(ctx context.Context, userID string, r services.DateRange) (services.TrafficMetrics, error)
	Daily(ctx context.Context, userID string, r services.DateRange) ([]services.DailyTraffic, error)
	Pages(ctx context.Context, userID string, q services.FilteredQuery) ([]services.PageTraffic, error)
}

type SearchConsoleReports interface {
	Overall(ctx context.Context, userID string, r services.DateRange) (services.SearchMetrics, error)
	Daily(ctx context.Context, userID string, r services.DateRange) ([]services.DailySearch, error)
	Keywords(ctx context.Context, userID string, q services.FilteredQuery) ([]services.KeywordSearch, error)
}

type AdsReports interface {
	Overall(ctx context.Context, userID string, r services.DateRange) (services.AdsReport, error)
	Daily(ctx context.Context, userID string, r services.DateRange) ([]services.DailyAdsReport, error)
	Campaigns(ctx context.Context, userID string, r services.DateRange) ([]services.CampaignReport, error)
	CampaignByID(ctx context.Context, userID, campaignID string, r services.DateRange) ([]services.DailyAdsReport, error)
}

var (
	_ AnalyticsReports     = (*services.AnalyticsService)(nil)
	_ SearchConsoleReports = (*services.SearchConsoleService)(nil)
	_ AdsReports           = (*services.AdsService)(nil)
)

// AnalyticsHandler exposes the Google Analytics report endpoints.
type AnalyticsHandler struct {
	reports AnalyticsReports
}

func NewAnalyticsHandler(reports AnalyticsReports) *AnalyticsHandler {
	return &AnalyticsHandler{reports: reports}
}

func (h *AnalyticsHandler) Overall(c *gin.Context) {
	r, ok := bindDateRange(c)
	if !ok {
		return
	}
	report, err := h.reports.Overall(c.Request.Context(), middleware.UserID(c), r)
	if err != nil {
		respondReportError(c, err)
		return
	}
	respondOK(c, "google analytics overall report", report)
}

func (h *AnalyticsHandler) Daily(c *gin.Context) {
	r, ok := bindDateRange(c)
	if !ok {
		return
	}
	report, err := h.reports.Daily(c.Request.Context(), middleware.UserID(c), r)
	if err != nil {
		respondReportError(c, err)
		return
	}
	respondOK(c, "google analytics daily report", report)
}

func (h *AnalyticsHandler) Pages(c *gin.Context) {
	q, ok := bindFilteredQuery(c)
	if !ok {
		return
	}
	report, err := h.reports.Pages(c.Request.Context(), middleware.UserID(c), q)
	if err != nil {
		respondReportError(c, err)
		return
	}
	respondOK(c, "google analytics pages report", report)
}

// SearchConsoleHandler exposes the Google Search Console report endpoints.
type SearchConsoleHandler struct {
	reports SearchConsoleReports
}

func NewSearchConsoleHandler(reports SearchConsoleReports) *SearchConsoleHandler {
	return &SearchConsoleHandler{reports: reports}
}

func (h *SearchConsoleHandler) Overall(c *gin.Context) {
	r, ok := bindDateRange(c)
	if !ok {
		return
	}
	report, err := h.reports.Overall(c.Request.Context(), middleware.UserID(c), r)
	if err != nil {
		respondReportError(c, err)
		return
	}
	respondOK(c, "google search console overall report", report)
}

func (h *SearchConsoleHandler) Daily(c *gin.Context) {
	r, ok := bindDateRange(c)
	if !ok {
		return
	}
	report, err := h.reports.Daily(c.Request.Context(), middleware.UserID(c), r)
	if err != nil {
		respondReportError(c, err)
		return
	}
	respondOK(c, "google search console daily report", report)
}

func (h *SearchConsoleHandler) Keywords(c *gin.Context) {
	q, ok := bindFilteredQuery(c)
	if !ok {
		return
	}
	report, err := h.reports.Keywords(c.Request.Context(), middleware.UserID(c), q)
	if err != nil {
		respondReportError(c, err)
		return
	}
	respondOK(c, "google search console keywords report", report)
}

// AdsHandler exposes the Google Ads report endpoints.
type AdsHandler struct {
	reports AdsReports
}

func NewAdsHandler(reports AdsReports) *AdsHandler {
	return &AdsHandler{reports: reports}
}

func (h *AdsHandler) Overall(c *gin.Context) {
	r, ok := bindDateRange(c)
	if !ok {
		return
	}
	report, err := h.reports.Overall(c.Request.Context(), middleware.UserID(c), r)
	if err != nil {
		respondReportError(c, err)
		return
	}
	respondOK(c, "google ads overall report", report)
}

func (h *AdsHandler) Daily(c *gin.Context) {
	r, ok := bindDateRange(c)
	if !ok {
		return
	}
	report, err := h.reports.Daily(c.Request.Context(), middleware.UserID(c), r)
	if err != nil {
		respondReportError(c, err)
		return
	}
	respondOK(c, "google ads daily report", report)
}

func (h *AdsHandler) Campaigns(c *gin.Context) {
	r, ok := bindDateRange(c)
	if !ok {
		return
	}
	report, err := h.reports.Campaigns(c.Request.Context(), middleware.UserID(c), r)
	if err != nil {
		respondReportError(c, err)
		return
	}
	respondOK(c, "google ads campaigns report", report)
}

func (h *AdsHandler) CampaignByID(c *gin.Context) {
	r, ok := bindDateRange(c)
	if !ok {
		return
	}
	report, err := h.reports.CampaignByID(c.Request.Context(), middleware.UserID(c), c.Param("id"), r)
	if err != nil {
		respondReportError(c, err)
		return
	}
	respondOK(c, "google ads campaign report", report)
}
