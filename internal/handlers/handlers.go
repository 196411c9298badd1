// Package handlers wires the HTTP surface to the report and credential
// services: request binding, the response envelope and the error to status
// mapping live here.
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/marketpulse/marketpulse/internal/googleauth"
	"github.com/marketpulse/marketpulse/internal/services"
	"github.com/marketpulse/marketpulse/internal/store"
)

const defaultResultLimit = 10

// respondOK writes the success envelope every endpoint shares.
func respondOK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"data":    data,
	})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}

// bindDateRange validates the start_date/end_date query pair required by
// every report endpoint.
func bindDateRange(c *gin.Context) (services.DateRange, bool) {
	r := services.DateRange{
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}
	if !validReportDate(r.StartDate) || !validReportDate(r.EndDate) {
		respondError(c, http.StatusBadRequest,
			"start_date and end_date are required in YYYY-MM-DD format")
		return r, false
	}
	return r, true
}

// bindFilteredQuery extends bindDateRange with the optional limit and search
// parameters used by the pages and keywords endpoints.
func bindFilteredQuery(c *gin.Context) (services.FilteredQuery, bool) {
	r, ok := bindDateRange(c)
	if !ok {
		return services.FilteredQuery{}, false
	}

	limit := defaultResultLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(c, http.StatusBadRequest, "limit must be a positive integer")
			return services.FilteredQuery{}, false
		}
		limit = parsed
	}

	return services.FilteredQuery{
		DateRange: r,
		Limit:     limit,
		Search:    c.Query("search"),
	}, true
}

func validReportDate(value string) bool {
	_, err := time.Parse("2006-01-02", value)
	return err == nil
}

// respondReportError maps report service failures onto HTTP statuses. A
// missing credential or platform selection is 404, an insufficient scope is
// 400 and anything the upstream API rejects surfaces as 403.
func respondReportError(c *gin.Context, err error) {
	var scopeErr *googleauth.ScopeError
	switch {
	case errors.Is(err, googleauth.ErrCredentialNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.As(err, &scopeErr), errors.Is(err, services.ErrInvalidCampaignID):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrAnalyticsPropertyRequired),
		errors.Is(err, services.ErrSearchConsolePropertyRequired),
		errors.Is(err, services.ErrAdsAccountRequired):
		respondError(c, http.StatusNotFound, err.Error())
	default:
		respondError(c, http.StatusForbidden, err.Error())
	}
}

func respondCredentialError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrCredentialExists):
		respondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidCode):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, googleauth.ErrCredentialNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}
